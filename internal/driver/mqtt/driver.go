// Package mqtt publishes rendered frames as PNG payloads to an MQTT broker.
package mqtt

import (
	"bytes"
	"fmt"
	"image/png"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/coreman2200/funtimes-marquee/internal/driver"
)

// Publisher is the subset of paho.Client the driver needs.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// Options controls how frames are published.
type Options struct {
	Topic    string
	QoS      byte
	Retained bool
	Timeout  time.Duration // wait per publish; 0 waits forever
	Every    int           // publish every Nth frame; 0 or 1 is every frame
}

// Driver encodes each frame as PNG and publishes it.
type Driver struct {
	pub  Publisher
	opts Options
	enc  png.Encoder
	buf  bytes.Buffer
	seen int

	// Published counts frames handed to the broker.
	Published int
}

// New returns a Driver publishing through pub.
func New(pub Publisher, opts Options) *Driver {
	if opts.Every < 1 {
		opts.Every = 1
	}
	return &Driver{pub: pub, opts: opts, enc: png.Encoder{CompressionLevel: png.BestSpeed}}
}

// Connect builds a paho client from broker options, connects it and returns
// it ready for New.
func Connect(url, clientID, user, pass string, timeout time.Duration) (paho.Client, error) {
	options := paho.NewClientOptions().
		AddBroker(url).
		SetClientID(clientID).
		SetUsername(user).
		SetPassword(pass).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second)
	client := paho.NewClient(options)
	tok := client.Connect()
	if !tok.WaitTimeout(timeout) {
		return nil, fmt.Errorf("mqtt connect %s: timed out", url)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", url, err)
	}
	return client, nil
}

func (d *Driver) Write(f driver.Frame) error {
	d.seen++
	if f.Image == nil || (d.seen-1)%d.opts.Every != 0 {
		return nil
	}
	d.buf.Reset()
	if err := d.enc.Encode(&d.buf, f.Image); err != nil {
		return fmt.Errorf("encode frame %d: %w", f.ID, err)
	}
	payload := append([]byte(nil), d.buf.Bytes()...)
	tok := d.pub.Publish(d.opts.Topic, d.opts.QoS, d.opts.Retained, payload)
	if d.opts.Timeout > 0 {
		if !tok.WaitTimeout(d.opts.Timeout) {
			return fmt.Errorf("publish frame %d: timed out", f.ID)
		}
	} else {
		tok.Wait()
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("publish frame %d: %w", f.ID, err)
	}
	d.Published++
	return nil
}

// Close disconnects the client when it is a full paho.Client.
func (d *Driver) Close() error {
	if c, ok := d.pub.(paho.Client); ok {
		c.Disconnect(250)
	}
	return nil
}
