// Package script decodes authored timeline documents.
//
// A document is YAML with the timing, an assets section and a flat list of
// actions tagged by type:
//
//	ticks: 100
//	tickTime: 100
//	fps: 10
//	assets:
//	  sprites:
//	    sky: {box: "#3366cc"}
//	actions:
//	  - {type: INITIALIZE_ENTITY, tick: 0, id: bg, sprite: sky, alpha: 1, sizeX: 640, sizeY: 360}
//	  - {type: CHANGE_OPACITY, startTick: 0, endTick: 100, id: bg, alpha: 0, ease: ease_out}
package script

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/funtimes-marquee/internal/audio"
	"github.com/coreman2200/funtimes-marquee/internal/ease"
	"github.com/coreman2200/funtimes-marquee/internal/timeline"
)

// Document is the decoded form of a timeline file.
type Document struct {
	Ticks    int         `yaml:"ticks"`
	TickTime float64     `yaml:"tickTime"`
	FPS      float64     `yaml:"fps"`
	Assets   AssetSpec   `yaml:"assets"`
	Actions  []RawAction `yaml:"actions"`
}

// RawAction is one action as authored. Attribute values are pointers so a
// missing value can be told apart from zero.
type RawAction struct {
	Type      string `yaml:"type"`
	Tick      int    `yaml:"tick"`
	StartTick int    `yaml:"startTick"`
	EndTick   int    `yaml:"endTick"`
	ID        string `yaml:"id"`

	Sprite string   `yaml:"sprite"`
	Alpha  *float64 `yaml:"alpha"`
	PosX   *float64 `yaml:"posX"`
	PosY   *float64 `yaml:"posY"`
	SizeX  *float64 `yaml:"sizeX"`
	SizeY  *float64 `yaml:"sizeY"`
	Rot    *float64 `yaml:"rot"`
	ZIndex int      `yaml:"zIndex"`
	IIndex int      `yaml:"iIndex"`
	Play   bool     `yaml:"play"`
	Text   string   `yaml:"text"`
	Mirror bool     `yaml:"mirror"`

	Ease   string   `yaml:"ease"`
	Audio  string   `yaml:"audio"`
	Volume *float64 `yaml:"volume"`
}

func (r RawAction) value(attr timeline.Attr) *float64 {
	switch attr {
	case timeline.PosX:
		return r.PosX
	case timeline.PosY:
		return r.PosY
	case timeline.SizeX:
		return r.SizeX
	case timeline.SizeY:
		return r.SizeY
	case timeline.Opacity:
		return r.Alpha
	case timeline.Rotation:
		return r.Rot
	}
	return nil
}

type attrTag struct {
	attr  timeline.Attr
	tween bool
}

var attrTags = map[string]attrTag{
	"SET_POSITION_X":    {timeline.PosX, false},
	"SET_POSITION_Y":    {timeline.PosY, false},
	"SET_SIZE_X":        {timeline.SizeX, false},
	"SET_SIZE_Y":        {timeline.SizeY, false},
	"SET_OPACITY":       {timeline.Opacity, false},
	"SET_ROTATION":      {timeline.Rotation, false},
	"CHANGE_POSITION_X": {timeline.PosX, true},
	"CHANGE_POSITION_Y": {timeline.PosY, true},
	"CHANGE_SIZE_X":     {timeline.SizeX, true},
	"CHANGE_SIZE_Y":     {timeline.SizeY, true},
	"CHANGE_OPACITY":    {timeline.Opacity, true},
	"CHANGE_ROTATION":   {timeline.Rotation, true},
}

func orZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// Decode reads a document. Unknown fields are rejected.
func Decode(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var d Document
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("decode timeline: %w", err)
	}
	return &d, nil
}

// Timing returns the document's tick/frame timing.
func (d *Document) Timing() timeline.Timing {
	return timeline.Timing{TotalTicks: d.Ticks, TickTime: d.TickTime, FPS: d.FPS}
}

// Build converts the raw actions, resolving names through assets.
func (d *Document) Build(assets *Assets) ([]timeline.Action, error) {
	out := make([]timeline.Action, 0, len(d.Actions))
	for i, r := range d.Actions {
		a, err := r.action(assets)
		if err != nil {
			return nil, fmt.Errorf("action %d (%s): %w", i, r.Type, err)
		}
		out = append(out, a)
	}
	return out, nil
}

func (r RawAction) action(assets *Assets) (timeline.Action, error) {
	if t, ok := attrTags[r.Type]; ok {
		v := r.value(t.attr)
		if v == nil {
			return nil, fmt.Errorf("missing %s value", t.attr)
		}
		if !t.tween {
			return timeline.Set{Tick: r.Tick, ID: r.ID, Attr: t.attr, Value: *v}, nil
		}
		fn, ok := ease.Lookup(r.Ease)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownEase, r.Ease)
		}
		return timeline.Tween{StartTick: r.StartTick, EndTick: r.EndTick, ID: r.ID, Attr: t.attr, Ease: fn, Target: *v}, nil
	}

	switch r.Type {
	case "INITIALIZE_ENTITY":
		sp, err := assets.sprite(r.Sprite)
		if err != nil {
			return nil, err
		}
		return timeline.Initialize{
			Tick: r.Tick, ID: r.ID, Sprite: sp, Opacity: orZero(r.Alpha),
			PosX: orZero(r.PosX), PosY: orZero(r.PosY), SizeX: orZero(r.SizeX), SizeY: orZero(r.SizeY),
			Rotation: orZero(r.Rot), ZIndex: r.ZIndex, Frame: r.IIndex, Play: r.Play,
			Text: r.Text, Mirror: r.Mirror,
		}, nil
	case "REMOVE_ENTITY":
		return timeline.Remove{Tick: r.Tick, ID: r.ID}, nil
	case "SET_SPRITE":
		sp, err := assets.sprite(r.Sprite)
		if err != nil {
			return nil, err
		}
		return timeline.SetSprite{Tick: r.Tick, ID: r.ID, Sprite: sp, Play: r.Play, Frame: r.IIndex, Text: r.Text, Mirror: r.Mirror}, nil
	case "SET_FRAME":
		return timeline.SetFrame{Tick: r.Tick, ID: r.ID, Frame: r.IIndex}, nil
	case "PLAY_ANIMATION":
		return timeline.PlayAnimation{Tick: r.Tick, ID: r.ID}, nil
	case "PAUSE_ANIMATION":
		return timeline.PauseAnimation{Tick: r.Tick, ID: r.ID}, nil
	case "PLAY_SOUND":
		s, err := assets.sound(r.Audio)
		if err != nil {
			return nil, err
		}
		vol := 1.0
		if r.Volume != nil {
			vol = *r.Volume
		}
		return timeline.PlaySound{Tick: r.Tick, Sound: s, Volume: vol}, nil
	}
	return nil, fmt.Errorf("%w: %q", timeline.ErrUnknownActionType, r.Type)
}

// Script is a loaded document ready to compile.
type Script struct {
	Actions []timeline.Action
	Timing  timeline.Timing
	Assets  *Assets
}

// Compile compiles the script's actions.
func (s *Script) Compile() (*timeline.Program, error) {
	return timeline.Compile(s.Actions, s.Timing)
}

// Parse decodes data and builds its assets relative to dir.
func Parse(data []byte, dir string, deck *audio.Deck) (*Script, error) {
	doc, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	assets := NewAssets()
	if err := assets.Build(doc.Assets, dir, deck); err != nil {
		return nil, fmt.Errorf("assets: %w", err)
	}
	actions, err := doc.Build(assets)
	if err != nil {
		return nil, err
	}
	return &Script{Actions: actions, Timing: doc.Timing(), Assets: assets}, nil
}

// Load reads a document from path. Asset paths resolve against its directory.
func Load(path string, deck *audio.Deck) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read timeline: %w", err)
	}
	return Parse(data, filepath.Dir(path), deck)
}
