// Package tracker keeps the live state of every timeline entity.
package tracker

import (
	"sort"

	"github.com/coreman2200/funtimes-marquee/internal/render"
	"github.com/coreman2200/funtimes-marquee/internal/timeline"
)

// Entity is the applied state of one timeline entity.
type Entity struct {
	ID       string
	Display  bool
	Sprite   render.Drawable
	Opacity  float64
	X, Y     float64
	W, H     float64
	Rotation float64 // degrees
	Z        int
	Frame    int
	Text     string
	Mirror   bool
	Playing  bool
}

// Tracker applies resolved ops to entity records.
type Tracker struct {
	ids      []string
	entities map[string]*Entity
}

// New registers ids, hidden, in the given order.
func New(ids []string) *Tracker {
	t := &Tracker{}
	t.register(ids)
	return t
}

func (t *Tracker) register(ids []string) {
	t.ids = append([]string(nil), ids...)
	t.entities = make(map[string]*Entity, len(ids))
	for _, id := range ids {
		t.entities[id] = &Entity{ID: id}
	}
}

// Reset hides every entity and zeroes its fields.
func (t *Tracker) Reset() { t.register(t.ids) }

// Get returns a copy of the entity record.
func (t *Tracker) Get(id string) (Entity, bool) {
	e, ok := t.entities[id]
	if !ok {
		return Entity{}, false
	}
	return *e, true
}

// Apply mutates the fields op names. Ops for unregistered ids are ignored.
func (t *Tracker) Apply(op timeline.Op) {
	switch v := op.(type) {
	case timeline.PlaySoundOp:
		if v.Sound != nil {
			v.Sound.SetVolume(v.Volume)
			v.Sound.Play()
		}
	case timeline.InitializeOp:
		e := t.entities[v.ID]
		if e == nil {
			return
		}
		*e = Entity{
			ID: v.ID, Display: true, Sprite: v.Sprite, Opacity: v.Opacity,
			X: v.X, Y: v.Y, W: v.W, H: v.H, Rotation: v.Rotation, Z: v.Z,
			Frame: v.Frame, Text: v.Text, Mirror: v.Mirror, Playing: v.Playing,
		}
	case timeline.RemoveOp:
		if e := t.entities[v.ID]; e != nil {
			e.Display = false
		}
	case timeline.SetAttrOp:
		e := t.entities[v.ID]
		if e == nil {
			return
		}
		switch v.Attr {
		case timeline.PosX:
			e.X = v.Value
		case timeline.PosY:
			e.Y = v.Value
		case timeline.SizeX:
			e.W = v.Value
		case timeline.SizeY:
			e.H = v.Value
		case timeline.Opacity:
			e.Opacity = v.Value
		case timeline.Rotation:
			e.Rotation = v.Value
		}
	case timeline.SetSpriteOp:
		if e := t.entities[v.ID]; e != nil {
			e.Sprite, e.Frame, e.Playing = v.Sprite, v.Frame, v.Playing
			e.Text, e.Mirror = v.Text, v.Mirror
		}
	case timeline.SetFrameOp:
		if e := t.entities[v.ID]; e != nil {
			e.Frame = v.Frame
		}
	}
}

// Visible counts displayed entities.
func (t *Tracker) Visible() int {
	n := 0
	for _, e := range t.entities {
		if e.Display {
			n++
		}
	}
	return n
}

// Snapshot returns displayed entities sorted by ascending z. Ties keep
// registration order.
func (t *Tracker) Snapshot() []render.Item {
	shown := make([]*Entity, 0, len(t.entities))
	for _, id := range t.ids {
		if e := t.entities[id]; e.Display {
			shown = append(shown, e)
		}
	}
	sort.SliceStable(shown, func(i, j int) bool { return shown[i].Z < shown[j].Z })

	items := make([]render.Item, len(shown))
	for i, e := range shown {
		items[i] = render.Item{
			ID: e.ID, Drawable: e.Sprite, Opacity: e.Opacity,
			X: e.X, Y: e.Y, W: e.W, H: e.H, Rotation: e.Rotation,
			Frame: e.Frame, Text: e.Text, Mirror: e.Mirror,
		}
	}
	return items
}
