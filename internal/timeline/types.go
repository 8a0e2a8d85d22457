package timeline

import (
	"math"

	"github.com/coreman2200/funtimes-marquee/internal/audio"
	"github.com/coreman2200/funtimes-marquee/internal/ease"
	"github.com/coreman2200/funtimes-marquee/internal/render"
)

// Attr names a numeric entity attribute that can be set or tweened.
type Attr string

const (
	PosX     Attr = "posX"
	PosY     Attr = "posY"
	SizeX    Attr = "sizeX"
	SizeY    Attr = "sizeY"
	Opacity  Attr = "opacity"
	Rotation Attr = "rotation"
)

// Attrs lists every tweenable attribute in a fixed order.
var Attrs = []Attr{PosX, PosY, SizeX, SizeY, Opacity, Rotation}

// Valid reports whether a is one of the known attributes.
func (a Attr) Valid() bool {
	switch a {
	case PosX, PosY, SizeX, SizeY, Opacity, Rotation:
		return true
	}
	return false
}

// Action is one authored timeline entry. The set of variants is closed; pass
// them by value.
type Action interface {
	isAction()
}

// Initialize creates (or recreates) an entity and makes it visible.
type Initialize struct {
	Tick     int
	ID       string
	Sprite   render.Drawable
	Opacity  float64
	PosX     float64
	PosY     float64
	SizeX    float64
	SizeY    float64
	Rotation float64 // degrees
	ZIndex   int
	Frame    int
	Play     bool
	Text     string
	Mirror   bool
}

func (v Initialize) value(a Attr) float64 {
	switch a {
	case PosX:
		return v.PosX
	case PosY:
		return v.PosY
	case SizeX:
		return v.SizeX
	case SizeY:
		return v.SizeY
	case Opacity:
		return v.Opacity
	case Rotation:
		return v.Rotation
	}
	return 0
}

// Remove hides an entity. Its record survives for a later Initialize.
type Remove struct {
	Tick int
	ID   string
}

// Set assigns one attribute instantly.
type Set struct {
	Tick  int
	ID    string
	Attr  Attr
	Value float64
}

// SetSprite swaps the drawable of an entity.
type SetSprite struct {
	Tick   int
	ID     string
	Sprite render.Drawable
	Play   bool
	Frame  int
	Text   string
	Mirror bool
}

// SetFrame selects a sprite frame index.
type SetFrame struct {
	Tick  int
	ID    string
	Frame int
}

// PlayAnimation starts advancing the sprite frame index of an entity.
type PlayAnimation struct {
	Tick int
	ID   string
}

// PauseAnimation stops a running sprite animation.
type PauseAnimation struct {
	Tick int
	ID   string
}

// PlaySound triggers a sound. It is not bound to an entity.
type PlaySound struct {
	Tick   int
	Sound  audio.Sound
	Volume float64
}

// Tween interpolates Attr from its value at StartTick to Target at EndTick.
// A nil Ease means constant (linear) easing.
type Tween struct {
	StartTick int
	EndTick   int
	ID        string
	Attr      Attr
	Ease      ease.Func
	Target    float64
}

func (Initialize) isAction()     {}
func (Remove) isAction()         {}
func (Set) isAction()            {}
func (SetSprite) isAction()      {}
func (SetFrame) isAction()       {}
func (PlayAnimation) isAction()  {}
func (PauseAnimation) isAction() {}
func (PlaySound) isAction()      {}
func (Tween) isAction()          {}

// ActionName returns a short name for the variant of a, or "unknown".
func ActionName(a Action) string {
	switch a.(type) {
	case Initialize:
		return "initialize"
	case Remove:
		return "remove"
	case Set:
		return "set"
	case SetSprite:
		return "set_sprite"
	case SetFrame:
		return "set_frame"
	case PlayAnimation:
		return "play_animation"
	case PauseAnimation:
		return "pause_animation"
	case PlaySound:
		return "play_sound"
	case Tween:
		return "tween"
	}
	return "unknown"
}

// entityOf returns the entity an action refers to. Sounds have none.
func entityOf(a Action) (string, bool) {
	switch v := a.(type) {
	case Initialize:
		return v.ID, true
	case Remove:
		return v.ID, true
	case Set:
		return v.ID, true
	case SetSprite:
		return v.ID, true
	case SetFrame:
		return v.ID, true
	case PlayAnimation:
		return v.ID, true
	case PauseAnimation:
		return v.ID, true
	case Tween:
		return v.ID, true
	}
	return "", false
}

// tickOf returns the placement tick of an instantaneous action.
func tickOf(a Action) int {
	switch v := a.(type) {
	case Initialize:
		return v.Tick
	case Remove:
		return v.Tick
	case Set:
		return v.Tick
	case SetSprite:
		return v.Tick
	case SetFrame:
		return v.Tick
	case PlayAnimation:
		return v.Tick
	case PauseAnimation:
		return v.Tick
	case PlaySound:
		return v.Tick
	case Tween:
		return v.StartTick
	}
	return 0
}

// CueKind tags a pass-1 cue.
type CueKind int

const (
	Instant CueKind = iota
	TweenStart
	TweenEnd
)

func (k CueKind) String() string {
	switch k {
	case Instant:
		return "instant"
	case TweenStart:
		return "tween_start"
	case TweenEnd:
		return "tween_end"
	}
	return "unknown"
}

// Cue is an action placed in a frame bucket by pass 1. Both boundary cues of a
// tween share the same Tween pointer.
type Cue struct {
	Kind   CueKind
	Index  int // position in the authored list
	Action Action
	Tween  *Tween
}

// Timing maps ticks to frames.
type Timing struct {
	TotalTicks int
	TickTime   float64 // ticks per second
	FPS        float64
}

// frameEpsilon absorbs float noise so exact products do not floor one short.
const frameEpsilon = 1e-9

// FrameOf returns floor(tick*FPS/TickTime).
func (t Timing) FrameOf(tick int) int {
	return int(math.Floor(float64(tick)*t.FPS/t.TickTime + frameEpsilon))
}

// Frames is the number of frames in the table.
func (t Timing) Frames() int { return t.FrameOf(t.TotalTicks) }

// FrameMillis is the wall-clock duration of one frame.
func (t Timing) FrameMillis() float64 { return 1000 / t.FPS }

// playStep is the bucket distance between synthesised sprite frames.
func (t Timing) playStep() int {
	return max(1, t.FrameOf(1))
}

// NormalizeDegrees maps deg into [0,360).
func NormalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg = 0
	}
	return deg
}
