package timeline

import (
	"fmt"

	"github.com/coreman2200/funtimes-marquee/internal/ease"
)

type attrKey struct {
	id   string
	attr Attr
}

// attrState is the value of one attribute as the sweep reaches a cue: either
// fixed, or interpolating under an in-flight tween.
type attrState struct {
	value float64
	// bucket of the last explicit value or tween start
	setAt int

	tween      *Tween
	start      float64
	startFrame int
	endFrame   int
}

func (s attrState) at(frame int) float64 {
	if s.tween == nil {
		return s.value
	}
	return easeOf(s.tween)(s.start, s.tween.Target, frame-s.startFrame, s.endFrame-s.startFrame)
}

func easeOf(tw *Tween) ease.Func {
	if tw.Ease == nil {
		return ease.Constant
	}
	return tw.Ease
}

type resolver struct {
	t       Timing
	buckets [][]Cue
	out     [][]Op
	attrs   map[attrKey]attrState
	frames  map[string]frameMark
}

// frameMark is an entity's most recent explicit sprite-frame index and the
// bucket it was set in.
type frameMark struct {
	index int
	setAt int
}

// Resolve is pass 2. It sweeps the buckets in order and turns cues into
// primitive ops: instantaneous actions are copied through, tweens become one
// SetAttrOp per covered frame plus their end value, and playing sprites get
// synthesised SetFrameOps.
func Resolve(buckets [][]Cue, t Timing) ([][]Op, error) {
	r := &resolver{
		t:       t,
		buckets: buckets,
		out:     make([][]Op, len(buckets)),
		attrs:   make(map[attrKey]attrState),
		frames:  make(map[string]frameMark),
	}
	for i, bucket := range buckets {
		for pos, c := range bucket {
			if err := r.cue(i, pos, c); err != nil {
				return nil, err
			}
		}
	}
	return r.out, nil
}

func (r *resolver) emit(frame int, op Op) {
	r.out[frame] = append(r.out[frame], op)
}

func (r *resolver) setAttr(frame int, id string, attr Attr, v float64) {
	if attr == Rotation {
		v = NormalizeDegrees(v)
	}
	r.emit(frame, SetAttrOp{ID: id, Attr: attr, Value: v})
}

func (r *resolver) fix(frame int, id string, attr Attr, v float64) {
	r.attrs[attrKey{id, attr}] = attrState{value: v, setAt: frame}
}

func (r *resolver) markFrame(frame int, id string, index int) {
	r.frames[id] = frameMark{index: index, setAt: frame}
}

func (r *resolver) cue(i, pos int, c Cue) error {
	switch c.Kind {
	case TweenStart:
		return r.tweenStart(i, pos, c)
	case TweenEnd:
		tw := c.Tween
		k := attrKey{tw.ID, tw.Attr}
		if s, ok := r.attrs[k]; !ok || s.tween == nil || s.tween == tw {
			r.fix(i, tw.ID, tw.Attr, tw.Target)
		}
		r.setAttr(i, tw.ID, tw.Attr, tw.Target)
		return nil
	}

	switch v := c.Action.(type) {
	case Initialize:
		for _, attr := range Attrs {
			r.fix(i, v.ID, attr, v.value(attr))
		}
		r.markFrame(i, v.ID, v.Frame)
		r.emit(i, InitializeOp{
			ID: v.ID, Sprite: v.Sprite, Opacity: v.Opacity,
			X: v.PosX, Y: v.PosY, W: v.SizeX, H: v.SizeY,
			Rotation: NormalizeDegrees(v.Rotation), Z: v.ZIndex,
			Frame: v.Frame, Playing: v.Play, Text: v.Text, Mirror: v.Mirror,
		})
		if v.Play {
			r.play(i, pos, v.ID)
		}
	case Remove:
		r.emit(i, RemoveOp{ID: v.ID})
	case Set:
		r.fix(i, v.ID, v.Attr, v.Value)
		r.setAttr(i, v.ID, v.Attr, v.Value)
	case SetSprite:
		r.markFrame(i, v.ID, v.Frame)
		r.emit(i, SetSpriteOp{ID: v.ID, Sprite: v.Sprite, Frame: v.Frame, Playing: v.Play, Text: v.Text, Mirror: v.Mirror})
		if v.Play {
			r.play(i, pos, v.ID)
		}
	case SetFrame:
		r.markFrame(i, v.ID, v.Frame)
		r.emit(i, SetFrameOp{ID: v.ID, Frame: v.Frame})
	case PlayAnimation:
		r.play(i, pos, v.ID)
	case PauseAnimation:
	case PlaySound:
		r.emit(i, PlaySoundOp{Sound: v.Sound, Volume: v.Volume})
	default:
		return &CompileError{Kind: ErrUnknownActionType, Index: c.Index, Action: ActionName(c.Action), Frame: i, Detail: fmt.Sprintf("%T", c.Action)}
	}
	return nil
}

func (r *resolver) tweenStart(i, pos int, c Cue) error {
	tw := c.Tween
	k := attrKey{tw.ID, tw.Attr}
	start, ok := r.startValue(i, pos, tw)
	if !ok {
		return &CompileError{
			Kind: ErrUnresolvedTweenStart, Index: c.Index, Entity: tw.ID, Action: ActionName(c.Action), Frame: i,
			Detail: fmt.Sprintf("no %s value at or before frame %d", tw.Attr, i),
		}
	}

	end, found := r.findEnd(i, pos, tw)
	if !found {
		return &CompileError{
			Kind: ErrUnresolvedTweenEnd, Index: c.Index, Entity: tw.ID, Action: ActionName(c.Action), Frame: i,
			Detail: fmt.Sprintf("no end cue for %s tween", tw.Attr),
		}
	}
	// An end cue clamped into the last bucket still spans its nominal frame.
	if end == len(r.buckets)-1 {
		end = max(end, r.t.FrameOf(tw.EndTick))
	}

	r.attrs[k] = attrState{tween: tw, start: start, startFrame: i, endFrame: end, setAt: i}
	fn := easeOf(tw)
	for j := i; j < min(end, len(r.buckets)); j++ {
		r.setAttr(j, tw.ID, tw.Attr, fn(start, tw.Target, j-i, end-i))
	}
	return nil
}

// startValue is the attribute's value where the tween starts. A value set
// earlier in the start bucket wins; otherwise one authored later in the same
// bucket; otherwise the value carried over from previous buckets.
func (r *resolver) startValue(i, pos int, tw *Tween) (float64, bool) {
	s, ok := r.attrs[attrKey{tw.ID, tw.Attr}]
	if ok && s.setAt == i {
		return s.at(i), true
	}
	if v, found := r.valueAhead(i, pos, tw.ID, tw.Attr); found {
		return v, true
	}
	if !ok {
		return 0, false
	}
	return s.at(i), true
}

// valueAhead finds the first explicit value for id/attr after pos in bucket i.
func (r *resolver) valueAhead(i, pos int, id string, attr Attr) (float64, bool) {
	for _, c := range r.buckets[i][pos+1:] {
		switch c.Kind {
		case TweenEnd:
			if c.Tween.ID == id && c.Tween.Attr == attr {
				return c.Tween.Target, true
			}
		case Instant:
			switch v := c.Action.(type) {
			case Initialize:
				if v.ID == id {
					return v.value(attr), true
				}
			case Set:
				if v.ID == id && v.Attr == attr {
					return v.Value, true
				}
			}
		}
	}
	return 0, false
}

// frameAhead finds the first explicit sprite-frame index for id after pos in
// bucket i.
func (r *resolver) frameAhead(i, pos int, id string) (int, bool) {
	for _, c := range r.buckets[i][pos+1:] {
		if c.Kind != Instant {
			continue
		}
		switch v := c.Action.(type) {
		case Initialize:
			if v.ID == id {
				return v.Frame, true
			}
		case SetSprite:
			if v.ID == id {
				return v.Frame, true
			}
		case SetFrame:
			if v.ID == id {
				return v.Frame, true
			}
		}
	}
	return 0, false
}

// findEnd scans forward from the start cue for the end cue of the same tween.
func (r *resolver) findEnd(i, pos int, tw *Tween) (int, bool) {
	for j := i; j < len(r.buckets); j++ {
		from := 0
		if j == i {
			from = pos + 1
		}
		for _, c := range r.buckets[j][from:] {
			if c.Kind == TweenEnd && c.Tween == tw {
				return j, true
			}
		}
	}
	return 0, false
}

// play emits a SetFrameOp every step buckets after i until the entity's next
// stop cue. Within bucket i only cues after pos can stop it. Counting starts
// from the frame index resolved the same way as a tween's start value.
func (r *resolver) play(i, pos int, id string) {
	m, ok := r.frames[id]
	start := m.index
	if !ok || m.setAt != i {
		if f, found := r.frameAhead(i, pos, id); found {
			start = f
		}
	}
	step := r.t.playStep()
	stop := r.findStop(i, pos, id)
	c := 1
	for j := i + step; j < stop; j += step {
		r.emit(j, SetFrameOp{ID: id, Frame: start + c})
		c++
	}
}

func (r *resolver) findStop(i, pos int, id string) int {
	for j := i; j < len(r.buckets); j++ {
		from := 0
		if j == i {
			from = pos + 1
		}
		for _, c := range r.buckets[j][from:] {
			if c.Kind == Instant && stopsPlay(c.Action, id) {
				return j
			}
		}
	}
	return len(r.buckets)
}

func stopsPlay(a Action, id string) bool {
	switch v := a.(type) {
	case PauseAnimation:
		return v.ID == id
	case PlayAnimation:
		return v.ID == id
	case Initialize:
		return v.ID == id
	case SetSprite:
		return v.ID == id
	}
	return false
}
