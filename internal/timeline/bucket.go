package timeline

import "fmt"

// Bucket is pass 1. It validates the authored list and places each action in
// the bucket of the frame it starts on, splitting tweens into a start and an
// end cue. Authored order is kept within a bucket. Cues that land on or past
// the last frame are clamped into it. The returned ids are the entities in
// order of their first Initialize.
func Bucket(actions []Action, t Timing) ([][]Cue, []string, error) {
	if err := t.Validate(); err != nil {
		return nil, nil, err
	}
	n := t.Frames()

	var ids []string
	known := make(map[string]bool)
	for _, a := range actions {
		if in, ok := a.(Initialize); ok && !known[in.ID] {
			known[in.ID] = true
			ids = append(ids, in.ID)
		}
	}

	place := func(tick int) int { return min(t.FrameOf(tick), n-1) }

	buckets := make([][]Cue, n)
	for i, a := range actions {
		if err := validate(a, i, t, known); err != nil {
			return nil, nil, err
		}
		switch v := a.(type) {
		case Tween:
			tw := v
			buckets[place(tw.StartTick)] = append(buckets[place(tw.StartTick)], Cue{Kind: TweenStart, Index: i, Action: a, Tween: &tw})
			buckets[place(tw.EndTick)] = append(buckets[place(tw.EndTick)], Cue{Kind: TweenEnd, Index: i, Action: a, Tween: &tw})
		default:
			f := place(tickOf(a))
			buckets[f] = append(buckets[f], Cue{Kind: Instant, Index: i, Action: a})
		}
	}
	return buckets, ids, nil
}

func validate(a Action, i int, t Timing, known map[string]bool) error {
	switch v := a.(type) {
	case Initialize, Remove, SetSprite, SetFrame, PlayAnimation, PauseAnimation, PlaySound:
	case Set:
		if !v.Attr.Valid() {
			return actionError(ErrUnknownActionType, i, a, -1, fmt.Sprintf("attribute %q", v.Attr))
		}
	case Tween:
		if !v.Attr.Valid() {
			return actionError(ErrUnknownActionType, i, a, -1, fmt.Sprintf("attribute %q", v.Attr))
		}
	default:
		return &CompileError{Kind: ErrUnknownActionType, Index: i, Action: ActionName(a), Frame: -1, Detail: fmt.Sprintf("%T", a)}
	}

	if id, ok := entityOf(a); ok && !known[id] {
		return actionError(ErrUnknownEntity, i, a, -1, fmt.Sprintf("no initialize for %q", id))
	}

	tick := tickOf(a)
	if tick < 0 || tick > t.TotalTicks {
		return actionError(ErrTickOutOfRange, i, a, -1, fmt.Sprintf("tick %d not in [0,%d]", tick, t.TotalTicks))
	}
	if tw, ok := a.(Tween); ok {
		if tw.EndTick > t.TotalTicks {
			return actionError(ErrOutOfRangeEndFrame, i, a, t.FrameOf(tw.EndTick),
				fmt.Sprintf("end tick %d past %d", tw.EndTick, t.TotalTicks))
		}
		if tw.EndTick <= tw.StartTick {
			return actionError(ErrUnresolvedTweenEnd, i, a, t.FrameOf(tw.StartTick),
				fmt.Sprintf("end tick %d not after start tick %d", tw.EndTick, tw.StartTick))
		}
	}
	return nil
}

// Validate checks that the timing yields at least one frame.
func (t Timing) Validate() error {
	bad := func(detail string) error {
		return &CompileError{Kind: ErrInvalidTiming, Index: -1, Frame: -1, Detail: detail}
	}
	switch {
	case t.FPS <= 0:
		return bad(fmt.Sprintf("fps %g", t.FPS))
	case t.TickTime <= 0:
		return bad(fmt.Sprintf("tick time %g", t.TickTime))
	case t.TotalTicks <= 0 || t.Frames() < 1:
		return bad(fmt.Sprintf("%d ticks yield no frames", t.TotalTicks))
	}
	return nil
}
