package timeline

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnresolvedTweenStart = errors.New("tween start value unresolved")
	ErrUnresolvedTweenEnd   = errors.New("tween end unresolved")
	ErrOutOfRangeEndFrame   = errors.New("tween end beyond timeline")
	ErrUnknownEntity        = errors.New("entity never initialized")
	ErrUnknownActionType    = errors.New("unknown action type")
	ErrTickOutOfRange       = errors.New("tick out of range")
	ErrInvalidTiming        = errors.New("invalid timing")
)

// CompileError describes why compilation stopped. Kind is one of the Err*
// sentinels; Index, Entity and Frame are -1/"" when not applicable.
type CompileError struct {
	Kind   error
	Index  int
	Entity string
	Action string
	Frame  int
	Detail string
}

func (e *CompileError) Error() string {
	var b strings.Builder
	b.WriteString("timeline: ")
	b.WriteString(e.Kind.Error())
	if e.Index >= 0 {
		fmt.Fprintf(&b, " (action %d", e.Index)
		if e.Action != "" {
			b.WriteString(" " + e.Action)
		}
		if e.Entity != "" {
			b.WriteString(" entity " + e.Entity)
		}
		if e.Frame >= 0 {
			fmt.Fprintf(&b, " frame %d", e.Frame)
		}
		b.WriteString(")")
	}
	if e.Detail != "" {
		b.WriteString(": " + e.Detail)
	}
	return b.String()
}

func (e *CompileError) Unwrap() error { return e.Kind }

func actionError(kind error, index int, a Action, frame int, detail string) *CompileError {
	id, _ := entityOf(a)
	return &CompileError{
		Kind:   kind,
		Index:  index,
		Entity: id,
		Action: ActionName(a),
		Frame:  frame,
		Detail: detail,
	}
}
