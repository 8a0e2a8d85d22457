package diagnostics

import (
	"errors"

	"github.com/coreman2200/funtimes-marquee/internal/timeline"
)

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

type kindInfo struct {
	code    string
	summary string
	causes  []string
	fixes   []string
}

var kinds = []struct {
	err  error
	info kindInfo
}{
	{timeline.ErrUnresolvedTweenStart, kindInfo{
		"TIMELINE.UNRESOLVED_TWEEN_START", "Tween has no start value",
		[]string{"tween authored before the entity's initialize", "initialize placed later in the same tick"},
		[]string{"move the initialize earlier in the action list"},
	}},
	{timeline.ErrUnresolvedTweenEnd, kindInfo{
		"TIMELINE.UNRESOLVED_TWEEN_END", "Tween has no end",
		[]string{"end tick not after start tick"},
		[]string{"give the tween a positive duration"},
	}},
	{timeline.ErrOutOfRangeEndFrame, kindInfo{
		"TIMELINE.END_OUT_OF_RANGE", "Tween ends after the timeline",
		[]string{"end tick larger than the total tick count"},
		[]string{"shorten the tween or raise ticks"},
	}},
	{timeline.ErrUnknownEntity, kindInfo{
		"TIMELINE.UNKNOWN_ENTITY", "Action targets an entity that is never initialized",
		[]string{"typo in the entity id", "missing initialize action"},
		[]string{"add an initialize action for the id"},
	}},
	{timeline.ErrUnknownActionType, kindInfo{
		"TIMELINE.UNKNOWN_ACTION", "Unknown action or attribute",
		nil, []string{"check the action type name"},
	}},
	{timeline.ErrTickOutOfRange, kindInfo{
		"TIMELINE.TICK_OUT_OF_RANGE", "Action tick outside the timeline",
		nil, []string{"keep ticks within 0 and the total tick count"},
	}},
	{timeline.ErrInvalidTiming, kindInfo{
		"TIMELINE.INVALID_TIMING", "Timing yields no frames",
		[]string{"fps or tick time not positive", "too few ticks for one frame"},
		nil,
	}},
}

// FromCompileError maps a compile failure to a Diagnostic. Errors that are
// not compile errors map to a generic TIMELINE.LOAD code.
func FromCompileError(err error) Diagnostic {
	d := Diagnostic{Severity: Err, Code: "TIMELINE.LOAD", Summary: "Timeline failed to load", Detail: err.Error()}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			d.Code = k.info.code
			d.Summary = k.info.summary
			d.LikelyCauses = k.info.causes
			d.SuggestedFixes = k.info.fixes
			break
		}
	}
	var ce *timeline.CompileError
	if errors.As(err, &ce) {
		d.Detail = ce.Detail
		d.Evidence = map[string]any{}
		if ce.Index >= 0 {
			d.Evidence["index"] = ce.Index
			d.Evidence["action"] = ce.Action
		}
		if ce.Entity != "" {
			d.Evidence["entity"] = ce.Entity
		}
		if ce.Frame >= 0 {
			d.Evidence["frame"] = ce.Frame
		}
	}
	return d
}

// Compiled reports a successful compile.
func Compiled(st timeline.Stats) Diagnostic {
	return Diagnostic{
		Severity: Info,
		Code:     "TIMELINE.COMPILED",
		Summary:  "Timeline compiled",
		Evidence: map[string]any{
			"frames":   st.Frames,
			"ops":      st.Ops,
			"entities": st.Entities,
			"busiest":  st.Busiest,
		},
	}
}
