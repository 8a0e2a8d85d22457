package ease

import (
	"math"
	"sort"
	"strings"

	"github.com/fogleman/ease"
)

// Func interpolates between start and end after elapsed of total frames.
// A non-positive total yields end.
type Func func(start, end float64, elapsed, total int) float64

// Curve maps progress in [0,1] to eased progress.
type Curve func(t float64) float64

// Func lifts a progress curve into a frame interpolator.
func (c Curve) Func() Func {
	return func(start, end float64, elapsed, total int) float64 {
		if total <= 0 {
			return end
		}
		u := float64(elapsed) / float64(total)
		return start + (end-start)*c(u)
	}
}

var (
	// Constant moves at a constant rate.
	Constant = Curve(ease.Linear).Func()
	// In is quadratic: slow start, accelerating.
	In = Curve(ease.InQuad).Func()
	// Out follows the square root of progress: fast start, settling.
	Out = Curve(math.Sqrt).Func()
)

var named = map[string]Func{
	"constant":     Constant,
	"linear":       Constant,
	"ease_in":      In,
	"ease_out":     Out,
	"ease_in_out":  Curve(ease.InOutQuad).Func(),
	"smooth":       Curve(smoothstep).Func(),
	"smoother":     Curve(smootherstep).Func(),
	"cubic_in":     Curve(ease.InCubic).Func(),
	"cubic_out":    Curve(ease.OutCubic).Func(),
	"cubic_in_out": Curve(ease.InOutCubic).Func(),
	"sine_in":      Curve(ease.InSine).Func(),
	"sine_out":     Curve(ease.OutSine).Func(),
	"sine_in_out":  Curve(ease.InOutSine).Func(),
	"bounce_out":   Curve(ease.OutBounce).Func(),
}

// classic smoothstep 3x^2 - 2x^3
func smoothstep(x float64) float64 {
	return x * x * (3 - 2*x)
}

// 6x^5 - 15x^4 + 10x^3
func smootherstep(x float64) float64 {
	return x * x * x * (x*(x*6-15) + 10)
}

// Lookup resolves an easing by name. Names are case-insensitive and accept
// '-' or ' ' in place of '_', so "EASE_IN", "ease-in" and "ease in" match.
// The empty name is Constant.
func Lookup(name string) (Func, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	if key == "" {
		return Constant, true
	}
	f, ok := named[key]
	return f, ok
}

// Names lists the registered easing names in sorted order.
func Names() []string {
	out := make([]string, 0, len(named))
	for k := range named {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
