package playback

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/coreman2200/funtimes-marquee/internal/playback"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
