package sim

import (
	"math"
	"time"

	"github.com/robotalks/adclink/pkg/frame"
)

// Angle is a phase in radians, normalized to (-π, π].
type Angle float64

// AngleFromDegrees creates Angle from degrees.
func AngleFromDegrees(d float64) Angle {
	return Angle(normalizeRadians(d * math.Pi / 180.0))
}

// Sin wraps math.Sin.
func (a Angle) Sin() float64 {
	return math.Sin(float64(a))
}

func normalizeRadians(r float64) float64 {
	if r >= 2*math.Pi || r <= -2*math.Pi {
		r = math.Remainder(r, 2*math.Pi)
	}
	if r > math.Pi {
		r -= 2 * math.Pi
	} else if r <= -math.Pi {
		r += 2 * math.Pi
	}
	return r
}

// Wave produces the reading of a channel at elapsed time t.
type Wave func(ch int, t time.Duration) uint16

// SineWave turns each pot slowly: channel n has a period of period*(n+1)
// and a phase offset of 90° per channel.
func SineWave(period time.Duration) Wave {
	return func(ch int, t time.Duration) uint16 {
		p := period * time.Duration(ch+1)
		phase := AngleFromDegrees(360*float64(t%p)/float64(p) + 90*float64(ch))
		v := (phase.Sin() + 1) / 2 * frame.MaxValue
		return uint16(math.Round(v))
	}
}

// ConstWave always reads the same values.
func ConstWave(values [frame.Channels]uint16) Wave {
	return func(ch int, _ time.Duration) uint16 {
		return values[ch]
	}
}
