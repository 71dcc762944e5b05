package terminal

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sarchlab/terminalsim/sim"
)

// A Distribution draws random durations.
type Distribution interface {
	Sample() sim.VTimeInSec
}

type exponential struct {
	d distuv.Exponential
}

// NewExponential creates an exponential distribution with rate 1/mean.
func NewExponential(mean float64, src rand.Source) Distribution {
	return exponential{d: distuv.Exponential{Rate: 1 / mean, Src: src}}
}

func (e exponential) Sample() sim.VTimeInSec {
	return sim.VTimeInSec(e.d.Rand())
}

type uniform struct {
	d distuv.Uniform
}

// NewUniform creates a uniform distribution over [lo, hi]. A degenerate range
// always returns lo.
func NewUniform(lo, hi float64, src rand.Source) Distribution {
	return uniform{d: distuv.Uniform{Min: lo, Max: hi, Src: src}}
}

func (u uniform) Sample() sim.VTimeInSec {
	if u.d.Min == u.d.Max {
		return sim.VTimeInSec(u.d.Min)
	}

	return sim.VTimeInSec(u.d.Rand())
}
