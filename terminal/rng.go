package terminal

import (
	"hash/fnv"
	"math/rand/v2"
)

// Names of the random streams used by the scenario.
const (
	StreamTruckArrivals  = "truck_arrivals"
	StreamVesselArrivals = "vessel_arrivals"
	StreamService        = "service"
	StreamCargo          = "cargo"
)

// PartitionedRNG provides deterministic, isolated random streams, one per
// named subsystem. Drawing from one stream never shifts another, so adding a
// draw to, say, the cargo decision leaves arrival times untouched.
//
// The seed of a stream is the master seed XOR fnv1a64(name).
//
// Not safe for concurrent use. Each run owns its own PartitionedRNG.
type PartitionedRNG struct {
	seed    int64
	sources map[string]*rand.PCG
	streams map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a master seed.
func NewPartitionedRNG(seed int64) *PartitionedRNG {
	return &PartitionedRNG{
		seed:    seed,
		sources: make(map[string]*rand.PCG),
		streams: make(map[string]*rand.Rand),
	}
}

// Seed returns the master seed.
func (p *PartitionedRNG) Seed() int64 {
	return p.seed
}

// Source returns the source behind the named stream. The same name always
// returns the same source.
func (p *PartitionedRNG) Source(name string) rand.Source {
	if src, ok := p.sources[name]; ok {
		return src
	}

	derived := uint64(p.seed) ^ fnv1a64(name)
	src := rand.NewPCG(derived, fnv1a64(name))
	p.sources[name] = src

	return src
}

// ForSubsystem returns the generator of the named stream.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if r, ok := p.streams[name]; ok {
		return r
	}

	r := rand.New(p.Source(name))
	p.streams[name] = r

	return r
}

func fnv1a64(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))

	return h.Sum64()
}
