// Package terminal models a container terminal where trucks and vessels
// compete for gates, cranes and truck bays.
package terminal

import (
	"github.com/sarchlab/terminalsim/sim"
)

// Task kinds reported to tracers.
const (
	KindTruck     = "truck"
	KindVessel    = "vessel"
	KindGenerator = "generator"
)

// A Terminal owns the resource pools of the scenario and its counters. It is
// the domain that truck and vessel tasks are traced in.
type Terminal struct {
	sim.HookableBase

	name string
	cfg  Config

	Gates   *sim.ResourcePool
	Cranes  *sim.ResourcePool
	Bays    *sim.ResourcePool
	Metrics *Metrics

	truckArrivals  Distribution
	vesselArrivals Distribution
	service        Distribution
	cargo          func() float64
}

// NewTerminal builds the pools of a terminal on the given engine.
func NewTerminal(
	engine *sim.SerialEngine,
	cfg Config,
	rng *PartitionedRNG,
) (*Terminal, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t := &Terminal{
		name:    "terminal",
		cfg:     cfg,
		Metrics: &Metrics{},
		truckArrivals: NewExponential(cfg.TruckMeanInterarrival,
			rng.Source(StreamTruckArrivals)),
		vesselArrivals: NewExponential(cfg.VesselMeanInterarrival,
			rng.Source(StreamVesselArrivals)),
		service: NewUniform(cfg.MinService, cfg.MaxService,
			rng.Source(StreamService)),
		cargo: rng.ForSubsystem(StreamCargo).Float64,
	}

	var err error

	t.Gates, err = sim.NewResourcePool(engine, "gates", cfg.Gates)
	if err != nil {
		return nil, err
	}

	t.Cranes, err = sim.NewResourcePool(engine, "cranes", cfg.Cranes)
	if err != nil {
		return nil, err
	}

	t.Bays, err = sim.NewResourcePool(engine, "bays", cfg.Bays)
	if err != nil {
		return nil, err
	}

	return t, nil
}

// Name returns the name of the terminal.
func (t *Terminal) Name() string {
	return t.name
}

// Pools returns the pools of the terminal in a fixed order.
func (t *Terminal) Pools() []*sim.ResourcePool {
	return []*sim.ResourcePool{t.Gates, t.Cranes, t.Bays}
}

// AcceptPoolHook registers a hook on every pool of the terminal.
func (t *Terminal) AcceptPoolHook(hook sim.Hook) {
	for _, p := range t.Pools() {
		p.AcceptHook(hook)
	}
}
