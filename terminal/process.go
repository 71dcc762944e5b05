package terminal

import (
	"fmt"

	"github.com/sarchlab/terminalsim/sim"
	"github.com/sarchlab/terminalsim/tracing"
)

// Truck returns the body of a truck that drops off, or picks up, one
// container.
func (t *Terminal) Truck(name string) sim.ProcessFunc {
	return func(p *sim.Process) error {
		t.startTask(p, KindTruck, name)
		t.Metrics.onTruckArrived()
		t.step(p, "arriving at gate")

		err := t.Gates.Use(p, func() error {
			t.step(p, "entering terminal")

			if !t.cfg.TrucksUseBays {
				return t.handleTruckCargo(p)
			}

			return t.Bays.Use(p, func() error {
				return t.handleTruckCargo(p)
			})
		})
		if err != nil {
			return err
		}

		t.step(p, "leaving terminal")
		t.Metrics.onTruckDeparted()
		tracing.EndTask(p.ID(), t)

		return nil
	}
}

func (t *Terminal) handleTruckCargo(p *sim.Process) error {
	export := t.cargo() < t.cfg.ExportShare

	if err := p.Timeout(t.service.Sample()); err != nil {
		return err
	}

	if export {
		t.Metrics.OnContainerLoaded()
		t.step(p, "loaded container")

		return nil
	}

	t.Metrics.OnContainerUnloaded()
	t.step(p, "unloaded container")

	return nil
}

// Vessel returns the body of a vessel that unloads one container.
func (t *Terminal) Vessel(name string) sim.ProcessFunc {
	return func(p *sim.Process) error {
		t.startTask(p, KindVessel, name)
		t.Metrics.onVesselArrived()
		t.step(p, "arriving at terminal")

		err := t.Gates.Use(p, func() error {
			t.step(p, "berthing")

			return t.Cranes.Use(p, func() error {
				t.step(p, "starting unloading")

				if err := p.Timeout(t.service.Sample()); err != nil {
					return err
				}

				t.Metrics.OnContainerUnloaded()
				t.step(p, "unloaded container")

				return nil
			})
		})
		if err != nil {
			return err
		}

		t.step(p, "departing from terminal")
		t.Metrics.onVesselDeparted()
		tracing.EndTask(p.ID(), t)

		return nil
	}
}

// TruckGenerator spawns trucks with exponential interarrival times.
func (t *Terminal) TruckGenerator() sim.ProcessFunc {
	return t.generator("Truck", t.cfg.MaxTrucks, t.truckArrivals, t.Truck)
}

// VesselGenerator spawns vessels with exponential interarrival times.
func (t *Terminal) VesselGenerator() sim.ProcessFunc {
	return t.generator("Vessel", t.cfg.MaxVessels, t.vesselArrivals, t.Vessel)
}

func (t *Terminal) generator(
	prefix string,
	limit int,
	interarrival Distribution,
	body func(name string) sim.ProcessFunc,
) sim.ProcessFunc {
	return func(p *sim.Process) error {
		t.startTask(p, KindGenerator, prefix+"Generator")

		for n := 0; limit == 0 || n < limit; n++ {
			name := fmt.Sprintf("%s-%d", prefix, n)
			p.Spawn(name, body(name))

			if err := p.Timeout(interarrival.Sample()); err != nil {
				return err
			}
		}

		tracing.EndTask(p.ID(), t)

		return nil
	}
}

func (t *Terminal) startTask(p *sim.Process, kind, what string) {
	parentID := ""
	if p.Parent() != nil {
		parentID = p.Parent().ID()
	}

	tracing.StartTask(p.ID(), parentID, t, kind, what, nil)
}

func (t *Terminal) step(p *sim.Process, what string) {
	tracing.AddTaskStep(p.ID(), t, what)
}
