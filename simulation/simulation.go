// Package simulation wires an engine together with the services that watch
// it: the data recorder, the task tracer and the monitor.
package simulation

import (
	"github.com/sarchlab/terminalsim/datarecording"
	"github.com/sarchlab/terminalsim/monitoring"
	"github.com/sarchlab/terminalsim/sim"
	"github.com/sarchlab/terminalsim/tracing"
)

// A Simulation provides the service requires to define a simulation.
type Simulation struct {
	id         string
	outputPath string
	engine     *sim.SerialEngine

	dataRecorder datarecording.DataRecorder
	monitor      *monitoring.Monitor
	visTracer    *tracing.DBTracer

	pools         []*sim.ResourcePool
	poolNameIndex map[string]int
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// OutputPath returns the database file of the simulation, or an empty string
// when nothing is recorded.
func (s *Simulation) OutputPath() string {
	return s.outputPath
}

// GetEngine returns the engine used in the simulation.
func (s *Simulation) GetEngine() *sim.SerialEngine {
	return s.engine
}

// GetDataRecorder returns the data recorder used in the simulation.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor used in the simulation.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// GetVisTracer returns the tracer used in the simulation.
func (s *Simulation) GetVisTracer() *tracing.DBTracer {
	return s.visTracer
}

// RegisterPool registers a resource pool with the simulation. Pools are
// exposed through the monitor if there is one.
func (s *Simulation) RegisterPool(p *sim.ResourcePool) {
	name := p.Name()
	if _, found := s.poolNameIndex[name]; found {
		panic("pool " + name + " already registered")
	}

	s.pools = append(s.pools, p)
	s.poolNameIndex[name] = len(s.pools) - 1

	if s.monitor != nil {
		s.monitor.RegisterPool(p)
	}
}

// GetPoolByName returns the pool with the given name, or nil.
func (s *Simulation) GetPoolByName(name string) *sim.ResourcePool {
	i, found := s.poolNameIndex[name]
	if !found {
		return nil
	}

	return s.pools[i]
}

// Pools returns all the registered pools.
func (s *Simulation) Pools() []*sim.ResourcePool {
	pools := make([]*sim.ResourcePool, len(s.pools))
	copy(pools, s.pools)

	return pools
}

// Terminate terminates the simulation. Unfinished tasks are written to the
// database, the database is closed and the monitor stops serving.
func (s *Simulation) Terminate() {
	s.engine.Terminate()

	if s.visTracer != nil {
		s.visTracer.Terminate()
	}

	if s.dataRecorder != nil {
		err := s.dataRecorder.Close()
		if err != nil {
			panic(err)
		}
	}

	if s.monitor != nil {
		s.monitor.StopServer()
	}
}
