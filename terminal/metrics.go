package terminal

import "sync/atomic"

// Metrics counts what happens in the terminal.
//
// Counters are only incremented from process bodies, which never run at the
// same time, but they are read by the monitor while the run goes on. Atomics
// keep those reads clean.
type Metrics struct {
	containersLoaded   atomic.Uint64
	containersUnloaded atomic.Uint64
	trucksArrived      atomic.Uint64
	trucksDeparted     atomic.Uint64
	vesselsArrived     atomic.Uint64
	vesselsDeparted    atomic.Uint64
}

// MetricsSnapshot is a copy of the counters at one point in time.
type MetricsSnapshot struct {
	ContainersLoaded   uint64 `json:"containers_loaded" yaml:"containers_loaded"`
	ContainersUnloaded uint64 `json:"containers_unloaded" yaml:"containers_unloaded"`
	TrucksArrived      uint64 `json:"trucks_arrived" yaml:"trucks_arrived"`
	TrucksDeparted     uint64 `json:"trucks_departed" yaml:"trucks_departed"`
	VesselsArrived     uint64 `json:"vessels_arrived" yaml:"vessels_arrived"`
	VesselsDeparted    uint64 `json:"vessels_departed" yaml:"vessels_departed"`
}

// OnContainerLoaded records a container put on a truck.
func (m *Metrics) OnContainerLoaded() {
	m.containersLoaded.Add(1)
}

// OnContainerUnloaded records a container taken off a truck or a vessel.
func (m *Metrics) OnContainerUnloaded() {
	m.containersUnloaded.Add(1)
}

func (m *Metrics) onTruckArrived()   { m.trucksArrived.Add(1) }
func (m *Metrics) onTruckDeparted()  { m.trucksDeparted.Add(1) }
func (m *Metrics) onVesselArrived()  { m.vesselsArrived.Add(1) }
func (m *Metrics) onVesselDeparted() { m.vesselsDeparted.Add(1) }

// Snapshot returns the current value of all counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		ContainersLoaded:   m.containersLoaded.Load(),
		ContainersUnloaded: m.containersUnloaded.Load(),
		TrucksArrived:      m.trucksArrived.Load(),
		TrucksDeparted:     m.trucksDeparted.Load(),
		VesselsArrived:     m.vesselsArrived.Load(),
		VesselsDeparted:    m.vesselsDeparted.Load(),
	}
}

// Counters returns the counters keyed by name.
func (m *Metrics) Counters() map[string]uint64 {
	s := m.Snapshot()

	return map[string]uint64{
		"containers_loaded":   s.ContainersLoaded,
		"containers_unloaded": s.ContainersUnloaded,
		"trucks_arrived":      s.TrucksArrived,
		"trucks_departed":     s.TrucksDeparted,
		"vessels_arrived":     s.VesselsArrived,
		"vessels_departed":    s.VesselsDeparted,
	}
}
