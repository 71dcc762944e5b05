package terminal

import (
	"github.com/sarchlab/terminalsim/datarecording"
	"github.com/sarchlab/terminalsim/monitoring"
	"github.com/sarchlab/terminalsim/sim"
	"github.com/sarchlab/terminalsim/simulation"
	"github.com/sarchlab/terminalsim/tracing"
)

type poolUsageEntry struct {
	Time     float64
	Pool     string
	Event    string
	Process  string
	InUse    int
	Capacity int
	QueueLen int
}

type runSummaryEntry struct {
	SimulationID       string
	Seed               int64
	Duration           float64
	Gates              int
	Cranes             int
	Bays               int
	EndTime            float64
	BusyTime           float64
	TruckTurnaround    float64
	VesselTurnaround   float64
	ContainersLoaded   uint64
	ContainersUnloaded uint64
	TrucksArrived      uint64
	TrucksDeparted     uint64
	VesselsArrived     uint64
	VesselsDeparted    uint64
	Abandoned          int
}

// runRecorder connects a run to the services of a simulation.
type runRecorder struct {
	simulation *simulation.Simulation
	cfg        Config
	backend    datarecording.DataRecorder
	monitor    *monitoring.Monitor

	timeBar    *monitoring.ProgressBar
	reported   uint64
	vehicleBar *monitoring.ProgressBar
	vehicles   map[string]bool
}

func attachSimulation(
	s *simulation.Simulation,
	t *Terminal,
	cfg Config,
) *runRecorder {
	r := &runRecorder{
		simulation: s,
		cfg:        cfg,
		backend:    s.GetDataRecorder(),
		monitor:    s.GetMonitor(),
	}

	for _, p := range t.Pools() {
		s.RegisterPool(p)
	}

	if tracer := s.GetVisTracer(); tracer != nil {
		tracing.CollectTrace(t, tracer)
	}

	if r.backend != nil {
		r.backend.CreateTable("pool_usage", poolUsageEntry{})
		r.backend.CreateTable("run_summary", runSummaryEntry{})
		t.AcceptPoolHook(sim.HookFunc(r.recordPoolUsage))
	}

	if r.monitor != nil {
		r.monitor.RegisterCounters(t.Metrics)

		r.timeBar = r.monitor.CreateProgressBar(
			"simulated time", uint64(cfg.Duration))
		s.GetEngine().AcceptHook(sim.HookFunc(r.updateTime))

		// Unbounded arrivals have no total to count towards.
		if cfg.MaxTrucks > 0 && cfg.MaxVessels > 0 {
			r.vehicleBar = r.monitor.CreateProgressBar(
				"vehicles", uint64(cfg.MaxTrucks+cfg.MaxVessels))
			r.vehicles = make(map[string]bool)
			tracing.CollectTrace(t, r)
		}
	}

	return r
}

func (r *runRecorder) recordPoolUsage(ctx sim.HookCtx) {
	usage, ok := ctx.Item.(sim.ResourceUsage)
	if !ok {
		return
	}

	r.backend.InsertData("pool_usage", poolUsageEntry{
		Time:     float64(usage.Time),
		Pool:     usage.Pool,
		Event:    ctx.Pos.Name,
		Process:  usage.Process,
		InUse:    usage.InUse,
		Capacity: usage.Capacity,
		QueueLen: usage.QueueLen,
	})
}

func (r *runRecorder) updateTime(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosAfterEvent {
		return
	}

	now := uint64(ctx.Now)
	if now > r.reported {
		r.timeBar.IncrementFinished(now - r.reported)
		r.reported = now
	}
}

// StartTask counts a vehicle as in progress.
func (r *runRecorder) StartTask(task tracing.Task) {
	if task.Kind != KindTruck && task.Kind != KindVessel {
		return
	}

	r.vehicles[task.ID] = true
	r.vehicleBar.IncrementInProgress(1)
}

// StepTask does nothing.
func (r *runRecorder) StepTask(_ tracing.Task) {}

// EndTask counts a vehicle as finished.
func (r *runRecorder) EndTask(task tracing.Task) {
	if !r.vehicles[task.ID] {
		return
	}

	delete(r.vehicles, task.ID)
	r.vehicleBar.MoveInProgressToFinished(1)
}

func (r *runRecorder) recordSummary(result *Result) {
	if r.backend != nil {
		m := result.Metrics
		r.backend.InsertData("run_summary", runSummaryEntry{
			SimulationID:       r.simulation.ID(),
			Seed:               result.Seed,
			Duration:           r.cfg.Duration,
			Gates:              r.cfg.Gates,
			Cranes:             r.cfg.Cranes,
			Bays:               r.cfg.Bays,
			EndTime:            float64(result.EndTime),
			BusyTime:           float64(result.BusyTime),
			TruckTurnaround:    float64(result.TruckTurnaround),
			VesselTurnaround:   float64(result.VesselTurnaround),
			ContainersLoaded:   m.ContainersLoaded,
			ContainersUnloaded: m.ContainersUnloaded,
			TrucksArrived:      m.TrucksArrived,
			TrucksDeparted:     m.TrucksDeparted,
			VesselsArrived:     m.VesselsArrived,
			VesselsDeparted:    m.VesselsDeparted,
			Abandoned:          result.Abandoned,
		})
	}

	if r.monitor != nil {
		r.monitor.CompleteProgressBar(r.timeBar)
		if r.vehicleBar != nil {
			r.monitor.CompleteProgressBar(r.vehicleBar)
		}
	}
}
