package terminal

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/terminalsim/sim"
	"github.com/sarchlab/terminalsim/simulation"
	"github.com/sarchlab/terminalsim/tracing"
)

// Result is what a run leaves behind.
type Result struct {
	Seed    int64                   `json:"seed"`
	EndTime sim.VTimeInSec          `json:"end_time"`
	Metrics MetricsSnapshot         `json:"metrics"`
	Pools   []sim.ResourcePoolStats `json:"pools"`
	Log     []tracing.LogEntry      `json:"log,omitempty"`

	// BusyTime is how long at least one vehicle was in the terminal.
	BusyTime sim.VTimeInSec `json:"busy_time"`

	// TruckTurnaround and VesselTurnaround are the average times from
	// arrival to departure of the vehicles that left before the end.
	TruckTurnaround  sim.VTimeInSec `json:"truck_turnaround"`
	VesselTurnaround sim.VTimeInSec `json:"vessel_turnaround"`

	// Steps counts how many times each step of a truck or vessel was
	// reached.
	Steps map[string]uint64 `json:"steps"`

	// Abandoned is the number of processes still suspended when the run
	// ended.
	Abandoned int `json:"abandoned"`
}

type options struct {
	rng        *PartitionedRNG
	logger     logrus.FieldLogger
	simulation *simulation.Simulation
	skipLog    bool
}

// An Option customizes Run.
type Option func(*options)

// WithRNG makes the run draw from the given streams instead of streams
// derived from the configured seed.
func WithRNG(rng *PartitionedRNG) Option {
	return func(o *options) {
		o.rng = rng
	}
}

// WithLogger writes the steps of every truck and vessel to the logger as they
// happen. Pool usage is logged at debug level and events at trace level.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithSimulation runs on the engine of the simulation and reports to its
// tracer, data recorder and monitor.
func WithSimulation(s *simulation.Simulation) Option {
	return func(o *options) {
		o.simulation = s
	}
}

// WithoutLog skips collecting the chronological log in the result.
func WithoutLog() Option {
	return func(o *options) {
		o.skipLog = true
	}
}

// Driver returns the top-level process of a run. It starts the generators,
// waits for the duration and halts the engine. Processes still in flight at
// that point are left where they are.
func (t *Terminal) Driver(duration sim.VTimeInSec) sim.ProcessFunc {
	return func(p *sim.Process) error {
		p.Spawn("TruckGenerator", t.TruckGenerator())
		p.Spawn("VesselGenerator", t.VesselGenerator())

		if err := p.Timeout(duration); err != nil {
			return err
		}

		p.Engine().Halt()

		return nil
	}
}

// Run simulates the terminal for cfg.Duration units of virtual time.
//
// Cancelling ctx halts the engine before its next event; Run then returns
// the partial result together with ctx.Err().
func Run(ctx context.Context, cfg Config, opts ...Option) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	if o.rng == nil {
		o.rng = NewPartitionedRNG(cfg.Seed)
	}

	engine := sim.NewSerialEngine()
	if o.simulation != nil {
		engine = o.simulation.GetEngine()
	}

	t, err := NewTerminal(engine, cfg, o.rng)
	if err != nil {
		return nil, err
	}

	var eventLog *tracing.EventLog
	if !o.skipLog {
		eventLog = tracing.NewEventLog(engine)
		tracing.CollectTrace(t, eventLog)
	}

	busy := tracing.NewBusyTimeTracer(engine,
		tracing.KindFilter(KindTruck, KindVessel))
	tracing.CollectTrace(t, busy)

	truckTime := tracing.NewAverageTimeTracer(engine,
		tracing.KindFilter(KindTruck))
	tracing.CollectTrace(t, truckTime)

	vesselTime := tracing.NewAverageTimeTracer(engine,
		tracing.KindFilter(KindVessel))
	tracing.CollectTrace(t, vesselTime)

	steps := tracing.NewStepCountTracer(
		tracing.KindFilter(KindTruck, KindVessel))
	tracing.CollectTrace(t, steps)

	if o.logger != nil {
		attachLogger(engine, t, o.logger)
	}

	var recorder *runRecorder
	if o.simulation != nil {
		recorder = attachSimulation(o.simulation, t, cfg)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stop := context.AfterFunc(ctx, engine.Halt)

	// RunUntil clears earlier halts, so a cancellation that lands before the
	// run starts is caught after the first event.
	engine.AcceptHook(sim.HookFunc(func(hookCtx sim.HookCtx) {
		if hookCtx.Pos == sim.HookPosAfterEvent && ctx.Err() != nil {
			engine.Halt()
		}
	}))

	engine.Spawn("Driver", t.Driver(sim.VTimeInSec(cfg.Duration)))
	err = engine.RunUntil(sim.VTimeInSec(cfg.Duration))

	stop()
	engine.Finished()

	result := &Result{
		Seed:      o.rng.Seed(),
		EndTime:   engine.CurrentTime(),
		Abandoned: engine.LiveProcesses(),
	}

	engine.Terminate()

	busy.TerminateAllTasks()
	result.BusyTime = busy.BusyTime()
	result.TruckTurnaround = truckTime.AverageTime()
	result.VesselTurnaround = vesselTime.AverageTime()
	result.Steps = make(map[string]uint64)
	for _, name := range steps.GetStepNames() {
		result.Steps[name] = steps.GetStepCount(name)
	}
	result.Metrics = t.Metrics.Snapshot()
	for _, p := range t.Pools() {
		result.Pools = append(result.Pools, p.Stats())
	}

	if eventLog != nil {
		result.Log = eventLog.Entries()
	}

	if recorder != nil {
		recorder.recordSummary(result)
	}

	if err == nil {
		err = ctx.Err()
	}

	return result, err
}

func attachLogger(
	engine *sim.SerialEngine,
	t *Terminal,
	logger logrus.FieldLogger,
) {
	tracing.CollectTrace(t, tracing.NewLogTracer(
		engine, logger, tracing.KindFilter(KindTruck, KindVessel)))
	t.AcceptPoolHook(sim.NewResourceLogger(logger))
	engine.AcceptHook(sim.NewEventLogger(logger))
}
