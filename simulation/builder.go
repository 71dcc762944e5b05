package simulation

import (
	"github.com/rs/xid"

	"github.com/sarchlab/terminalsim/datarecording"
	"github.com/sarchlab/terminalsim/monitoring"
	"github.com/sarchlab/terminalsim/sim"
	"github.com/sarchlab/terminalsim/tracing"
)

// Builder can be used to build a simulation.
type Builder struct {
	recordingOn    bool
	monitorOn      bool
	monitorPort    int
	outputFileName string
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		recordingOn: true,
		monitorOn:   true,
	}
}

// WithoutMonitoring sets the simulation to not use monitoring.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithoutRecording sets the simulation to not create a database. The
// simulation has no data recorder and no tracer.
func (b Builder) WithoutRecording() Builder {
	b.recordingOn = false
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}

	if !b.recordingOn && b.outputFileName != "" {
		panic("output file cannot be set when recording is disabled")
	}
}

// Build builds the simulation.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		poolNameIndex: make(map[string]int),
	}

	s.id = xid.New().String()
	s.engine = sim.NewSerialEngine()

	if b.recordingOn {
		outputPath := b.outputFileName
		if outputPath == "" {
			outputPath = "terminalsim_" + s.id
		}
		s.outputPath = outputPath + ".sqlite3"

		s.dataRecorder = datarecording.NewDataRecorder(outputPath)
		s.visTracer = tracing.NewDBTracer(s.engine, s.dataRecorder)
	}

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}
		s.monitor.RegisterEngine(s.engine)
		s.monitor.StartServer()
	}

	return s
}
