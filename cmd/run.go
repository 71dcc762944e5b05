package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sarchlab/terminalsim/simulation"
	"github.com/sarchlab/terminalsim/terminal"
)

type runFlags struct {
	configPath  string
	quiet       bool
	record      string
	monitor     bool
	monitorPort int
	openBrowser bool
}

func newRunCommand() *cobra.Command {
	cfg := terminal.DefaultConfig()
	flags := runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the terminal simulation once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resolved, err := resolveConfig(cmd.Flags(), flags.configPath, cfg)
			if err != nil {
				return err
			}

			return runOnce(cmd.Context(), cmd.OutOrStdout(), resolved, flags)
		},
	}

	addConfigFlags(cmd.Flags(), &cfg)
	cmd.Flags().StringVar(&flags.configPath, "config", "",
		"YAML file with the terminal configuration")
	cmd.Flags().BoolVar(&flags.quiet, "quiet", false,
		"Only print the final counters")
	cmd.Flags().StringVar(&flags.record, "record", "",
		"Record traces into <name>.sqlite3")
	cmd.Flags().BoolVar(&flags.monitor, "monitor", false,
		"Serve the monitoring API while running")
	cmd.Flags().IntVar(&flags.monitorPort, "monitor-port", 0,
		"Port of the monitoring API, random if not set")
	cmd.Flags().BoolVar(&flags.openBrowser, "open-browser", false,
		"Open the monitoring API in a browser")

	return cmd
}

func addConfigFlags(fs *pflag.FlagSet, cfg *terminal.Config) {
	fs.Float64Var(&cfg.Duration, "duration", cfg.Duration,
		"Simulated time")
	fs.IntVar(&cfg.Gates, "gates", cfg.Gates, "Number of gates")
	fs.IntVar(&cfg.Cranes, "cranes", cfg.Cranes, "Number of cranes")
	fs.IntVar(&cfg.Bays, "bays", cfg.Bays, "Number of truck bays")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed,
		"Random seed, defaults to $"+SeedEnv)
	fs.Float64Var(&cfg.TruckMeanInterarrival, "truck-interarrival",
		cfg.TruckMeanInterarrival, "Mean time between truck arrivals")
	fs.Float64Var(&cfg.VesselMeanInterarrival, "vessel-interarrival",
		cfg.VesselMeanInterarrival, "Mean time between vessel arrivals")
	fs.Float64Var(&cfg.MinService, "min-service", cfg.MinService,
		"Shortest service time")
	fs.Float64Var(&cfg.MaxService, "max-service", cfg.MaxService,
		"Longest service time")
	fs.Float64Var(&cfg.ExportShare, "export-share", cfg.ExportShare,
		"Fraction of trucks that pick up a container")
	fs.BoolVar(&cfg.TrucksUseBays, "use-bays", cfg.TrucksUseBays,
		"Make trucks hold a bay while served")
	fs.IntVar(&cfg.MaxTrucks, "max-trucks", cfg.MaxTrucks,
		"Stop generating trucks after this many, 0 for no limit")
	fs.IntVar(&cfg.MaxVessels, "max-vessels", cfg.MaxVessels,
		"Stop generating vessels after this many, 0 for no limit")
}

// resolveConfig layers the configuration: defaults, then the seed from the
// environment, then the config file, then the flags given on the command
// line.
func resolveConfig(
	fs *pflag.FlagSet,
	configPath string,
	fromFlags terminal.Config,
) (terminal.Config, error) {
	cfg := terminal.DefaultConfig()

	if env := os.Getenv(SeedEnv); env != "" {
		seed, err := strconv.ParseInt(env, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("parsing %s: %w", SeedEnv, err)
		}
		cfg.Seed = seed
	}

	if configPath != "" {
		seed := cfg.Seed

		loaded, err := terminal.LoadConfig(configPath)
		if err != nil {
			return cfg, err
		}

		if loaded.Seed == 0 {
			loaded.Seed = seed
		}
		cfg = loaded
	}

	overrides := map[string]func(){
		"duration":            func() { cfg.Duration = fromFlags.Duration },
		"gates":               func() { cfg.Gates = fromFlags.Gates },
		"cranes":              func() { cfg.Cranes = fromFlags.Cranes },
		"bays":                func() { cfg.Bays = fromFlags.Bays },
		"seed":                func() { cfg.Seed = fromFlags.Seed },
		"truck-interarrival":  func() { cfg.TruckMeanInterarrival = fromFlags.TruckMeanInterarrival },
		"vessel-interarrival": func() { cfg.VesselMeanInterarrival = fromFlags.VesselMeanInterarrival },
		"min-service":         func() { cfg.MinService = fromFlags.MinService },
		"max-service":         func() { cfg.MaxService = fromFlags.MaxService },
		"export-share":        func() { cfg.ExportShare = fromFlags.ExportShare },
		"use-bays":            func() { cfg.TrucksUseBays = fromFlags.TrucksUseBays },
		"max-trucks":          func() { cfg.MaxTrucks = fromFlags.MaxTrucks },
		"max-vessels":         func() { cfg.MaxVessels = fromFlags.MaxVessels },
	}

	for name, apply := range overrides {
		if fs.Changed(name) {
			apply()
		}
	}

	return cfg, cfg.Validate()
}

func runOnce(
	ctx context.Context,
	out io.Writer,
	cfg terminal.Config,
	flags runFlags,
) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var opts []terminal.Option

	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		opts = append(opts, terminal.WithLogger(logrus.StandardLogger()))
	}

	if flags.record != "" || flags.monitor {
		s := buildSimulation(flags)
		defer s.Terminate()

		if flags.openBrowser && s.GetMonitor() != nil {
			if err := s.GetMonitor().OpenBrowser(); err != nil {
				logrus.Warnf("Failed to open browser: %v", err)
			}
		}

		opts = append(opts, terminal.WithSimulation(s))
	}

	result, err := terminal.Run(ctx, cfg, opts...)
	if err != nil {
		return err
	}

	if !flags.quiet {
		for _, e := range result.Log {
			fmt.Fprintln(out, e.String())
		}
	}

	fmt.Fprintln(out, "Simulation finished.")
	printCounters(out, result)

	return nil
}

func buildSimulation(flags runFlags) *simulation.Simulation {
	b := simulation.MakeBuilder()

	if flags.record == "" {
		b = b.WithoutRecording()
	} else {
		b = b.WithOutputFileName(flags.record)
	}

	if !flags.monitor {
		b = b.WithoutMonitoring()
	} else if flags.monitorPort != 0 {
		b = b.WithMonitorPort(flags.monitorPort)
	}

	return b.Build()
}

func printCounters(out io.Writer, result *terminal.Result) {
	m := result.Metrics
	fmt.Fprintf(out, "containers_loaded: %d\n", m.ContainersLoaded)
	fmt.Fprintf(out, "containers_unloaded: %d\n", m.ContainersUnloaded)
	fmt.Fprintf(out, "trucks: %d arrived, %d departed\n",
		m.TrucksArrived, m.TrucksDeparted)
	fmt.Fprintf(out, "vessels: %d arrived, %d departed\n",
		m.VesselsArrived, m.VesselsDeparted)
}
