package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sarchlab/terminalsim/terminal"
)

func newSweepCommand() *cobra.Command {
	cfg := terminal.DefaultConfig()
	var (
		configPath string
		seedList   string
		workers    int
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run the simulation once per seed, in parallel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			seeds, err := parseSeeds(seedList)
			if err != nil {
				return err
			}

			resolved, err := resolveConfig(cmd.Flags(), configPath, cfg)
			if err != nil {
				return err
			}

			results, err := terminal.Sweep(cmd.Context(), resolved, seeds,
				workers, terminal.WithoutLog())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, r := range results {
				m := r.Metrics
				fmt.Fprintf(out,
					"seed=%d containers_loaded=%d containers_unloaded=%d "+
						"trucks=%d/%d vessels=%d/%d\n",
					r.Seed, m.ContainersLoaded, m.ContainersUnloaded,
					m.TrucksDeparted, m.TrucksArrived,
					m.VesselsDeparted, m.VesselsArrived)
			}

			return nil
		},
	}

	addConfigFlags(cmd.Flags(), &cfg)
	cmd.Flags().StringVar(&configPath, "config", "",
		"YAML file with the terminal configuration")
	cmd.Flags().StringVar(&seedList, "seeds", "1-10",
		"Seeds to run, as a range (1-20), a list (1,4,9) or both")
	cmd.Flags().IntVar(&workers, "workers", 4,
		"Number of simulations running at the same time")

	return cmd
}

// maxSeeds bounds the number of runs of a single sweep.
const maxSeeds = 100000

// parseSeeds reads "1-3,7" as [1 2 3 7].
func parseSeeds(s string) ([]int64, error) {
	var seeds []int64

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi, isRange := strings.Cut(part, "-")
		if !isRange {
			seed, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid seed %q: %w", part, err)
			}

			seeds = append(seeds, seed)

			continue
		}

		first, err := strconv.ParseInt(strings.TrimSpace(lo), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid seed range %q: %w", part, err)
		}

		last, err := strconv.ParseInt(strings.TrimSpace(hi), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid seed range %q: %w", part, err)
		}

		if last < first {
			return nil, fmt.Errorf("invalid seed range %q: end before start", part)
		}

		if last-first >= int64(maxSeeds-len(seeds)) {
			return nil, fmt.Errorf("too many seeds, at most %d", maxSeeds)
		}

		for n := int64(0); n <= last-first; n++ {
			seeds = append(seeds, first+n)
		}
	}

	if len(seeds) > maxSeeds {
		return nil, fmt.Errorf("too many seeds, at most %d", maxSeeds)
	}

	if len(seeds) == 0 {
		return nil, fmt.Errorf("no seeds given")
	}

	return seeds, nil
}
