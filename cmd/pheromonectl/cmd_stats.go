package main

import (
	"encoding/json"
	"fmt"

	"github.com/l1jgo/pheromone/internal/pheromone"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// gridStats summarizes a snapshot. Agent statistics cover populated cells.
type gridStats struct {
	Capacity    int     `json:"capacity"`
	Populated   int     `json:"populated"`
	WithTarget  int     `json:"with_target"`
	AgentsTotal float64 `json:"agents_total"`
	AgentsMean  float64 `json:"agents_mean"`
	AgentsStd   float64 `json:"agents_std"`
	AgentsMax   float64 `json:"agents_max"`
	MeanAge     float64 `json:"mean_age"` // ticks, relative to the snapshot tick
}

func summarize(snap pheromone.Snapshot, tick int64) gridStats {
	s := gridStats{Capacity: snap.Slots, Populated: len(snap.Cells)}
	if len(snap.Cells) == 0 {
		return s
	}
	agents := make([]float64, len(snap.Cells))
	ages := make([]float64, len(snap.Cells))
	for i, c := range snap.Cells {
		agents[i] = float64(c.Cell.AgentCount)
		ages[i] = float64(c.Cell.Age(tick))
		if c.Cell.HasTarget {
			s.WithTarget++
		}
	}
	s.AgentsTotal = floats.Sum(agents)
	s.AgentsMax = floats.Max(agents)
	s.AgentsMean = stat.Mean(agents, nil)
	if len(agents) > 1 {
		s.AgentsStd = stat.StdDev(agents, nil)
	}
	s.MeanAge = stat.Mean(ages, nil)
	return s
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize a map's latest snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			mapID, _ := cmd.Flags().GetInt16("map")
			jsonOut, _ := cmd.Flags().GetBool("json")

			row, snap, err := loadLatest(cmd, mapID)
			if err != nil {
				return err
			}
			s := summarize(snap, row.Tick)
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(s)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "map %d @ tick %d (%dx%d)\n", row.MapID, row.Tick, snap.Width, snap.Height)
			fmt.Fprintf(out, "  populated:   %d / %d\n", s.Populated, s.Capacity)
			fmt.Fprintf(out, "  with target: %d\n", s.WithTarget)
			fmt.Fprintf(out, "  agents:      total %.0f, mean %.2f, std %.2f, max %.0f\n",
				s.AgentsTotal, s.AgentsMean, s.AgentsStd, s.AgentsMax)
			fmt.Fprintf(out, "  mean age:    %.1f ticks\n", s.MeanAge)
			return nil
		},
	}
	cmd.Flags().Int16("map", 0, "Map ID")
	return cmd
}
