package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/l1jgo/pheromone/internal/pheromone"
	"github.com/spf13/cobra"
)

type dumpCell struct {
	X int32 `json:"x"`
	Z int32 `json:"z"`
	pheromone.Pheromone
}

func snapshotCells(snap pheromone.Snapshot) []dumpCell {
	out := make([]dumpCell, 0, len(snap.Cells))
	for _, c := range snap.Cells {
		x, z := snap.Coord(c)
		out = append(out, dumpCell{X: x, Z: z, Pheromone: c.Cell})
	}
	return out
}

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print every populated cell of a map's latest snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			mapID, _ := cmd.Flags().GetInt16("map")
			jsonOut, _ := cmd.Flags().GetBool("json")

			row, snap, err := loadLatest(cmd, mapID)
			if err != nil {
				return err
			}
			cells := snapshotCells(snap)

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"snapshot": row.ID.String(),
					"map_id":   row.MapID,
					"tick":     row.Tick,
					"width":    snap.Width,
					"height":   snap.Height,
					"cells":    cells,
				})
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "X\tZ\tAGENTS\tTIMESTAMP\tAGE\tTARGET\n")
			for _, c := range cells {
				target := "-"
				if c.HasTarget {
					target = fmt.Sprintf("%d,%d", c.Target.X, c.Target.Z)
				}
				fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t%s\n", c.X, c.Z, c.AgentCount, c.Timestamp, c.Age(row.Tick), target)
			}
			return w.Flush()
		},
	}
	cmd.Flags().Int16("map", 0, "Map ID")
	return cmd
}
