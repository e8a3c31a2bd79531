package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved snapshots of a map, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			mapID, _ := cmd.Flags().GetInt16("map")
			limit, _ := cmd.Flags().GetInt("limit")
			jsonOut, _ := cmd.Flags().GetBool("json")

			store, closeStore, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			rows, err := store.ListSnapshots(cmd.Context(), mapID, limit)
			if err != nil {
				return err
			}
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(rows)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "SNAPSHOT\tTICK\tSIZE\tPOPULATED\tREASON\tTAKEN\n")
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%d\t%dx%d\t%d\t%s\t%s\n", r.ID, r.Tick, r.Width, r.Height,
					r.Populated, r.Reason, time.Unix(0, r.TakenUnixNanos).Format(time.RFC3339))
			}
			return w.Flush()
		},
	}
	cmd.Flags().Int16("map", 0, "Map ID")
	cmd.Flags().Int("limit", 20, "Maximum rows")
	return cmd
}
