package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/l1jgo/pheromone/internal/config"
	"github.com/l1jgo/pheromone/internal/persist"
	"github.com/l1jgo/pheromone/internal/pheromone"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pheromonectl",
		Short: "Inspect saved pheromone grids",
		Long: `pheromonectl reads the grid snapshots written by pheromoned.

It uses the same config file as the daemon to find the snapshot store.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", defaultConfigPath(), "Path to server.toml")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")

	rootCmd.AddCommand(
		newVersionCmd(),
		newDumpCmd(),
		newStatsCmd(),
		newHistoryCmd(),
	)
	return rootCmd
}

func defaultConfigPath() string {
	if p := os.Getenv("PHEROMONE_CONFIG"); p != "" {
		return p
	}
	return "config/server.toml"
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pheromonectl version %s\n", version)
		},
	}
}

// openStore loads the config named by --config and opens its store.
func openStore(cmd *cobra.Command) (persist.SnapshotStore, func(), error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	return persist.Open(ctx, cfg.Database, zap.NewNop())
}

// loadLatest fetches and decodes the newest snapshot of a map.
func loadLatest(cmd *cobra.Command, mapID int16) (*persist.SnapshotRow, pheromone.Snapshot, error) {
	store, closeStore, err := openStore(cmd)
	if err != nil {
		return nil, pheromone.Snapshot{}, err
	}
	defer closeStore()

	row, err := store.LatestSnapshot(cmd.Context(), mapID)
	if err != nil {
		return nil, pheromone.Snapshot{}, err
	}
	snap, err := pheromone.DecodeSnapshot(row.Blob)
	if err != nil {
		return nil, pheromone.Snapshot{}, fmt.Errorf("snapshot %s: %w", row.ID, err)
	}
	return row, snap, nil
}
