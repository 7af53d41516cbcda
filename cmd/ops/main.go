// ops is the maintenance CLI: inspect snapshots, export energy usage and
// seed fresh players without going through the HTTP API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"innerlevel/internal/card"
	"innerlevel/internal/config"
	"innerlevel/internal/persist"
	"innerlevel/internal/player"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ops",
		Short: "Maintenance tooling for innerlevel snapshots",
	}

	root.PersistentFlags().String("data_dir", "./data", "snapshot data directory")
	root.PersistentFlags().String("storage", "sqlite", "snapshot backend: sqlite or file")
	root.PersistentFlags().String("user", "default", "user id")
	_ = viper.BindPFlag("data_dir", root.PersistentFlags().Lookup("data_dir"))
	_ = viper.BindPFlag("storage", root.PersistentFlags().Lookup("storage"))
	_ = viper.BindPFlag("user", root.PersistentFlags().Lookup("user"))
	viper.SetEnvPrefix("INNERLEVEL")
	viper.AutomaticEnv()

	root.AddCommand(snapshotCmd(), usageCmd(), seedCmd())
	return root
}

func openStore() (persist.Store, error) {
	dataDir := viper.GetString("data_dir")
	if viper.GetString("storage") == "file" {
		return persist.NewFileStore(dataDir)
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	return persist.OpenSQLite(filepath.Join(dataDir, "snapshots.db"))
}

func snapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Snapshot inspection",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print a user's snapshot as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			state, ok, err := store.Load(context.Background(), viper.GetString("user"))
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no snapshot for user %q", viper.GetString("user"))
			}
			b, err := json.MarshalIndent(state, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	})
	return cmd
}

// usageRow is the CSV shape for one energy usage entry.
type usageRow struct {
	Date     string  `csv:"date"`
	Time     string  `csv:"time"`
	Amount   float64 `csv:"amount"`
	Activity string  `csv:"activity"`
}

func usageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Energy usage reports",
	}
	export := &cobra.Command{
		Use:   "export",
		Short: "Export the daily energy usage log as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			state, ok, err := store.Load(context.Background(), viper.GetString("user"))
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no snapshot for user %q", viper.GetString("user"))
			}

			rows := []usageRow{}
			for _, day := range state.Energy.DailyUsage {
				for _, e := range day.Entries {
					rows = append(rows, usageRow{
						Date:     day.Date,
						Time:     e.Time.Format(time.RFC3339),
						Amount:   e.Amount,
						Activity: e.Activity,
					})
				}
			}

			out := cmd.OutOrStdout()
			if path, _ := cmd.Flags().GetString("out"); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			return gocsv.Marshal(rows, out)
		},
	}
	export.Flags().String("out", "", "output file (default stdout)")
	cmd.AddCommand(export)
	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Write a fresh starter snapshot for the user",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			userID := viper.GetString("user")
			if _, ok, err := store.Load(context.Background(), userID); err == nil && ok {
				return fmt.Errorf("user %q already has a snapshot; refusing to overwrite", userID)
			}

			balance := config.Default()
			state := player.New(userID, "", balance.MaxEnergy, balance.RegenPerHour, time.Now())
			state.Inventory = append(state.Inventory, card.StarterSet()...)
			if err := store.Save(context.Background(), userID, state); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %s with %d starter cards\n", userID, len(state.Inventory))
			return nil
		},
	}
}
