package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/folio-site/folio/internal/config"
	"github.com/folio-site/folio/internal/offline"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the offline cache stores",
	Long:  `Lists, primes or deletes the stores kept by the sqlite or bolt offline backend.`,
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every store and its keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withController(cmd, func(ctx context.Context, ctrl *offline.Controller) error {
			stores, err := ctrl.Status(ctx)
			if err != nil {
				return err
			}
			if len(stores) == 0 {
				fmt.Println("No stores.")
				return nil
			}
			for _, st := range stores {
				marker := ""
				if st.Name == ctrl.StaticStore() || st.Name == ctrl.DynamicStore() {
					marker = " (current)"
				}
				fmt.Printf("%s%s: %d entries\n", st.Name, marker, len(st.Keys))
				if verbose {
					for _, k := range st.Keys {
						fmt.Printf("  %s\n", k)
					}
				}
			}
			return nil
		})
	},
}

var cacheResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withController(cmd, func(ctx context.Context, ctrl *offline.Controller) error {
			removed, err := ctrl.Reset(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Removed %d stores.\n", len(removed))
			return nil
		})
	},
}

var cachePrimeCmd = &cobra.Command{
	Use:   "prime",
	Short: "Prime the static store and remove stores of other versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withController(cmd, func(ctx context.Context, ctrl *offline.Controller) error {
			report, err := ctrl.Install(ctx)
			if err != nil {
				return err
			}
			if report.Skipped {
				fmt.Println("Upstream unreachable, nothing primed.")
			} else {
				fmt.Printf("Critical: %d cached, %d failed\n", len(report.Critical.Cached), len(report.Critical.Failed))
				fmt.Printf("Optional: %d cached, %d failed\n", len(report.Optional.Cached), len(report.Optional.Failed))
				for _, a := range report.Critical.Failed {
					fmt.Printf("  failed: %s\n", a)
				}
			}
			removed, err := ctrl.Activate(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Removed %d old stores.\n", len(removed))
			return nil
		})
	},
}

func init() {
	cachePrimeCmd.Flags().String("upstream", "", "upstream base URL (overrides offline.upstream)")
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheResetCmd)
	cacheCmd.AddCommand(cachePrimeCmd)
	rootCmd.AddCommand(cacheCmd)
}

// withController opens the configured storage and runs fn with a
// controller over it.
func withController(cmd *cobra.Command, fn func(context.Context, *offline.Controller) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Offline.Backend == config.BackendMemory {
		return fmt.Errorf("offline.backend is %q; cache commands need sqlite or bolt", cfg.Offline.Backend)
	}
	if f := cmd.Flags().Lookup("upstream"); f != nil && f.Value.String() != "" {
		cfg.Offline.Upstream = f.Value.String()
	}

	ctx, stop := signalContext()
	defer stop()

	storage, closer, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	fetcher, err := newFetcher(ctx, cfg, cfg.Offline.Upstream, nil)
	if err != nil {
		return err
	}
	ctrl, err := newController(cfg, storage, fetcher)
	if err != nil {
		return err
	}
	defer ctrl.Wait()
	return fn(ctx, ctrl)
}
