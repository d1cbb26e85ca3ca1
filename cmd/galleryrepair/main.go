// Package main provides the galleryrepair binary: operator-invoked
// consistency audits and one-time data corrections for the gallery backend.
// Every mutating command prints before/after summaries and exits non-zero
// on any store failure.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/camden-git/gallerybackend/config"
	"github.com/camden-git/gallerybackend/database"
	"github.com/camden-git/gallerybackend/logging"
	"github.com/camden-git/gallerybackend/repair"
	"github.com/camden-git/gallerybackend/repository"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runner *repair.Runner

func main() {
	rootCmd := &cobra.Command{
		Use:           "galleryrepair",
		Short:         "Audit and repair tenant-scoped gallery data",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil {
				log.Printf("Info: No .env file found or error loading: %v", err)
			}
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			logger, err := logging.New(cfg.Env, cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			db, err := database.InitGormDB(cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			if err := database.AutoMigrateModels(db); err != nil {
				return err
			}
			sqlDB, err := db.DB()
			if err != nil {
				return fmt.Errorf("failed to get underlying sql.DB: %w", err)
			}

			settingsRepo := repository.NewSettingsRepository(db, cfg.MainTenantID)
			artworkRepo := repository.NewArtworkRepository(db)
			runner = repair.NewRunner(settingsRepo, artworkRepo, sqlDB, logger.With(zap.String("component", "galleryrepair")))
			return nil
		},
	}

	rootCmd.AddCommand(newAuditCmd(), newRemapCmd(), newForceSetCmd(), newProbeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newAuditCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Count artworks by tenant and report ownership violations",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := runner.AuditByTenant()
			if err != nil {
				return err
			}

			fmt.Printf("audit run %s\n", report.RunID)
			fmt.Println("artworks by tenant:")
			for _, c := range report.Counts {
				fmt.Printf("  %-24s %d\n", c.TenantID, c.Count)
			}
			if report.SentinelRows > 0 {
				fmt.Printf("WARNING: %d rows still parked at the placeholder tenant\n", report.SentinelRows)
			}
			for _, issue := range report.Issues {
				fmt.Printf("INCONSISTENT: %v\n", issue)
			}
			if report.Consistent() {
				fmt.Println("no inconsistencies found")
			} else if strict {
				return fmt.Errorf("audit found %d issue(s) and %d sentinel rows", len(report.Issues), report.SentinelRows)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when inconsistencies are found")
	return cmd
}

func newRemapCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "remap <from-tenant> <to-tenant>",
		Short: "Re-home every artwork from one tenant id to another",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to := args[0], args[1]
			if !yes {
				return fmt.Errorf("remap %s -> %s is a one-time migration with no undo; re-run with --yes to confirm", from, to)
			}

			result, err := runner.Remap(from, to)
			if err != nil {
				return err
			}

			fmt.Printf("remap run %s\n", result.RunID)
			fmt.Printf("before: %s=%d rows, %s=%d rows\n", from, result.BeforeSource, to, result.BeforeTarget)
			fmt.Printf("changed: %d rows\n", result.RowsChanged)
			fmt.Printf("after:  %s=%d rows, %s=%d rows\n", from, result.AfterSource, to, result.AfterTarget)
			if !result.TargetHasSettings {
				fmt.Printf("WARNING: tenant %s has no settings record; create one or the rows stay orphaned\n", to)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the remap")
	return cmd
}

func newForceSetCmd() *cobra.Command {
	var tenantID string
	var sets []string
	cmd := &cobra.Command{
		Use:   "force-set",
		Short: "Directly overwrite settings columns for a tenant (bypasses validation)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if tenantID == "" {
				return fmt.Errorf("--tenant is required")
			}
			if len(sets) == 0 {
				return fmt.Errorf("at least one --set column=value is required")
			}

			fields := make(map[string]interface{}, len(sets))
			for _, kv := range sets {
				parts := strings.SplitN(kv, "=", 2)
				if len(parts) != 2 || parts[0] == "" {
					return fmt.Errorf("invalid --set %q, expected column=value", kv)
				}
				fields[parts[0]] = parts[1]
			}

			if err := runner.ForceSet(tenantID, fields); err != nil {
				return err
			}
			fmt.Printf("force-set applied to tenant %s (%d column(s)); before/after values are in the log\n", tenantID, len(fields))
			return nil
		},
	}
	cmd.Flags().StringVar(&tenantID, "tenant", "", "tenant id to correct")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "column=value to overwrite (repeatable)")
	return cmd
}

func newProbeCmd() *cobra.Command {
	var table string
	cmd := &cobra.Command{
		Use:   "probe [columns...]",
		Short: "Check that columns exist in the live schema",
		Long: "The settings table grew fields ad hoc over time; probe reports which of " +
			"the named columns are present in this database file before a force-set touches them.",
		RunE: func(cmd *cobra.Command, args []string) error {
			columns := args
			if len(columns) == 0 {
				columns = []string{"gallery_name", "gallery_name_en", "artist_name", "site_title", "site_description", "profile_image", "about_image", "password_hash"}
			}

			probes, err := runner.ProbeColumns(table, columns)
			if err != nil {
				return err
			}
			missing := 0
			for _, p := range probes {
				state := "present"
				if !p.Present {
					state = "MISSING"
					missing++
				}
				fmt.Printf("  %s.%-20s %s\n", p.Table, p.Column, state)
			}
			if missing > 0 {
				return fmt.Errorf("%d column(s) missing from %s", missing, table)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&table, "table", "settings", "table to probe")
	return cmd
}
