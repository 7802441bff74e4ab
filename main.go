package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"gotriage/internal/clinicapi"
	"gotriage/internal/config"
	"gotriage/internal/database"
	"gotriage/internal/report"
	"gotriage/internal/service"
)

const version = "1.0.0"

func main() {
	rootCmd := &cobra.Command{
		Use:           "gotriage",
		Short:         "Patient risk triage batch job",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("config", "config.yaml", "Path to config file")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Fetch, classify and submit one assessment",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			printBanner()

			cfg, logger, err := loadConfig(ctx, cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			reportStore, err := report.NewStore(cfg.Report.Dir)
			if err != nil {
				return fmt.Errorf("failed to initialize report store: %w", err)
			}
			defer reportStore.Close()

			client := clinicapi.NewClient(cfg.API)
			batch := service.NewBatchHandler(client, cfg.Fetch, reportStore, logger)

			run, err := batch.Run(ctx)
			fmt.Printf("\nResult: %d fetched, %d skipped | high risk %d, fever %d, data quality %d\n",
				run.RecordsFetched, run.RecordsSkipped,
				len(run.Payload.HighRiskPatients), len(run.Payload.FeverPatients), len(run.Payload.DataQualityIssues))
			if run.FetchError != "" {
				fmt.Println("⚠️  Fetch was cut short; results cover the pages fetched before the error")
			}
			if err != nil {
				return err
			}
			fmt.Println("✅ Assessment submitted")
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check config, upstream API and database reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			cfg, _, err := loadConfig(ctx, cmd)
			if err != nil {
				return err
			}

			if cfg.Database.Enabled() {
				db, err := database.NewMySQL(ctx, cfg.Database)
				if err != nil {
					fmt.Println("Database: Not connected")
				} else {
					fmt.Println("Database: Connected")
					db.Close()
				}
			} else {
				fmt.Println("Database: Not configured")
			}

			if err := cfg.Validate(); err != nil {
				fmt.Printf("Config: %v\n", err)
				return err
			}
			fmt.Println("Config: OK")

			fmt.Printf("\n📡 Checking API at %s/patients...\n", cfg.API.BaseURL)
			elapsed, err := clinicapi.NewClient(cfg.API).Ping(ctx)
			if err != nil {
				fmt.Printf("API: Unreachable (%v)\n", err)
				return err
			}
			fmt.Printf("API: OK (%s)\n", elapsed.Round(time.Millisecond))
			return nil
		},
	}
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show saved run reports for a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			date, _ := cmd.Flags().GetString("date")
			if date == "" {
				date = time.Now().Format("2006-01-02")
			}
			if _, err := time.Parse("2006-01-02", date); err != nil {
				return fmt.Errorf("invalid --date %q, use YYYY-MM-DD", date)
			}

			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			store, err := report.NewStore(cfg.Report.Dir)
			if err != nil {
				return fmt.Errorf("failed to open report store: %w", err)
			}
			defer store.Close()

			runs, err := store.GetRunsByDate(date)
			if err != nil {
				return err
			}
			summary, err := store.GetSummaryByDate(date)
			if err != nil {
				return err
			}

			fmt.Printf("Runs on %s: %d (submitted %d, failed %d, partial fetch %d)\n\n",
				date, summary.Runs, summary.Submitted, summary.Failed, summary.PartialFetch)
			fmt.Printf("%-36s %-8s %-8s %-6s %-6s %-6s %s\n", "RUN ID", "STARTED", "RECORDS", "HIGH", "FEVER", "DQ", "STATUS")
			for _, r := range runs {
				status := "submitted"
				if !r.Submitted {
					status = "failed"
				}
				if r.FetchError != "" {
					status += " (partial)"
				}
				fmt.Printf("%-36s %-8s %-8d %-6d %-6d %-6d %s\n",
					r.RunID, r.StartedAt.Format("15:04:05"), r.RecordsFetched,
					len(r.Payload.HighRiskPatients), len(r.Payload.FeverPatients), len(r.Payload.DataQualityIssues),
					status)
			}
			return nil
		},
	}
	cmd.Flags().String("date", "", "Date to report on (YYYY-MM-DD), defaults to today")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("gotriage v%s\n", version)
		},
	}
}

// loadConfig reads config, builds the logger and fills credentials from the
// settings table when a database is configured.
func loadConfig(ctx context.Context, cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cfg)

	if cfg.Database.Enabled() {
		db, err := database.NewMySQL(ctx, cfg.Database)
		if err != nil {
			logger.Warn().Err(err).Msg("settings database unavailable, using file and environment credentials")
			return cfg, logger, nil
		}
		defer db.Close()

		creds, err := db.GetAPICredentials(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to load API credentials from settings")
			return cfg, logger, nil
		}
		cfg.MergeCredentials(creds)
		logger.Info().Msg("✓ API credentials loaded from settings")
	}

	return cfg, logger, nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger.Level(level)
}

func printBanner() {
	fmt.Print(`
╔══════════════════════════════════════════════════════════════╗
║              gotriage - Patient Risk Assessment              ║
║                       Version ` + version + `                          ║
╚══════════════════════════════════════════════════════════════╝
` + "\n")
}
