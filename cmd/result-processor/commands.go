package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vitebski/mca-result-processor/internal/api"
	"github.com/vitebski/mca-result-processor/internal/config"
	"github.com/vitebski/mca-result-processor/internal/connector"
	"github.com/vitebski/mca-result-processor/internal/generator"
	"github.com/vitebski/mca-result-processor/internal/loader"
	"github.com/vitebski/mca-result-processor/internal/processor"
	"github.com/vitebski/mca-result-processor/internal/report"
	"github.com/vitebski/mca-result-processor/internal/store"
	"github.com/vitebski/mca-result-processor/internal/utils"
	"github.com/vitebski/mca-result-processor/pkg/models"
)

var errInvalidConnection = errors.New("invalid database connection parameters")

func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(cmd.Flags(), a.configFile)
}

// loadCohort reads the marks sheet named by the config and processes it
func (a *app) loadCohort(cfg *config.Config) ([]models.RawStudent, []models.StudentRecord, error) {
	if cfg.Input == "" {
		return nil, nil, errors.New("an input file is required (--input or RESULTS_INPUT)")
	}

	raw, err := loader.NewMarksLoader(cfg.Sheet, a.logger).LoadFile(cfg.Input)
	if err != nil {
		return nil, nil, err
	}
	return raw, processor.NewResultProcessor(a.logger).Process(raw), nil
}

func (a *app) connect(ctx context.Context, cfg *config.Config) (*connector.DatabaseConnector, error) {
	m := cfg.MySQL
	if !utils.ValidateConnectionParams(m.Host, m.User, m.Password, m.Database, m.Port, a.logger) {
		return nil, errInvalidConnection
	}

	db := connector.NewDatabaseConnector(m.Host, m.User, m.Password, m.Database, m.Port, a.logger)
	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func (a *app) printCohort(records []models.StudentRecord, top int) {
	report.PrintClassSummary(os.Stdout, processor.Summary(records))
	report.PrintClassAnalytics(os.Stdout, processor.ClassAnalytics(records))
	report.PrintOverallLeaderboard(os.Stdout, processor.OverallLeaderboard(records), top)
}

func (a *app) export(records []models.StudentRecord, path string) error {
	if path == "" {
		return nil
	}
	if err := report.ExportFile(path, report.EnrichedTable(records)); err != nil {
		return err
	}
	a.logger.Infof("Exported %d results to %s", len(records), path)
	return nil
}

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("input", "i", "", "Marks sheet to read (.csv or .xlsx)")
	cmd.Flags().StringP("sheet", "s", "", "Worksheet name for .xlsx input (default: first sheet)")
}

func addConnectionFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("host", "H", "", "MySQL host (default: localhost)")
	cmd.Flags().StringP("user", "u", "", "MySQL user (default: root)")
	cmd.Flags().StringP("password", "p", "", "MySQL password")
	cmd.Flags().StringP("database", "d", "", "MySQL database name")
	cmd.Flags().StringP("port", "P", "", "MySQL port (default: 3306)")
}

func (a *app) processCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Process a marks sheet and print the class report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			_, records, err := a.loadCohort(cfg)
			if err != nil {
				return err
			}

			a.printCohort(records, cfg.Top)
			return a.export(records, cfg.Out)
		},
	}
	addInputFlags(cmd)
	cmd.Flags().StringP("out", "o", "", "Write the enriched table to this file (.csv or .xlsx)")
	cmd.Flags().IntP("top", "t", 0, "Limit the leaderboard to the top N students (0 for all)")
	return cmd
}

func (a *app) studentCmd() *cobra.Command {
	var name, rollNo string

	cmd := &cobra.Command{
		Use:   "student",
		Short: "Show one student's result and subject-wise breakdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (name == "") == (rollNo == "") {
				return errors.New("exactly one of --name or --roll is required")
			}

			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			_, records, err := a.loadCohort(cfg)
			if err != nil {
				return err
			}

			var (
				record models.StudentRecord
				found  bool
			)
			if name != "" {
				record, found = processor.FindByName(records, name)
			} else {
				record, found = processor.FindByRollNo(records, rollNo)
			}
			if !found {
				return fmt.Errorf("student not found: %s%s", name, rollNo)
			}

			report.PrintStudentSummary(os.Stdout, record)
			return nil
		},
	}
	addInputFlags(cmd)
	cmd.Flags().StringVarP(&name, "name", "n", "", "Student name (exact match)")
	cmd.Flags().StringVarP(&rollNo, "roll", "r", "", "Roll number")
	return cmd
}

func (a *app) leaderboardCmd() *cobra.Command {
	var subject string

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the overall or a subject leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			_, records, err := a.loadCohort(cfg)
			if err != nil {
				return err
			}

			if subject == "" {
				report.PrintOverallLeaderboard(os.Stdout, processor.OverallLeaderboard(records), cfg.Top)
				return nil
			}

			code, err := strconv.Atoi(subject)
			if err != nil {
				return fmt.Errorf("%w: %s", processor.ErrUnknownSubject, subject)
			}
			entries, err := processor.SubjectLeaderboard(records, models.SubjectCode(code))
			if err != nil {
				return err
			}
			report.PrintSubjectLeaderboard(os.Stdout, models.SubjectCode(code), entries, cfg.Top)
			return nil
		},
	}
	addInputFlags(cmd)
	cmd.Flags().StringVar(&subject, "subject", "", "Subject code (default: overall leaderboard)")
	cmd.Flags().IntP("top", "t", 0, "Limit to the top N students (0 for all)")
	return cmd
}

func (a *app) analyticsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Print the class summary and per-subject fail counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			_, records, err := a.loadCohort(cfg)
			if err != nil {
				return err
			}

			report.PrintClassSummary(os.Stdout, processor.Summary(records))
			report.PrintClassAnalytics(os.Stdout, processor.ClassAnalytics(records))
			return nil
		},
	}
	addInputFlags(cmd)
	return cmd
}

func (a *app) subjectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subjects",
		Short: "Print the curriculum and grade bands",
		Run: func(cmd *cobra.Command, args []string) {
			report.PrintCurriculum(os.Stdout)
		},
	}
}

func (a *app) generateCmd() *cobra.Command {
	var (
		students   int
		seed       int64
		absentRate float64
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic marks sheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Out == "" {
				return errors.New("an output file is required (--out)")
			}
			if students <= 0 {
				return errors.New("--students must be positive")
			}

			gen := generator.NewCohortGenerator(seed, a.logger)
			gen.AbsentRate = absentRate
			raw := gen.Generate(students)

			if err := report.ExportFile(cfg.Out, report.MarksTable(raw)); err != nil {
				return err
			}
			a.logger.Infof("Wrote %d generated students to %s", len(raw), cfg.Out)
			return nil
		},
	}
	cmd.Flags().IntVarP(&students, "students", "n", 60, "Number of students to generate")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 for a random cohort)")
	cmd.Flags().Float64Var(&absentRate, "absent-rate", 0.02, "Chance per subject that a student is absent")
	cmd.Flags().StringP("out", "o", "", "Output file (.csv or .xlsx)")
	return cmd
}

func (a *app) storeCmd() *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Process a marks sheet and store the results in MySQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			raw, records, err := a.loadCohort(cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			db, err := a.connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Disconnect()

			rs := store.NewResultStore(db, a.logger)
			if err := rs.SaveCohort(ctx, raw, records); err != nil {
				return err
			}

			if verify {
				ok, mismatched, err := rs.VerifySnapshot(ctx, len(records))
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("stored snapshot does not match: %v", mismatched)
				}
			}
			return nil
		},
	}
	addInputFlags(cmd)
	addConnectionFlags(cmd)
	cmd.Flags().BoolVarP(&verify, "verify", "v", false, "Verify row counts after storing")
	return cmd
}

func (a *app) loadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Recompute results from the marks stored in MySQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			db, err := a.connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Disconnect()

			raw, err := store.NewResultStore(db, a.logger).LoadRaw(ctx)
			if err != nil {
				return err
			}
			records := processor.NewResultProcessor(a.logger).Process(raw)

			a.printCohort(records, cfg.Top)
			return a.export(records, cfg.Out)
		},
	}
	addConnectionFlags(cmd)
	cmd.Flags().StringP("out", "o", "", "Write the enriched table to this file (.csv or .xlsx)")
	cmd.Flags().IntP("top", "t", 0, "Limit the leaderboard to the top N students (0 for all)")
	return cmd
}

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a processed marks sheet over a read-only JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			_, records, err := a.loadCohort(cfg)
			if err != nil {
				return err
			}

			router := api.NewRouter(api.NewResultsHandler(records, a.logger), a.logger)
			server := api.NewServer(cfg.Addr, router, a.logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}
	addInputFlags(cmd)
	cmd.Flags().String("addr", ":8080", "Listen address")
	return cmd
}
