package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/collegeapp/registrar/internal/config"
	"github.com/collegeapp/registrar/internal/database"
	"github.com/collegeapp/registrar/internal/logging"
	"github.com/collegeapp/registrar/internal/relations"
	"github.com/collegeapp/registrar/internal/rows"
	"github.com/collegeapp/registrar/internal/view"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const defaultDBPath = "./registrar.db"

// CLI flags
var (
	dbPath    string
	verbosity int
)

// app bundles the opened store and the layers built on it.
type app struct {
	db        *database.DB
	prims     *rows.Primitives
	relations *relations.Manager
	viewer    *view.Viewer
	runtime   *config.Runtime
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "registrar",
		Short:        "Registrar - College records manager",
		Long:         `Registrar manages departments, courses, students, instructors and staff, and the enrollments and teaching assignments between them.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env is fine; anything else is worth reporting
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to load .env: %w", err)
			}
			logging.Console(verbosity, os.Stderr)
			if dbPath == defaultDBPath {
				if envDB := os.Getenv("DB_PATH"); envDB != "" {
					dbPath = envDB
				}
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", defaultDBPath, "SQLite database path (or set DB_PATH env var)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v debug, -vv trace)")

	rootCmd.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newSeedCmd(),
		newViewCmd(),
		newScheduleCmd(),
		newDepartmentCmd(),
		newCourseCmd(),
		newStudentCmd(),
		newInstructorCmd(),
		newStaffCmd(),
		newLinkCmd("enroll", "Enroll a student in a course", rows.Students, (*relations.Manager).Enroll),
		newLinkCmd("withdraw", "Withdraw a student from a course", rows.Students, (*relations.Manager).Withdraw),
		newLinkCmd("assign", "Assign an instructor to a course", rows.Instructors, (*relations.Manager).Assign),
		newLinkCmd("unassign", "Remove an instructor from a course", rows.Instructors, (*relations.Manager).Unassign),
		newSettingsCmd(),
		newMaintainCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Show version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "registrar %s (commit: %s, built: %s)\n", version, commit, date)
			},
		},
	)

	return rootCmd
}

// openApp opens the database, brings the schema up to date and applies the
// stored runtime settings to logging and the gateway.
func openApp() (*app, error) {
	db, err := database.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}
	if err := db.InitializeDefaults(config.Defaults()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize default settings: %w", err)
	}

	rt := config.Load(config.NewLoader(db))
	logging.Apply(verbosity, rt.Log, os.Stderr, logging.FilePathForDB(dbPath))
	db.SetStatementTimeout(rt.StatementTimeout)

	prims := rows.New(db)
	rel := relations.New(prims)
	log.Debug().Str("database", dbPath).Msg("Database ready")

	return &app{
		db:        db,
		prims:     prims,
		relations: rel,
		viewer:    view.New(prims, rel),
		runtime:   rt,
	}, nil
}

// withApp runs fn against an opened app and closes it afterwards.
func withApp(fn func(ctx context.Context, a *app) error) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.db.Close()
	return fn(context.Background(), a)
}
