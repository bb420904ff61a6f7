package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/collegeapp/registrar/internal/database"
	"github.com/collegeapp/registrar/internal/records"
	"github.com/collegeapp/registrar/internal/rows"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				v, err := a.db.SchemaVersion()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", v)
				return nil
			})
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demonstration data into an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				seeded, err := a.db.Seed()
				if err != nil {
					return err
				}
				if seeded {
					fmt.Fprintln(cmd.OutOrStdout(), "demonstration data loaded")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "database already has data, nothing to do")
				}
				return nil
			})
		},
	}
}

func newViewCmd() *cobra.Command {
	var (
		columns []string
		limit   int
	)
	cmd := &cobra.Command{
		Use:       "view TABLE",
		Short:     "Print the rows of a table",
		Args:      cobra.ExactArgs(1),
		ValidArgs: tableNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				if !cmd.Flags().Changed("limit") {
					limit = a.runtime.ViewRowLimit
				}
				res, err := a.viewer.Table(ctx, args[0], columns, limit)
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				header := make([]string, len(res.Columns))
				for i, c := range res.Columns {
					header[i] = strings.ToUpper(string(c))
				}
				fmt.Fprintln(tw, strings.Join(header, "\t"))
				for _, row := range res.Rows {
					fmt.Fprintln(tw, formatRow(row))
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringSliceVarP(&columns, "columns", "c", nil, "Columns to show (default all)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum rows to show, 0 for all (default view.row_limit setting)")
	return cmd
}

func newScheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule STUDENT",
		Short: "Show a student's courses and their instructors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				rec, err := records.Find(ctx, a.prims, rows.Students, args[0])
				if err != nil {
					return err
				}
				id, ok := rec.ID()
				if !ok {
					return fmt.Errorf("student %q not found", args[0])
				}

				schedule, err := a.viewer.StudentSchedule(ctx, id)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tCOURSE\tCREDITS\tINSTRUCTORS")
				for _, entry := range schedule {
					names := make([]string, len(entry.Instructors))
					for i, p := range entry.Instructors {
						names[i] = p.Name
					}
					fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", entry.Course.ID, entry.Course.Name, entry.Course.Credits, strings.Join(names, ", "))
				}
				return tw.Flush()
			})
		},
	}
}

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "List or change runtime settings",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all settings",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(func(ctx context.Context, a *app) error {
					settings, err := a.db.ListSettings()
					if err != nil {
						return err
					}
					tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
					for _, s := range settings {
						fmt.Fprintf(tw, "%s\t%s\n", s.Key, s.Value)
					}
					return tw.Flush()
				})
			},
		},
		&cobra.Command{
			Use:   "set KEY VALUE",
			Short: "Change a setting",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(func(ctx context.Context, a *app) error {
					return a.db.SetSetting(args[0], args[1])
				})
			},
		},
	)
	return cmd
}

func newMaintainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maintain",
		Short: "Database maintenance",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "optimize",
			Short: "Refresh query planner statistics",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(func(ctx context.Context, a *app) error { return a.db.Optimize() })
			},
		},
		&cobra.Command{
			Use:   "vacuum",
			Short: "Rebuild the database file",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(func(ctx context.Context, a *app) error { return a.db.Vacuum() })
			},
		},
		&cobra.Command{
			Use:   "integrity",
			Short: "Run an integrity check",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(func(ctx context.Context, a *app) error {
					problems, err := a.db.IntegrityCheck()
					if err != nil {
						return err
					}
					if len(problems) == 0 {
						fmt.Fprintln(cmd.OutOrStdout(), "ok")
						return nil
					}
					for _, p := range problems {
						fmt.Fprintln(cmd.OutOrStdout(), p)
					}
					return fmt.Errorf("integrity check reported %d problems", len(problems))
				})
			},
		},
	)
	return cmd
}

func tableNames() []string {
	tables := rows.Tables()
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = string(t)
	}
	return names
}

func formatRow(row database.Row) string {
	cells := make([]string, len(row))
	for i, v := range row {
		if v == nil {
			cells[i] = "NULL"
			continue
		}
		cells[i] = fmt.Sprint(v)
	}
	return strings.Join(cells, "\t")
}
