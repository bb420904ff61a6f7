package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/collegeapp/registrar/internal/records"
	"github.com/collegeapp/registrar/internal/relations"
	"github.com/collegeapp/registrar/internal/rows"
)

type linkOp func(m *relations.Manager, ctx context.Context, member relations.Member, courseID int64) (bool, error)

// newLinkCmd builds a command that links or unlinks a named member and a
// course id.
func newLinkCmd(use, short string, memberTable rows.Table, op linkOp) *cobra.Command {
	return &cobra.Command{
		Use:   use + " NAME COURSE_ID",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			courseID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid course id %q: %w", args[1], err)
			}

			return withApp(func(ctx context.Context, a *app) error {
				member, err := records.Find(ctx, a.prims, memberTable, args[0])
				if err != nil {
					return err
				}
				if !member.Resolved() {
					return fmt.Errorf("%s %q not found", memberTable, args[0])
				}

				changed, err := op(a.relations, ctx, &member, courseID)
				if err != nil {
					return err
				}
				if changed {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s, course %d\n", use, args[0], courseID)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "no change: %s, course %d\n", args[0], courseID)
				}
				return nil
			})
		},
	}
}
