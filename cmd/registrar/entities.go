package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/collegeapp/registrar/internal/records"
	"github.com/collegeapp/registrar/internal/rows"
)

// optString returns the flag value only when the user set it.
func optString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func optInt64(cmd *cobra.Command, name string) *int64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt64(name)
	return &v
}

func optInt(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt(name)
	return &v
}

// report prints the outcome of a mutation that may be a no-op.
func report(cmd *cobra.Command, changed bool, action string, r fmt.Stringer) {
	if changed {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", action, r)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "no change: %s\n", r)
}

// entityCmd builds the add/update/remove subcommands shared by every kind.
// flags registers the kind's column flags on add and update.
func entityCmd(use, short string, table rows.Table, flags func(*cobra.Command),
	add func(ctx context.Context, cmd *cobra.Command, a *app, name string) (bool, fmt.Stringer, error),
	update func(ctx context.Context, cmd *cobra.Command, rec records.Record, newName *string, id *int64) (bool, fmt.Stringer, error),
) *cobra.Command {
	cmd := &cobra.Command{Use: use, Short: short}

	addCmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a " + use,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				changed, r, err := add(ctx, cmd, a, args[0])
				if err != nil {
					return err
				}
				report(cmd, changed, "added", r)
				return nil
			})
		},
	}
	flags(addCmd)

	updateCmd := &cobra.Command{
		Use:   "update NAME",
		Short: "Update a " + use + "; only the given flags are changed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				rec, err := records.Find(ctx, a.prims, table, args[0])
				if err != nil {
					return err
				}
				changed, r, err := update(ctx, cmd, rec, optString(cmd, "rename"), optInt64(cmd, "id"))
				if err != nil {
					return err
				}
				report(cmd, changed, "updated", r)
				return nil
			})
		},
	}
	flags(updateCmd)
	updateCmd.Flags().String("rename", "", "New name")
	updateCmd.Flags().Int64("id", 0, "Target this id instead of looking the name up")

	removeCmd := &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a " + use,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				rec, err := records.Find(ctx, a.prims, table, args[0])
				if err != nil {
					return err
				}
				changed, err := rec.Remove(ctx)
				if err != nil {
					return err
				}
				report(cmd, changed, "removed", &rec)
				return nil
			})
		},
	}

	cmd.AddCommand(addCmd, updateCmd, removeCmd)
	return cmd
}

func newDepartmentCmd() *cobra.Command {
	return entityCmd("department", "Manage departments", rows.Departments,
		func(c *cobra.Command) {
			c.Flags().String("description", "", "Description")
		},
		func(ctx context.Context, cmd *cobra.Command, a *app, name string) (bool, fmt.Stringer, error) {
			d, err := records.NewDepartment(ctx, a.prims, name, optString(cmd, "description"))
			if err != nil {
				return false, nil, err
			}
			changed, err := d.Add(ctx)
			return changed, d, err
		},
		func(ctx context.Context, cmd *cobra.Command, rec records.Record, newName *string, id *int64) (bool, fmt.Stringer, error) {
			d := &records.Department{Record: rec}
			changed, err := d.Update(ctx, records.DepartmentUpdate{
				Name:        newName,
				Description: optString(cmd, "description"),
				ID:          id,
			})
			return changed, d, err
		},
	)
}

func newCourseCmd() *cobra.Command {
	return entityCmd("course", "Manage courses", rows.Courses,
		func(c *cobra.Command) {
			c.Flags().Int64("department", 0, "Department id")
			c.Flags().String("description", "", "Description")
			c.Flags().Int("credits", 0, "Credit hours")
		},
		func(ctx context.Context, cmd *cobra.Command, a *app, name string) (bool, fmt.Stringer, error) {
			credits, _ := cmd.Flags().GetInt("credits")
			c, err := records.NewCourse(ctx, a.prims, name, optInt64(cmd, "department"), optString(cmd, "description"), credits)
			if err != nil {
				return false, nil, err
			}
			changed, err := c.Add(ctx)
			return changed, c, err
		},
		func(ctx context.Context, cmd *cobra.Command, rec records.Record, newName *string, id *int64) (bool, fmt.Stringer, error) {
			c := &records.Course{Record: rec}
			changed, err := c.Update(ctx, records.CourseUpdate{
				Name:         newName,
				DepartmentID: optInt64(cmd, "department"),
				Description:  optString(cmd, "description"),
				Credits:      optInt(cmd, "credits"),
				ID:           id,
			})
			return changed, c, err
		},
	)
}

func newStudentCmd() *cobra.Command {
	return entityCmd("student", "Manage students", rows.Students,
		func(c *cobra.Command) {
			c.Flags().String("email", "", "Email address")
			c.Flags().String("major", "", "Major")
		},
		func(ctx context.Context, cmd *cobra.Command, a *app, name string) (bool, fmt.Stringer, error) {
			email, _ := cmd.Flags().GetString("email")
			s, err := records.NewStudent(ctx, a.prims, name, email, optString(cmd, "major"))
			if err != nil {
				return false, nil, err
			}
			changed, err := s.Add(ctx)
			return changed, s, err
		},
		func(ctx context.Context, cmd *cobra.Command, rec records.Record, newName *string, id *int64) (bool, fmt.Stringer, error) {
			s := &records.Student{Record: rec}
			changed, err := s.Update(ctx, records.StudentUpdate{
				Name:  newName,
				Email: optString(cmd, "email"),
				Major: optString(cmd, "major"),
				ID:    id,
			})
			return changed, s, err
		},
	)
}

func newInstructorCmd() *cobra.Command {
	return entityCmd("instructor", "Manage instructors", rows.Instructors,
		func(c *cobra.Command) {
			c.Flags().String("email", "", "Email address")
			c.Flags().Int64("department", 0, "Department id")
		},
		func(ctx context.Context, cmd *cobra.Command, a *app, name string) (bool, fmt.Stringer, error) {
			email, _ := cmd.Flags().GetString("email")
			i, err := records.NewInstructor(ctx, a.prims, name, email, optInt64(cmd, "department"))
			if err != nil {
				return false, nil, err
			}
			changed, err := i.Add(ctx)
			return changed, i, err
		},
		func(ctx context.Context, cmd *cobra.Command, rec records.Record, newName *string, id *int64) (bool, fmt.Stringer, error) {
			i := &records.Instructor{Record: rec}
			changed, err := i.Update(ctx, records.InstructorUpdate{
				Name:         newName,
				Email:        optString(cmd, "email"),
				DepartmentID: optInt64(cmd, "department"),
				ID:           id,
			})
			return changed, i, err
		},
	)
}

func newStaffCmd() *cobra.Command {
	return entityCmd("staff", "Manage staff members", rows.Staff,
		func(c *cobra.Command) {
			c.Flags().String("role", "", "Role")
			c.Flags().Int64("department", 0, "Department id")
		},
		func(ctx context.Context, cmd *cobra.Command, a *app, name string) (bool, fmt.Stringer, error) {
			role, _ := cmd.Flags().GetString("role")
			s, err := records.NewStaffMember(ctx, a.prims, name, role, optInt64(cmd, "department"))
			if err != nil {
				return false, nil, err
			}
			changed, err := s.Add(ctx)
			return changed, s, err
		},
		func(ctx context.Context, cmd *cobra.Command, rec records.Record, newName *string, id *int64) (bool, fmt.Stringer, error) {
			s := &records.StaffMember{Record: rec}
			changed, err := s.Update(ctx, records.StaffUpdate{
				Name:         newName,
				Role:         optString(cmd, "role"),
				DepartmentID: optInt64(cmd, "department"),
				ID:           id,
			})
			return changed, s, err
		},
	)
}
