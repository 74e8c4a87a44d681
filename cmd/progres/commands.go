package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ghani250za/abdelghani-amrani/internal/app"
	"github.com/ghani250za/abdelghani-amrani/internal/model"
	"github.com/ghani250za/abdelghani-amrani/internal/report"
)

func newRootCmd() *cobra.Command {
	var asJSON bool
	var e *env

	root := &cobra.Command{
		Use:           "progres",
		Short:         "Student records from the Progres portal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			e, err = setup(cmd.Context(), asJSON)
			return err
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if e != nil {
				e.close()
			}
		},
	}
	root.PersistentFlags().BoolVar(&asJSON, "json", false, "print view models as JSON")

	get := func() *env { return e }
	root.AddCommand(
		newLoginCmd(get),
		newLogoutCmd(get),
		newStatusCmd(get),
		newYearsCmd(get),
		newReportCmd(get),
	)
	return root
}

func newLoginCmd(get func() *env) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in; the password is read from PROGRES_PASSWORD",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := get()
			password := os.Getenv("PROGRES_PASSWORD")
			if username == "" || password == "" {
				return errors.New("username and PROGRES_PASSWORD are required")
			}
			v, err := e.app.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			if e.json {
				return printJSON(cmd.OutOrStdout(), v)
			}
			d, err := e.app.Dashboard()
			if err != nil {
				return err
			}
			printDashboard(cmd.OutOrStdout(), d)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Progres username (bac number)")
	return cmd
}

func newLogoutCmd(get func() *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := get()
			e.app.Start(cmd.Context())
			e.app.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newStatusCmd(get func() *env) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the logged-in student and the current academic year",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := get()
			v := e.app.Start(cmd.Context())
			if !v.LoggedIn {
				return app.ErrNotLoggedIn
			}
			d, err := e.app.Dashboard()
			if err != nil {
				return err
			}
			if e.json {
				return printJSON(cmd.OutOrStdout(), d)
			}
			printDashboard(cmd.OutOrStdout(), d)
			return nil
		},
	}
}

func newYearsCmd(get func() *env) *cobra.Command {
	return &cobra.Command{
		Use:   "years",
		Short: "List academic years and their semesters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := get()
			if !e.app.Start(cmd.Context()).LoggedIn {
				return app.ErrNotLoggedIn
			}
			d, err := e.app.Dashboard()
			if err != nil {
				return err
			}
			if e.json {
				return printJSON(cmd.OutOrStdout(), d.Enrollments)
			}
			printYears(cmd.OutOrStdout(), d)
			return nil
		},
	}
}

func newReportCmd(get func() *env) *cobra.Command {
	var year, semester int64
	kinds := make([]string, 0, len(report.Pages)+1)
	for _, k := range append(append([]report.Kind{}, report.Pages...), report.SemesterSummary) {
		kinds = append(kinds, string(k))
	}
	cmd := &cobra.Command{
		Use:       "report <kind>",
		Short:     "Show a report: " + strings.Join(kinds, ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: kinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := get()
			kind, ok := report.ParseKind(args[0])
			if !ok {
				return fmt.Errorf("%w %q (one of %s)", report.ErrUnknownKind, args[0], strings.Join(kinds, ", "))
			}
			if !e.app.Start(cmd.Context()).LoggedIn {
				return app.ErrNotLoggedIn
			}
			if year != 0 {
				if err := e.app.SelectEnrollment(cmd.Context(), model.ID(year)); err != nil {
					return err
				}
			}
			f, err := e.app.Open(cmd.Context(), kind, model.ID(semester))
			if err != nil {
				return err
			}
			if e.json {
				return printJSON(cmd.OutOrStdout(), f)
			}
			printFragment(cmd.OutOrStdout(), f)
			return nil
		},
	}
	cmd.Flags().Int64Var(&year, "year", 0, "enrollment id (default: most recent)")
	cmd.Flags().Int64VarP(&semester, "semester", "s", 0, "semester id for grades, schedule and summary")
	return cmd
}

func errText(err error) string {
	if errors.Is(err, app.ErrNotLoggedIn) {
		return "Not logged in. Run: progres login -u <username>"
	}
	return err.Error()
}
