package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/ghani250za/abdelghani-amrani/internal/app"
	"github.com/ghani250za/abdelghani-amrani/internal/report"
)

var (
	bold  = color.New(color.Bold)
	faint = color.New(color.Faint)
	red   = color.New(color.FgRed)
)

var classColor = map[report.Class]*color.Color{
	report.Excellent: color.New(color.FgGreen, color.Bold),
	report.Good:      color.New(color.FgCyan),
	report.Average:   color.New(color.FgYellow),
	report.Poor:      color.New(color.FgRed),
	report.NA:        color.New(color.Faint),
}

// mark colors a grade by its class.
func mark(text string, c report.Class) string {
	if cc, ok := classColor[c]; ok {
		return cc.Sprint(text)
	}
	return text
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func printDashboard(w io.Writer, d app.DashboardView) {
	bold.Fprintln(w, d.User.DisplayName())
	faint.Fprintln(w, d.RoleLine)
	if d.Selected != nil {
		fmt.Fprintf(w, "Academic year: %s\n", d.Selected.OptionLabel())
	}
	if d.Error != "" {
		red.Fprintln(w, d.Error)
	} else if d.Banner != "" {
		fmt.Fprintln(w, d.Banner)
	}
}

func printYears(w io.Writer, d app.DashboardView) {
	tw := table(w)
	fmt.Fprintln(tw, "ID\tYEAR\t")
	for _, e := range d.Enrollments {
		marker := ""
		if e.Selected {
			marker = "*"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", e.ID, e.Label, marker)
	}
	tw.Flush()
	if len(d.Semesters) > 0 {
		fmt.Fprintln(w)
		tw = table(w)
		fmt.Fprintln(tw, "SEMESTER\tCODE\tNAME")
		for _, s := range d.Semesters {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", s.ID, s.Code, s.Name())
		}
		tw.Flush()
	}
}

func printSemesterOptions(w io.Writer, opts []report.SemesterOption) {
	names := make([]string, 0, len(opts))
	for _, o := range opts {
		names = append(names, fmt.Sprintf("%d=%s", o.ID, o.Name))
	}
	faint.Fprintf(w, "Semesters: %s\n", strings.Join(names, ", "))
}

func printFragment(w io.Writer, f report.Fragment) {
	bold.Fprintln(w, f.Title)
	switch f.Status {
	case report.StatusError:
		red.Fprintln(w, f.Error.Message)
		return
	case report.StatusPrompt:
		fmt.Fprintln(w, f.Prompt)
	}

	switch b := f.Body.(type) {
	case report.GradesView:
		if f.Status == report.StatusPrompt {
			printSemesterOptions(w, b.Semesters)
			return
		}
		printGrades(w, b)
	case report.ScheduleView:
		if f.Status == report.StatusPrompt {
			printSemesterOptions(w, b.Semesters)
			return
		}
		printSchedule(w, b)
	case report.BilanView:
		for _, s := range b.Semesters {
			printSemesterBilan(w, s)
		}
	case report.SummaryView:
		if f.Status == report.StatusPrompt {
			printSemesterOptions(w, b.Semesters)
			return
		}
		if b.Summary != nil {
			printSemesterBilan(w, *b.Summary)
		}
	case report.GroupsView:
		if b.Empty != "" {
			fmt.Fprintln(w, b.Empty)
			return
		}
		tw := table(w)
		fmt.Fprintln(tw, "SEMESTER\tSECTION\tGROUP")
		for _, g := range b.Rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", g.Semester, g.Section, g.Group)
		}
		tw.Flush()
	case report.YearlyView:
		if b.Empty != "" {
			fmt.Fprintln(w, b.Empty)
			return
		}
		fmt.Fprintf(w, "GPA: %s  Credits: %s\n", mark(b.GPA, b.Class), b.Credits)
	case report.StudentInfoView:
		tw := table(w)
		fmt.Fprintf(tw, "First name\t%s\n", b.FirstName)
		fmt.Fprintf(tw, "Last name\t%s\n", b.LastName)
		fmt.Fprintf(tw, "Date of birth\t%s\n", b.DateOfBirth)
		fmt.Fprintf(tw, "Place of birth\t%s\n", b.PlaceOfBirth)
		fmt.Fprintf(tw, "Institution\t%s\n", b.Institution)
		fmt.Fprintf(tw, "Student ID\t%d\n", b.IDIndividu)
		tw.Flush()
	}
}

func printGrades(w io.Writer, g report.GradesView) {
	fmt.Fprintln(w)
	bold.Fprintln(w, "Continuous assessment")
	switch {
	case g.Continuous.Error != "":
		red.Fprintln(w, g.Continuous.Error)
	case g.Continuous.Empty != "":
		fmt.Fprintln(w, g.Continuous.Empty)
	default:
		tw := table(w)
		fmt.Fprintln(tw, "SUBJECT\tNOTE\tTYPE")
		for _, r := range g.Continuous.Rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Subject, mark(r.Note, r.Class), r.Type)
		}
		tw.Flush()
	}

	fmt.Fprintln(w)
	bold.Fprintln(w, "Exams")
	switch {
	case g.Exams.Error != "":
		red.Fprintln(w, g.Exams.Error)
	case g.Exams.Empty != "":
		fmt.Fprintln(w, g.Exams.Empty)
	default:
		tw := table(w)
		fmt.Fprintln(tw, "SUBJECT\tNOTE\tCOEF")
		for _, r := range g.Exams.Rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Subject, mark(r.Note, r.Class), r.Coefficient)
		}
		tw.Flush()
	}
}

func printSchedule(w io.Writer, s report.ScheduleView) {
	if s.Empty != "" {
		fmt.Fprintln(w, s.Empty)
		return
	}
	for _, d := range s.Days {
		fmt.Fprintln(w)
		bold.Fprintln(w, d.Day)
		tw := table(w)
		for _, r := range d.Sessions {
			fmt.Fprintf(tw, "%s-%s\t%s\t%s\t%s\n", r.Start, r.End, r.Subject, r.Type, r.Room)
		}
		tw.Flush()
	}
}

func printSemesterBilan(w io.Writer, s report.SemesterBilan) {
	fmt.Fprintln(w)
	bold.Fprintln(w, s.Semester)
	if !s.Found {
		fmt.Fprintln(w, s.Empty)
		return
	}
	fmt.Fprintf(w, "Average: %s  Credits: %s\n", s.Average, s.Credits)
	tw := table(w)
	fmt.Fprintln(tw, "MODULE\tAVERAGE\tCOEF")
	for _, m := range s.Modules {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", m.Name, mark(m.Average, m.Class), m.Coefficient)
	}
	tw.Flush()
}
