package report

import (
	"context"

	"github.com/ghani250za/abdelghani-amrani/internal/model"
)

// creditsFallback is shown by the semester summary when the API omits
// credits for a period it does report.
const creditsFallback = "30"

// findBilan returns the period bilan matching the semester by label, then
// by id.
func findBilan(bilans []model.PeriodBilan, sem model.Semester) (model.PeriodBilan, bool) {
	name := sem.Name()
	for _, b := range bilans {
		if b.PeriodeLibelleFr == name {
			return b, true
		}
	}
	for _, b := range bilans {
		if b.PeriodeID != 0 && b.PeriodeID == sem.ID {
			return b, true
		}
	}
	return model.PeriodBilan{}, false
}

// lastRunes returns the last n runes of s.
func lastRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

// semesterModules collects modules across all bilans whose teaching unit's
// Arabic label ends with the semester code (for example "... S5").  The
// backend encodes the semester only there.
func semesterModules(bilans []model.PeriodBilan, code string) []ModuleRow {
	rows := []ModuleRow{}
	if code == "" {
		return rows
	}
	for _, b := range bilans {
		for _, ue := range b.BilanUes {
			if lastRunes(ue.UELibelleAr, 2) != code {
				continue
			}
			for _, mc := range ue.BilanMcs {
				rows = append(rows, ModuleRow{
					Name:        model.FirstText("N/A", mc.McLibelleFr),
					Average:     mc.MoyenneGenerale.String(),
					Class:       GradeClass(mc.MoyenneGenerale),
					Coefficient: mc.Coefficient.String(),
				})
			}
		}
	}
	return rows
}

// bilan fetches the period bilans once and lays out every loaded semester.
func (r *Renderer) bilan(ctx context.Context, req Request, enr model.Enrollment) (Fragment, error) {
	bilans, err := r.api.PeriodBilans(ctx, req.User.UUID, enr.ID)
	if err != nil {
		return Fragment{}, err
	}
	view := BilanView{Semesters: make([]SemesterBilan, 0, len(req.State.Semesters))}
	for _, sem := range req.State.Semesters {
		sb := SemesterBilan{Semester: sem.Name(), Modules: []ModuleRow{}}
		b, found := findBilan(bilans, sem)
		if !found {
			sb.Empty = "No bilan data available for this semester."
			view.Semesters = append(view.Semesters, sb)
			continue
		}
		cls := GradeClass(b.Moyenne)
		sb.Found = true
		sb.Average = b.Moyenne.String()
		sb.AverageClass = GPAColorClass(cls)
		sb.Credits = b.CreditAcquis.String()
		sb.Modules = semesterModules(bilans, sem.Code)
		view.Semesters = append(view.Semesters, sb)
	}
	return Fragment{Body: view}, nil
}

// summary shows one semester from the per-enrollment bilan with all of its
// modules.
func (r *Renderer) summary(ctx context.Context, req Request, enr model.Enrollment) (Fragment, error) {
	sem, ok, err := pickSemester(req)
	if err != nil {
		return Fragment{}, err
	}
	view := SummaryView{Semesters: semesterOptions(req.State.Semesters, req.SemesterID)}
	if !ok {
		return Fragment{Status: StatusPrompt, Prompt: "Please select a semester to view summary.", Body: view}, nil
	}
	view.Semester = selectedOption(view.Semesters)

	bilans, err := r.api.SemesterSummaries(ctx, req.User.UUID, enr.ID)
	if err != nil {
		return Fragment{}, err
	}
	sb := &SemesterBilan{Semester: sem.Name(), Average: "N/A", AverageClass: GPAColorClass(NA), Credits: "N/A", Modules: []ModuleRow{}}
	view.Summary = sb
	b, found := findBilan(bilans, sem)
	if !found {
		sb.Empty = "No summary data available for this semester."
		return Fragment{Body: view}, nil
	}
	sb.Found = true
	sb.Average = b.MoyenneGenerale.String()
	sb.AverageClass = GPAColorClass(GradeClass(b.MoyenneGenerale))
	sb.Credits = model.FirstMark(b.CreditsAcquis, b.CreditAcquis, model.NewMark(creditsFallback)).String()
	for _, ue := range b.BilanUes {
		for _, mc := range ue.BilanMcs {
			sb.Modules = append(sb.Modules, ModuleRow{
				Name:        mc.Name(),
				Average:     mc.MoyenneGenerale.String(),
				Class:       GradeClass(mc.MoyenneGenerale),
				Coefficient: model.FirstMark(mc.Coefficient, ue.Coefficient).String(),
			})
		}
	}
	return Fragment{Body: view}, nil
}
