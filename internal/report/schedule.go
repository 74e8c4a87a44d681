package report

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ghani250za/abdelghani-amrani/internal/model"
)

// dayOrder sorts the list view; days outside it go last.
var dayOrder = []string{"Dimanche", "Lundi", "Mardi", "Mercredi", "Jeudi", "Vendredi", "Samedi"}

// TimetableDays are the grid columns.
var TimetableDays = []string{"Dimanche", "Lundi", "Mardi", "Mercredi", "Jeudi", "Vendredi"}

type slot struct {
	start, end, label string
	isBreak           bool
}

var slots = []slot{
	{"08:00", "09:30", "08:00 - 09:30", false},
	{"09:45", "11:15", "09:45 - 11:15", false},
	{"11:30", "13:00", "11:30 - 13:00", false},
	{"13:00", "14:00", "Break", true},
	{"14:00", "15:30", "14:00 - 15:30", false},
	{"15:45", "17:15", "15:45 - 17:15", false},
}

func dayRank(day string) int {
	for i, d := range dayOrder {
		if d == day {
			return i
		}
	}
	return len(dayOrder)
}

func groupByDay(sessions []model.ScheduleSession) []DaySchedule {
	byDay := map[string][]model.ScheduleSession{}
	var days []string
	for _, s := range sessions {
		d := s.Day()
		if _, seen := byDay[d]; !seen {
			days = append(days, d)
		}
		byDay[d] = append(byDay[d], s)
	}
	sort.SliceStable(days, func(i, j int) bool { return dayRank(days[i]) < dayRank(days[j]) })

	out := make([]DaySchedule, 0, len(days))
	for _, d := range days {
		list := byDay[d]
		sort.SliceStable(list, func(i, j int) bool {
			return startKey(list[i]) < startKey(list[j])
		})
		ds := DaySchedule{Day: d, Sessions: make([]SessionRow, 0, len(list))}
		for _, s := range list {
			ds.Sessions = append(ds.Sessions, SessionRow{
				Start:   model.FirstText("N/A", s.PlageHoraireHeureDebut),
				End:     model.FirstText("N/A", s.PlageHoraireHeureFin),
				Subject: model.FirstText("N/A", s.Matiere, s.MatiereAr),
				Room:    model.FirstText("N/A", s.RefLieuDesignation),
				Type:    model.FirstText("N/A", s.Ap),
			})
		}
		out = append(out, ds)
	}
	return out
}

func startKey(s model.ScheduleSession) string {
	return model.FirstText("00:00", s.PlageHoraireHeureDebut)
}

var clock = regexp.MustCompile(`(\d{1,2}):(\d{2})`)

// hhmm extracts the first HH:MM in s, zero padded.  Start times arrive as
// "08:00", "08:00:00" or full timestamps depending on the endpoint version.
func hhmm(s string) string {
	m := clock.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	h := m[1]
	if len(h) == 1 {
		h = "0" + h
	}
	return h + ":" + m[2]
}

// matchSlot finds the first teaching slot whose hour equals the session's
// start hour, or whose [start, end] range holds the start time.  Breaks never
// match.
func matchSlot(start string) int {
	t := hhmm(start)
	if t == "" {
		return -1
	}
	for i, sl := range slots {
		if sl.isBreak {
			continue
		}
		if strings.HasPrefix(t, sl.start[:2]) || t == sl.start || (t >= sl.start && t <= sl.end) {
			return i
		}
	}
	return -1
}

// BuildTimetable lays sessions on the six-slot by six-day grid.  When two
// sessions land in the same cell the later one in the list wins.
func BuildTimetable(sessions []model.ScheduleSession) *Timetable {
	col := map[string]int{}
	for i, d := range TimetableDays {
		col[d] = i
	}
	tt := &Timetable{Days: append([]string(nil), TimetableDays...), Rows: make([]TimetableRow, len(slots))}
	for i, sl := range slots {
		tt.Rows[i] = TimetableRow{Label: sl.label, Break: sl.isBreak, Cells: make([]*TimetableCell, len(TimetableDays))}
	}
	for _, s := range sessions {
		day := model.FirstText("", s.JourLibelleFr, s.JourLibelleAr)
		c, ok := col[day]
		if !ok || s.PlageHoraireHeureDebut == "" {
			continue
		}
		row := matchSlot(s.PlageHoraireHeureDebut)
		if row < 0 {
			continue
		}
		tt.Rows[row].Cells[c] = &TimetableCell{
			Subject: model.FirstText("N/A", s.Matiere, s.MatiereAr),
			Room:    model.FirstText("N/A", s.RefLieuDesignation),
			Type:    model.FirstText("N/A", s.Ap),
			Start:   s.PlageHoraireHeureDebut,
			End:     s.PlageHoraireHeureFin,
		}
	}
	return tt
}
