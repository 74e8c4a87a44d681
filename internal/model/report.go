package model

// Upstream report records.  Only the fields the views read are declared;
// the API sends many more.

// CCNote is one continuous-assessment mark (notesCC).
type CCNote struct {
	LlPeriode                 string `json:"llPeriode"`
	RattachementMcMcLibelleFr string `json:"rattachementMcMcLibelleFr"`
	RattachementMcMcLibelleAr string `json:"rattachementMcMcLibelleAr"`
	McLibelleFr               string `json:"mcLibelleFr"`
	McLibelleAr               string `json:"mcLibelleAr"`
	ApCode                    string `json:"apCode"`
	Note                      Mark   `json:"note"`
}

func (n CCNote) Subject() string {
	return FirstText("Unknown Subject",
		n.RattachementMcMcLibelleFr, n.RattachementMcMcLibelleAr, n.McLibelleFr, n.McLibelleAr)
}

// ExamNote is one exam mark (noteExamens).
type ExamNote struct {
	IDPeriode                 ID     `json:"idPeriode"`
	McLibelleFr               string `json:"mcLibelleFr"`
	McLibelleAr               string `json:"mcLibelleAr"`
	McLibelleLt               string `json:"mcLibelleLt"`
	LibelleMc                 string `json:"libelleMc"`
	NomMc                     string `json:"nomMc"`
	NoteExamen                Mark   `json:"noteExamen"`
	RattachementMcCoefficient Mark   `json:"rattachementMcCoefficient"`
	Coefficient               Mark   `json:"coefficient"`
	Coeff                     Mark   `json:"coeff"`
	CoefficientMc             Mark   `json:"coefficientMc"`
}

func (n ExamNote) Subject() string {
	return FirstText("Unknown Subject", n.McLibelleFr, n.McLibelleAr, n.McLibelleLt, n.LibelleMc, n.NomMc)
}

func (n ExamNote) Coef() Mark {
	return FirstMark(n.RattachementMcCoefficient, n.Coefficient, n.Coeff, n.CoefficientMc)
}

// ScheduleSession is one timetable entry (seanceEmploi).
type ScheduleSession struct {
	PeriodeID              ID     `json:"periodeId"`
	JourLibelleFr          string `json:"jourLibelleFr"`
	JourLibelleAr          string `json:"jourLibelleAr"`
	PlageHoraireHeureDebut string `json:"plageHoraireHeureDebut"`
	PlageHoraireHeureFin   string `json:"plageHoraireHeureFin"`
	Matiere                string `json:"matiere"`
	MatiereAr              string `json:"matiereAr"`
	RefLieuDesignation     string `json:"refLieuDesignation"`
	Ap                     string `json:"ap"`
}

func (s ScheduleSession) Day() string { return FirstText("Unknown", s.JourLibelleFr, s.JourLibelleAr) }
func (s ScheduleSession) Subject() string {
	return FirstText("Unknown Subject", s.Matiere, s.MatiereAr)
}

// PeriodBilan is one semester summary.  Both periode/bilans and the
// per-enrollment bilan endpoint return this shape, with the credit field
// spelled either way.
type PeriodBilan struct {
	PeriodeID        ID        `json:"periodeId"`
	PeriodeLibelleFr string    `json:"periodeLibelleFr"`
	Moyenne          Mark      `json:"moyenne"`
	MoyenneGenerale  Mark      `json:"moyenneGenerale"`
	CreditAcquis     Mark      `json:"creditAcquis"`
	CreditsAcquis    Mark      `json:"creditsAcquis"`
	BilanUes         []UEBilan `json:"bilanUes"`
}

// UEBilan is a teaching unit inside a PeriodBilan.
type UEBilan struct {
	UELibelleFr string    `json:"ueLibelleFr"`
	UELibelleAr string    `json:"ueLibelleAr"`
	Moyenne     Mark      `json:"moyenne"`
	Coefficient Mark      `json:"coefficient"`
	BilanMcs    []MCBilan `json:"bilanMcs"`
}

// MCBilan is one module average.
type MCBilan struct {
	McLibelleFr     string `json:"mcLibelleFr"`
	McLibelleAr     string `json:"mcLibelleAr"`
	MoyenneGenerale Mark   `json:"moyenneGenerale"`
	Coefficient     Mark   `json:"coefficient"`
}

func (m MCBilan) Name() string { return FirstText("Unknown Module", m.McLibelleFr, m.McLibelleAr) }

// GroupAssignment is one section/group placement.
type GroupAssignment struct {
	PeriodeLibelleLongLt string `json:"periodeLibelleLongLt"`
	NomSection           string `json:"nomSection"`
	NomGroupePedagogique string `json:"nomGroupePedagogique"`
}

// YearlyBilan is the annual result of an enrollment.
type YearlyBilan struct {
	Moyenne                 Mark `json:"moyenne"`
	MoyenneGeneraleAnnuelle Mark `json:"moyenneGeneraleAnnuelle"`
	MoyenneAnnuelle         Mark `json:"moyenneAnnuelle"`
	CreditAcquis            Mark `json:"creditAcquis"`
	CreditsAcquis           Mark `json:"creditsAcquis"`
	CreditsObtenus          Mark `json:"creditsObtenus"`
}

func (y YearlyBilan) GPA() Mark {
	return FirstMark(y.Moyenne, y.MoyenneGeneraleAnnuelle, y.MoyenneAnnuelle)
}

func (y YearlyBilan) Credits() Mark {
	return FirstMark(y.CreditAcquis, y.CreditsAcquis, y.CreditsObtenus)
}
