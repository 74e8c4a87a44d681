package model

import "encoding/json"

// EnrollmentRecord mirrors one entry of GET /infos/bac/{uuid}/dias.  The list
// is ordered most recent first.  Raw keeps the full upstream object.
type EnrollmentRecord struct {
	ID                        ID     `json:"id"`
	NiveauID                  ID     `json:"niveauId"`
	OuvertureOffreFormationID ID     `json:"ouvertureOffreFormationId"`
	AnneeAcademiqueCode       string `json:"anneeAcademiqueCode"`
	OfLlFiliere               string `json:"ofLlFiliere"`
	OfLlDomaine               string `json:"ofLlDomaine"`
	NiveauLibelleLongLt       string `json:"niveauLibelleLongLt"`
	LlEtablissementLatin      string `json:"llEtablissementLatin"`
	RefLibelleCycle           string `json:"refLibelleCycle"`
	IndividuNomLatin          string `json:"individuNomLatin"`
	IndividuPrenomLatin       string `json:"individuPrenomLatin"`
	IndividuDateNaissance     string `json:"individuDateNaissance"`
	IndividuLieuNaissance     string `json:"individuLieuNaissance"`

	Raw json.RawMessage `json:"-"`
}

func (r *EnrollmentRecord) UnmarshalJSON(b []byte) error {
	type plain EnrollmentRecord
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*r = EnrollmentRecord(p)
	r.Raw = append(json.RawMessage(nil), b...)
	return nil
}

// Enrollment is the dashboard's view of one academic-year registration.
type Enrollment struct {
	ID                  ID              `json:"id"`
	NiveauID            ID              `json:"niveauId"`
	OffreFormationID    ID              `json:"offreFormationId"`
	AnneeAcademiqueCode string          `json:"anneeAcademiqueCode"`
	OfLlFiliere         string          `json:"ofLlFiliere"`
	OfLlDomaine         string          `json:"ofLlDomaine"`
	NiveauLibelleLongLt string          `json:"niveauLibelleLongLt"`
	LlEtablissement     string          `json:"llEtablissementLatin"`
	Cycle               string          `json:"cycle"`
	FiliereWithCycle    string          `json:"ofLlFiliereWithCycle"`
	DisplayName         string          `json:"displayName"`
	IsCurrentYear       bool            `json:"isCurrentYear"`
	Raw                 json.RawMessage `json:"raw,omitempty"`
}

// NewEnrollment maps an upstream record.  index is its position in the
// fetched list; only index 0 is the current year.
func NewEnrollment(r EnrollmentRecord, index int) Enrollment {
	return Enrollment{
		ID:                  r.ID,
		NiveauID:            r.NiveauID,
		OffreFormationID:    r.OuvertureOffreFormationID,
		AnneeAcademiqueCode: r.AnneeAcademiqueCode,
		OfLlFiliere:         r.OfLlFiliere,
		OfLlDomaine:         r.OfLlDomaine,
		NiveauLibelleLongLt: r.NiveauLibelleLongLt,
		LlEtablissement:     r.LlEtablissementLatin,
		Cycle:               r.RefLibelleCycle,
		FiliereWithCycle:    r.OfLlFiliere + " - " + r.RefLibelleCycle,
		DisplayName:         r.AnneeAcademiqueCode + " - " + r.OfLlFiliere,
		IsCurrentYear:       index == 0,
		Raw:                 r.Raw,
	}
}

// OptionLabel is the text of the enrollment picker entry.
func (e Enrollment) OptionLabel() string {
	label := e.DisplayName
	if e.NiveauLibelleLongLt != "" {
		label += " (" + e.NiveauLibelleLongLt + ")"
	}
	if e.IsCurrentYear {
		label += " 🎓"
	}
	return label
}
