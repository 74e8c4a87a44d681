package model

import (
	"encoding/json"
	"fmt"
)

// PeriodRecord mirrors one entry of GET /infos/niveau/{niveauId}/periodes.
type PeriodRecord struct {
	ID            ID     `json:"id"`
	Code          string `json:"code"`
	LibelleLongLt string `json:"libelleLongLt"`
	LibelleLongAr string `json:"libelleLongAr"`
	Rang          int    `json:"rang"`

	Raw json.RawMessage `json:"-"`
}

func (r *PeriodRecord) UnmarshalJSON(b []byte) error {
	type plain PeriodRecord
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*r = PeriodRecord(p)
	r.Raw = append(json.RawMessage(nil), b...)
	return nil
}

// Semester is a period scoped to one enrollment's niveau.
type Semester struct {
	ID            ID              `json:"id"`
	Code          string          `json:"code"`
	LibelleLongLt string          `json:"libelleLongLt"`
	LibelleLongAr string          `json:"libelleLongAr"`
	Rang          int             `json:"rang"`
	Raw           json.RawMessage `json:"raw,omitempty"`
}

func NewSemester(r PeriodRecord) Semester {
	return Semester{
		ID:            r.ID,
		Code:          r.Code,
		LibelleLongLt: r.LibelleLongLt,
		LibelleLongAr: r.LibelleLongAr,
		Rang:          r.Rang,
		Raw:           r.Raw,
	}
}

// Name is the label other endpoints use to refer to the period (llPeriode,
// periodeLibelleFr).
func (s Semester) Name() string {
	if s.LibelleLongLt != "" {
		return s.LibelleLongLt
	}
	return fmt.Sprintf("Semester %d", s.ID)
}
