package voucher

import (
	"github.com/shopspring/decimal"
	"github.com/warp/benefit-engine/generic"
	"github.com/warp/benefit-engine/schema"
)

// References are the read-only lookups of one run, built once from the
// prepared inputs before any employee is calculated.
type References struct {
	WorkingDays  map[Region]int
	UnitValues   map[Region]decimal.Decimal
	Vacations    map[generic.EntityID]int
	Admissions   map[generic.EntityID]generic.TimePoint
	Terminations map[generic.EntityID]Termination
}

// BuildReferences indexes the prepared inputs.
//
// Region-keyed tables keep the last row per region. Employee-keyed tables
// keep the first row per employee, except vacations which are summed.
func BuildReferences(p *Prepared, c *Classifier) *References {
	refs := &References{
		WorkingDays:  make(map[Region]int),
		UnitValues:   make(map[Region]decimal.Decimal),
		Vacations:    make(map[generic.EntityID]int),
		Admissions:   make(map[generic.EntityID]generic.TimePoint),
		Terminations: make(map[generic.EntityID]Termination),
	}

	for _, wd := range p.WorkingDays {
		if r := c.Classify(wd.Union); r != RegionNone {
			refs.WorkingDays[r] = wd.Days
		}
	}
	for _, rv := range p.RegionValues {
		if r, ok := ParseRegion(rv.Region); ok {
			refs.UnitValues[r] = rv.Value
		}
	}

	vacations := make(map[generic.EntityID]decimal.Decimal)
	fer := p.Tables.Get(TableVacations)
	for i := range fer.Rows {
		id := generic.ToEntityID(fer.Value(i, schema.ColID))
		if id == nil {
			continue
		}
		d, ok := generic.ToDecimal(fer.Value(i, schema.ColVacationDays))
		if !ok {
			d = decimal.Zero
		}
		vacations[*id] = vacations[*id].Add(d)
	}
	// Fractional days are summed per employee and truncated once.
	for id, d := range vacations {
		refs.Vacations[id] = int(d.IntPart())
	}

	adm := p.Tables.Get(TableAdmissions)
	for i := range adm.Rows {
		id := generic.ToEntityID(adm.Value(i, schema.ColID))
		if id == nil {
			continue
		}
		if _, seen := refs.Admissions[*id]; seen {
			continue
		}
		if d, ok := generic.ToDate(adm.Value(i, schema.ColAdmission)); ok {
			refs.Admissions[*id] = d
		}
	}

	for _, t := range p.Terminations {
		if t.ID == nil {
			continue
		}
		if _, seen := refs.Terminations[*t.ID]; !seen {
			refs.Terminations[*t.ID] = t
		}
	}
	return refs
}

// Admission returns the admission date of an employee, if any.
func (r *References) Admission(id *generic.EntityID) *generic.TimePoint {
	if id == nil {
		return nil
	}
	if d, ok := r.Admissions[*id]; ok {
		return &d
	}
	return nil
}

// Termination returns the termination record of an employee, if any.
func (r *References) Termination(id *generic.EntityID) *Termination {
	if id == nil {
		return nil
	}
	if t, ok := r.Terminations[*id]; ok {
		return &t
	}
	return nil
}

// VacationDays returns the summed vacation days of an employee.
func (r *References) VacationDays(id *generic.EntityID) int {
	if id == nil {
		return 0
	}
	return r.Vacations[*id]
}
