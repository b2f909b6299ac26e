package voucher

import (
	"strings"

	"github.com/warp/benefit-engine/generic"
	"github.com/warp/benefit-engine/schema"
)

// directorMarker is searched in the folded job title.
const directorMarker = "DIRETOR"

// Cohort is an exclusion table and the column holding its employee IDs.
type Cohort struct {
	Table    string
	IDColumn string
}

// ExclusionCohorts are removed from the roster. The overseas sheet keys
// employees by CADASTRO instead of MATRICULA.
var ExclusionCohorts = []Cohort{
	{TableApprentices, schema.ColID},
	{TableInterns, schema.ColID},
	{TableLeaves, schema.ColID},
	{TableOverseas, schema.ColOverseasID},
}

// Eligibility is the filtered roster plus what was removed along the way.
type Eligibility struct {
	Roster []Employee

	Initial   int
	Directors int

	// Listed counts the readable IDs each cohort table lists.
	Listed map[string]int

	// Excluded counts roster employees removed by the cohort exclusion set.
	Excluded int
}

// Removed is the number of employees dropped from the initial roster.
func (e Eligibility) Removed() int { return e.Initial - len(e.Roster) }

// FilterEligible removes directors and every excluded cohort from the active
// roster. An empty roster yields an empty result, never an error.
func FilterEligible(p *Prepared) Eligibility {
	active := p.Tables.Get(TableActive)
	result := Eligibility{Initial: active.Len(), Listed: make(map[string]int)}
	if active.IsEmpty() {
		return result
	}

	roster := make([]Employee, 0, active.Len())
	for i := range active.Rows {
		title := generic.ToString(active.Value(i, schema.ColJobTitle))
		if IsDirector(title) {
			result.Directors++
			continue
		}
		union, _ := active.Value(i, schema.ColUnion).(string)
		roster = append(roster, Employee{
			ID:       generic.ToEntityID(active.Value(i, schema.ColID)),
			JobTitle: title,
			Union:    union,
		})
	}

	excluded := make(map[generic.EntityID]bool)
	for _, c := range ExclusionCohorts {
		t := p.Tables.Get(c.Table)
		for _, v := range t.Column(c.IDColumn) {
			if id := generic.ToEntityID(v); id != nil {
				excluded[*id] = true
				result.Listed[c.Table]++
			}
		}
	}

	result.Roster = roster[:0:0]
	for _, e := range roster {
		if e.ID != nil && excluded[*e.ID] {
			result.Excluded++
			continue
		}
		result.Roster = append(result.Roster, e)
	}
	return result
}

// IsDirector matches "DIRETOR" in a job title, ignoring case and accents.
func IsDirector(title string) bool {
	return strings.Contains(schema.Fold(title), directorMarker)
}
