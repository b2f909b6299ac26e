// Package schema maps the loose headers of HR spreadsheet exports onto the
// canonical column names the voucher core reads.
//
// The mapping is pure data: a list of canonical names with their accepted
// spellings. Headers are compared after trimming, upper-casing and removing
// accents, so "Data Demissão", "DATA DEMISSAO " and "demissao" all land on
// the same column. Headers that match nothing are kept in normalized form.
package schema

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/warp/benefit-engine/generic"
)

// Canonical column names.
const (
	ColID            = "MATRICULA"
	ColJobTitle      = "TITULO DO CARGO"
	ColUnion         = "SINDICATO"
	ColTerminationAt = "DATA DEMISSAO"
	ColTerminationOK = "COMUNICADO DE DESLIGAMENTO"
	ColVacationDays  = "DIAS DE FERIAS"
	ColAdmission     = "ADMISSAO"
	ColWorkingDays   = "DIAS_UTEIS"
	ColRegion        = "ESTADO"
	ColValue         = "VALOR"
	ColOverseasID    = "CADASTRO"
)

// Field is one canonical column and the header spellings that mean it.
type Field struct {
	Canonical string
	Synonyms  []string
}

// Mapping is an ordered list of fields. Earlier fields win on conflicting synonyms.
type Mapping struct {
	Fields []Field

	index map[string]string
}

// DefaultFields are the spellings seen in the payroll exports.
//
// CADASTRO is not an ID synonym. The overseas staff sheet keys employees by
// CADASTRO and the eligibility filter reads it by that name.
var DefaultFields = []Field{
	{ColID, []string{"MATRICULA", "CHAPA"}},
	{ColJobTitle, []string{"TITULO DO CARGO", "CARGO"}},
	{ColUnion, []string{"SINDICATO", "SINDICATO DO COLABORADOR", "SINDICADO"}},
	{ColTerminationAt, []string{"DATA DEMISSAO", "DEMISSAO", "DATA DE DEMISSAO"}},
	{ColTerminationOK, []string{"COMUNICADO DE DESLIGAMENTO", "COMUNICADO"}},
	{ColVacationDays, []string{"DIAS DE FERIAS", "FERIAS DIAS"}},
	{ColAdmission, []string{"ADMISSAO", "DATA DE ADMISSAO", "DATA ADMISSAO"}},
	{ColWorkingDays, []string{"DIAS_UTEIS", "DIAS UTEIS"}},
	{ColRegion, []string{"ESTADO", "UF"}},
	{ColValue, []string{"VALOR", "VALOR DIARIO"}},
	{ColOverseasID, []string{"CADASTRO"}},
}

// New builds a mapping from fields.
func New(fields []Field) *Mapping {
	m := &Mapping{Fields: fields, index: make(map[string]string)}
	for _, f := range fields {
		for _, s := range append([]string{f.Canonical}, f.Synonyms...) {
			key := NormalizeHeader(s)
			if _, taken := m.index[key]; !taken {
				m.index[key] = f.Canonical
			}
		}
	}
	return m
}

// Default is the mapping over DefaultFields.
func Default() *Mapping { return New(DefaultFields) }

// Canonical returns the canonical name for a header, or the normalized
// header when no field claims it.
func (m *Mapping) Canonical(header string) string {
	key := NormalizeHeader(header)
	if c, ok := m.index[key]; ok {
		return c
	}
	return key
}

// Known reports whether a header maps onto a canonical field.
func (m *Mapping) Known(header string) bool {
	_, ok := m.index[NormalizeHeader(header)]
	return ok
}

// Apply returns a copy of the table with every header canonicalized.
func (m *Mapping) Apply(t *generic.Table) *generic.Table {
	return t.RenameColumns(func(_ int, c string) string { return m.Canonical(c) })
}

// ApplyAll canonicalizes every table of a run.
func (m *Mapping) ApplyAll(ts generic.Tables) generic.Tables {
	out := make(generic.Tables, len(ts))
	for name, t := range ts {
		out[name] = m.Apply(t)
	}
	return out
}

// NormalizeHeader trims, upper-cases, strips accents and collapses inner
// whitespace.
func NormalizeHeader(s string) string {
	return strings.Join(strings.Fields(Fold(s)), " ")
}

// Fold upper-cases and removes diacritics ("Paraná" -> "PARANA").
func Fold(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
