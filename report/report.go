/*
Package report renders the results of a run for payroll.

PURPOSE:
  Turns calculated results into the monthly benefit spreadsheet the
  voucher provider expects, plus a validation sheet operators check before
  sending it.

OUTPUTS:
  VR MENSAL MM.YYYY.xlsx
    Sheet "VR MENSAL MM.YYYY":  one row per eligible employee
    Sheet "Validações":         run counters and totals
  VR MENSAL MM.YYYY.csv (optional)
    Same rows as the first sheet

COLUMNS:
  Matricula | Admissão | Sindicato do Colaborador | Competência | Dias |
  VALOR DIÁRIO VR | TOTAL | Custo empresa | Desconto profissional | OBS GERAL

SEE ALSO:
  - xlsx.go: Workbook writer
  - csv.go: CSV writer
  - money.go: BRL formatting
*/
package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/benefit-engine/generic"
	"github.com/warp/benefit-engine/schema"
	"github.com/warp/benefit-engine/voucher"
)

// Columns is the header of the final sheet.
var Columns = []string{
	"Matricula", "Admissão", "Sindicato do Colaborador", "Competência", "Dias",
	"VALOR DIÁRIO VR", "TOTAL", "Custo empresa", "Desconto profissional", "OBS GERAL",
}

// ValidationSheet is the name of the summary sheet.
const ValidationSheet = "Validações"

// Report is everything a writer needs.
type Report struct {
	Context  voucher.RunContext
	Results  []voucher.Result
	Prepared *voucher.Prepared
	Summary  voucher.Summary
}

// New builds a report and its summary.
func New(rc voucher.RunContext, results []voucher.Result, p *voucher.Prepared) Report {
	return Report{Context: rc, Results: results, Prepared: p, Summary: voucher.Summarize(results)}
}

// Title is "VR MENSAL MM.YYYY", the sheet name and file stem.
func Title(rc voucher.RunContext) string { return "VR MENSAL " + rc.Label() }

// FileName is the workbook name of a competency.
func FileName(rc voucher.RunContext) string { return Title(rc) + ".xlsx" }

// CSVFileName is the CSV export name of a competency.
func CSVFileName(rc voucher.RunContext) string { return Title(rc) + ".csv" }

// Competency is the "MM/YYYY" value of the Competência column.
func Competency(rc voucher.RunContext) string { return rc.Competency.Time.Format("01/2006") }

// =============================================================================
// ROWS
// =============================================================================

// Row is one line of the final table in text form.
type Row struct {
	ID           string `csv:"Matricula"`
	Admission    string `csv:"Admissão"`
	Union        string `csv:"Sindicato do Colaborador"`
	Competency   string `csv:"Competência"`
	Days         int    `csv:"Dias"`
	UnitValue    string `csv:"VALOR DIÁRIO VR"`
	Total        string `csv:"TOTAL"`
	EmployerCost string `csv:"Custo empresa"`
	EmployeeCost string `csv:"Desconto profissional"`
	Observation  string `csv:"OBS GERAL"`
}

// Rows renders the results in report order.
func (r Report) Rows() []Row {
	comp := Competency(r.Context)
	rows := make([]Row, 0, len(r.Results))
	for _, res := range r.Results {
		row := Row{
			Union:        res.Employee.Union,
			Competency:   comp,
			Days:         res.PayableDays,
			UnitValue:    res.UnitValue.StringFixed(generic.Cents),
			Total:        res.Total.StringFixed(generic.Cents),
			EmployerCost: res.EmployerShare.StringFixed(generic.Cents),
			EmployeeCost: res.EmployeeShare.StringFixed(generic.Cents),
			Observation:  res.Observation,
		}
		if res.Employee.ID != nil {
			row.ID = res.Employee.ID.String()
		}
		if res.AdmissionDate != nil {
			row.Admission = res.AdmissionDate.Time.Format("02/01/2006")
		}
		rows = append(rows, row)
	}
	return rows
}

// =============================================================================
// VALIDATIONS
// =============================================================================

// Line is one label/value pair of the validation sheet.
type Line struct {
	Label string
	Value any
}

// ValidationLines are the counters shown in the validation sheet.
func (r Report) ValidationLines() []Line {
	tables := generic.Tables{}
	var p voucher.Prepared
	if r.Prepared != nil {
		p = *r.Prepared
		tables = p.Tables
	}

	upTo15, after15 := 0, 0
	for _, t := range p.Terminations {
		if t.Date == nil {
			continue
		}
		if t.Date.Day() <= voucher.TerminationCutoffDay {
			if t.Acknowledged {
				upTo15++
			}
		} else {
			after15++
		}
	}

	return []Line{
		{"VALOR TOTAL VR", FormatBRL(r.Summary.Total)},
		{"Colaboradores Processados", len(r.Results)},
		{"---", "---"},
		{"Afastados / Licenças", tables.Get(voucher.TableLeaves).Len()},
		{"DESLIGADOS GERAL", tables.Get(voucher.TableTerminations).Len()},
		{"Admitidos mês", tables.Get(voucher.TableAdmissions).Len()},
		{"Férias (total dias)", tables.Get(voucher.TableVacations).SumDecimal(schema.ColVacationDays).IntPart()},
		{"ESTAGIARIO", tables.Get(voucher.TableInterns).Len()},
		{"APRENDIZ", tables.Get(voucher.TableApprentices).Len()},
		{"SINDICATOS x VALOR", regionValueSummary(p.RegionValues)},
		{"DESLIGADOS ATÉ O DIA 15 DO MÊS", upTo15},
		{"DESLIGADOS DO DIA 16 EM DIANTE", after15},
		{"EXTERIOR", tables.Get(voucher.TableOverseas).Len()},
		{"ATIVOS (base original)", tables.Get(voucher.TableActive).Len()},
		{"---", "---"},
		{"Regra pós-dia 15", ruleName(r.Context)},
		{"Admissões proporcionais", r.Summary.ProratedAdmissions},
		{"Ajustes em rescisão (compra integral)", r.Summary.SettlementAdjusted},
		{"Colaboradores sem estado identificado", r.Summary.NoRegion},
		{"Custo empresa (80%)", FormatBRL(r.Summary.EmployerTotal)},
		{"Desconto profissional (20%)", FormatBRL(r.Summary.EmployeeTotal)},
	}
}

func regionValueSummary(values []voucher.RegionValue) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Region, v.Value.StringFixed(generic.Cents)))
	}
	return strings.Join(parts, ", ")
}

func ruleName(rc voucher.RunContext) string {
	if rc.Policy == nil {
		return ""
	}
	return string(rc.Policy.Rule())
}

func toFloat(d decimal.Decimal) float64 { return d.InexactFloat64() }
