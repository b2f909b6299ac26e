/*
Package pipeline runs one competency end to end.

PURPOSE:
  Chains the components of a run and narrates every step in Portuguese so
  an operator can follow what happened to the roster.

STEPS:
  contexto       competency -> RunContext (benefit month, events month)
  coleta         Source.Load -> raw tables + file report
  schema         header canonicalization
  validacao      Validator -> Prepared + warnings, or a ValidationError
  elegibilidade  FilterEligible -> roster
  calculo        Calculator -> results + summary
  relatorio      VR MENSAL MM.YYYY.xlsx (+ .csv)

GUARANTEES:
  - A failed step returns its error and no Result; nothing is written
  - An empty eligible roster is not an error: the Result has a zero total
    and no report file
  - The context is checked between steps

SEE ALSO:
  - voucher/: Calculation
  - source/: Input backends
  - report/: Output writers
*/
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/benefit-engine/factory"
	"github.com/warp/benefit-engine/report"
	"github.com/warp/benefit-engine/schema"
	"github.com/warp/benefit-engine/source"
	"github.com/warp/benefit-engine/voucher"
)

var (
	// ErrSourceNotFound is returned when the input location does not exist.
	ErrSourceNotFound = errors.New("pipeline: input source not found")

	// ErrInvalidRequest is returned for an unreadable competency or an
	// incomplete request.
	ErrInvalidRequest = errors.New("pipeline: invalid request")
)

// Step names a stage of a run. The values are the narration keys.
type Step string

const (
	StepContext     Step = "contexto"
	StepCollect     Step = "coleta"
	StepSchema      Step = "schema"
	StepValidate    Step = "validacao"
	StepEligibility Step = "elegibilidade"
	StepCalculate   Step = "calculo"
	StepReport      Step = "relatorio"
)

// Steps lists every step in execution order.
var Steps = []Step{StepContext, StepCollect, StepSchema, StepValidate, StepEligibility, StepCalculate, StepReport}

// ProgressFunc receives each narration line as it is produced.
type ProgressFunc func(step Step, message string)

// Request is the input of one run.
type Request struct {
	Competency string
	InputDir   string
	OutputDir  string
}

// Result is the outcome of a successful run.
type Result struct {
	RunID      string
	Competency string // YYYY-MM-DD, first day of the benefit month
	Rule       voucher.Pos15Rule

	Total   decimal.Decimal
	Results []voucher.Result
	Summary voucher.Summary

	Warnings   []string
	Logs       map[Step][]string
	FileReport source.FileReport

	// OutputPath is empty when no report was written.
	OutputPath string
	CSVPath    string

	StartedAt  time.Time
	FinishedAt time.Time
}

// Orchestrator wires the components of a run.
type Orchestrator struct {
	Source     source.Source
	Mapping    *schema.Mapping
	Validator  *voucher.Validator
	Calculator *voucher.Calculator
	Rule       voucher.Pos15Rule

	// WriteCSV adds the CSV export next to the workbook.
	WriteCSV bool

	Logger   *slog.Logger
	Progress ProgressFunc
}

// New builds an orchestrator over a source. Nil rules mean the built-in ones.
func New(src source.Source, rules *factory.Rules, rule voucher.Pos15Rule) *Orchestrator {
	if rules == nil {
		rules = factory.Defaults()
	}
	validator := voucher.NewValidator()
	validator.Mapping = rules.Mapping
	return &Orchestrator{
		Source:     src,
		Mapping:    rules.Mapping,
		Validator:  validator,
		Calculator: voucher.NewCalculator(rules.Classifier),
		Rule:       rule,
		Logger:     slog.Default(),
	}
}

// run holds the narration of one Run call.
type run struct {
	o      *Orchestrator
	logs   map[Step][]string
	logger *slog.Logger
}

func (r *run) say(step Step, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.logs[step] = append(r.logs[step], msg)
	r.logger.Info(msg, "step", string(step))
	if r.o.Progress != nil {
		r.o.Progress(step, msg)
	}
}

func (r *run) fail(step Step, err error) error {
	r.logs[step] = append(r.logs[step], "ERRO: "+err.Error())
	r.logger.Error("pipeline: step failed", "step", string(step), "error", err)
	if r.o.Progress != nil {
		r.o.Progress(step, "ERRO: "+err.Error())
	}
	return err
}

// Run executes every step for one competency.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.NewString()
	r := &run{o: o, logs: make(map[Step][]string), logger: logger.With("run_id", id)}
	res := &Result{RunID: id, Rule: o.Rule, Total: decimal.Zero, Logs: r.logs, StartedAt: time.Now()}

	// 1. Contexto
	if req.InputDir == "" || req.OutputDir == "" {
		return nil, r.fail(StepContext, fmt.Errorf("%w: input and output directories are required", ErrInvalidRequest))
	}
	competency, err := voucher.ParseCompetency(req.Competency)
	if err != nil {
		return nil, r.fail(StepContext, fmt.Errorf("%w: %w", ErrInvalidRequest, err))
	}
	rc, err := voucher.NewRunContext(competency, o.Rule)
	if err != nil {
		return nil, r.fail(StepContext, fmt.Errorf("%w: %w", ErrInvalidRequest, err))
	}
	res.Competency = rc.Competency.String()
	r.say(StepContext, "Mês de Competência (Benefício): %s", rc.BenefitMonthName())
	r.say(StepContext, "Mês de Referência para Eventos (Admissão/Demissão): %s", rc.EventsMonthName())
	r.say(StepContext, "Regra para desligamentos após o dia %d: %s", voucher.TerminationCutoffDay, rc.Policy.Rule())

	// 2. Coleta
	if err := ctx.Err(); err != nil {
		return nil, r.fail(StepCollect, err)
	}
	raw, files, err := o.Source.Load(ctx, req.InputDir)
	if err != nil {
		if errors.Is(err, source.ErrNotFound) {
			err = fmt.Errorf("%w: %w", ErrSourceNotFound, err)
		}
		return nil, r.fail(StepCollect, err)
	}
	res.FileReport = files
	for _, name := range files.Tables() {
		r.say(StepCollect, "Base %s: carregada do arquivo %s com %d registros.", name, files[name], raw.Get(name).Len())
	}

	// 3. Schema
	if err := ctx.Err(); err != nil {
		return nil, r.fail(StepSchema, err)
	}
	mapped := o.Mapping.ApplyAll(raw)
	r.say(StepSchema, "Cabeçalhos de %d bases normalizados.", len(mapped))

	// 4. Validação
	if err := ctx.Err(); err != nil {
		return nil, r.fail(StepValidate, err)
	}
	prepared, warnings, err := o.Validator.Validate(mapped, rc)
	for _, w := range warnings {
		r.say(StepValidate, "Aviso: %s", w)
	}
	res.Warnings = append(res.Warnings, warnings...)
	if err != nil {
		return nil, r.fail(StepValidate, err)
	}
	r.say(StepValidate, "Estruturas de dados internas preparadas e normalizadas.")
	r.say(StepValidate, "Checagem de consistência de dados concluída.")

	// 5. Elegibilidade
	if err := ctx.Err(); err != nil {
		return nil, r.fail(StepEligibility, err)
	}
	el := voucher.FilterEligible(prepared)
	r.say(StepEligibility, "Base inicial com %d colaboradores ativos.", el.Initial)
	r.say(StepEligibility, "Após aplicar as regras de exclusão (Diretores, Estagiários, etc.), %d colaboradores permaneceram.", len(el.Roster))
	r.say(StepEligibility, "Total de %d colaboradores removidos da base de cálculo.", el.Removed())
	if len(el.Roster) == 0 {
		r.logger.Error("pipeline: no eligible employees", "initial", el.Initial)
		r.say(StepCalculate, "AVISO: Nenhum colaborador elegível encontrado. Cálculos não serão executados.")
		res.Results = []voucher.Result{}
		res.FinishedAt = time.Now()
		return res, nil
	}

	// 6. Cálculo
	if err := ctx.Err(); err != nil {
		return nil, r.fail(StepCalculate, err)
	}
	results := o.Calculator.Calculate(el.Roster, prepared, rc)
	out := report.New(rc, results, prepared)
	r.say(StepCalculate, "Fatores de ajuste para admissões e desligamentos foram calculados.")
	r.say(StepCalculate, "Dias de férias foram descontados dos dias a serem pagos.")
	r.say(StepCalculate, "Valor final do benefício foi calculado multiplicando os dias devidos pelo valor do sindicato.")
	r.say(StepCalculate, "Resumo dos Ajustes: %s", out.Summary.Adjustments())
	for _, w := range out.Summary.Warnings() {
		r.say(StepCalculate, "Aviso: %s", w)
	}
	res.Warnings = append(res.Warnings, out.Summary.Warnings()...)

	// 7. Relatório
	if err := ctx.Err(); err != nil {
		return nil, r.fail(StepReport, err)
	}
	paths, err := o.write(req.OutputDir, out)
	if err != nil {
		return nil, r.fail(StepReport, err)
	}
	r.say(StepReport, "Planilha final gerada em: %s", paths[0])
	if len(paths) > 1 {
		r.say(StepReport, "Exportação CSV gerada em: %s", paths[1])
		res.CSVPath = paths[1]
	}
	r.say(StepReport, "Valor total do benefício consolidado: %s", report.FormatBRL(out.Summary.Total))

	res.OutputPath = paths[0]
	res.Results = results
	res.Summary = out.Summary
	res.Total = out.Summary.Total
	res.FinishedAt = time.Now()
	return res, nil
}

// write saves the workbook and the optional CSV. On failure nothing is left
// behind.
func (o *Orchestrator) write(dir string, out report.Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("pipeline: output dir: %w", err)
	}
	xlsxPath := filepath.Join(dir, report.FileName(out.Context))
	if err := report.WriteXLSX(xlsxPath, out); err != nil {
		return nil, err
	}
	if !o.WriteCSV {
		return []string{xlsxPath}, nil
	}
	csvPath := filepath.Join(dir, report.CSVFileName(out.Context))
	if err := report.SaveCSV(csvPath, out); err != nil {
		os.Remove(xlsxPath)
		os.Remove(csvPath)
		return nil, err
	}
	return []string{xlsxPath, csvPath}, nil
}
