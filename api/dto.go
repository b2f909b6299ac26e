/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupled from the
  voucher and pipeline types.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Request types carry go-playground/validator tags; handlers validate
  before calling the pipeline.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/rules.go: RulesJSON type
*/
package api

import (
	"time"

	"github.com/warp/benefit-engine/factory"
	"github.com/warp/benefit-engine/generic"
	"github.com/warp/benefit-engine/pipeline"
	"github.com/warp/benefit-engine/report"
	"github.com/warp/benefit-engine/voucher"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// CreateRunRequest starts a run. Directories are relative to the server's
// input and output roots.
type CreateRunRequest struct {
	Competency string `json:"competencia" validate:"required"`
	InputDir   string `json:"input_dir" validate:"required"`
	OutputDir  string `json:"output_dir" validate:"required"`
}

// RunDTO is a finished run.
type RunDTO struct {
	RunID      string              `json:"run_id"`
	Competency string              `json:"competencia"`
	Rule       string              `json:"regra_pos15"`
	Total      string              `json:"total"`
	TotalBRL   string              `json:"total_brl"`
	Summary    voucher.Summary     `json:"summary"`
	Warnings   []string            `json:"warnings"`
	Logs       map[string][]string `json:"logs"`
	FileReport map[string]string   `json:"file_report"`
	OutputPath string              `json:"output_path,omitempty"`
	CSVPath    string              `json:"csv_path,omitempty"`
	StartedAt  string              `json:"started_at"`
	FinishedAt string              `json:"finished_at"`
	Rows       []ResultDTO         `json:"rows"`
}

// ResultDTO is one employee line of a run.
type ResultDTO struct {
	ID            string `json:"matricula,omitempty"`
	Admission     string `json:"admissao,omitempty"`
	Union         string `json:"sindicato"`
	Region        string `json:"estado,omitempty"`
	Days          int    `json:"dias"`
	UnitValue     string `json:"valor_diario"`
	Total         string `json:"total"`
	EmployerShare string `json:"custo_empresa"`
	EmployeeShare string `json:"desconto_profissional"`
	Observation   string `json:"obs,omitempty"`
}

// RunListItemDTO is a run in the recent-runs list.
type RunListItemDTO struct {
	RunID      string `json:"run_id"`
	Competency string `json:"competencia"`
	Total      string `json:"total"`
	Employees  int    `json:"employees"`
	FinishedAt string `json:"finished_at"`
}

// RegionsDTO is the active classifier table.
type RegionsDTO struct {
	Rules   factory.RulesJSON `json:"rules"`
	Regions []RegionDTO       `json:"regions"`
}

// RegionDTO names a supported region.
type RegionDTO struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// HealthDTO is the health probe answer.
type HealthDTO struct {
	Status string `json:"status"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toRunDTO(res *pipeline.Result) RunDTO {
	logs := make(map[string][]string, len(res.Logs))
	for step, lines := range res.Logs {
		logs[string(step)] = lines
	}
	files := make(map[string]string, len(res.FileReport))
	for k, v := range res.FileReport {
		files[k] = v
	}
	warnings := res.Warnings
	if warnings == nil {
		warnings = []string{}
	}

	rows := make([]ResultDTO, len(res.Results))
	for i, r := range res.Results {
		rows[i] = toResultDTO(r)
	}

	return RunDTO{
		RunID:      res.RunID,
		Competency: res.Competency,
		Rule:       string(res.Rule),
		Total:      res.Total.StringFixed(generic.Cents),
		TotalBRL:   report.FormatBRL(res.Total),
		Summary:    res.Summary,
		Warnings:   warnings,
		Logs:       logs,
		FileReport: files,
		OutputPath: res.OutputPath,
		CSVPath:    res.CSVPath,
		StartedAt:  res.StartedAt.Format(time.RFC3339),
		FinishedAt: res.FinishedAt.Format(time.RFC3339),
		Rows:       rows,
	}
}

func toResultDTO(r voucher.Result) ResultDTO {
	dto := ResultDTO{
		Union:         r.Employee.Union,
		Region:        string(r.Region),
		Days:          r.PayableDays,
		UnitValue:     r.UnitValue.StringFixed(generic.Cents),
		Total:         r.Total.StringFixed(generic.Cents),
		EmployerShare: r.EmployerShare.StringFixed(generic.Cents),
		EmployeeShare: r.EmployeeShare.StringFixed(generic.Cents),
		Observation:   r.Observation,
	}
	if r.Employee.ID != nil {
		dto.ID = r.Employee.ID.String()
	}
	if r.AdmissionDate != nil {
		dto.Admission = r.AdmissionDate.String()
	}
	return dto
}

func toRunListItem(res *pipeline.Result) RunListItemDTO {
	return RunListItemDTO{
		RunID:      res.RunID,
		Competency: res.Competency,
		Total:      res.Total.StringFixed(generic.Cents),
		Employees:  len(res.Results),
		FinishedAt: res.FinishedAt.Format(time.RFC3339),
	}
}
