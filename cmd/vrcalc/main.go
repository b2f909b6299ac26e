/*
main.go - Command-line entry point

PURPOSE:
  Runs one competency from the terminal and prints the narration of each
  step, or imports the collected inputs into a SQLite file.

COMMAND-LINE FLAGS:
  -c          Competency, YYYY-MM-DD or YYYY-MM (required)
  -i          Input directory or database (default: source.path)
  -o          Output directory (default: output), created when missing
  -config     Config file (default: config.yaml)
  -csv        Also write the CSV export
  -source     Input backend override: xlsx, csv or sqlite
  -regra      Post-15 rule override: integral or pro-rata
  -export-db  Import the collected inputs into this SQLite file and exit

EXAMPLES:
  vrcalc -c 2025-06-01
  vrcalc -c 2025-06 -i documentos -o output -csv
  vrcalc -c 2025-06 -export-db entradas.db
  vrcalc -c 2025-06 -source sqlite -i entradas.db
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/warp/benefit-engine/config"
	"github.com/warp/benefit-engine/pipeline"
	"github.com/warp/benefit-engine/report"
	"github.com/warp/benefit-engine/source"
	"github.com/warp/benefit-engine/store/sqlite"
	"github.com/warp/benefit-engine/voucher"
)

func main() {
	competency := flag.String("c", "", "Competency, YYYY-MM-DD or YYYY-MM (required)")
	input := flag.String("i", "", "Input directory or database (default: source.path)")
	output := flag.String("o", "output", "Output directory")
	configPath := flag.String("config", config.DefaultPath, "Config file")
	writeCSV := flag.Bool("csv", false, "Also write the CSV export")
	kind := flag.String("source", "", "Input backend: xlsx, csv or sqlite")
	rule := flag.String("regra", "", "Post-15 rule: integral or pro-rata")
	exportDB := flag.String("export-db", "", "Import the collected inputs into this SQLite file and exit")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(logger, options{
		competency: *competency,
		input:      *input,
		output:     *output,
		configPath: *configPath,
		csv:        *writeCSV,
		kind:       *kind,
		rule:       *rule,
		exportDB:   *exportDB,
	}); err != nil {
		logger.Error("falha na execução do processo", "error", err)
		fmt.Fprintf(os.Stderr, "Ocorreu uma falha: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	competency string
	input      string
	output     string
	configPath string
	csv        bool
	kind       string
	rule       string
	exportDB   string
}

func run(logger *slog.Logger, opts options) error {
	if opts.competency == "" && opts.exportDB == "" {
		flag.Usage()
		return fmt.Errorf("-c is required")
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.kind != "" {
		cfg.Source.Kind = strings.ToLower(opts.kind)
	}
	if opts.rule != "" {
		r, err := voucher.ParsePos15Rule(opts.rule)
		if err != nil {
			return err
		}
		cfg.Pos15Rule = string(r)
	}
	input := opts.input
	if input == "" {
		input = cfg.Source.Path
	}

	src, err := cfg.NewSource(logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.exportDB != "" {
		return export(ctx, src, input, opts.exportDB)
	}

	if err := os.MkdirAll(opts.output, 0o755); err != nil {
		return err
	}

	orch := pipeline.New(src, cfg.Rules(), cfg.Rule())
	orch.Logger = logger
	orch.Calculator.Logger = logger
	orch.Calculator.Workers = cfg.Calculator.Workers
	orch.WriteCSV = opts.csv || cfg.Report.CSV
	orch.Progress = func(step pipeline.Step, msg string) {
		fmt.Printf("[%s] %s\n", step, msg)
	}

	res, err := orch.Run(ctx, pipeline.Request{
		Competency: opts.competency,
		InputDir:   input,
		OutputDir:  opts.output,
	})
	if err != nil {
		return err
	}

	if res.OutputPath == "" {
		fmt.Println("Nenhum colaborador elegível; nenhum arquivo gerado.")
		return nil
	}
	fmt.Printf("Total: %s\nArquivo: %s\n", report.FormatBRL(res.Total), res.OutputPath)
	return nil
}

// export copies the collected inputs into a SQLite file.
func export(ctx context.Context, src source.Source, input, dbPath string) error {
	tables, files, err := src.Load(ctx, input)
	if err != nil {
		return err
	}
	store, err := sqlite.New(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.ImportTables(ctx, tables, files); err != nil {
		return err
	}
	catalog, err := store.Catalog(ctx)
	if err != nil {
		return err
	}
	for _, e := range catalog {
		fmt.Printf("%-14s %5d registros  %s\n", e.Table, e.RowCount, e.SourceFile)
	}
	fmt.Printf("Entradas importadas em %s\n", dbPath)
	return nil
}
