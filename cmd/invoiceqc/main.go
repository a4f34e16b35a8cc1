package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/garyjia/invoice-qc/internal/ai"
	"github.com/garyjia/invoice-qc/internal/config"
	"github.com/garyjia/invoice-qc/internal/extract"
	"github.com/garyjia/invoice-qc/internal/models"
	"github.com/garyjia/invoice-qc/internal/report"
	"github.com/garyjia/invoice-qc/internal/repository"
	"github.com/garyjia/invoice-qc/internal/validate"
	"github.com/garyjia/invoice-qc/pkg/database"
	"github.com/garyjia/invoice-qc/pkg/utils"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
)

const usage = `Invoice Extraction & QC

Usage:
  invoiceqc extract  --pdf-dir DIR --output FILE   Extract invoices from PDFs to JSON
  invoiceqc validate --input FILE --report FILE    Validate invoices from JSON
  invoiceqc full-run --pdf-dir DIR --report FILE   Extract from PDFs and then validate

Common flags:
  --config FILE  Config file path (default configs/config.yaml)

Exit status is 0 when every invoice is valid, 1 otherwise. The report is
written in both cases.`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}

	_ = gotenv.Load()

	command := args[0]
	fs := flag.NewFlagSet(command, flag.ExitOnError)
	configPath := fs.String("config", "configs/config.yaml", "config file path")
	pdfDir := fs.String("pdf-dir", "", "directory containing invoice PDFs")
	output := fs.String("output", "", "output JSON file for extracted invoices")
	input := fs.String("input", "", "input JSON file with an invoices list")
	reportPath := fs.String("report", "", "output JSON report path")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 2
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 2
	}
	defer logger.Sync()

	switch command {
	case "extract":
		if *pdfDir == "" || *output == "" {
			fmt.Fprintln(os.Stderr, "extract requires --pdf-dir and --output")
			return 2
		}
		return cmdExtract(cfg, logger, *pdfDir, *output)
	case "validate":
		if *input == "" || *reportPath == "" {
			fmt.Fprintln(os.Stderr, "validate requires --input and --report")
			return 2
		}
		return cmdValidate(cfg, logger, *input, *reportPath)
	case "full-run":
		if *pdfDir == "" || *reportPath == "" {
			fmt.Fprintln(os.Stderr, "full-run requires --pdf-dir and --report")
			return 2
		}
		return cmdFullRun(cfg, logger, *pdfDir, *reportPath)
	default:
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}
}

func newAssembler(cfg *config.Config, logger *zap.Logger) *extract.Assembler {
	var fallback extract.FallbackExtractor
	if cfg.OpenAI.Enabled {
		fallback = ai.NewExtractor(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.Temperature, cfg.OpenAI.Timeout, logger)
	}
	return extract.NewAssembler(extract.NewFitzReader(logger), fallback, logger)
}

func cmdExtract(cfg *config.Config, logger *zap.Logger, pdfDir, output string) int {
	assembler := newAssembler(cfg, logger)
	invoices, err := assembler.ExtractBatch(context.Background(), pdfDir)
	if err != nil {
		logger.Error("Extraction failed", zap.Error(err))
		return 2
	}
	if err := report.WriteInvoicesJSON(output, invoices); err != nil {
		logger.Error("Failed to write invoices", zap.Error(err))
		return 2
	}
	fmt.Printf("Extracted %d invoices to %s\n", len(invoices), output)
	return 0
}

func cmdValidate(cfg *config.Config, logger *zap.Logger, input, reportPath string) int {
	invoices, err := report.ReadInvoicesJSON(input)
	if err != nil {
		logger.Error("Failed to read invoices", zap.Error(err))
		return 2
	}
	return validateAndReport(cfg, logger, invoices, reportPath)
}

func cmdFullRun(cfg *config.Config, logger *zap.Logger, pdfDir, reportPath string) int {
	assembler := newAssembler(cfg, logger)
	invoices, err := assembler.ExtractBatch(context.Background(), pdfDir)
	if err != nil {
		logger.Error("Extraction failed", zap.Error(err))
		return 2
	}
	return validateAndReport(cfg, logger, invoices, reportPath)
}

func validateAndReport(cfg *config.Config, logger *zap.Logger, invoices []models.Invoice, reportPath string) int {
	engine := validate.NewEngine(logger)
	results, summary := engine.ValidateBatch(invoices)
	rep := &models.Report{Summary: summary, Results: results}

	if err := report.WriteJSON(reportPath, rep); err != nil {
		logger.Error("Failed to write report", zap.Error(err))
		return 2
	}

	if cfg.Database.Path != "" {
		if err := persistRun(cfg, logger, rep); err != nil {
			logger.Error("Failed to persist validation run", zap.Error(err))
			return 2
		}
	}

	if cfg.Report.ExcelPath != "" {
		exporter := report.NewExcelExporter(logger)
		if err := exporter.Export(rep, cfg.Report.ExcelPath); err != nil {
			logger.Error("Failed to export Excel report", zap.Error(err))
			return 2
		}
	}

	report.PrintSummary(os.Stdout, summary)

	if summary.InvalidInvoices > 0 {
		return 1
	}
	return 0
}

func persistRun(cfg *config.Config, logger *zap.Logger, rep *models.Report) error {
	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.NewMigrator(db, logger).Run(); err != nil {
		return err
	}

	_, err = repository.NewRunRepository(db, logger).SaveRun(rep)
	return err
}
