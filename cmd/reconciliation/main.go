package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/finautomation/reconciliation-engine/internal/config"
	"github.com/finautomation/reconciliation-engine/internal/discrepancy"
	"github.com/finautomation/reconciliation-engine/internal/logging"
	"github.com/finautomation/reconciliation-engine/internal/matcher"
	"github.com/finautomation/reconciliation-engine/internal/parser"
	"github.com/finautomation/reconciliation-engine/internal/report"
	"github.com/finautomation/reconciliation-engine/internal/retriever"
	"github.com/finautomation/reconciliation-engine/internal/service"
)

func main() {
	// Command-line flags
	var (
		statementFile  string
		candidatesFile string
		accountID      string
		configFile     string
		outputFormat   string
		outputFile     string
		prettyPrint    bool
	)

	flag.StringVar(&statementFile, "statement", "", "Path to the bank statement file (OFX, CSV or PDF)")
	flag.StringVar(&candidatesFile, "candidates", "", "Path to a JSON file with receivable/payable candidates")
	flag.StringVar(&accountID, "account", "", "Bank account identifier for the report")
	flag.StringVar(&configFile, "config", "", "Path to a YAML config file (defaults apply when empty)")
	flag.StringVar(&outputFormat, "format", "json", "Output format: json or text")
	flag.StringVar(&outputFile, "output", "", "Path to output file (if empty, writes to stdout)")
	flag.BoolVar(&prettyPrint, "pretty", true, "Pretty print JSON output")

	flag.Parse()

	// Validate required flags
	if statementFile == "" {
		exitWithError("Statement file path is required")
	}
	if candidatesFile == "" {
		exitWithError("Candidates file path is required")
	}

	cfg := config.Default()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			exitWithError(fmt.Sprintf("Loading config failed: %v", err))
		}
		cfg = loaded
	}

	logger := logging.NewLogger(cfg.Logging)

	content, err := os.ReadFile(statementFile)
	if err != nil {
		exitWithError(fmt.Sprintf("Reading statement file failed: %v", err))
	}

	candidates, err := retriever.LoadFromFile(candidatesFile)
	if err != nil {
		exitWithError(fmt.Sprintf("Loading candidates failed: %v", err))
	}

	svc := service.NewReconciliationService(
		parser.NewStatementParser(cfg.Files, logger),
		candidates,
		matcher.NewFuzzyScorer(cfg.Matching),
		discrepancy.NewRuleBasedDetector(candidates, cfg.Matching, logger),
		cfg,
		logger,
	)

	result, err := svc.ProcessStatement(context.Background(), content, statementFile, accountID)
	if err != nil {
		exitWithError(fmt.Sprintf("Reconciliation failed: %v", err))
	}

	// Format the output
	var formatter report.OutputFormatter
	switch outputFormat {
	case "json":
		formatter = report.NewJSONFormatter(prettyPrint)
	case "text":
		formatter = report.NewTextFormatter()
	default:
		exitWithError(fmt.Sprintf("Unsupported output format: %s", outputFormat))
		return
	}

	output, err := formatter.Format(result)
	if err != nil {
		exitWithError(fmt.Sprintf("Failed to format output: %v", err))
	}

	// Output the result
	if outputFile != "" {
		// If no extension is provided, add the formatter's default extension
		if !strings.Contains(outputFile, ".") {
			outputFile = fmt.Sprintf("%s.%s", outputFile, formatter.FileExtension())
		}

		if err := os.WriteFile(outputFile, output, 0644); err != nil {
			exitWithError(fmt.Sprintf("Failed to write output file: %v", err))
		}

	} else {
		fmt.Println(string(output))
	}
}

func exitWithError(message string) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", message)
	fmt.Fprintf(os.Stderr, "Run with -h flag for usage information.\n")
	os.Exit(1)
}
