package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/codescalpel/codescalpel/dsl"
	"github.com/codescalpel/codescalpel/graph"
	"github.com/codescalpel/codescalpel/graph/callgraph/builder"
	"github.com/codescalpel/codescalpel/graph/callgraph/core"
	"github.com/codescalpel/codescalpel/graph/callgraph/registry"
	"github.com/codescalpel/codescalpel/output"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a project for taint findings using DSL rules",
	Long: `Scan a codebase using declarative taint/pattern rules.

Examples:
  scalpel scan --rules rules/ --project /path/to/project
  scalpel scan --rules rules/sqli.py --project . --output sarif --output-file results.sarif`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		rulesPath, _ := cmd.Flags().GetString("rules")
		projectPath, _ := cmd.Flags().GetString("project")
		verbose, _ := cmd.Flags().GetBool("verbose")
		debug, _ := cmd.Flags().GetBool("debug")
		failOnStr, _ := cmd.Flags().GetString("fail-on")
		outputFormat, _ := cmd.Flags().GetString("output")
		outputFile, _ := cmd.Flags().GetString("output-file")
		skipTests, _ := cmd.Flags().GetBool("skip-tests")

		if rulesPath == "" {
			return fmt.Errorf("--rules flag is required")
		}
		if projectPath == "" {
			return fmt.Errorf("--project flag is required")
		}

		verbosity := output.VerbosityDefault
		if debug {
			verbosity = output.VerbosityDebug
		} else if verbose {
			verbosity = output.VerbosityVerbose
		}
		logger := output.NewLogger(verbosity)

		noBanner, _ := cmd.Flags().GetBool("no-banner")
		if output.ShouldShowBanner(logger.IsTTY(), noBanner) {
			output.PrintBanner(logger.GetWriter(), Version, output.DefaultBannerOptions())
		}

		failOn := output.ParseFailOn(failOnStr)
		if len(failOn) > 0 {
			if err := output.ValidateSeverities(failOn); err != nil {
				return err
			}
		}

		if outputFormat != "" && outputFormat != "text" && outputFormat != "json" && outputFormat != "sarif" && outputFormat != "csv" {
			return fmt.Errorf("--output must be 'text', 'json', 'sarif', or 'csv'")
		}

		absProjectPath, err := filepath.Abs(projectPath)
		if err != nil {
			return fmt.Errorf("failed to resolve project path: %w", err)
		}
		projectPath = absProjectPath

		loader := dsl.NewRuleLoader(rulesPath)

		codeGraph := graph.Initialize(projectPath, &graph.ProgressCallbacks{
			OnStart: func(totalFiles int) {
				logger.StartProgress("Building code graph", totalFiles)
			},
			OnProgress: func() {
				logger.UpdateProgress(1)
			},
		})
		logger.FinishProgress()
		if len(codeGraph.Nodes) == 0 {
			return fmt.Errorf("no source files found in project")
		}
		logger.Statistic("Code graph built: %d nodes", len(codeGraph.Nodes))

		logger.StartProgress("Building module registry", -1)
		moduleRegistry, err := registry.BuildModuleRegistry(projectPath, skipTests)
		logger.FinishProgress()
		if err != nil {
			logger.Warning("failed to build module registry: %v", err)
			moduleRegistry = core.NewModuleRegistry()
		}

		logger.StartProgress("Building call/taint graph", -1)
		cg, err := builder.BuildCallGraph(codeGraph, moduleRegistry, projectPath, logger)
		logger.FinishProgress()
		if err != nil {
			return fmt.Errorf("failed to build call graph: %w", err)
		}
		logger.Statistic("Call graph built: %d functions, %d call sites", len(cg.Functions), countTotalCallSites(cg))

		logger.StartProgress("Loading rules", -1)
		rules, err := loader.LoadRules()
		logger.FinishProgress()
		if err != nil {
			return fmt.Errorf("failed to load rules: %w", err)
		}
		if len(rules) == 0 {
			return fmt.Errorf("no rules loaded: %s contains no @rule definitions", rulesPath)
		}
		logger.Statistic("Loaded %d rules", len(rules))

		enricher := output.NewEnricher(cg, &output.OutputOptions{
			ProjectRoot:  projectPath,
			ContextLines: 3,
			Verbosity:    verbosity,
		})

		var allEnriched []*dsl.EnrichedDetection
		var scanErrors bool
		logger.StartProgress("Executing rules", len(rules))
		for _, rule := range rules {
			detections, err := loader.ExecuteRule(&rule, cg)
			if err != nil {
				logger.Warning("Error executing rule %s: %v", rule.Rule.ID, err)
				scanErrors = true
				logger.UpdateProgress(1)
				continue
			}
			if len(detections) > 0 {
				enriched, _ := enricher.EnrichAll(detections, rule)
				allEnriched = append(allEnriched, enriched...)
			}
			logger.UpdateProgress(1)
		}
		logger.FinishProgress()

		uniqueRules := make(map[string]bool)
		for _, det := range allEnriched {
			uniqueRules[det.Rule.ID] = true
		}
		summary := output.BuildSummary(allEnriched, len(uniqueRules))

		if outputFormat == "" {
			outputFormat = "text"
		}

		var outputWriter *os.File
		if outputFile != "" {
			outputWriter, err = os.Create(outputFile)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer outputWriter.Close()
		}

		scanInfo := output.ScanInfo{
			Target:        projectPath,
			Version:       Version,
			RulesExecuted: len(uniqueRules),
			Errors:        []string{},
		}

		switch outputFormat {
		case "text":
			formatter := output.NewTextFormatter(&output.OutputOptions{Verbosity: verbosity}, logger)
			if err := formatter.Format(allEnriched, summary); err != nil {
				return fmt.Errorf("failed to format output: %w", err)
			}
		case "json":
			var formatter *output.JSONFormatter
			if outputWriter != nil {
				formatter = output.NewJSONFormatterWithWriter(outputWriter, nil)
			} else {
				formatter = output.NewJSONFormatter(nil)
			}
			if err := formatter.Format(allEnriched, summary, scanInfo); err != nil {
				return fmt.Errorf("failed to format JSON output: %w", err)
			}
		case "sarif":
			var formatter *output.SARIFFormatter
			if outputWriter != nil {
				formatter = output.NewSARIFFormatterWithWriter(outputWriter, nil)
			} else {
				formatter = output.NewSARIFFormatter(nil)
			}
			if err := formatter.Format(allEnriched, scanInfo); err != nil {
				return fmt.Errorf("failed to format SARIF output: %w", err)
			}
		case "csv":
			var formatter *output.CSVFormatter
			if outputWriter != nil {
				formatter = output.NewCSVFormatterWithWriter(outputWriter, nil)
			} else {
				formatter = output.NewCSVFormatter(nil)
			}
			if err := formatter.Format(allEnriched); err != nil {
				return fmt.Errorf("failed to format CSV output: %w", err)
			}
		default:
			return fmt.Errorf("unknown output format: %s", outputFormat)
		}

		exitCode := output.DetermineExitCode(allEnriched, failOn, scanErrors)
		if exitCode != output.ExitCodeSuccess {
			os.Exit(int(exitCode))
		}

		return nil
	},
}

func countTotalCallSites(cg *core.CallGraph) int {
	total := 0
	for _, sites := range cg.CallSites {
		total += len(sites)
	}
	return total
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringP("rules", "r", "", "Path to DSL rules file or directory (required)")
	scanCmd.Flags().StringP("project", "p", "", "Path to project directory to scan (required)")
	scanCmd.Flags().StringP("output", "o", "text", "Output format: text, json, sarif, or csv")
	scanCmd.Flags().StringP("output-file", "f", "", "Write output to file instead of stdout")
	scanCmd.Flags().BoolP("verbose", "v", false, "Show statistics and timing information")
	scanCmd.Flags().Bool("debug", false, "Show detailed debug diagnostics")
	scanCmd.Flags().String("fail-on", "", "Fail with exit code 1 if findings match severities (e.g., critical,high)")
	scanCmd.Flags().Bool("skip-tests", true, "Skip test files")
	scanCmd.MarkFlagRequired("project")
	scanCmd.MarkFlagRequired("rules")
}
