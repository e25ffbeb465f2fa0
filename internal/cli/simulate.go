package cli

// This file implements the "simulate" command. It runs scripted scenarios
// against the simulated engine, one Bridge per scenario, and prints what the
// engine emitted and how each guard exited.

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-logr/zapr"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"sigs.k8s.io/yaml"

	"pgbridge/internal/scenario"
)

// Output formats for simulate.
const (
	OutputYAML  = "yaml"
	OutputTable = "table"
)

// SimulateManager runs scenarios with injected dependencies.
type SimulateManager struct {
	logger     *zap.Logger
	printer    *Printer
	configPath *string
}

// NewSimulateManager creates a SimulateManager. configPath points at the root
// command's --config value and is read when a command runs.
func NewSimulateManager(printer *Printer, logger *zap.Logger, configPath *string) *SimulateManager {
	return &SimulateManager{logger: logger, printer: printer, configPath: configPath}
}

// NewSimulateCmd returns the simulate subcommand.
func NewSimulateCmd(logger *zap.Logger, configPath *string) *cobra.Command {
	return NewSimulateCmdWithManager(NewSimulateManager(DefaultPrinter, logger, configPath))
}

// NewSimulateCmdWithManager returns the simulate subcommand using the provided manager.
func NewSimulateCmdWithManager(mgr *SimulateManager) *cobra.Command {
	var flags Overrides
	var output string

	cmd := &cobra.Command{
		Use:   "simulate SCENARIO...",
		Short: "Run error-propagation scenarios",
		Long: `Run scenario files against the simulated engine.
Each scenario gets its own engine and Bridge; scenarios run in parallel.
A scenario lists report, guard, native_error and context steps.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mgr.Simulate(cmd.Context(), args, flags, output)
		},
	}

	cmd.Flags().StringVar(&flags.MinLevel, "min-level", "", "Visibility threshold (overrides config and PGBRIDGE_MIN_LEVEL)")
	cmd.Flags().StringVar(&flags.ServerEncoding, "encoding", "", "Server encoding (overrides config and PGBRIDGE_SERVER_ENCODING)")
	cmd.Flags().StringVarP(&output, "output", "o", OutputYAML, "Output format: yaml or table")

	return cmd
}

// Simulate loads and runs the scenario files.
func (m *SimulateManager) Simulate(ctx context.Context, paths []string, flags Overrides, output string) error {
	if output != OutputYAML && output != OutputTable {
		err := newWithSentinel(ErrUnknownOutput, fmt.Sprintf("unknown output format %q", output))
		m.printer.Error("Unknown output format")
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	path := ""
	if m.configPath != nil {
		path = *m.configPath
	}
	cfg, err := resolveConfig(path, flags)
	if err != nil {
		m.printer.Error("Failed to load configuration")
		logStructuredError(m.logger, err, "Failed to load configuration")
		return err
	}

	scenarios := make([]*scenario.Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := scenario.Load(p)
		if err != nil {
			wrappedErr := wrapWithSentinelAndContext(ErrLoadScenarioFailed, err,
				fmt.Sprintf("failed to load scenario %s: %v", p, err), map[string]any{"path": p})
			m.printer.Error("Failed to load scenario")
			logStructuredError(m.logger, wrappedErr, "Failed to load scenario")
			return wrappedErr
		}
		scenarios = append(scenarios, s)
	}

	m.logger.Debug("Running scenarios", zap.Int("count", len(scenarios)),
		zap.String("min_level", cfg.MinLevel), zap.String("server_encoding", cfg.ServerEncoding))

	runner := scenario.NewRunner(cfg, zapr.NewLogger(m.logger))
	results, err := runner.RunAll(ctx, scenarios)
	if err != nil {
		wrappedErr := wrapWithSentinel(ErrSimulateFailed, err, fmt.Sprintf("simulation failed: %v", err))
		m.printer.Error("Simulation failed")
		logStructuredError(m.logger, wrappedErr, "Simulation failed")
		return wrappedErr
	}

	if output == OutputTable {
		m.printTables(results)
		return nil
	}
	data, err := yaml.Marshal(results)
	if err != nil {
		wrappedErr := wrapWithSentinel(ErrRenderResultsFailed, err, fmt.Sprintf("failed to render results: %v", err))
		logStructuredError(m.logger, wrappedErr, "Failed to render results")
		return wrappedErr
	}
	m.printer.Printf("%s", data)
	return nil
}

func (m *SimulateManager) printTables(results []*scenario.Result) {
	for _, res := range results {
		m.printer.Section(res.Name)

		exits := [][]string{{"Scope", "Depth", "Outcome", "Kind"}}
		for _, e := range res.Exits {
			exits = append(exits, []string{
				strconv.FormatUint(e.Scope, 10), strconv.Itoa(e.Depth), e.Outcome, e.Kind,
			})
		}
		m.printer.TableBoxed(exits)

		if len(res.Emitted) > 0 {
			emitted := [][]string{{"Level", "SQLSTATE", "Message", "Location"}}
			for _, em := range res.Emitted {
				emitted = append(emitted, []string{em.Level, em.SQLState, em.Message, em.Location})
			}
			m.printer.Table(emitted)
		}

		switch {
		case res.TopLevel != nil:
			m.printer.Warn(fmt.Sprintf("%s reached the top level: %s", res.TopLevel.Level, res.TopLevel.Message))
		case res.Error != "":
			m.printer.Error(res.Error)
		default:
			m.printer.Success("completed")
		}
	}
}
