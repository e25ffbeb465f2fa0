package cli

// This file implements the "levels" command, which lists the severity scale
// and how each level is treated under a visibility threshold.

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pgbridge/internal/elog"
)

// LevelsManager prints the severity scale.
type LevelsManager struct {
	logger  *zap.Logger
	printer *Printer
}

// NewLevelsManager creates a LevelsManager with the given dependencies.
func NewLevelsManager(printer *Printer, logger *zap.Logger) *LevelsManager {
	return &LevelsManager{logger: logger, printer: printer}
}

// NewLevelsCmd returns the levels subcommand.
func NewLevelsCmd(logger *zap.Logger) *cobra.Command {
	return NewLevelsCmdWithManager(NewLevelsManager(DefaultPrinter, logger))
}

// NewLevelsCmdWithManager returns the levels subcommand using the provided manager.
func NewLevelsCmdWithManager(mgr *LevelsManager) *cobra.Command {
	var minLevel string

	cmd := &cobra.Command{
		Use:   "levels",
		Short: "List severity levels",
		Long: `List the engine's severity levels with their numeric values.
Levels at ERROR and above divert control flow; the others are emitted
when they reach the visibility threshold.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return mgr.ShowLevels(minLevel)
		},
	}

	cmd.Flags().StringVar(&minLevel, "min-level", "NOTICE", "Visibility threshold")

	return cmd
}

// ShowLevels prints the level table for the given threshold.
func (m *LevelsManager) ShowLevels(minLevel string) error {
	threshold, err := elog.ParseLevel(minLevel)
	if err != nil {
		wrappedErr := wrapWithSentinel(ErrInvalidLevelFlag, err, fmt.Sprintf("invalid --min-level: %v", err))
		m.printer.Error("Invalid severity level")
		logStructuredError(m.logger, wrappedErr, "Invalid severity level")
		return wrappedErr
	}

	rows := [][]string{{"Level", "Value", "Diverting", "Emitted"}}
	for _, level := range elog.Levels {
		rows = append(rows, []string{
			level.String(),
			strconv.Itoa(int(level)),
			yesNo(elog.IsDiverting(level)),
			yesNo(elog.IsDiverting(level) || elog.IsVisible(level, threshold)),
		})
	}

	m.printer.Section(fmt.Sprintf("Severity levels (threshold %s)", threshold))
	m.printer.Table(rows)
	m.logger.Debug("Listed severity levels", zap.String("min_level", threshold.String()))
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
