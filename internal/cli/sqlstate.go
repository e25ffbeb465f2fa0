package cli

// This file implements the "sqlstate" command for packing five-character
// status codes into the engine's integer form and back.

import (
	"fmt"
	"strconv"

	"fortio.org/safecast"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pgbridge/internal/elog"
)

// SQLStateManager converts status codes.
type SQLStateManager struct {
	logger  *zap.Logger
	printer *Printer
}

// NewSQLStateManager creates a SQLStateManager with the given dependencies.
func NewSQLStateManager(printer *Printer, logger *zap.Logger) *SQLStateManager {
	return &SQLStateManager{logger: logger, printer: printer}
}

// NewSQLStateCmd returns the sqlstate subcommand.
func NewSQLStateCmd(logger *zap.Logger) *cobra.Command {
	return NewSQLStateCmdWithManager(NewSQLStateManager(DefaultPrinter, logger))
}

// NewSQLStateCmdWithManager returns the sqlstate subcommand using the provided manager.
func NewSQLStateCmdWithManager(mgr *SQLStateManager) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sqlstate",
		Short: "Convert SQLSTATE codes",
		Long:  "Commands for converting SQLSTATE codes to and from their packed integer form",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "encode CODE",
		Short: "Pack a five-character SQLSTATE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			packed, err := mgr.Encode(args[0])
			if err != nil {
				return err
			}
			mgr.printer.Printf("%d\n", packed)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "decode VALUE",
		Short: "Unpack an integer SQLSTATE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := mgr.Decode(args[0])
			if err != nil {
				return err
			}
			mgr.printer.Printf("%s\n", code)
			return nil
		},
	})

	return cmd
}

// Encode packs code.
func (m *SQLStateManager) Encode(code string) (int32, error) {
	state, err := elog.MakeSQLState(code)
	if err != nil {
		wrappedErr := wrapWithSentinelAndContext(ErrInvalidSQLStateArg, err,
			fmt.Sprintf("invalid sqlstate %q", code), map[string]any{"code": code})
		m.printer.Error("Invalid SQLSTATE")
		logStructuredError(m.logger, wrappedErr, "Invalid SQLSTATE")
		return 0, wrappedErr
	}
	return int32(state), nil
}

// Decode unpacks a decimal integer.
func (m *SQLStateManager) Decode(value string) (string, error) {
	n, err := strconv.ParseInt(value, 10, 64)
	if err == nil {
		var packed int32
		packed, err = safecast.Conv[int32](n)
		if err == nil {
			if state := elog.SQLState(packed); state.Valid() {
				return state.String(), nil
			}
			err = fmt.Errorf("%d does not unpack to a SQLSTATE", packed)
		}
	}
	wrappedErr := wrapWithSentinelAndContext(ErrInvalidPackedValue, err,
		fmt.Sprintf("invalid packed sqlstate %q: %v", value, err), map[string]any{"value": value})
	m.printer.Error("Invalid packed SQLSTATE")
	logStructuredError(m.logger, wrappedErr, "Invalid packed SQLSTATE")
	return "", wrappedErr
}
