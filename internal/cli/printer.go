package cli

// This file implements terminal output on top of pterm: section headers,
// status lines, tables and spinners. A quiet Printer prints nothing.

import (
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"
)

// Printer writes styled output to Out, or to stdout when Out is nil.
type Printer struct {
	Quiet bool
	Out   io.Writer
}

// DefaultPrinter is the printer used by the package-level helpers.
var DefaultPrinter = &Printer{}

func (p *Printer) out() io.Writer {
	if p.Out != nil {
		return p.Out
	}
	return os.Stdout
}

func (p *Printer) emit(s string) {
	if p.Quiet {
		return
	}
	fmt.Fprintln(p.out(), s)
}

// Header prints a full-width title.
func (p *Printer) Header(text string) {
	p.emit(pterm.DefaultHeader.WithFullWidth().Sprint(text))
}

// Section prints a section title.
func (p *Printer) Section(text string) {
	p.emit(pterm.DefaultSection.Sprint(text))
}

// Step prints one progress line.
func (p *Printer) Step(text string) {
	p.emit(pterm.FgCyan.Sprint("→ ") + text)
}

// Info prints an informational line.
func (p *Printer) Info(text string) {
	p.emit(pterm.Info.Sprint(text))
}

// Warn prints a warning line.
func (p *Printer) Warn(text string) {
	p.emit(pterm.Warning.Sprint(text))
}

// Error prints an error line.
func (p *Printer) Error(text string) {
	p.emit(pterm.Error.Sprint(text))
}

// Success prints a success line.
func (p *Printer) Success(text string) {
	p.emit(pterm.Success.Sprint(text))
}

// Println prints its arguments followed by a newline.
func (p *Printer) Println(a ...any) {
	if p.Quiet {
		return
	}
	fmt.Fprintln(p.out(), a...)
}

// Printf prints formatted text.
func (p *Printer) Printf(format string, a ...any) {
	if p.Quiet {
		return
	}
	fmt.Fprintf(p.out(), format, a...)
}

// Table prints rows with the first row as header.
func (p *Printer) Table(data [][]string) {
	p.table(data, false)
}

// TableBoxed prints rows inside a box with the first row as header.
func (p *Printer) TableBoxed(data [][]string) {
	p.table(data, true)
}

func (p *Printer) table(data [][]string, boxed bool) {
	if p.Quiet || len(data) == 0 {
		return
	}
	tp := pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData(data))
	if boxed {
		tp = tp.WithBoxed()
	}
	s, err := tp.Srender()
	if err != nil {
		fmt.Fprintf(p.out(), "table render failed: %v\n", err)
		return
	}
	p.emit(s)
}

// SpinnerStart shows a spinner until the returned function is called with the
// final status.
func (p *Printer) SpinnerStart(text string) func(ok bool, msg string) {
	if p.Quiet {
		return func(bool, string) {}
	}
	spinner, err := pterm.DefaultSpinner.WithRemoveWhenDone(false).Start(text)
	if err != nil {
		p.Info(text)
		return func(ok bool, msg string) {
			if ok {
				p.Success(msg)
			} else {
				p.Error(msg)
			}
		}
	}
	return func(ok bool, msg string) {
		if ok {
			spinner.Success(msg)
		} else {
			spinner.Fail(msg)
		}
	}
}

// Package-level helpers print through DefaultPrinter.

func Header(text string)         { DefaultPrinter.Header(text) }
func Section(text string)        { DefaultPrinter.Section(text) }
func Info(text string)           { DefaultPrinter.Info(text) }
func Warn(text string)           { DefaultPrinter.Warn(text) }
func Error(text string)          { DefaultPrinter.Error(text) }
func Success(text string)        { DefaultPrinter.Success(text) }
func Table(data [][]string)      { DefaultPrinter.Table(data) }
func TableBoxed(data [][]string) { DefaultPrinter.TableBoxed(data) }

// Green colors text green.
func Green(text string) string { return pterm.FgGreen.Sprint(text) }

// Yellow colors text yellow.
func Yellow(text string) string { return pterm.FgYellow.Sprint(text) }

// Red colors text red.
func Red(text string) string { return pterm.FgRed.Sprint(text) }

// Cyan colors text cyan.
func Cyan(text string) string { return pterm.FgCyan.Sprint(text) }
