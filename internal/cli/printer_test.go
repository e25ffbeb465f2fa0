package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintTable(t *testing.T) {
	data := [][]string{
		{"Level", "Value"},
		{"NOTICE", "18"},
		{"ERROR", "20"},
	}

	var buf bytes.Buffer
	p := &Printer{Out: &buf}
	p.Table(data)
	assert.Contains(t, buf.String(), "NOTICE")
	assert.Contains(t, buf.String(), "20")
}

func TestPrintTableBoxed(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Out: &buf}
	p.TableBoxed([][]string{
		{"Scope", "Outcome"},
		{"1", "relay"},
	})
	assert.Contains(t, buf.String(), "relay")
}

func TestPrintTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Out: &buf}
	p.Table([][]string{})
	p.TableBoxed([][]string{})
	assert.Empty(t, buf.String())
}

func TestPrinterColors(t *testing.T) {
	// Color functions should return non-empty strings
	for name, fn := range map[string]func(string) string{
		"green": Green, "yellow": Yellow, "red": Red, "cyan": Cyan,
	} {
		if fn("test") == "" {
			t.Errorf("%s should return non-empty string", name)
		}
	}
}

func TestPrinterQuietMode(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Quiet: true, Out: &buf}

	p.Header("test")
	p.Section("test")
	p.Step("test")
	p.Info("test")
	p.Warn("test")
	p.Error("test")
	p.Success("test")
	p.Println("test")
	p.Printf("value=%d\n", 1)
	p.Table([][]string{{"a"}, {"b"}})
	assert.Empty(t, buf.String())
}

func TestPrinterSpinnerQuietMode(t *testing.T) {
	p := &Printer{Quiet: true}
	stop := p.SpinnerStart("working")
	stop(true, "done")
}

func TestPrinterPrintf(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Out: &buf}
	p.Printf("value=%d\n", 1)
	assert.Equal(t, "value=1\n", buf.String())
}

func TestPrinterStatusLines(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Out: &buf}
	p.Info("info line")
	p.Warn("warn line")
	p.Section("section line")
	out := buf.String()
	assert.Contains(t, out, "info line")
	assert.Contains(t, out, "warn line")
	assert.Contains(t, out, "section line")
}
