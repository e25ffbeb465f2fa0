package elog

import (
	"errors"
	"testing"
)

func TestLevel_Ordering(t *testing.T) {
	for i := 1; i < len(Levels); i++ {
		if Levels[i-1] >= Levels[i] {
			t.Errorf("Levels[%d] = %v, want less than Levels[%d] = %v", i-1, Levels[i-1], i, Levels[i])
		}
	}
}

func TestIsDiverting(t *testing.T) {
	tests := []struct {
		level Level
		want  bool
	}{
		{Debug5, false},
		{Log, false},
		{Info, false},
		{Notice, false},
		{Warning, false},
		{Error, true},
		{Fatal, true},
		{Panic, true},
	}
	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			if got := IsDiverting(tt.level); got != tt.want {
				t.Errorf("IsDiverting(%v) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestIsVisible(t *testing.T) {
	tests := []struct {
		name  string
		level Level
		min   Level
		want  bool
	}{
		{"below threshold", Debug1, Notice, false},
		{"at threshold", Notice, Notice, true},
		{"above threshold", Warning, Notice, true},
		{"debug threshold", Debug5, Debug5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsVisible(tt.level, tt.min); got != tt.want {
				t.Errorf("IsVisible(%v, %v) = %v, want %v", tt.level, tt.min, got, tt.want)
			}
		})
	}
}

func TestLevel_String(t *testing.T) {
	if got := Warning.String(); got != "WARNING" {
		t.Errorf("Warning.String() = %q, want %q", got, "WARNING")
	}
	if got := Level(16).String(); got != "LEVEL(16)" {
		t.Errorf("Level(16).String() = %q, want %q", got, "LEVEL(16)")
	}
}

func TestParseLevel(t *testing.T) {
	for _, level := range Levels {
		got, err := ParseLevel(level.String())
		if err != nil {
			t.Fatalf("ParseLevel(%q) error: %v", level.String(), err)
		}
		if got != level {
			t.Errorf("ParseLevel(%q) = %v, want %v", level.String(), got, level)
		}
	}

	t.Run("case insensitive", func(t *testing.T) {
		got, err := ParseLevel("  notice ")
		if err != nil || got != Notice {
			t.Errorf("ParseLevel(%q) = %v, %v, want %v, nil", "  notice ", got, err, Notice)
		}
	})
	t.Run("debug alias", func(t *testing.T) {
		got, err := ParseLevel("debug")
		if err != nil || got != Debug2 {
			t.Errorf("ParseLevel(%q) = %v, %v, want %v, nil", "debug", got, err, Debug2)
		}
	})
	t.Run("unknown", func(t *testing.T) {
		_, err := ParseLevel("loud")
		if !errors.Is(err, ErrUnknownLevel) {
			t.Errorf("ParseLevel(%q) error = %v, want ErrUnknownLevel", "loud", err)
		}
	})
}
