// Package scenario scripts calls into the simulated engine: reports, nested
// guards, error-context callbacks and engine-side errors, run through one
// Bridge per scenario.
package scenario

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"pgbridge/internal/elog"
)

// Scenario is one scripted call from the engine into host code.
type Scenario struct {
	Name string `yaml:"name"`
	// MinLevel overrides the configured visibility threshold.
	MinLevel string `yaml:"min_level,omitempty"`
	Steps    []Step `yaml:"steps"`

	// Path is the file the scenario was loaded from.
	Path string `yaml:"-"`
}

// Step does exactly one thing.
type Step struct {
	Report      *ReportStep `yaml:"report,omitempty"`
	Guard       *GuardStep  `yaml:"guard,omitempty"`
	NativeError *NativeStep `yaml:"native_error,omitempty"`
	Context     string      `yaml:"context,omitempty"`

	// Line is the step's line in the scenario file.
	Line int `yaml:"-"`
}

// ReportStep is a report from host code.
type ReportStep struct {
	Level   string `yaml:"level"`
	Message string `yaml:"message,omitempty"`
	Detail  string `yaml:"detail,omitempty"`
	Hint    string `yaml:"hint,omitempty"`
	Code    string `yaml:"code,omitempty"`
}

// GuardStep runs its steps under a guard.
type GuardStep struct {
	Steps []Step `yaml:"steps"`
}

// NativeStep is a report raised by engine code, which jumps at ERROR and above.
type NativeStep struct {
	Level   string `yaml:"level"`
	Code    string `yaml:"code,omitempty"`
	Message string `yaml:"message"`
}

// UnmarshalYAML records the step's line.
func (s *Step) UnmarshalYAML(value *yaml.Node) error {
	type plain Step
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*s = Step(p)
	s.Line = value.Line
	return nil
}

// Load reads a scenario file. A scenario without a name is named after the file.
func Load(path string) (*Scenario, error) {
	// #nosec G304 -- path is supplied by the user on the command line.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, scenarioError(ErrReadFailed, fmt.Sprintf("failed to read scenario: %v", err), err).
			WithContext("path", path)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, err
	}
	s.Path = path
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// Parse decodes and validates a scenario. Unknown keys are rejected.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, scenarioError(ErrDecodeFailed, fmt.Sprintf("failed to decode scenario: %v", err), err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks every step, including those of nested guards.
func (s *Scenario) Validate() error {
	if len(s.Steps) == 0 {
		return scenarioError(ErrEmptyScenario, "scenario has no steps", nil).WithContext("scenario", s.Name)
	}
	if s.MinLevel != "" {
		if _, err := elog.ParseLevel(s.MinLevel); err != nil {
			return scenarioError(ErrInvalidStep, fmt.Sprintf("min_level: %v", err), err)
		}
	}
	return validateSteps(s.Steps)
}

func validateSteps(steps []Step) error {
	for i := range steps {
		if err := steps[i].validate(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Step) validate() error {
	set := 0
	if s.Report != nil {
		set++
	}
	if s.Guard != nil {
		set++
	}
	if s.NativeError != nil {
		set++
	}
	if s.Context != "" {
		set++
	}
	if set != 1 {
		return s.invalid(fmt.Sprintf("step must set exactly one of report, guard, native_error, context; got %d", set), nil)
	}

	switch {
	case s.Report != nil:
		if _, err := elog.ParseLevel(s.Report.Level); err != nil {
			return s.invalid(fmt.Sprintf("report level: %v", err), err)
		}
		if _, err := parseCode(s.Report.Code); err != nil {
			return s.invalid(fmt.Sprintf("report code: %v", err), err)
		}
	case s.NativeError != nil:
		if _, err := elog.ParseLevel(s.NativeError.Level); err != nil {
			return s.invalid(fmt.Sprintf("native_error level: %v", err), err)
		}
		if _, err := parseCode(s.NativeError.Code); err != nil {
			return s.invalid(fmt.Sprintf("native_error code: %v", err), err)
		}
	case s.Guard != nil:
		return validateSteps(s.Guard.Steps)
	}
	return nil
}

func (s *Step) invalid(msg string, cause error) error {
	return scenarioError(ErrInvalidStep, msg, cause).WithContext("line", s.Line)
}

// parseCode accepts an empty code as "no code".
func parseCode(code string) (elog.SQLState, error) {
	if code == "" {
		return 0, nil
	}
	return elog.MakeSQLState(code)
}
