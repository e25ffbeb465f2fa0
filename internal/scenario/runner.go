package scenario

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"pgbridge/internal/config"
	"pgbridge/internal/elog"
	"pgbridge/internal/nativesim"
)

// Emitted is a report the engine emitted, flattened for output.
type Emitted struct {
	Level    string   `json:"level"`
	SQLState string   `json:"sqlstate,omitempty"`
	Message  string   `json:"message,omitempty"`
	Detail   string   `json:"detail,omitempty"`
	Hint     string   `json:"hint,omitempty"`
	Context  []string `json:"context,omitempty"`
	Location string   `json:"location,omitempty"`
}

// Exit is one guard exit.
type Exit struct {
	Scope   uint64 `json:"scope"`
	Depth   int    `json:"depth"`
	Outcome string `json:"outcome"`
	Kind    string `json:"kind,omitempty"`
}

// Result is what one scenario produced.
type Result struct {
	Name    string    `json:"name"`
	Bridge  string    `json:"bridge"`
	Emitted []Emitted `json:"emitted,omitempty"`
	Exits   []Exit    `json:"exits,omitempty"`
	// TopLevel is the error the engine's top-level handler caught, if any.
	TopLevel *Emitted `json:"topLevel,omitempty"`
	// Error is a failure returned to the caller without reaching the engine,
	// such as a format error.
	Error    string `json:"error,omitempty"`
	Finishes int    `json:"finishes"`
	ReThrows int    `json:"rethrows"`
}

// Runner executes scenarios with shared settings.
type Runner struct {
	cfg config.Config
	log logr.Logger
}

// NewRunner returns a Runner. cfg should already be validated.
func NewRunner(cfg config.Config, log logr.Logger) *Runner {
	return &Runner{cfg: cfg, log: log}
}

// Run executes s against a fresh engine and Bridge.
func (r *Runner) Run(s *Scenario) (*Result, error) {
	cfg := r.cfg
	if s.MinLevel != "" {
		cfg.MinLevel = s.MinLevel
	}
	level, err := cfg.Level()
	if err != nil {
		return nil, scenarioError(ErrSetupFailed, fmt.Sprintf("scenario %s: %v", s.Name, err), err)
	}
	enc, err := cfg.Encoder()
	if err != nil {
		return nil, scenarioError(ErrSetupFailed, fmt.Sprintf("scenario %s: %v", s.Name, err), err)
	}
	opts, err := cfg.BridgeOptions()
	if err != nil {
		return nil, scenarioError(ErrSetupFailed, fmt.Sprintf("scenario %s: %v", s.Name, err), err)
	}

	eng := nativesim.New(nativesim.WithMinLevel(level), nativesim.WithEncoder(enc))
	res := &Result{Name: s.Name}
	opts = append(opts,
		elog.WithLogger(r.log.WithValues("scenario", s.Name)),
		elog.WithObserver(func(e elog.Exit) {
			exit := Exit{Scope: e.Scope, Depth: e.Depth, Outcome: e.Outcome.String()}
			if e.Diversion != nil {
				exit.Kind = e.Diversion.Kind().String()
			}
			res.Exits = append(res.Exits, exit)
		}),
	)
	b := elog.New(eng, opts...)
	res.Bridge = b.ID().String()

	x := &execution{s: s, eng: eng, b: b}
	err = eng.Call(func() error {
		return b.Boundary(func() error { return x.steps(s.Steps) })
	})

	var nerr *nativesim.NativeError
	switch {
	case errors.As(err, &nerr):
		top := emitted(nerr.Emission)
		res.TopLevel = &top
	case err != nil:
		res.Error = err.Error()
	}
	for _, em := range eng.Emitted() {
		res.Emitted = append(res.Emitted, emitted(em))
	}
	res.Finishes = eng.Finishes()
	res.ReThrows = eng.ReThrows()
	r.log.V(1).Info("scenario finished", "scenario", s.Name,
		"emitted", len(res.Emitted), "exits", len(res.Exits), "topLevel", res.TopLevel != nil)
	return res, nil
}

// RunAll runs every scenario concurrently, one Bridge and engine each, and
// returns the results in input order.
func (r *Runner) RunAll(ctx context.Context, scenarios []*Scenario) ([]*Result, error) {
	results := make([]*Result, len(scenarios))
	g, ctx := errgroup.WithContext(ctx)
	for i, s := range scenarios {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := r.Run(s)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func emitted(em nativesim.Emission) Emitted {
	out := Emitted{
		Level:   em.Level.String(),
		Message: em.Message,
		Detail:  em.Detail,
		Hint:    em.Hint,
		Context: em.Context,
	}
	if em.Has(elog.FieldCode) {
		out.SQLState = em.Code.String()
	}
	if em.File != "" {
		out.Location = fmt.Sprintf("%s:%d", em.File, em.Line)
	}
	return out
}

type execution struct {
	s   *Scenario
	eng *nativesim.Engine
	b   *elog.Bridge
}

func (x *execution) steps(steps []Step) error {
	for i := range steps {
		if err := x.step(&steps[i]); err != nil {
			return err
		}
	}
	return nil
}

func (x *execution) step(st *Step) error {
	switch {
	case st.Report != nil:
		return x.report(st)
	case st.Guard != nil:
		return x.b.Guard(func() error { return x.steps(st.Guard.Steps) })
	case st.NativeError != nil:
		level, _ := elog.ParseLevel(st.NativeError.Level)
		code, _ := parseCode(st.NativeError.Code)
		x.eng.Raise(level, code, "%s", st.NativeError.Message)
		return nil
	case st.Context != "":
		x.eng.PushContext(st.Context)
		return nil
	}
	return nil
}

func (x *execution) report(st *Step) error {
	rs := st.Report
	level, _ := elog.ParseLevel(rs.Level)
	r, err := x.b.Begin(level, x.s.Path, st.Line)
	if err != nil || r == nil {
		return err
	}
	if err := x.attach(r, rs); err != nil {
		r.Cancel()
		return err
	}
	return r.Finish(0)
}

func (x *execution) attach(r *elog.Report, rs *ReportStep) error {
	if rs.Message != "" {
		if err := r.Message(rs.Message); err != nil {
			return err
		}
	}
	if rs.Detail != "" {
		if err := r.Detail(rs.Detail); err != nil {
			return err
		}
	}
	if rs.Hint != "" {
		if err := r.Hint(rs.Hint); err != nil {
			return err
		}
	}
	if rs.Code != "" {
		code, _ := parseCode(rs.Code)
		if err := r.Code(code); err != nil {
			return err
		}
	}
	return nil
}
