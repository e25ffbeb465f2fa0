package scenario

import (
	"errors"

	"pgbridge/pkg/errx"
)

var (
	ErrReadFailed    = errors.New("failed to read scenario")
	ErrDecodeFailed  = errors.New("failed to decode scenario")
	ErrInvalidStep   = errors.New("invalid scenario step")
	ErrSetupFailed   = errors.New("failed to set up scenario")
	ErrEmptyScenario = errors.New("scenario has no steps")
)

func scenarioError(base error, msg string, cause error) *errx.Error {
	return errx.CreateByCode(errx.CodeScenario, errx.DescScenario, msg, cause).WithBase(base)
}
