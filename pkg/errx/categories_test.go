package errx

import (
	"errors"
	"testing"
)

func TestCategories_Format(t *testing.T) {
	err := Format("test")

	if err.Code() != CodeFormat {
		t.Errorf("Code() = %q, want %q", err.Code(), CodeFormat)
	}
}

func TestCategories_WrapFormat(t *testing.T) {
	cause := errors.New("cause")
	err := WrapFormat("test", cause)

	if err.Code() != CodeFormat {
		t.Errorf("Code() = %q, want %q", err.Code(), CodeFormat)
	}
	if err.Cause() != cause {
		t.Errorf("Cause() = %v, want %v", err.Cause(), cause)
	}
}

func TestCategories_Config(t *testing.T) {
	cause := errors.New("bad yaml")
	if got := Config("test").Code(); got != CodeConfig {
		t.Errorf("Code() = %q, want %q", got, CodeConfig)
	}
	if got := WrapConfig("test", cause); !errors.Is(got, cause) {
		t.Errorf("errors.Is(WrapConfig(...), cause) = false, want true")
	}
}

func TestCategories_CreateByCode(t *testing.T) {
	err := CreateByCode(CodeUsage, DescUsage, "test", nil)

	if err.Code() != CodeUsage {
		t.Errorf("Code() = %q, want %q", err.Code(), CodeUsage)
	}
	if err.Cause() != nil {
		t.Errorf("Cause() = %v, want nil", err.Cause())
	}
}

func TestCategories_FromSentinel(t *testing.T) {
	sentinel := errors.New("sentinel")

	t.Run("known sentinel", func(t *testing.T) {
		lookupSpec := func(err error) (code, description string) {
			return CodeRaised, DescRaised
		}
		err := FromSentinel(sentinel, lookupSpec, "test", nil)

		if err.Code() != CodeRaised {
			t.Errorf("Code() = %q, want %q", err.Code(), CodeRaised)
		}
		if !errors.Is(err, sentinel) {
			t.Errorf("errors.Is(err, sentinel) = %v, want %v", errors.Is(err, sentinel), true)
		}
	})

	t.Run("unknown sentinel falls back to internal error", func(t *testing.T) {
		lookupSpec := func(err error) (code, description string) { return "", "" }
		err := FromSentinel(sentinel, lookupSpec, "test", nil)

		if err.Code() != CodeStackCorruption {
			t.Errorf("Code() = %q, want %q", err.Code(), CodeStackCorruption)
		}
	})
}
