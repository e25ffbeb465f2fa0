package errx

import (
	"testing"
)

func TestRegistry_ErrorRegistry(t *testing.T) {
	entries := ErrorRegistry()
	if len(entries) != len(registryEntries) {
		t.Errorf("ErrorRegistry() = %v, want %v", len(entries), len(registryEntries))
	}
	for i, entry := range entries {
		if entry.Code != registryEntries[i].Code || entry.Description != registryEntries[i].Description {
			t.Errorf("ErrorRegistry()[%d] = %v, want %v", i, entry, registryEntries[i])
		}
	}
}

func TestRegistry_CodesAreSQLStateShaped(t *testing.T) {
	for _, entry := range ErrorRegistry() {
		if len(entry.Code) != 5 {
			t.Errorf("code %q has length %d, want 5", entry.Code, len(entry.Code))
		}
	}
}

func TestRegistry_DescriptionFor(t *testing.T) {
	desc, ok := DescriptionFor(CodeRelayed)
	if !ok || desc != DescRelayed {
		t.Errorf("DescriptionFor(%q) = %q, want %q", CodeRelayed, desc, DescRelayed)
	}
	if _, ok := DescriptionFor("00000"); ok {
		t.Errorf("DescriptionFor(%q) ok = true, want false", "00000")
	}
}

func TestRegistry_IsValidCode(t *testing.T) {
	if !IsValidCode(CodeFormat) {
		t.Errorf("IsValidCode(%q) = %v, want %v", CodeFormat, IsValidCode(CodeFormat), true)
	}
}
