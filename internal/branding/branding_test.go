package branding

import "testing"

func TestEmbeddedValues(t *testing.T) {
	if got := CLIName(); got != "platformview" {
		t.Errorf("CLIName() = %q, want %q", got, "platformview")
	}
	if got := HomeDir(); got != ".platformview" {
		t.Errorf("HomeDir() = %q, want %q", got, ".platformview")
	}
}

func TestEnvVar(t *testing.T) {
	if got := EnvVar("platforms"); got != "PLATFORMVIEW_PLATFORMS" {
		t.Errorf("EnvVar(\"platforms\") = %q, want %q", got, "PLATFORMVIEW_PLATFORMS")
	}
}
