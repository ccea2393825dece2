package networking

import (
	"strings"
	"testing"

	"github.com/rangefence/rangefence/lib/addrsyntax"
)

func TestRunShellScript(t *testing.T) {
	out, err := RunShellScript("echo \"feed=$RANGEFENCE_FEED\"", map[string]string{
		"RANGEFENCE_FEED": "sample",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != "feed=sample" {
		t.Errorf("Unexpected output: %q", out)
	}
}

func TestRunShellScriptFailure(t *testing.T) {
	out, err := RunShellScript("echo broken >&2; exit 3", nil)
	if err == nil {
		t.Fatal("Expected error for failing script")
	}
	if !strings.Contains(out, "broken") {
		t.Errorf("Expected stderr output on failure, got %q", out)
	}
}

func TestIPSetFamilyFlag(t *testing.T) {
	set4 := BuildIPSet("sample4", addrsyntax.IPv4)
	set6 := BuildIPSet("sample6", addrsyntax.IPv6)

	if set4.familyFlag() != "inet" {
		t.Errorf("Unexpected IPv4 flag: %s", set4.familyFlag())
	}
	if set6.familyFlag() != "inet6" {
		t.Errorf("Unexpected IPv6 flag: %s", set6.familyFlag())
	}
}
