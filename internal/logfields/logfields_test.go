package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"RunID", KeyRunID, "r-1", RunID("r-1")},
		{"Component", KeyComponent, "serving", Component("serving")},
		{"Step", KeyStep, "push", Step("push")},
		{"Branch", KeyBranch, "develop", Branch("develop")},
		{"Version", KeyVersion, "0.2.0-alpha.1", Version("0.2.0-alpha.1")},
		{"Path", KeyPath, "serving-pipeline/model.py", Path("serving-pipeline/model.py")},
		{"Ref", KeyRef, "HEAD~1", Ref("HEAD~1")},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if c.attr.Key != c.attrKey {
				t.Errorf("expected key %q, got %q", c.attrKey, c.attr.Key)
			}
			if got := c.attr.Value.String(); got != c.attrVal {
				t.Errorf("expected value %q, got %q", c.attrVal, got)
			}
		})
	}
}

func TestErrorHelper(t *testing.T) {
	if got := Error(nil).Value.String(); got != "" {
		t.Errorf("nil error should format empty, got %q", got)
	}
	if got := Error(errors.New("boom")).Value.String(); got != "boom" {
		t.Errorf("expected boom, got %q", got)
	}
}

func TestFallbackHelper(t *testing.T) {
	attr := Fallback(true)
	if attr.Key != KeyFallback {
		t.Errorf("unexpected key %q", attr.Key)
	}
	if !attr.Value.Bool() {
		t.Error("expected true")
	}
}
