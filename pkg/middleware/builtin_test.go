package middleware

import (
	"strings"
	"testing"
)

func TestRuleInjectionByteOrder(t *testing.T) {
	rules := func() []string { return []string{"A", "B"} }
	c := NewChain(NewRuleInjection(rules))

	out, err := c.Process(newCtx(), "C")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	posA := strings.Index(out, "1. A")
	posB := strings.Index(out, "2. B")
	if posA < 0 || posB < 0 {
		t.Fatalf("numbered rules missing from %q", out)
	}
	if posA > posB {
		t.Error("rules out of order")
	}
	if !strings.HasSuffix(out, "C") {
		t.Errorf("enhanced command must end with the raw command, got %q", out)
	}
	if !strings.HasPrefix(out, RuleHeader) {
		t.Errorf("missing rule header in %q", out)
	}
}

func TestRuleInjectionSkipsBlankRules(t *testing.T) {
	rules := func() []string { return []string{"", "  ", "only rule", ""} }
	c := NewChain(NewRuleInjection(rules))

	out, err := c.Process(newCtx(), "go")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(out, "1. only rule") {
		t.Errorf("meaningful rule not numbered from 1: %q", out)
	}
	if strings.Contains(out, "2.") {
		t.Errorf("blank rules must not consume numbers: %q", out)
	}
}

func TestRuleInjectionNoRulesPassesThrough(t *testing.T) {
	c := NewChain(NewRuleInjection(func() []string { return nil }))

	out, err := c.Process(newCtx(), "plain")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "plain" {
		t.Errorf("expected untouched command, got %q", out)
	}
}
