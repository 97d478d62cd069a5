package middleware

import (
	"fmt"
	"strings"
)

// RuleHeader introduces the injected instruction block.
const RuleHeader = "IMPORTANT: Follow these rules while completing the task:"

// NewRuleInjection returns middleware that prepends a numbered instruction
// block built from the rules supplier. Rules are read at dispatch time so
// edits in the settings form apply to the next task without a restart.
//
// Rule content is spliced in verbatim, without escaping; a rule that itself
// contains the block delimiter text will corrupt the layout of the
// instruction block. Known limitation.
func NewRuleInjection(rules func() []string) Middleware {
	return NewTransform("rule-injection", func(ctx *CommandContext, command string) (string, error) {
		meaningful := make([]string, 0, 5)
		for _, rule := range rules() {
			rule = strings.TrimSpace(rule)
			if rule != "" {
				meaningful = append(meaningful, rule)
			}
		}

		if len(meaningful) == 0 {
			return command, nil
		}

		var b strings.Builder
		b.WriteString(RuleHeader)
		b.WriteString("\n")
		for i, rule := range meaningful {
			fmt.Fprintf(&b, "%d. %s\n", i+1, rule)
		}
		b.WriteString("\nNow complete this task: ")
		b.WriteString(command)

		return b.String(), nil
	})
}

// NewCommandValidation returns middleware that rejects empty commands and
// the untouched input placeholder.
func NewCommandValidation(placeholder string) Middleware {
	return NewValidation("command-validation", func(ctx *CommandContext, command string) error {
		trimmed := strings.TrimSpace(command)
		if trimmed == "" {
			return fmt.Errorf("command is empty")
		}
		if trimmed == placeholder {
			return fmt.Errorf("command is the input placeholder")
		}
		return nil
	})
}
