package submit

import (
	"fmt"
	"strings"
)

// ValidateCommand checks if a command line matches any blocked patterns.
func ValidateCommand(command string, blockedPatterns []string) error {
	for _, pattern := range blockedPatterns {
		if pattern != "" && strings.Contains(command, pattern) {
			return fmt.Errorf("submission command blocked by security policy: contains %q, remove it from submit.blocked_patterns in sweepgen.yaml if this is intentional", pattern)
		}
	}
	return nil
}
