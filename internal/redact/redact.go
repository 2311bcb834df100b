package redact

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Fixture inputs come straight from a harness or a command line and may
// carry credentials pasted by accident. They are scrubbed before they
// reach the fault log.
var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	regexp.MustCompile(`gh[pousr]_[A-Za-z0-9]{36}`),
	regexp.MustCompile(`(?i)(api_key|apikey|api-key|secret_key|access_token|auth_token)\s*[=:]\s*['"]?[A-Za-z0-9_-]{16,}['"]?`),
	regexp.MustCompile(`-----BEGIN (RSA |EC |DSA |OPENSSH |PGP )?PRIVATE KEY-----`),
	regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9_-]{20,}`),
	regexp.MustCompile(`https?://[^:/\s]+:[^@\s]+@`),
	regexp.MustCompile(`(?i)(password|passwd|pwd|secret)\s*[=:]\s*['"]?[^\s'"]{8,}['"]?`),
}

const redactedPlaceholder = "[REDACTED]"

// DefaultMaxInput is how many bytes of an input the log keeps.
const DefaultMaxInput = 96

func Redact(input string) string {
	result := input
	for _, pattern := range sensitivePatterns {
		result = pattern.ReplaceAllString(result, redactedPlaceholder)
	}
	return result
}

// Abbreviate shortens s to about limit bytes. Inputs made of one repeated
// byte, the usual overflow payload, collapse to `"A"*100`; other long
// inputs keep their head and the original length.
func Abbreviate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	if strings.Count(s, s[:1]) == len(s) {
		return strconv.Quote(s[:1]) + "*" + strconv.Itoa(len(s))
	}
	head := s[:limit]
	// Do not cut a multi-byte rune in half.
	for len(head) > 0 && !utf8Start(s[len(head)]) {
		head = head[:len(head)-1]
	}
	return fmt.Sprintf("%s…(%d bytes)", head, len(s))
}

func utf8Start(b byte) bool {
	return b&0xC0 != 0x80
}

// Input prepares a fixture input for logging.
func Input(s string) string {
	return Abbreviate(Redact(s), DefaultMaxInput)
}

// Args applies Input to every argument.
func Args(args []string) []string {
	result := make([]string, len(args))
	for i, arg := range args {
		result[i] = Input(arg)
	}
	return result
}
