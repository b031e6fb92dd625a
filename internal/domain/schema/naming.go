package schema

import (
	"strings"
	"unicode"
)

const maxIdentifierLength = 64

// Normalize derives a physical name: lowercase, every run of non-alphanumeric
// characters collapsed to one underscore, leading/trailing underscores trimmed.
func Normalize(s string) string {
	var sb strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && sb.Len() > 0 {
				sb.WriteByte('_')
			}
			pendingSep = false
			sb.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return sb.String()
}

// checkPhysicalName returns a reason when a normalized name cannot be used
func checkPhysicalName(name string) string {
	switch {
	case name == "":
		return "must contain at least one letter or digit"
	case name[0] >= '0' && name[0] <= '9':
		return "must start with a letter"
	case len(name) > maxIdentifierLength:
		return "must be at most 64 characters"
	}
	return ""
}

// FormatLabel turns a model or column name into a display label:
// "LoanApplication" -> "Loan Application", "loan_amount" -> "Loan amount".
func FormatLabel(name string) string {
	var sb strings.Builder
	runes := []rune(strings.ReplaceAll(name, "_", " "))
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && runes[i-1] != ' ' && !unicode.IsUpper(runes[i-1]) {
			sb.WriteRune(' ')
		}
		sb.WriteRune(r)
	}
	out := strings.Join(strings.Fields(sb.String()), " ")
	if out == "" {
		return out
	}
	first := []rune(out)
	first[0] = unicode.ToUpper(first[0])
	return string(first)
}
