package utils

import "strings"

// NormalizeEmail trims and lower-cases an email for dedup comparisons
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// MaskEmail hides most of the local part, e.g. "alice@x.com" -> "a***e@x.com"
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		if email == "" {
			return ""
		}
		return "***"
	}

	local, domain := email[:at], email[at:]
	switch len(local) {
	case 1:
		return local + "***" + domain
	case 2:
		return local[:1] + "***" + domain
	default:
		return local[:1] + "***" + local[len(local)-1:] + domain
	}
}
