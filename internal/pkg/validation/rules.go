package validation

import (
	"net/mail"
	"regexp"
	"strings"
	"time"
)

// Validation rule patterns
var (
	// Email validation pattern, applied after lower-casing
	EmailPattern = `^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`

	// Password min length
	PasswordMinLength = 8

	// Name validation min/max length
	NameMinLength = 2
	NameMaxLength = 100

	// Graduation year bounds; the upper bound is relative to the current year
	MinGraduationYear    = 1950
	GraduationYearAhead  = 8
	MaxSearchQueryLength = 100
)

// CompiledPatterns caches compiled regex patterns for better performance
var CompiledPatterns = struct {
	Email *regexp.Regexp
}{
	Email: regexp.MustCompile(EmailPattern),
}

// NormalizeEmail trims and lower-cases an address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmail reports whether email is a bare address of the form local@host.tld
func IsValidEmail(email string) bool {
	email = NormalizeEmail(email)
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	return CompiledPatterns.Email.MatchString(email)
}

// EmailDomain returns the lower-cased part after the last '@', or "" when
// there is none.
func EmailDomain(email string) string {
	email = NormalizeEmail(email)
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return email[at+1:]
}

// DomainMatches reports whether the email's domain equals domain or is a
// subdomain of it. An empty domain matches nothing.
func DomainMatches(email, domain string) bool {
	domain = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(domain)), "@")
	if domain == "" {
		return false
	}
	host := EmailDomain(email)
	if host == "" {
		return false
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// IsValidGraduationYear checks the year against MinGraduationYear and
// now + GraduationYearAhead.
func IsValidGraduationYear(year int, now time.Time) bool {
	return year >= MinGraduationYear && year <= now.Year()+GraduationYearAhead
}

// TruncateQuery trims a free-text search query and caps it at
// MaxSearchQueryLength runes.
func TruncateQuery(q string) string {
	q = strings.TrimSpace(q)
	r := []rune(q)
	if len(r) > MaxSearchQueryLength {
		return string(r[:MaxSearchQueryLength])
	}
	return q
}

// String validation
type StringValidation struct {
	Value    string
	MinLen   int
	MaxLen   int
	Required bool
	Pattern  *regexp.Regexp
}

// NewStringValidation creates a new string validation
func NewStringValidation(value string) *StringValidation {
	return &StringValidation{
		Value:    value,
		Required: true,
	}
}

// WithMinLength sets minimum length
func (v *StringValidation) WithMinLength(min int) *StringValidation {
	v.MinLen = min
	return v
}

// WithMaxLength sets maximum length
func (v *StringValidation) WithMaxLength(max int) *StringValidation {
	v.MaxLen = max
	return v
}

// WithRequired sets if field is required
func (v *StringValidation) WithRequired(required bool) *StringValidation {
	v.Required = required
	return v
}

// Validate performs validation
func (v *StringValidation) Validate() bool {
	if v.Required && strings.TrimSpace(v.Value) == "" {
		return false
	}
	if !v.Required && v.Value == "" {
		return true
	}
	n := len([]rune(v.Value))
	if v.MinLen > 0 && n < v.MinLen {
		return false
	}
	if v.MaxLen > 0 && n > v.MaxLen {
		return false
	}
	if v.Pattern != nil && !v.Pattern.MatchString(v.Value) {
		return false
	}
	return true
}

// IsValidName checks a display name against NameMinLength and NameMaxLength
func IsValidName(name string) bool {
	return NewStringValidation(strings.TrimSpace(name)).
		WithMinLength(NameMinLength).
		WithMaxLength(NameMaxLength).
		Validate()
}
