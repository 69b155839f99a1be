// Package validation holds the pure field rules for machinery reports:
// estación range normalization, material-source canonicalization, and the
// receipt (boleta) legality rules that depend on both.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Validation failures surfaced to callers before any persistence attempt.
var (
	ErrMissingMachineryType = errors.New("el campo tipoMaquinaria es obligatorio")
	ErrInvalidRangeOrder    = errors.New("la estación hasta no puede ser menor que desde")
	ErrInvalidReceiptFormat = errors.New("la boleta debe tener exactamente 6 dígitos")
	ErrInvalidSourceValue   = errors.New("fuente desconocida")
	ErrInvalidDate          = errors.New("fecha inválida")
)

// Canonical material sources that carry special receipt rules.
const (
	FuenteRios   = "Ríos"
	FuenteTajo   = "Tajo"
	FuenteKylcsa = "KYLCSA"
)

var estacionPattern = regexp.MustCompile(`^\s*(\d+)\s*\+\s*(\d+)\s*$`)

// Machinery types that haul material and therefore may carry a receipt.
var boletaCapableTypes = map[string]struct{}{
	"vagoneta": {},
	"cabezal":  {},
}

// NormalizeEstacion canonicalizes a "desde+hasta" road-segment token.
// A matching token is re-rendered with whitespace and leading zeros removed;
// anything else passes through with whitespace stripped so the caller's
// intent is preserved.
func NormalizeEstacion(s string) string {
	if s == "" {
		return ""
	}
	m := estacionPattern.FindStringSubmatch(s)
	if m == nil {
		return strings.Join(strings.Fields(s), "")
	}
	desde, _ := strconv.Atoi(m[1])
	hasta, _ := strconv.Atoi(m[2])
	return fmt.Sprintf("%d+%d", desde, hasta)
}

// SplitEstacion parses a range token into its endpoints.
func SplitEstacion(s string) (desde, hasta int, ok bool) {
	m := estacionPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	desde, _ = strconv.Atoi(m[1])
	hasta, _ = strconv.Atoi(m[2])
	return desde, hasta, true
}

// ValidateEstacion normalizes the token and rejects inverted ranges.
func ValidateEstacion(s string) (string, error) {
	normalized := NormalizeEstacion(s)
	if desde, hasta, ok := SplitEstacion(normalized); ok && hasta < desde {
		return "", ErrInvalidRangeOrder
	}
	return normalized, nil
}

// CanonicalFuente folds a material-source name to its canonical form.
// Matching is case- and diacritic-insensitive; unknown sources pass through
// trimmed.
func CanonicalFuente(s string) string {
	trimmed := strings.TrimSpace(s)
	switch stripDiacritics(strings.ToLower(trimmed)) {
	case "rio", "rios":
		return FuenteRios
	case "tajo":
		return FuenteTajo
	case "kylcsa":
		return FuenteKylcsa
	default:
		return trimmed
	}
}

// ValidateFuente enforces a closed source enumeration at the boundary.
// An empty canonical value or an empty allow-list always passes.
func ValidateFuente(canonical string, allowed []string) error {
	if canonical == "" || len(allowed) == 0 {
		return nil
	}
	for _, name := range allowed {
		if CanonicalFuente(name) == canonical {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidSourceValue, canonical)
}

// ApplyBoletaRules decides which receipt field is legal for the given
// machinery type and canonical source, forcing the other to nil:
//
//   - types that do not haul material never carry a receipt;
//   - Ríos and Tajo sources require no receipt at all;
//   - KYLCSA uses its own receipt identifier, format unconstrained;
//   - any other (or no) source uses the standard 6-digit boleta.
//
// The function is idempotent: applying it to its own output is a no-op.
func ApplyBoletaRules(tipoMaquinaria, fuente string, boleta, boletaKylcsa *string) (*string, *string, error) {
	tipo := strings.ToLower(strings.TrimSpace(tipoMaquinaria))
	if tipo == "" {
		return nil, nil, ErrMissingMachineryType
	}

	if _, capable := boletaCapableTypes[tipo]; !capable {
		return nil, nil, nil
	}

	switch CanonicalFuente(fuente) {
	case FuenteRios, FuenteTajo:
		return nil, nil, nil
	case FuenteKylcsa:
		return nil, nonEmpty(boletaKylcsa), nil
	default:
		if boleta == nil || strings.TrimSpace(*boleta) == "" {
			return nil, nil, nil
		}
		digits := stripNonDigits(*boleta)
		if len(digits) != 6 {
			return nil, nil, ErrInvalidReceiptFormat
		}
		return &digits, nil, nil
	}
}

// To24Hour folds "h:mm AM/PM" times to "HH:mm"; anything else passes through.
func To24Hour(s string) string {
	trimmed := strings.TrimSpace(s)
	m := regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*([AaPp][Mm])$`).FindStringSubmatch(trimmed)
	if m == nil {
		return trimmed
	}
	hour, _ := strconv.Atoi(m[1])
	hour %= 12
	if strings.EqualFold(m[3], "PM") {
		hour += 12
	}
	return fmt.Sprintf("%02d:%s", hour, m[2])
}

// NormalizeFecha reduces a date input to its YYYY-MM-DD form. It accepts
// plain date strings and full RFC3339 timestamps.
func NormalizeFecha(s string) (string, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", nil
	}
	if len(trimmed) >= 10 {
		if _, err := time.Parse("2006-01-02", trimmed[:10]); err == nil {
			return trimmed[:10], nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
