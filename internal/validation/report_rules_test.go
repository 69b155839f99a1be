package validation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeEstacion(t *testing.T) {
	cases := map[string]string{
		"2+400":       "2+400",
		"  2 + 400  ": "2+400",
		"002+0400":    "2+400",
		"km 2+400":    "km2+400",
		"":            "",
	}
	for input, want := range cases {
		require.Equal(t, want, NormalizeEstacion(input), "input %q", input)
	}
}

func TestValidateEstacionRejectsInvertedRange(t *testing.T) {
	_, err := ValidateEstacion("400+2")
	require.ErrorIs(t, err, ErrInvalidRangeOrder)

	normalized, err := ValidateEstacion(" 2 + 400 ")
	require.NoError(t, err)
	require.Equal(t, "2+400", normalized)
}

func TestCanonicalFuente(t *testing.T) {
	for _, input := range []string{"rio", "Rios", "río", "RÍOS", "  ríos "} {
		require.Equal(t, FuenteRios, CanonicalFuente(input), "input %q", input)
	}
	require.Equal(t, FuenteTajo, CanonicalFuente("TAJO"))
	require.Equal(t, FuenteKylcsa, CanonicalFuente("kylcsa"))
	require.Equal(t, "Quebrador Sur", CanonicalFuente(" Quebrador Sur "))
	require.Equal(t, "", CanonicalFuente("  "))
}

func TestValidateFuente(t *testing.T) {
	allowed := []string{"ríos", "tajo", "KYLCSA"}
	require.NoError(t, ValidateFuente(FuenteRios, allowed))
	require.NoError(t, ValidateFuente("", allowed))
	require.NoError(t, ValidateFuente("Quebrador", nil))
	require.ErrorIs(t, ValidateFuente("Quebrador", allowed), ErrInvalidSourceValue)
}

func TestApplyBoletaRulesIncapableType(t *testing.T) {
	boleta := "123456"
	kylcsa := "K-1"
	b, k, err := ApplyBoletaRules("excavadora", "KYLCSA", &boleta, &kylcsa)
	require.NoError(t, err)
	require.Nil(t, b)
	require.Nil(t, k)
}

func TestApplyBoletaRulesRiosAndTajoForceBothNil(t *testing.T) {
	boleta := "123456"
	kylcsa := "K-1"
	for _, fuente := range []string{"ríos", "rios", "Río", "tajo", "TAJO"} {
		b, k, err := ApplyBoletaRules("vagoneta", fuente, &boleta, &kylcsa)
		require.NoError(t, err, "fuente %q", fuente)
		require.Nil(t, b, "fuente %q", fuente)
		require.Nil(t, k, "fuente %q", fuente)
	}
}

func TestApplyBoletaRulesKylcsa(t *testing.T) {
	boleta := "123456"
	kylcsa := "K-99"
	b, k, err := ApplyBoletaRules("vagoneta", "KYLCSA", &boleta, &kylcsa)
	require.NoError(t, err)
	require.Nil(t, b)
	require.NotNil(t, k)
	require.Equal(t, "K-99", *k)
}

func TestApplyBoletaRulesStandardSource(t *testing.T) {
	boleta := "12-34-56"
	kylcsa := "K-1"
	b, k, err := ApplyBoletaRules("cabezal", "Quebrador", &boleta, &kylcsa)
	require.NoError(t, err)
	require.NotNil(t, b)
	require.Equal(t, "123456", *b)
	require.Nil(t, k)

	short := "12345"
	_, _, err = ApplyBoletaRules("vagoneta", "", &short, nil)
	require.ErrorIs(t, err, ErrInvalidReceiptFormat)
}

func TestApplyBoletaRulesMissingType(t *testing.T) {
	_, _, err := ApplyBoletaRules("  ", "", nil, nil)
	require.ErrorIs(t, err, ErrMissingMachineryType)
}

func TestApplyBoletaRulesIdempotent(t *testing.T) {
	boleta := " 123456 "
	kylcsa := "K-7"
	b1, k1, err := ApplyBoletaRules("vagoneta", "kylcsa", &boleta, &kylcsa)
	require.NoError(t, err)
	b2, k2, err := ApplyBoletaRules("vagoneta", "kylcsa", b1, k1)
	require.NoError(t, err)
	require.Equal(t, b1, b2)
	require.Equal(t, *k1, *k2)

	b1, k1, err = ApplyBoletaRules("vagoneta", "Quebrador", &boleta, nil)
	require.NoError(t, err)
	b2, k2, err = ApplyBoletaRules("vagoneta", "Quebrador", b1, k1)
	require.NoError(t, err)
	require.Equal(t, *b1, *b2)
	require.Nil(t, k2)
}

func TestTo24Hour(t *testing.T) {
	require.Equal(t, "14:30", To24Hour("2:30 PM"))
	require.Equal(t, "00:15", To24Hour("12:15 am"))
	require.Equal(t, "07:45", To24Hour("07:45"))
}

func TestNormalizeFecha(t *testing.T) {
	fecha, err := NormalizeFecha("2026-08-15")
	require.NoError(t, err)
	require.Equal(t, "2026-08-15", fecha)

	fecha, err = NormalizeFecha("2026-08-15T10:30:00Z")
	require.NoError(t, err)
	require.Equal(t, "2026-08-15", fecha)

	fecha, err = NormalizeFecha("")
	require.NoError(t, err)
	require.Equal(t, "", fecha)

	_, err = NormalizeFecha("ayer")
	require.ErrorIs(t, err, ErrInvalidDate)
}
