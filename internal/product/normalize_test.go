package product

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestSanitizePrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain decimal", in: "19.99", want: "19.99"},
		{name: "currency symbol", in: "19,99 €", want: "19.99"},
		{name: "european grouping", in: "1.299,99 €", want: "1299.99"},
		{name: "us grouping", in: "$1,299.00", want: "1299.00"},
		{name: "thousands only", in: "1,299", want: "1299"},
		{name: "many groups", in: "1.234.567", want: "1234567"},
		{name: "leading zero keeps decimals", in: "0.999", want: "0.999"},
		{name: "missing integer part", in: ",5", want: "0.5"},
		{name: "trailing separator", in: "19.", want: "19"},
		{name: "integer", in: "EUR 42", want: "42"},
		{name: "no digits", in: "Prix sur demande", want: ""},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, SanitizePrice(tt.in))
		})
	}
}

func TestSanitizePriceIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"19.99", "1.299,99 €", "$1,299.00", "1,299", "0.999", ",5", "00.500",
		"1.5.25", "12 345,6", "€", "3,14159",
	}
	for _, in := range inputs {
		once := SanitizePrice(in)
		require.Equal(t, once, SanitizePrice(once), "input %q", in)
		require.LessOrEqual(t, strings.Count(once, "."), 1, "input %q", in)
		require.NotContains(t, once, ",", "input %q", in)
	}
}

func TestTruncateDescription(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("é", 800)
	got := TruncateDescription(long)
	require.Equal(t, MaxDescriptionRunes, utf8.RuneCountInString(got))

	require.Equal(t, "Soft cotton tee", TruncateDescription("  Soft \n\n cotton\t tee  "))
}

func TestNormalizeImages(t *testing.T) {
	t.Parallel()

	var raw []string
	for i := 0; i < 12; i++ {
		raw = append(raw, fmt.Sprintf("//cdn.example.com/%d.jpg", i))
	}
	raw = append([]string{"", "//cdn.example.com/0.jpg"}, raw...)

	got := NormalizeImages(raw)
	require.Len(t, got, MaxImages)
	require.Equal(t, "https://cdn.example.com/0.jpg", got[0])
	require.Equal(t, "https://cdn.example.com/4.jpg", got[4])
}

func TestNormalizeDefaults(t *testing.T) {
	t.Parallel()

	got := Normalize(RawFields{Title: "  Widget ", Vendor: "Amazon"})
	require.Equal(t, Product{
		Title:    "Widget",
		Price:    "0",
		Images:   []string{},
		Currency: DefaultCurrency,
		Vendor:   "Amazon",
	}, got)
	require.False(t, got.LowConfidence())

	require.True(t, Normalize(RawFields{Title: SentinelTitle}).LowConfidence())
}

func TestAbsoluteImageURL(t *testing.T) {
	t.Parallel()

	require.Equal(t, "https://cdn.example.com/x.jpg", AbsoluteImageURL("//cdn.example.com/x.jpg"))
	require.Equal(t, "http://cdn.example.com/x.jpg", AbsoluteImageURL("http://cdn.example.com/x.jpg"))
	require.Equal(t, "/local/x.jpg", AbsoluteImageURL("/local/x.jpg"))
}
