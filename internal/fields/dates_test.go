package fields

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "long form", in: "September 30, 2025", want: "2025-09-30"},
		{name: "long form no comma", in: "September 30 2025", want: "2025-09-30"},
		{name: "abbreviated month", in: "Sep 30, 2025", want: "2025-09-30"},
		{name: "day first", in: "30 September 2025", want: "2025-09-30"},
		{name: "slashes", in: "09/30/2025", want: "2025-09-30"},
		{name: "slashes no padding", in: "9/30/2025", want: "2025-09-30"},
		{name: "already iso", in: "2025-09-30", want: "2025-09-30"},
		{name: "trailing punctuation", in: "September 30, 2025.", want: "2025-09-30"},
		{name: "surrounding whitespace", in: "  2025-09-30  ", want: "2025-09-30"},
		{name: "empty", in: "", want: ""},
		{name: "garbage", in: "next tuesday", want: ""},
		{name: "partial date", in: "September 2025", want: ""},
		{name: "impossible date", in: "13/45/2025", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, NormalizeDate(tt.in))
		})
	}
}

func TestNormalizeDateIdempotent(t *testing.T) {
	t.Parallel()

	once := NormalizeDate("January 5, 2026")
	require.Equal(t, "2026-01-05", once)
	require.Equal(t, once, NormalizeDate(once))
}
