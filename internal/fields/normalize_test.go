package fields

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "crlf to lf", in: "line one\r\nline two", want: "line one\nline two"},
		{name: "bare cr to lf", in: "line one\rline two", want: "line one\nline two"},
		{name: "tab becomes column gap", in: "Caliper\t2\t$45.00", want: "Caliper  2  $45.00"},
		{name: "blank run collapsed", in: "a\n\n\n\n\nb", want: "a\n\nb"},
		{name: "trailing spaces trimmed", in: "a   \nb  ", want: "a\nb"},
		{name: "qty letter I is one", in: "Qty: I", want: "Qty: 1"},
		{name: "qty letter l is one", in: "quantity = l", want: "quantity = 1"},
		{name: "zero before capital is O", in: "signed by 0Brien", want: "signed by OBrien"},
		{name: "zero before all caps is O", in: "LENT TO 0BRIEN", want: "LENT TO OBRIEN"},
		{name: "id-shaped token untouched", in: "shelf 0B12 in storage", want: "shelf 0B12 in storage"},
		{name: "real quantity untouched", in: "Qty: 12", want: "Qty: 12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeKeepsLineStructure(t *testing.T) {
	t.Parallel()

	in := "Items:\nCaliper  2  $45.00\nMultimeter  1  $89.50"
	require.Equal(t, in, Normalize(in))
}
