package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatCLP(t *testing.T) {
	cases := []struct {
		amount int
		want   string
	}{
		{0, "$0"},
		{50, "$50"},
		{999, "$999"},
		{1000, "$1.000"},
		{15000, "$15.000"},
		{999999, "$999.999"},
		{1500000, "$1.500.000"},
		{50000000, "$50.000.000"},
		{-15000, "-$15.000"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, FormatCLP(tc.amount))
	}
}
