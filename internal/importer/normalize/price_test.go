package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrice(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "dot separator", in: "599.99", want: "599.99"},
		{name: "comma separator", in: "1234,56", want: "1234.56"},
		{name: "thousands with spaces", in: "1 234,56", want: "1234.56"},
		{name: "non-breaking spaces", in: "12 345 678,90", want: "12345678.9"},
		{name: "integer", in: "600", want: "600"},
		{name: "rounded to kopecks", in: "10.999", want: "11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Price(tt.in)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestPrice_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "abc", "-5", "1.2.3", "12,34,56"} {
		assert.Nil(t, Price(in), "input %q", in)
	}
}
