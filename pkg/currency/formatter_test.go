package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		amount float64
		code   string
		want   string
	}{
		{amount: 321, code: "usd", want: "321 USD"},
		{amount: 1234567, code: "USD", want: "1,234,567 USD"},
		{amount: 89.5, code: "eur", want: "89.50 EUR"},
		{amount: 19.999, code: "usd", want: "20 USD"},
		{amount: -42, code: "usd", want: "-42 USD"},
		{amount: 0, code: "", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.amount, tt.code))
		})
	}
}
