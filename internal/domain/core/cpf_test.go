package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidCPF(t *testing.T) {
	tests := []struct {
		cpf  string
		want bool
	}{
		{"529.982.247-25", true},
		{"52998224725", true},
		{"390.533.447-05", true},
		{"529.982.247-26", false},
		{"111.111.111-11", false},
		{"00000000000", false},
		{"5299822472", false},
		{"529982247250", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.cpf, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidCPF(tt.cpf))
		})
	}
}

func TestFormatCPF(t *testing.T) {
	assert.Equal(t, "529.982.247-25", FormatCPF("52998224725"))
	assert.Equal(t, "529.982.247-25", FormatCPF(" 529 982 247 25 "))
	assert.Equal(t, "123", FormatCPF("123"))
	assert.Equal(t, "52998224725", NormalizeCPF("529.982.247-25"))
}
