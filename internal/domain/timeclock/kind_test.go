package timeclock

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		raw  string
		want Kind
		ok   bool
	}{
		{"entrada", KindEntry, true},
		{"Entrada", KindEntry, true},
		{"ENTRADA", KindEntry, true},
		{" E ", KindEntry, true},
		{"entry", KindEntry, true},
		{"clock_in", KindEntry, true},
		{"pausa", KindBreak, true},
		{"Pausa", KindBreak, true},
		{"P", KindBreak, true},
		{"intervalo", KindBreak, true},
		{"saida", KindExit, true},
		{"Saída", KindExit, true},
		{"SAÍDA", KindExit, true},
		{"S", KindExit, true},
		{"clock-out", KindExit, true},
		{"registro de saida", KindExit, true},
		{"", KindUnknown, false},
		{"lunch", KindUnknown, false},
		{"Q", KindUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseKind(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKindTextRoundTrip(t *testing.T) {
	var kind Kind
	assert.NoError(t, kind.UnmarshalText([]byte("Saída")))
	assert.Equal(t, KindExit, kind)

	text, err := kind.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "exit", string(text))

	err = kind.UnmarshalText([]byte("lunch"))
	assert.True(t, errors.Is(err, ErrUnknownKind))
}

func TestKindCode(t *testing.T) {
	assert.Equal(t, "E", KindEntry.Code())
	assert.Equal(t, "P", KindBreak.Code())
	assert.Equal(t, "S", KindExit.Code())
	assert.Equal(t, "?", KindUnknown.Code())
}
