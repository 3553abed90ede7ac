package langs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	l, ok := Lookup("es")
	assert.True(t, ok)
	assert.Equal(t, Language{Name: "Spanish", NativeName: "Español"}, l)

	l, ok = Lookup("pt_br")
	assert.True(t, ok)
	assert.Equal(t, "Portuguese (Brazil)", l.Name)

	l, ok = Lookup("fr-CA")
	assert.True(t, ok)
	assert.Equal(t, "French", l.Name)

	_, ok = Lookup("tlh")
	assert.False(t, ok)
}

func TestPrimary(t *testing.T) {
	tests := map[string]string{
		"pt-BR": "pt",
		"pt_BR": "pt",
		"es":    "es",
		"EN":    "en",
		"zh-CN": "zh",
		"":      "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Primary(in), in)
	}
	assert.True(t, SamePrimary("pt-BR", "pt"))
	assert.False(t, SamePrimary("es", "en"))
	assert.False(t, SamePrimary("", ""))
}
