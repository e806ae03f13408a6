package theme

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"folio-assistant/internal/domain"
)

func TestNewModes(t *testing.T) {
	assert.Equal(t, domain.ThemeLight, New(domain.ThemeLight).Mode)
	assert.Equal(t, "light", New(domain.ThemeLight).GlamourStyle())
	assert.Equal(t, domain.ThemeDark, New(domain.ThemeDark).Mode)
	assert.Equal(t, "dark", New(domain.ThemeDark).GlamourStyle())
	assert.Equal(t, domain.ThemeDark, New("").Mode)
	assert.Equal(t, domain.ThemeSystem, New(domain.ThemeSystem).Mode)
}

func TestNext(t *testing.T) {
	assert.Equal(t, domain.ThemeDark, Next(domain.ThemeLight))
	assert.Equal(t, domain.ThemeLight, Next(domain.ThemeDark))
	assert.Equal(t, domain.ThemeLight, Next(domain.ThemeSystem))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 5, Clamp(1, 5, 10))
	assert.Equal(t, 10, Clamp(11, 5, 10))
	assert.Equal(t, 7, Clamp(7, 5, 10))
}

func TestASCIISymbols(t *testing.T) {
	t.Setenv("FOLIO_ASCII_SYMBOLS", "1")
	InitSymbols()
	t.Cleanup(func() {
		os.Unsetenv("FOLIO_ASCII_SYMBOLS")
		InitSymbols()
	})
	assert.Equal(t, "->", SymbolArrowR)
	assert.False(t, DetectUnicodeSupport())
}
