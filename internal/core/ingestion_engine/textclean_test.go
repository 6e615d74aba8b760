package ingestionengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanRemovesArtifacts(t *testing.T) {
	in := "Menu: KONTAKT IMPRESSUM\n\n\nReach us at info@acme.de\nAcme GmbH ---- builds  things :selected:"
	out := Clean(in)

	assert.NotContains(t, out, "KONTAKT")
	assert.NotContains(t, out, "IMPRESSUM")
	assert.NotContains(t, out, "----")
	assert.NotContains(t, out, ":selected:")
	assert.NotContains(t, out, "\n\n")
	assert.Contains(t, out, "info@acme.de Acme GmbH builds things")
}

func TestCleanStripsGermanNavTokens(t *testing.T) {
	out := Clean("Startseite ÜBER UNS Kontaktformular")
	assert.Equal(t, "Startseite Kontaktformular", out)

	out = Clean("ÜBER UNS\nAcme entwickelt Messtechnik.")
	assert.NotContains(t, out, "ÜBER UNS")
	assert.Contains(t, out, "Acme entwickelt Messtechnik.")

	out = Clean("über  uns DEUTSCH ENGLISH\nWillkommen")
	assert.NotContains(t, out, "uns")
	assert.NotContains(t, out, "DEUTSCH")
	assert.Contains(t, out, "Willkommen")

	// Ü inside a word is not a boundary; the name must survive.
	assert.Contains(t, Clean("Frau Grüber unseres Teams"), "Grüber")
}

func TestCleanDropsTemperatureTable(t *testing.T) {
	in := "Intro\nTemperature (C) 20 30 40\n-40 to 80\nAnother Section"
	out := Clean(in)

	assert.NotContains(t, out, "Temperature")
	assert.Contains(t, out, "Intro")
	assert.Contains(t, out, "Another Section")
}

func TestCleanTemperatureTableAtEnd(t *testing.T) {
	in := "Facilities overview\nTemperature (C) 20 30 40\nrows and rows"
	out := Clean(in)

	assert.Equal(t, "Facilities overview", out)
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"Menu: KONTAKT IMPRESSUM\n\n\nReach us at info@acme.de\nAcme GmbH ---- builds  things",
		"Temperature (C) 20 30 40\nBody",
		"plain text with  double  spaces",
		"",
	}
	for _, in := range inputs {
		once := Clean(in)
		assert.Equal(t, once, Clean(once))
	}
}
