package classifier

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"miniminds/internal/compliance/models"
)

func TestLocalizeBlockedMessageOrder(t *testing.T) {
	l := NewLocalizer()
	c := New().Classify("Which child has allergies?")

	msg := l.Localize(c, language.English)

	parts := strings.Split(msg, "\n\n")
	require.Len(t, parts, 4)
	assert.Equal(t, l.Text(KeyBlockedPrefix, language.English), parts[0])
	assert.Equal(t, ReasonMedical, parts[1])
	assert.Equal(t, AltMedical, parts[2])
	assert.Equal(t, l.Text(KeyContactFooter, language.English), parts[3])
}

func TestLocalizeTranslates(t *testing.T) {
	l := NewLocalizer()
	c := New().Classify("Which child has allergies?")

	msg := l.Localize(c, language.MustParse("fr-CA"))

	assert.True(t, strings.HasPrefix(msg, "Désolé"))
	assert.Contains(t, msg, "informations médicales")
	assert.NotContains(t, msg, ReasonMedical)
}

func TestLocalizeFallsBackToOriginalText(t *testing.T) {
	l := NewLocalizer()
	c := models.Classification{
		Category:             models.CategoryBlocked,
		RiskLevel:            models.RiskProhibited,
		BlockedReason:        "A reason nobody translated.",
		SuggestedAlternative: "",
	}

	msg := l.Localize(c, language.Arabic)

	parts := strings.Split(msg, "\n\n")
	require.Len(t, parts, 3, "no alternative part when none is set")
	assert.Equal(t, "A reason nobody translated.", parts[1])
	assert.Equal(t, l.Text(KeyBlockedPrefix, language.Arabic), parts[0])
}

func TestLocalizeArabicFallsBackPerKey(t *testing.T) {
	l := NewLocalizer()
	c := New().Classify("Can I see the class roster?")

	msg := l.Localize(c, language.Arabic)

	assert.Contains(t, msg, ReasonRoster, "untranslated reason is used verbatim")
	assert.Contains(t, msg, "عذرًا")
}

func TestLocalizeNotBlocked(t *testing.T) {
	l := NewLocalizer()
	assert.Empty(t, l.Localize(New().Classify("What are the daycare hours?"), language.English))
}

func TestMatchUnsupportedLanguageFallsBackToEnglish(t *testing.T) {
	l := NewLocalizer()
	assert.Equal(t, language.English, l.Match(language.Japanese))
	assert.Equal(t, l.Text(KeyApology, language.English), l.Text(KeyApology, language.Japanese))
}

func TestTextUnknownKeyReturnsKey(t *testing.T) {
	assert.Equal(t, "no.such.key", NewLocalizer().Text("no.such.key", language.French))
}

func TestLoadPhrasesExtendsDictionary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phrases.yaml")
	content := `
es:
  blocked.prefix: "Lo siento, no puedo ayudar con esa solicitud."
en:
  smalltalk.greeting: "Hi! What would you like to know?"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	phrases, err := LoadPhrases(path)
	require.NoError(t, err)
	l := NewLocalizer(WithPhrases(phrases))

	assert.Equal(t, "Lo siento, no puedo ayudar con esa solicitud.", l.Text(KeyBlockedPrefix, language.Spanish))
	assert.Equal(t, "Hi! What would you like to know?", l.Text(KeyGreeting, language.English))
	assert.Equal(t, NewLocalizer().Text(KeyApology, language.English), l.Text(KeyApology, language.Spanish),
		"missing keys fall back to English")
}

func TestLoadPhrasesErrors(t *testing.T) {
	_, err := LoadPhrases(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("en: [unclosed"), 0o600))
	_, err = LoadPhrases(path)
	require.Error(t, err)
}
