package classifier

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"miniminds/internal/compliance/models"
)

// Localizer renders user-facing messages in the caller's language. It is
// immutable after construction; the language is chosen per call.
type Localizer struct {
	phrases Phrases
	tags    []language.Tag
	matcher language.Matcher
}

// LocalizerOption configures a Localizer.
type LocalizerOption func(*Localizer)

// WithPhrases merges extra translations over the built-in dictionary. New
// languages become supported.
func WithPhrases(p Phrases) LocalizerOption {
	return func(l *Localizer) {
		for lang, entries := range p {
			base := l.phrases[lang]
			if base == nil {
				base = make(map[string]string, len(entries))
				l.phrases[lang] = base
			}
			for k, v := range entries {
				base[k] = v
			}
		}
	}
}

// NewLocalizer builds a localizer over the built-in phrases. English is the
// fallback language.
func NewLocalizer(opts ...LocalizerOption) *Localizer {
	l := &Localizer{phrases: builtinPhrases()}
	for _, opt := range opts {
		opt(l)
	}

	langs := make([]string, 0, len(l.phrases))
	for lang := range l.phrases {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	l.tags = []language.Tag{language.English}
	for _, lang := range langs {
		tag, err := language.Parse(lang)
		if err != nil || tag == language.English {
			continue
		}
		l.tags = append(l.tags, tag)
	}
	l.matcher = language.NewMatcher(l.tags)
	return l
}

// LoadPhrases reads a YAML phrase file shaped as language → key → text.
func LoadPhrases(path string) (Phrases, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read phrases: %w", err)
	}
	var p Phrases
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse phrases %s: %w", path, err)
	}
	return p, nil
}

// Match returns the supported language closest to tag.
func (l *Localizer) Match(tag language.Tag) language.Tag {
	_, idx, _ := l.matcher.Match(tag)
	return l.tags[idx]
}

// Text translates key, falling back to English and then to key itself.
func (l *Localizer) Text(key string, tag language.Tag) string {
	base, _ := l.Match(tag).Base()
	if v, ok := l.phrases[base.String()][key]; ok && v != "" {
		return v
	}
	if v, ok := l.phrases["en"][key]; ok && v != "" {
		return v
	}
	return key
}

// Localize renders the blocked message: prefix, reason, alternative and the
// human-contact footer, separated by blank lines. Non-blocked
// classifications render as an empty string.
func (l *Localizer) Localize(c models.Classification, tag language.Tag) string {
	if !c.IsBlocked() {
		return ""
	}
	parts := []string{l.Text(KeyBlockedPrefix, tag)}
	if c.BlockedReason != "" {
		parts = append(parts, l.Text(c.BlockedReason, tag))
	}
	if c.SuggestedAlternative != "" {
		parts = append(parts, l.Text(c.SuggestedAlternative, tag))
	}
	parts = append(parts, l.Text(KeyContactFooter, tag))
	return strings.Join(parts, "\n\n")
}
