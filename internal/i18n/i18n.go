// Package i18n supplies translated UI strings from Chrome-style
// messages.json catalogues.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"golang.org/x/text/language"
)

// MalformedExpression is the key of the text shown when a formula cannot
// be evaluated.
const MalformedExpression = "malformedExpressionText"

//go:embed locales/*/messages.json
var catalogues embed.FS

// defaultLocale must be the first catalogue handed to the matcher; it is
// what unmatched preferences fall back to.
const defaultLocale = "en_US"

// defaults backs up every catalogue so a missing translation still shows
// English text.
var defaults = map[string]string{
	"memoryClearallText":     "Clear All",
	"memoryCloseText":        "Close",
	"dialogHeadingText":      "Clear All Memory slots",
	"dialogContentText":      "All memory slots will be cleared.",
	"dialogOKButtonText":     "OK",
	"dialogCancelButtonText": "Cancel",
	"mneSaveText":            "Save",
	"mneCancelText":          "Cancel",
	MalformedExpression:      "Malformed Expression",
}

type message struct {
	Message     string `json:"message"`
	Description string `json:"description,omitempty"`
}

// Bundle is the set of available catalogues.
type Bundle struct {
	tags     []language.Tag
	catalogs []map[string]string
	matcher  language.Matcher
}

// Load reads the embedded catalogues.
func Load() (*Bundle, error) {
	dirs, err := fs.ReadDir(catalogues, "locales")
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}

	names := []string{defaultLocale}
	for _, d := range dirs {
		if d.IsDir() && d.Name() != defaultLocale {
			names = append(names, d.Name())
		}
	}

	b := &Bundle{}
	for _, name := range names {
		tag, err := language.Parse(strings.ReplaceAll(name, "_", "-"))
		if err != nil {
			return nil, fmt.Errorf("locale %q: %w", name, err)
		}

		raw, err := fs.ReadFile(catalogues, path.Join("locales", name, "messages.json"))
		if err != nil {
			return nil, fmt.Errorf("read catalogue %q: %w", name, err)
		}

		var msgs map[string]message
		if err := json.Unmarshal(raw, &msgs); err != nil {
			return nil, fmt.Errorf("decode catalogue %q: %w", name, err)
		}

		catalog := make(map[string]string, len(msgs))
		for k, m := range msgs {
			catalog[k] = m.Message
		}

		b.tags = append(b.tags, tag)
		b.catalogs = append(b.catalogs, catalog)
	}

	b.matcher = language.NewMatcher(b.tags)
	return b, nil
}

// Locales lists the available locales, default first.
func (b *Bundle) Locales() []string {
	out := make([]string, len(b.tags))
	for i, t := range b.tags {
		out[i] = t.String()
	}
	return out
}

// Localizer picks the catalogue that best matches the given preferences.
// Each preference may be a single tag ("fi", "en_US") or an
// Accept-Language header value.
func (b *Bundle) Localizer(prefs ...string) *Localizer {
	var want []language.Tag
	for _, p := range prefs {
		p = strings.ReplaceAll(strings.TrimSpace(p), "_", "-")
		if p == "" {
			continue
		}
		tags, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		want = append(want, tags...)
	}

	idx := 0
	if len(want) > 0 {
		_, idx, _ = b.matcher.Match(want...)
	}
	return &Localizer{tag: b.tags[idx], messages: b.catalogs[idx]}
}

// Localizer translates message keys for one locale.
type Localizer struct {
	tag      language.Tag
	messages map[string]string
}

// Default returns an English localizer backed only by the built-in table.
func Default() *Localizer {
	return &Localizer{tag: language.AmericanEnglish}
}

// Locale is the BCP 47 tag of the chosen catalogue.
func (l *Localizer) Locale() string {
	return l.tag.String()
}

// Translate returns the text for key, falling back to English and then to
// the key itself.
func (l *Localizer) Translate(key string) string {
	if text, ok := l.messages[key]; ok && text != "" {
		return text
	}
	if text, ok := defaults[key]; ok {
		return text
	}
	return key
}
