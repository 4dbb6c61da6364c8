// Package i18n resolves user-facing text from per-locale JSON catalogs.
//
// A catalog file is named after its locale ("en-US.json") and holds a
// two-level object of categories and keys:
//
//	{"play": {"playing_now": "Playing **${title}** by **${author}**."}}
//
// Lookups fall back to the default locale and, as a last resort, to the
// literal "category.key" string so a missing translation never hides which
// key was requested.
package i18n

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

type catalog map[string]map[string]string

// Localizer serves translated text for every locale found at load time.
// It is immutable after Load and safe for concurrent use.
type Localizer struct {
	fallback string
	catalogs map[string]catalog
}

// Load reads every *.json catalog in dir. The fallback locale must have a
// catalog, otherwise lookups could fail silently for every other locale.
func Load(dir, fallback string) (*Localizer, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("i18n: read catalog directory %q: %w", dir, err)
	}

	catalogs := make(map[string]catalog)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("i18n: read catalog %q: %w", name, err)
		}

		var c catalog
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("i18n: parse catalog %q: %w", name, err)
		}
		catalogs[strings.TrimSuffix(name, ".json")] = c
	}

	if len(catalogs) == 0 {
		return nil, fmt.Errorf("i18n: no catalogs found in %q", dir)
	}
	if _, ok := catalogs[fallback]; !ok {
		return nil, fmt.Errorf("i18n: default locale %q has no catalog in %q", fallback, dir)
	}

	return &Localizer{fallback: fallback, catalogs: catalogs}, nil
}

// Locales returns the loaded locale names in sorted order.
func (l *Localizer) Locales() []string {
	locales := make([]string, 0, len(l.catalogs))
	for locale := range l.catalogs {
		locales = append(locales, locale)
	}
	slices.Sort(locales)
	return locales
}

// DefaultLocale returns the fallback locale.
func (l *Localizer) DefaultLocale() string {
	return l.fallback
}

// Text resolves category.key for the given locale.
func (l *Localizer) Text(locale, category, key string) string {
	if text, ok := l.lookup(locale, category, key); ok {
		return text
	}
	if text, ok := l.lookup(l.fallback, category, key); ok {
		return text
	}
	return category + "." + key
}

// Textf resolves category.key and substitutes every ${name} placeholder with
// its value from vars. Placeholders without a value are left untouched.
func (l *Localizer) Textf(locale, category, key string, vars map[string]string) string {
	text := l.Text(locale, category, key)
	for name, value := range vars {
		text = strings.ReplaceAll(text, "${"+name+"}", value)
	}
	return text
}

func (l *Localizer) lookup(locale, category, key string) (string, bool) {
	c, ok := l.catalogs[locale]
	if !ok {
		return "", false
	}
	keys, ok := c[category]
	if !ok {
		return "", false
	}
	text, ok := keys[key]
	return text, ok
}
