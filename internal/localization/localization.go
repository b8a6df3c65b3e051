// Package localization provides the UI string catalog (i18n). An English
// catalog is embedded so the binary works standalone; additional languages
// can be loaded from a directory of JSON files named by language code
// (e.g. "uk.json").
package localization

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

//go:embed locales/*.json
var embedded embed.FS

// Localizer manages the translations for the application. It holds a map of
// languages, each with its own map of translation keys and values.
type Localizer struct {
	mu           sync.RWMutex
	lang         string
	translations map[string]map[string]string
}

// NewLocalizer creates a Localizer with the embedded catalogs, rendering in
// lang (falling back to English key by key).
func NewLocalizer(lang string) (*Localizer, error) {
	l := &Localizer{
		lang:         lang,
		translations: make(map[string]map[string]string),
	}

	entries, err := embedded.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read embedded locales: %w", err)
	}
	for _, entry := range entries {
		data, err := embedded.ReadFile("locales/" + entry.Name())
		if err != nil {
			return nil, err
		}
		if err := l.addCatalog(entry.Name(), data); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// LoadDir merges translation files from a directory, overriding embedded
// entries key by key. The directory should contain JSON files named with
// the language code (e.g. "en.json").
func (l *Localizer) LoadDir(path string) error {
	files, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read localization directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(path, file.Name()))
		if err != nil {
			return fmt.Errorf("read localization file %s: %w", file.Name(), err)
		}
		if err := l.addCatalog(file.Name(), data); err != nil {
			return err
		}
	}
	return nil
}

func (l *Localizer) addCatalog(filename string, data []byte) error {
	lang := strings.TrimSuffix(filename, ".json")

	var translations map[string]string
	if err := json.Unmarshal(data, &translations); err != nil {
		return fmt.Errorf("parse localization file %s: %w", filename, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	catalog, ok := l.translations[lang]
	if !ok {
		catalog = make(map[string]string, len(translations))
		l.translations[lang] = catalog
	}
	for k, v := range translations {
		catalog[k] = v
	}
	return nil
}

// T returns the string for key in the localizer's language.
func (l *Localizer) T(key string) string {
	return l.GetString(l.lang, key)
}

// Tf formats the string for key with fmt.Sprintf arguments.
func (l *Localizer) Tf(key string, args ...any) string {
	return fmt.Sprintf(l.GetString(l.lang, key), args...)
}

// GetString returns the localized string for a given key and language. If
// the language or the key is not found it falls back to English, and then
// to the key itself.
func (l *Localizer) GetString(lang, key string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if catalog, ok := l.translations[lang]; ok {
		if value, ok := catalog[key]; ok {
			return value
		}
	}

	if lang != "en" {
		if catalog, ok := l.translations["en"]; ok {
			if value, ok := catalog[key]; ok {
				return value
			}
		}
	}

	return key
}
