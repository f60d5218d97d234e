// Package i18n looks up localized UI strings from messages.json catalogs laid
// out as locales/<lang>/messages.json.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/bytedance/sonic"
	"golang.org/x/text/language"
)

//go:embed locales
var embedded embed.FS

// DefaultLocale is used when no requested language matches.
const DefaultLocale = "en"

type message struct {
	Message     string `json:"message"`
	Description string `json:"description,omitempty"`
}

// Catalog resolves message keys for one chosen locale, falling back to the
// default locale for keys the chosen one lacks.
type Catalog struct {
	locale   language.Tag
	messages map[string]string
	fallback map[string]string
}

// Load reads every locales/<lang>/messages.json in fsys and picks the locale
// that best matches preferred (BCP 47 tags or Accept-Language style lists).
func Load(fsys fs.FS, defaultLocale string, preferred ...string) (*Catalog, error) {
	dirs, err := fs.ReadDir(fsys, "locales")
	if err != nil {
		return nil, fmt.Errorf("failed to list locales: %w", err)
	}

	defTag, err := language.Parse(dirToTag(defaultLocale))
	if err != nil {
		return nil, fmt.Errorf("invalid default locale %q: %w", defaultLocale, err)
	}

	tags := []language.Tag{defTag}
	bundles := map[language.Tag]map[string]string{}
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		tag, err := language.Parse(dirToTag(d.Name()))
		if err != nil {
			continue
		}
		msgs, err := readMessages(fsys, path.Join("locales", d.Name(), "messages.json"))
		if err != nil {
			return nil, err
		}
		bundles[tag] = msgs
		if tag != defTag {
			tags = append(tags, tag)
		}
	}

	fallback, ok := bundles[defTag]
	if !ok {
		return nil, fmt.Errorf("default locale %q has no messages.json", defaultLocale)
	}

	matcher := language.NewMatcher(tags)
	_, idx := language.MatchStrings(matcher, preferred...)
	chosen := tags[idx]

	return &Catalog{
		locale:   chosen,
		messages: bundles[chosen],
		fallback: fallback,
	}, nil
}

// Embedded loads the catalogs compiled into the binary.
func Embedded(preferred ...string) (*Catalog, error) {
	return Load(embedded, DefaultLocale, preferred...)
}

// GetMessage returns the localized string for key, or "" when no locale
// defines it.
func (c *Catalog) GetMessage(key string) string {
	if s, ok := c.messages[key]; ok {
		return s
	}
	return c.fallback[key]
}

// Locale returns the chosen locale.
func (c *Catalog) Locale() language.Tag {
	return c.locale
}

func readMessages(fsys fs.FS, name string) (map[string]string, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	var raw map[string]message
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		out[k] = v.Message
	}
	return out, nil
}

// zh_CN -> zh-CN
func dirToTag(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}
