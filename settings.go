package wikigraph

import (
	_ "embed"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed lang_settings.yml
var defaultSettingsYAML []byte

// FallbackLanguage is used for languages without settings of their own.
const FallbackLanguage = "en"

// LanguageSettings is the raw per-language configuration.
type LanguageSettings struct {
	SectionPattern    string   `yaml:"section_patt"`
	FilterOutPatterns []string `yaml:"filter_out_patterns"`
	RedirectKeywords  []string `yaml:"redirect_keywords"`
}

// Language is a compiled LanguageSettings, ready for use.
type Language struct {
	Code             string
	Trailing         *regexp.Regexp
	Exclude          []*regexp.Regexp
	RedirectKeywords []string
}

// Settings holds LanguageSettings by lowercase language code.
type Settings map[string]LanguageSettings

// ParseSettings reads settings from yaml.
func ParseSettings(data []byte) (Settings, error) {
	raw := map[string]LanguageSettings{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "parsing language settings")
	}
	rv := make(Settings, len(raw))
	for code, ls := range raw {
		rv[strings.ToLower(code)] = ls
	}
	return rv, nil
}

// LoadSettings reads settings from a yaml file.
func LoadSettings(filename string) (Settings, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "reading language settings")
	}
	return ParseSettings(data)
}

// DefaultSettings gets the settings built into the package.
func DefaultSettings() Settings {
	s, err := ParseSettings(defaultSettingsYAML)
	if err != nil {
		panic(err)
	}
	return s
}

// Languages lists the configured language codes.
func (s Settings) Languages() []string {
	rv := make([]string, 0, len(s))
	for code := range s {
		rv = append(rv, code)
	}
	sort.Strings(rv)
	return rv
}

// Lookup compiles the settings for a language, falling back to
// FallbackLanguage when the language isn't configured.
func (s Settings) Lookup(code string) (*Language, error) {
	code = strings.ToLower(code)
	ls, ok := s[code]
	if !ok {
		if ls, ok = s[FallbackLanguage]; !ok {
			return nil, errors.Errorf("no settings for %q and no %q fallback",
				code, FallbackLanguage)
		}
	}

	rv := &Language{Code: code}
	if ls.SectionPattern != "" {
		re, err := regexp.Compile("(?i)" + ls.SectionPattern)
		if err != nil {
			return nil, errors.Wrapf(err, "compiling section pattern for %q", code)
		}
		rv.Trailing = re
	}

	exclude, err := CompilePatterns(ls.FilterOutPatterns)
	if err != nil {
		return nil, errors.Wrapf(err, "filter patterns for %q", code)
	}
	rv.Exclude = exclude

	for _, kw := range ls.RedirectKeywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			rv.RedirectKeywords = append(rv.RedirectKeywords, kw)
		}
	}
	return rv, nil
}
