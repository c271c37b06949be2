// Package lang loads and validates the per-language parsing rules that
// drive classification, cleaning and filtering. Rules are data, not code:
// every component receives an immutable *Profile at construction.
package lang

import (
	_ "embed"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed lang_settings.yml
var embeddedSettings []byte

// rawProfile mirrors one language entry of the settings YAML.
type rawProfile struct {
	SectionPatt       string   `yaml:"section_patt" validate:"required"`
	FilterOutPatterns []string `yaml:"filter_out_patterns" validate:"required,min=1,dive,required"`
	RedirectKeywords  []string `yaml:"redirect_keywords" validate:"required,min=1,dive,required"`
}

// Profile is the resolved, immutable rule set for one language.
// It is shared read-only by all pipeline components.
type Profile struct {
	Code             string
	SectionBoundary  *regexp.Regexp
	FilterOut        []*regexp.Regexp
	RedirectKeywords []string
}

// Settings holds the compiled profiles for every configured language.
type Settings struct {
	profiles map[string]*Profile
}

// ParseSettings reads a settings YAML document, validates each language
// entry and compiles its patterns. A malformed entry is a hard error:
// configuration problems must surface before any processing begins.
func ParseSettings(r io.Reader) (*Settings, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read language settings: %w", err)
	}
	return parseSettings(data)
}

// DefaultSettings returns the settings shipped with the binary.
func DefaultSettings() (*Settings, error) {
	return parseSettings(embeddedSettings)
}

func parseSettings(data []byte) (*Settings, error) {
	var raw map[string]rawProfile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse language settings: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("language settings contain no languages")
	}

	validate := validator.New()
	profiles := make(map[string]*Profile, len(raw))
	for code, entry := range raw {
		if err := validate.Struct(entry); err != nil {
			return nil, fmt.Errorf("invalid settings for language %q: %w", code, err)
		}
		profile, err := compileProfile(code, entry)
		if err != nil {
			return nil, err
		}
		profiles[strings.ToUpper(code)] = profile
	}

	return &Settings{profiles: profiles}, nil
}

func compileProfile(code string, raw rawProfile) (*Profile, error) {
	// Section headings are matched case-insensitively, mirroring how the
	// localized headings appear in practice ("See Also", "SEE ALSO", ...).
	section, err := regexp.Compile("(?i)" + raw.SectionPatt)
	if err != nil {
		return nil, fmt.Errorf("language %q: invalid section_patt: %w", code, err)
	}

	filters := make([]*regexp.Regexp, 0, len(raw.FilterOutPatterns))
	for _, patt := range raw.FilterOutPatterns {
		re, err := regexp.Compile(patt)
		if err != nil {
			return nil, fmt.Errorf("language %q: invalid filter_out_pattern %q: %w", code, patt, err)
		}
		filters = append(filters, re)
	}

	keywords := make([]string, 0, len(raw.RedirectKeywords))
	for _, kw := range raw.RedirectKeywords {
		keywords = append(keywords, strings.ToLower(kw))
	}

	return &Profile{
		Code:             strings.ToUpper(code),
		SectionBoundary:  section,
		FilterOut:        filters,
		RedirectKeywords: keywords,
	}, nil
}

// Profile returns the rule set for the given language code
// (case-insensitive). Unknown languages are an error, never a fallback:
// silently parsing a dump with the wrong rule set would corrupt the output.
func (s *Settings) Profile(code string) (*Profile, error) {
	profile, ok := s.profiles[strings.ToUpper(code)]
	if !ok {
		return nil, fmt.Errorf("unknown language %q (available: %s)", code, strings.Join(s.Languages(), ", "))
	}
	return profile, nil
}

// Languages lists the configured language codes in sorted order.
func (s *Settings) Languages() []string {
	codes := make([]string, 0, len(s.profiles))
	for code := range s.profiles {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// MatchesFilter reports whether the given title matches any of the
// profile's filter-out patterns.
func (p *Profile) MatchesFilter(title string) bool {
	for _, re := range p.FilterOut {
		if re.MatchString(title) {
			return true
		}
	}
	return false
}
