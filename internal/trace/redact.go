package trace

import (
	"regexp"
	"strings"
)

// RedactPattern is one named regex replacement applied to captured traces
// before they are persisted.
type RedactPattern struct {
	Name        string
	Regex       string
	ReplaceWith string
}

type Redactor interface {
	Apply(t *ExecutionTrace) []string
}

type RegexRedactor struct {
	patterns []compiledPattern
}

type compiledPattern struct {
	name        string
	regex       *regexp.Regexp
	replaceWith string
}

func NewRedactor(patterns []RedactPattern) (*RegexRedactor, error) {
	var compiled []compiledPattern
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern.Regex)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, compiledPattern{
			name:        pattern.Name,
			regex:       re,
			replaceWith: pattern.ReplaceWith,
		})
	}
	return &RegexRedactor{patterns: compiled}, nil
}

// Apply redacts the final output and every string-valued parameter and
// output in place, returning the names of the patterns that matched.
func (r *RegexRedactor) Apply(t *ExecutionTrace) []string {
	if r == nil {
		return nil
	}
	var applied []string

	if t.FinalOutput != "" {
		content, matched := applyPatterns(t.FinalOutput, r.patterns)
		if len(matched) > 0 {
			t.FinalOutput = content
			applied = append(applied, matched...)
		}
	}

	for i := range t.Steps {
		step := &t.Steps[i]
		for key, val := range step.Params {
			if s, ok := val.Str(); ok {
				content, matched := applyPatterns(s, r.patterns)
				if len(matched) > 0 {
					step.Params[key] = String(content)
					applied = append(applied, matched...)
				}
			}
		}
		if s, ok := step.Output.Str(); ok {
			content, matched := applyPatterns(s, r.patterns)
			if len(matched) > 0 {
				step.Output = String(content)
				applied = append(applied, matched...)
			}
		}
	}
	return unique(applied)
}

func applyPatterns(input string, patterns []compiledPattern) (string, []string) {
	if input == "" {
		return input, nil
	}
	var matched []string
	output := input
	for _, pattern := range patterns {
		if pattern.regex.MatchString(output) {
			output = pattern.regex.ReplaceAllString(output, pattern.replaceWith)
			matched = append(matched, pattern.name)
		}
	}
	return output, matched
}

func unique(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]bool)
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// PresetPatterns expands well-known preset names into concrete patterns.
func PresetPatterns(presets []string) []RedactPattern {
	var patterns []RedactPattern
	for _, preset := range presets {
		switch strings.ToLower(preset) {
		case "pii_basic":
			patterns = append(patterns,
				RedactPattern{Name: "email", Regex: `[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`, ReplaceWith: "[REDACTED_EMAIL]"},
				RedactPattern{Name: "phone", Regex: `\+?\d[\d\s().-]{7,}\d`, ReplaceWith: "[REDACTED_PHONE]"},
			)
		case "secrets":
			patterns = append(patterns,
				RedactPattern{Name: "api_key", Regex: `(?i)(api[-_ ]?key|secret|token)[^\n\r]*`, ReplaceWith: "[REDACTED_SECRET]"},
			)
		}
	}
	return patterns
}
