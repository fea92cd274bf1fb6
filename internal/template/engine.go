// Package template implements the {{placeholder}} substitution engine used
// to personalize outbound Messenger messages.
package template

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

// placeholderRE matches {{identifier}} tokens; identifiers are restricted to
// word characters so stray braces in template prose are left untouched.
var placeholderRE = regexp.MustCompile(`\{\{([A-Za-z0-9_]+)\}\}`)

// ExtractPlaceholders returns the deduplicated placeholder names appearing in
// the template, in first-occurrence order. An empty template yields an empty
// slice.
func ExtractPlaceholders(templateText string) []string {
	if templateText == "" {
		return []string{}
	}
	seen := make(map[string]struct{})
	out := []string{}
	for _, m := range placeholderRE.FindAllStringSubmatch(templateText, -1) {
		name := m[1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// Fill substitutes every placeholder in the template. Values resolve from
// leadData first, then variables, then the empty string (with a logged
// warning). Substitution is a single textual pass: a value that itself
// contains {{...}} is not re-expanded.
func Fill(templateText string, leadData, variables map[string]string) string {
	if templateText == "" {
		return ""
	}
	return placeholderRE.ReplaceAllStringFunc(templateText, func(tok string) string {
		name := strings.Trim(tok, "{}")
		if v, ok := leadData[name]; ok {
			return v
		}
		if v, ok := variables[name]; ok {
			return v
		}
		log.Warn().Str("placeholder", name).Msg("placeholder not found in lead data or variables")
		return ""
	})
}
