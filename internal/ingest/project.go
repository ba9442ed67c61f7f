package ingest

import (
	"strings"
	"unicode"
)

// decodeProjectPath translates a slash-delimited filesystem path into the
// dash-encoded token shape used by project directories, then decodes it.
// Both sources therefore converge on identical project names.
func (r *Reader) decodeProjectPath(path string) string {
	if path == "" {
		return r.rules.FallbackProject
	}
	encoded := strings.ReplaceAll(path, "\\", "/")
	encoded = strings.ReplaceAll(encoded, "/", "-")
	return r.decodeProjectDir(encoded)
}

// decodeProjectDir reconstructs a human-readable project name from a
// dash-encoded directory name. The rules are reverse-engineered
// conventions, a best-effort lossy transform, not an exact inverse of the
// original path.
func (r *Reader) decodeProjectDir(encoded string) string {
	rules := r.rules

	tokens := strings.Split(strings.TrimPrefix(encoded, "-"), "-")
	words := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		lower := strings.ToLower(tok)
		if rules.StopTokens[lower] {
			continue
		}

		switch {
		case rules.CourseCode.MatchString(tok) || rules.SemesterCode.MatchString(tok):
			// Course and semester codes carry meaning as-is.
			words = append(words, tok)
		case rules.Acronyms[lower]:
			words = append(words, strings.ToUpper(tok))
		case tok == lower:
			words = append(words, titleWord(tok))
		default:
			// Mixed-case tokens were deliberate; keep them.
			words = append(words, tok)
		}
	}

	// An "Academic" token adds nothing next to a course code.
	cleaned := words[:0]
	for _, w := range words {
		if strings.EqualFold(w, "academic") {
			continue
		}
		cleaned = append(cleaned, w)
	}
	words = cleaned

	// A "HomeLab" prefix is redundant when a course code follows.
	if len(words) >= 2 && strings.EqualFold(words[0], "homelab") &&
		rules.CourseCode.MatchString(words[1]) {
		words = words[1:]
	}

	name := strings.Join(words, " ")
	if rest, ok := strings.CutPrefix(name, "Project "); ok && rest != "" {
		name = rest
	}
	name = strings.TrimSuffix(name, " Output")
	if name == "" || name == "Project" {
		name = rules.FallbackProject
	}
	return name
}

// titleWord upper-cases the first rune of a lower-case token.
func titleWord(s string) string {
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
