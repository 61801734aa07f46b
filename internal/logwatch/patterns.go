// Package logwatch tails and scans the ship's boot log.
package logwatch

import "regexp"

// ReadyPattern matches the line vere prints when the web interface opens.
// Group 1 captures the local endpoint URL.
var ReadyPattern = regexp.MustCompile(`http: web interface live on (http://localhost:[0-9]+)`)

// codePattern matches a +code access code: four six-letter phonemic
// groups joined by hyphens, e.g. lidlut-tabwed-pillex-ridrup.
var codePattern = regexp.MustCompile(`[a-z]{6}-[a-z]{6}-[a-z]{6}-[a-z]{6}`)

// InterestPatterns is the fixed set of boot log lines worth surfacing to
// the operator: boot progress, runtime and kernel load markers, the web
// endpoint coming live, and ames peer registration.
var InterestPatterns = []*regexp.Regexp{
	regexp.MustCompile(`boot:`),
	regexp.MustCompile(`vere:`),
	regexp.MustCompile(`loom:`),
	regexp.MustCompile(`arvo:`),
	regexp.MustCompile(`ames: .*(czar|live)`),
	regexp.MustCompile(`http: web interface live on http://localhost:[0-9]+`),
}

// matchesAny reports whether the line matches one of the patterns.
func matchesAny(line string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

// ExtractCode finds the last access code in content, skipping candidates
// that are ship names. A ~-prefixed token in the +code reply is the ship's
// own identity, not the code; anything directly attached to a sigil or a
// longer hyphenated run is rejected.
func ExtractCode(content string) (string, bool) {
	var found string
	for _, idx := range codePattern.FindAllStringIndex(content, -1) {
		start, end := idx[0], idx[1]
		if start > 0 {
			switch content[start-1] {
			case '~', '-':
				continue
			}
		}
		if end < len(content) && content[end] == '-' {
			continue
		}
		found = content[start:end]
	}
	return found, found != ""
}
