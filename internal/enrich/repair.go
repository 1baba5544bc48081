package enrich

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

var (
	thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>\s*`)
	offerTag   = regexp.MustCompile(`\[ocena_oferty=(\d+)`)
)

// CleanResponse normalizes a raw model reply: it strips any enclosed
// reasoning block, extracts the first top-level JSON object, and runs a
// tolerant repair pass before the strict parse. On any failure the best
// cleaned text survives as the analysis value with a nil structure,
// rather than the reply being discarded.
func CleanResponse(raw string) (analysis string, parsed map[string]any) {
	cleaned := thinkBlock.ReplaceAllString(raw, "")

	candidate, ok := firstJSONObject(cleaned)
	if !ok {
		return strings.TrimSpace(cleaned), nil
	}
	repaired, err := jsonrepair.JSONRepair(candidate)
	if err != nil {
		return strings.TrimSpace(candidate), nil
	}
	if err := json.Unmarshal([]byte(repaired), &parsed); err != nil {
		return strings.TrimSpace(repaired), nil
	}
	return repaired, parsed
}

// firstJSONObject returns the first balanced top-level {...} substring,
// tracking string literals so braces inside values don't end the scan.
func firstJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString:
			if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
		case c == '"':
			inString = true
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// ExtractRatings pulls the two integer ratings out of a parsed reply,
// defaulting absent fields to zero. When the reply stayed plain text a
// bracketed-tag pattern recovers the offer rating alone.
func ExtractRatings(parsed map[string]any, text string) (offerRating, candidateRating int) {
	if parsed != nil {
		return intField(parsed, "ocena_oferty"), intField(parsed, "dopasowanie_kandydata")
	}
	if m := offerTag.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return n, 0
		}
	}
	return 0, 0
}

func intField(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return 0
}
