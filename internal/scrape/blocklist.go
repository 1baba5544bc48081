package scrape

import "strings"

// titleBlocklist matches page titles against configured anti-automation
// banner phrases, case-insensitively by substring.
type titleBlocklist struct {
	phrases []string
}

func newTitleBlocklist(phrases []string) *titleBlocklist {
	matcher := &titleBlocklist{}
	for _, raw := range phrases {
		value := strings.TrimSpace(strings.ToLower(raw))
		if value == "" {
			continue
		}
		matcher.phrases = append(matcher.phrases, value)
	}
	if len(matcher.phrases) == 0 {
		return nil
	}
	return matcher
}

func (b *titleBlocklist) Matches(title string) bool {
	if b == nil {
		return false
	}
	title = strings.ToLower(title)
	for _, phrase := range b.phrases {
		if strings.Contains(title, phrase) {
			return true
		}
	}
	return false
}
