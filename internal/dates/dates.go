// Package dates resolves relative date expressions against the server
// clock. Resolution happens before any prompt reaches the language
// model, so the model only ever sees literal YYYY-MM-DD values.
package dates

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rvenkat/agentdesk/internal/domain"
)

// Layout is the canonical date format used throughout the service.
const Layout = "2006-01-02"

// Resolve turns a date spec into a concrete YYYY-MM-DD date. Relative
// terms resolve against now; an absolute date passes through after a
// format check. An empty spec means today.
func Resolve(spec string, now time.Time) (string, error) {
	switch strings.ToLower(strings.TrimSpace(spec)) {
	case "", "today":
		return now.Format(Layout), nil
	case "tomorrow":
		return now.AddDate(0, 0, 1).Format(Layout), nil
	case "yesterday":
		return now.AddDate(0, 0, -1).Format(Layout), nil
	}
	if _, err := time.Parse(Layout, strings.TrimSpace(spec)); err != nil {
		return "", fmt.Errorf("%w: date %q is neither relative (today/tomorrow/yesterday) nor YYYY-MM-DD", domain.ErrValidation, spec)
	}
	return strings.TrimSpace(spec), nil
}

// NextWeekRange returns the half-open 7-day window [start, end) for
// "next week": the window starts on the Monday strictly after now.
// Asked on a Monday, the window starts the following Monday.
func NextWeekRange(now time.Time) (start, end string) {
	days := (int(time.Monday) - int(now.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	monday := now.AddDate(0, 0, days)
	return monday.Format(Layout), monday.AddDate(0, 0, 7).Format(Layout)
}

var (
	nextWeekRe  = regexp.MustCompile(`(?i)\bnext\s+week\b`)
	tomorrowRe  = regexp.MustCompile(`(?i)\btomorrow\b`)
	todayRe     = regexp.MustCompile(`(?i)\btoday\b`)
	yesterdayRe = regexp.MustCompile(`(?i)\byesterday\b`)
)

// ResolveInText rewrites relative date phrases inside free text to
// literal dates. "next week" becomes an explicit between-range so a
// downstream SQL generator never has to do calendar arithmetic.
func ResolveInText(text string, now time.Time) string {
	if nextWeekRe.MatchString(text) {
		start, end := NextWeekRange(now)
		// end is exclusive; phrase the range with the last included day.
		last, _ := time.Parse(Layout, end)
		text = nextWeekRe.ReplaceAllString(text,
			fmt.Sprintf("between %s and %s", start, last.AddDate(0, 0, -1).Format(Layout)))
	}
	text = tomorrowRe.ReplaceAllString(text, now.AddDate(0, 0, 1).Format(Layout))
	text = todayRe.ReplaceAllString(text, now.Format(Layout))
	text = yesterdayRe.ReplaceAllString(text, now.AddDate(0, 0, -1).Format(Layout))
	return text
}
