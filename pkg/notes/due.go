package notes

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var (
	dueHoursRe  = regexp.MustCompile(`^(\d+)\s*hours?`)
	dueDaysRe   = regexp.MustCompile(`^(\d+)\s*days?`)
	dueWeeksRe  = regexp.MustCompile(`^(\d+)\s*weeks?`)
	dueMonthsRe = regexp.MustCompile(`^(\d+)\s*months?`)
)

const week = 7 * 24 * time.Hour

// InterpretTime parses the small controlled vocabulary of relative-time
// expressions into an absolute due time and a tolerance window. Recognized
// forms, first match winning: "today", "tomorrow", "N hour(s)", "N day(s)",
// "N week(s)", "N month(s)" (a month counts as 4 weeks). Anything else
// reports ok=false rather than an error; an unrecognized due string simply
// means no due date.
func InterpretTime(expr string, now time.Time) (due time.Time, tolerance time.Duration, ok bool) {
	switch {
	case expr == "today":
		return now.Add(8 * time.Hour), time.Hour, true
	case expr == "tomorrow":
		return now.Add(24 * time.Hour), 24 * time.Hour, true
	}
	if m := dueHoursRe.FindStringSubmatch(expr); m != nil {
		n, _ := strconv.Atoi(m[1])
		return now.Add(time.Duration(n) * time.Hour), time.Hour, true
	}
	if m := dueDaysRe.FindStringSubmatch(expr); m != nil {
		n, _ := strconv.Atoi(m[1])
		return now.Add(time.Duration(n) * 24 * time.Hour), 24 * time.Hour, true
	}
	if m := dueWeeksRe.FindStringSubmatch(expr); m != nil {
		n, _ := strconv.Atoi(m[1])
		return now.Add(time.Duration(n) * week), week, true
	}
	if m := dueMonthsRe.FindStringSubmatch(expr); m != nil {
		n, _ := strconv.Atoi(m[1])
		return now.Add(time.Duration(4*n) * week), week, true
	}
	return time.Time{}, 0, false
}

// DescribeRemaining renders the interval until due in the same vocabulary
// InterpretTime accepts, so a stored due date can be round-tripped through an
// editor session.
func DescribeRemaining(due, now time.Time) string {
	remaining := due.Sub(now)
	if abs := remaining.Abs(); abs < 24*time.Hour {
		return fmt.Sprintf("%d hours", int(remaining.Round(time.Hour).Hours()))
	}
	return fmt.Sprintf("%d days", int(remaining.Round(24*time.Hour).Hours()/24))
}
