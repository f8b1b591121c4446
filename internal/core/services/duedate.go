package services

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/noteward/noteward/internal/core/domain"
)

// Absolute date layouts accepted in task text.
var dueDateLayouts = []string{
	"2006-01-02",
	"Jan 2, 2006",
	"Jan 2 2006",
	"January 2, 2006",
	"January 2 2006",
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseDueDate resolves a due-date expression against the given
// reference time. Accepted forms: absolute dates (2006-01-02,
// Jan 2, 2006), "today", "tomorrow", "next week", "next <weekday>".
// Unrecognised expressions return domain.ErrDueDateParse.
func ParseDueDate(expr string, now time.Time) (time.Time, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return time.Time{}, fmt.Errorf("empty expression: %w", domain.ErrDueDateParse)
	}

	for _, layout := range dueDateLayouts {
		if t, err := time.ParseInLocation(layout, expr, now.Location()); err == nil {
			return domain.Day(t), nil
		}
	}

	today := domain.Day(now)
	switch lower := strings.ToLower(expr); lower {
	case "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case "next week":
		return today.AddDate(0, 0, 7), nil
	default:
		if day, ok := strings.CutPrefix(lower, "next "); ok {
			if wd, known := weekdays[day]; known {
				return nextWeekday(today, wd), nil
			}
		}
	}

	return time.Time{}, fmt.Errorf("due date %q: %w", expr, domain.ErrDueDateParse)
}

// nextWeekday returns the next occurrence of wd strictly after today.
func nextWeekday(today time.Time, wd time.Weekday) time.Time {
	days := (int(wd) - int(today.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return today.AddDate(0, 0, days)
}

// Inline due-date expressions recognised inside task text. Absolute
// date forms are matched anywhere; relative forms only as whole words.
var dueExprRe = regexp.MustCompile(
	`(?i)\b(\d{4}-\d{2}-\d{2}` +
		`|(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]* \d{1,2},? \d{4}` +
		`|today|tomorrow|next week` +
		`|next (?:sunday|monday|tuesday|wednesday|thursday|friday|saturday))\b`)

// findDueDate scans task text for an inline due-date expression and
// resolves it. Returns nil when no expression is present or resolution
// fails; ambiguous dates never fail extraction.
func findDueDate(content string, now time.Time) *time.Time {
	m := dueExprRe.FindString(content)
	if m == "" {
		return nil
	}
	t, err := ParseDueDate(m, now)
	if err != nil {
		return nil
	}
	return &t
}
