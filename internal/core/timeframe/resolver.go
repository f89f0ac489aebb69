package timeframe

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// pattern pairs a compiled expression with a builder that turns its
// captures into a descriptor.
type pattern struct {
	kind  Kind
	re    *regexp.Regexp
	build func(m []string) Descriptor
}

// patterns is the ordered list of timeframe expressions. Order matters:
// explicit clock times are tested before vaguer phrases like "today" so
// that "by 5pm today" resolves to the clock time, not the day.
var patterns = []pattern{
	{
		kind: KindSpecificTime,
		re:   regexp.MustCompile(`\b(?:by|at|before)\s+(\d{1,2})(?::([0-5][0-9]))?\s*([ap]m)\b`),
		build: func(m []string) Descriptor {
			hour := atoi(m[1])
			minute := atoi(m[2])
			if m[3] == "pm" && hour < 12 {
				hour += 12
			}
			if m[3] == "am" && hour == 12 {
				hour = 0
			}
			return Descriptor{Kind: KindSpecificTime, Hour: hour, Minute: minute}
		},
	},
	{
		kind: KindSpecificTime,
		re:   regexp.MustCompile(`\b(?:by|at|before)\s+([01]?\d|2[0-3]):([0-5][0-9])\b`),
		build: func(m []string) Descriptor {
			return Descriptor{Kind: KindSpecificTime, Hour: atoi(m[1]), Minute: atoi(m[2])}
		},
	},
	{
		kind: KindEndOfDay,
		re:   regexp.MustCompile(`\b(?:end of (?:the )?day|eod|tonight|close of business|cob)\b`),
		build: func(m []string) Descriptor {
			return Descriptor{Kind: KindEndOfDay}
		},
	},
	{
		kind: KindTomorrow,
		re:   regexp.MustCompile(`\btomorrow\b`),
		build: func(m []string) Descriptor {
			return Descriptor{Kind: KindTomorrow}
		},
	},
	{
		kind: KindFewMinutes,
		re:   regexp.MustCompile(`\b(?:in )?a (?:few|couple of) min(?:ute)?s\b`),
		build: func(m []string) Descriptor {
			return Descriptor{Kind: KindFewMinutes}
		},
	},
	{
		kind: KindFewHours,
		re:   regexp.MustCompile(`\b(?:in )?a (?:few|couple of) h(?:ou)?rs\b`),
		build: func(m []string) Descriptor {
			return Descriptor{Kind: KindFewHours}
		},
	},
	{
		kind: KindInMinutes,
		re:   regexp.MustCompile(`\bin (\d+) min(?:ute)?s?\b`),
		build: func(m []string) Descriptor {
			return Descriptor{Kind: KindInMinutes, Value: atoi(m[1]), Unit: "minutes"}
		},
	},
	{
		kind: KindInHours,
		re:   regexp.MustCompile(`\bin (\d+) h(?:ou)?rs?\b`),
		build: func(m []string) Descriptor {
			return Descriptor{Kind: KindInHours, Value: atoi(m[1]), Unit: "hours"}
		},
	},
	{
		kind: KindInDays,
		re:   regexp.MustCompile(`\bin (\d+) days?\b`),
		build: func(m []string) Descriptor {
			return Descriptor{Kind: KindInDays, Value: atoi(m[1]), Unit: "days"}
		},
	},
	{
		kind: KindWithin,
		re:   regexp.MustCompile(`\bwithin (?:the next )?(\d+) (min(?:ute)?s?|h(?:ou)?rs?|days?|weeks?)\b`),
		build: func(m []string) Descriptor {
			return Descriptor{Kind: KindWithin, Value: atoi(m[1]), Unit: normalizeUnit(m[2])}
		},
	},
	{
		kind: KindNextWeek,
		re:   regexp.MustCompile(`\bnext week\b`),
		build: func(m []string) Descriptor {
			return Descriptor{Kind: KindNextWeek}
		},
	},
	{
		kind: KindThisWeek,
		re:   regexp.MustCompile(`\b(?:this week|end of (?:the )?week)\b`),
		build: func(m []string) Descriptor {
			return Descriptor{Kind: KindThisWeek}
		},
	},
	{
		kind: KindWeekday,
		re:   regexp.MustCompile(`\b(?:by |on |next )?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`),
		build: func(m []string) Descriptor {
			return Descriptor{Kind: KindWeekday, Weekday: weekdays[m[1]]}
		},
	},
	{
		kind: KindToday,
		re:   regexp.MustCompile(`\b(?:later today|today|this afternoon|this evening)\b`),
		build: func(m []string) Descriptor {
			return Descriptor{Kind: KindToday}
		},
	},
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

// Resolve tests text against the ordered timeframe patterns and returns
// the first match as a descriptor. If nothing matches, it returns the
// default descriptor with low confidence.
func Resolve(text string) Descriptor {
	lower := strings.ToLower(text)
	for _, p := range patterns {
		m := p.re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		d := p.build(m)
		d.Literal = m[0]
		d.Confidence = ConfidenceHigh
		return d
	}
	return Default()
}

// atoi parses a numeric capture; an empty or non-numeric capture
// yields zero rather than an error.
func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func normalizeUnit(u string) string {
	switch {
	case strings.HasPrefix(u, "min"):
		return "minutes"
	case strings.HasPrefix(u, "h"):
		return "hours"
	case strings.HasPrefix(u, "day"):
		return "days"
	case strings.HasPrefix(u, "week"):
		return "weeks"
	default:
		return u
	}
}
