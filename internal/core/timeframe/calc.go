package timeframe

import "time"

// CalendarConfig holds the externally supplied calendar rules and
// default horizons used by due-date calculation. All hour-of-day values
// are in the location of the "now" instant passed to DueDate.
type CalendarConfig struct {
	EndOfDayHour   int           // "end of day" resolves to this hour
	StartOfDayHour int           // tomorrow / next-week / weekday start hour
	WeekEndHour    int           // "this week" resolves to Friday at this hour
	TodayOffset    time.Duration // "later today" horizon
	FewMinutes     time.Duration // vague "few minutes" horizon
	FewHours       time.Duration // vague "few hours" horizon
	DefaultHorizon time.Duration // fallback when no timeframe matched
}

// DefaultCalendar returns the built-in calendar defaults.
func DefaultCalendar() CalendarConfig {
	return CalendarConfig{
		EndOfDayHour:   17,
		StartOfDayHour: 9,
		WeekEndHour:    17,
		TodayOffset:    3 * time.Hour,
		FewMinutes:     15 * time.Minute,
		FewHours:       2 * time.Hour,
		DefaultHorizon: 4 * time.Hour,
	}
}

// DueDate converts a descriptor plus the current instant into an
// absolute due timestamp. It is a pure function: identical
// (descriptor, now, config) inputs always yield the identical result.
func DueDate(d Descriptor, now time.Time, cfg CalendarConfig) time.Time {
	switch d.Kind {
	case KindSpecificTime:
		due := atHour(now, d.Hour, d.Minute)
		if !due.After(now) {
			due = due.AddDate(0, 0, 1)
		}
		return due

	case KindEndOfDay:
		due := atHour(now, cfg.EndOfDayHour, 0)
		if !due.After(now) {
			due = due.AddDate(0, 0, 1)
		}
		return due

	case KindTomorrow:
		return atHour(now.AddDate(0, 0, 1), cfg.StartOfDayHour, 0)

	case KindToday:
		return now.Add(cfg.TodayOffset)

	case KindInMinutes:
		return now.Add(time.Duration(d.Value) * time.Minute)

	case KindInHours:
		return now.Add(time.Duration(d.Value) * time.Hour)

	case KindInDays:
		return now.AddDate(0, 0, d.Value)

	case KindFewMinutes:
		return now.Add(cfg.FewMinutes)

	case KindFewHours:
		return now.Add(cfg.FewHours)

	case KindWithin:
		switch d.Unit {
		case "minutes":
			return now.Add(time.Duration(d.Value) * time.Minute)
		case "hours":
			return now.Add(time.Duration(d.Value) * time.Hour)
		case "days":
			return now.AddDate(0, 0, d.Value)
		case "weeks":
			return now.AddDate(0, 0, 7*d.Value)
		default:
			// Unrecognized unit falls back to hours.
			return now.Add(time.Duration(d.Value) * time.Hour)
		}

	case KindNextWeek:
		return atHour(now.AddDate(0, 0, 7), cfg.StartOfDayHour, 0)

	case KindThisWeek:
		days := int(time.Friday-now.Weekday()+7) % 7
		due := atHour(now.AddDate(0, 0, days), cfg.WeekEndHour, 0)
		if !due.After(now) {
			due = due.AddDate(0, 0, 7)
		}
		return due

	case KindWeekday:
		// The next future occurrence of the weekday. If today is that
		// weekday, it means next week, never today.
		days := int(d.Weekday-now.Weekday()+7) % 7
		if days == 0 {
			days = 7
		}
		return atHour(now.AddDate(0, 0, days), cfg.StartOfDayHour, 0)

	default:
		return now.Add(cfg.DefaultHorizon)
	}
}

// atHour returns the given day at hour:minute in the day's location.
func atHour(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}
