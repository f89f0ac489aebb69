// Package timeframe resolves natural-language time expressions into
// structured descriptors and computes absolute due timestamps from them.
package timeframe

import "time"

// Kind identifies the category of a matched timeframe expression.
type Kind string

// Timeframe kinds, from most to least specific.
const (
	KindSpecificTime Kind = "specific_time" // "by 5pm", "at 14:30"
	KindEndOfDay     Kind = "end_of_day"    // "end of day", "EOD", "tonight"
	KindTomorrow     Kind = "tomorrow"
	KindInMinutes    Kind = "in_minutes" // "in 30 minutes"
	KindInHours      Kind = "in_hours"   // "in 2 hours"
	KindInDays       Kind = "in_days"    // "in 3 days"
	KindFewMinutes   Kind = "few_minutes" // "in a few minutes"
	KindFewHours     Kind = "few_hours"   // "in a few hours"
	KindWithin       Kind = "within"      // "within 4 hours"
	KindNextWeek     Kind = "next_week"
	KindThisWeek     Kind = "this_week"
	KindWeekday      Kind = "weekday" // "by Friday"
	KindToday        Kind = "today"   // "today", "this afternoon"
	KindDefault      Kind = "default" // no timeframe matched
)

// Confidence indicates whether a descriptor came from a pattern match
// or from the no-match fallback.
type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
)

// Descriptor is the structured result of resolving a time expression.
// Value and Unit are only set for numeric kinds (in-N, within-N).
// Hour and Minute are only set for KindSpecificTime. Weekday is only
// set for KindWeekday.
type Descriptor struct {
	Kind       Kind
	Value      int
	Unit       string
	Hour       int
	Minute     int
	Weekday    time.Weekday
	Literal    string
	Confidence Confidence
}

// Default returns the fallback descriptor used when no timeframe
// pattern matches.
func Default() Descriptor {
	return Descriptor{Kind: KindDefault, Confidence: ConfidenceLow}
}
