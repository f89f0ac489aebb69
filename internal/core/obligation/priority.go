package obligation

import "github.com/example/chase/internal/core/timeframe"

// Priority tiers. 1 is most urgent.
const (
	PriorityImmediate = 1 // minutes away
	PriorityHours     = 2 // within the working day
	PriorityDay       = 3 // today's close or tomorrow
	PriorityRoutine   = 4 // everything further out
)

// PriorityFor maps a timeframe kind to a priority tier. This table is
// the single source of the mapping; callers must not re-derive tiers.
func PriorityFor(kind timeframe.Kind) int {
	switch kind {
	case timeframe.KindInMinutes, timeframe.KindFewMinutes:
		return PriorityImmediate
	case timeframe.KindInHours, timeframe.KindFewHours, timeframe.KindToday:
		return PriorityHours
	case timeframe.KindTomorrow, timeframe.KindEndOfDay, timeframe.KindSpecificTime:
		return PriorityDay
	default:
		return PriorityRoutine
	}
}
