package obligation

import (
	"fmt"
	"time"
)

// Stage names an escalation step. The names are stable strings: they
// double as the persisted idempotency ledger keys.
type Stage string

const (
	StageReminder24h Stage = "reminder_24h_sent"
	StageReminder4h  Stage = "reminder_4h_sent"
	StageReminder1h  Stage = "reminder_1h_sent"
	StageOverdue     Stage = "overdue_escalated"
)

// Stages returns the fixed stage enumeration in ladder order
// (least urgent first).
func Stages() []Stage {
	return []Stage{StageReminder24h, StageReminder4h, StageReminder1h, StageOverdue}
}

// ValidStage reports whether s is a known escalation stage.
func ValidStage(s Stage) bool {
	switch s {
	case StageReminder24h, StageReminder4h, StageReminder1h, StageOverdue:
		return true
	}
	return false
}

// StageEntry is one slot of the ledger: whether the stage was sent and
// when.
type StageEntry struct {
	Stage  Stage
	Sent   bool
	SentAt time.Time
}

// Ledger is the fixed-size escalation stage ledger attached to each
// obligation. A stage can be marked at most once; marking is what makes
// each stage idempotent across ticks and restarts.
type Ledger struct {
	entries [4]StageEntry
}

// NewLedger returns a ledger with all stages unsent.
func NewLedger() Ledger {
	var l Ledger
	for i, s := range Stages() {
		l.entries[i] = StageEntry{Stage: s}
	}
	return l
}

// Mark records that a stage was sent at the given time. Marking an
// unknown stage is an error; re-marking a sent stage is an error so
// callers cannot silently double-send.
func (l *Ledger) Mark(s Stage, at time.Time) error {
	for i := range l.entries {
		if l.entries[i].Stage != s {
			continue
		}
		if l.entries[i].Sent {
			return fmt.Errorf("stage %s already sent", s)
		}
		l.entries[i].Sent = true
		l.entries[i].SentAt = at
		return nil
	}
	return fmt.Errorf("unknown stage %s", s)
}

// Sent reports whether a stage has been sent.
func (l Ledger) Sent(s Stage) bool {
	for _, e := range l.entries {
		if e.Stage == s {
			return e.Sent
		}
	}
	return false
}

// SentAt returns the send timestamp for a stage, if sent.
func (l Ledger) SentAt(s Stage) (time.Time, bool) {
	for _, e := range l.entries {
		if e.Stage == s && e.Sent {
			return e.SentAt, true
		}
	}
	return time.Time{}, false
}

// Entries returns the ledger slots in ladder order.
func (l Ledger) Entries() []StageEntry {
	out := make([]StageEntry, len(l.entries))
	copy(out, l.entries[:])
	return out
}

// Threshold pairs a stage with the time-to-deadline at which it fires.
type Threshold struct {
	Stage  Stage
	Within time.Duration
}

// Ladder returns the escalation thresholds in descending urgency
// order, built from the configured reminder windows.
func Ladder(reminder24h, reminder4h, reminder1h time.Duration) []Threshold {
	return []Threshold{
		{Stage: StageOverdue, Within: 0},
		{Stage: StageReminder1h, Within: reminder1h},
		{Stage: StageReminder4h, Within: reminder4h},
		{Stage: StageReminder24h, Within: reminder24h},
	}
}

// DueStages evaluates the ladder against the remaining time to
// deadline and returns every stage whose threshold has been crossed
// and whose flag is unset, in descending urgency order. The one-hour
// stage only fires while the deadline is still ahead; once overdue,
// the overdue stage covers it.
func DueStages(ladder []Threshold, ledger Ledger, remaining time.Duration) []Stage {
	var due []Stage
	for _, t := range ladder {
		if ledger.Sent(t.Stage) {
			continue
		}
		switch t.Stage {
		case StageOverdue:
			if remaining <= 0 {
				due = append(due, t.Stage)
			}
		case StageReminder1h:
			if remaining > 0 && remaining <= t.Within {
				due = append(due, t.Stage)
			}
		default:
			if remaining <= t.Within {
				due = append(due, t.Stage)
			}
		}
	}
	return due
}
