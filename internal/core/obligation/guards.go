package obligation

import "fmt"

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// CanSatisfy evaluates whether an obligation can be marked done.
// Satisfaction is allowed from any non-done state regardless of which
// stage flags are set.
func CanSatisfy(id, status string) GuardResult {
	if status == StatusDone {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("obligation %s is already done", id),
		}
	}
	return GuardResult{Allowed: true}
}

// CanExtend evaluates whether an obligation's deadline can be moved.
func CanExtend(id, status string) GuardResult {
	if status == StatusDone {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("cannot extend obligation %s: already done", id),
		}
	}
	return GuardResult{Allowed: true}
}

// CanTransfer evaluates whether an obligation can change owner.
// Transfer reassigns in place: stage flags are preserved, not reset.
func CanTransfer(id, status, newAssignee string) GuardResult {
	if status == StatusDone {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("cannot transfer obligation %s: already done", id),
		}
	}
	if newAssignee == "" {
		return GuardResult{
			Allowed: false,
			Reason:  "new assignee is required",
		}
	}
	return GuardResult{Allowed: true}
}
