/*
submission.go - Timesheet submission integrity guard

PURPOSE:
  A TimesheetSubmission marks a user's day as finalized. Its existence
  is derived state: it must never outlive a day whose qualifying hours
  have dropped below the threshold. This file is the single enforcement
  point for that invariant; every code path that can change a day's
  total hours (entry edit, entry delete, any future bulk operation)
  calls EnforceSubmissionInvariant inside the same transaction as the
  mutation.

ALGORITHM:
  1. Recompute the sum of hours across the user's entries on that day
     (post-mutation state, read inside the caller's transaction).
  2. Total still at or above the threshold: do nothing.
  3. Otherwise, look up the (user, day) submission. If one exists,
     delete it and report SubmissionRevoked with the recomputed
     remaining hours; if none exists, report nothing to revoke.

IDEMPOTENCE:
  Running the guard twice with no intervening mutation is a no-op the
  second time; the submission is already gone.

CONCURRENCY:
  The read-total / compare / conditionally-delete sequence takes no
  application-level lock. Correctness relies on the store serializing
  writers: store/sqlite opens IMMEDIATE transactions, so two concurrent
  edits to the same user/day cannot both compute a pre-update total.

SEE ALSO:
  - api/handlers.go: edit and delete paths, both call the guard
  - SubmitTimesheet below: the forward direction (creating a submission)
*/
package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GuardResult reports what the guard did. RemainingHours is set only
// when a submission was actually revoked.
type GuardResult struct {
	SubmissionRevoked bool
	RemainingHours    *decimal.Decimal
}

// MeetsSubmissionThreshold reports whether a day's total qualifies the
// day for submission.
func MeetsSubmissionThreshold(total decimal.Decimal) bool {
	return total.GreaterThanOrEqual(SubmissionThresholdHours)
}

// EnforceSubmissionInvariant recomputes the day's total and revokes an
// existing submission if the total has fallen below the threshold.
// Must run inside the same transaction as the mutation that changed the
// day's hours.
func EnforceSubmissionInvariant(ctx context.Context, s Store, userID string, day Day) (GuardResult, error) {
	total, err := s.SumHoursForUserDay(ctx, userID, day)
	if err != nil {
		return GuardResult{}, err
	}

	if MeetsSubmissionThreshold(total) {
		return GuardResult{}, nil
	}

	sub, err := s.GetSubmission(ctx, userID, day)
	if err != nil {
		return GuardResult{}, err
	}
	if sub == nil {
		return GuardResult{SubmissionRevoked: false}, nil
	}

	if err := s.DeleteSubmission(ctx, sub.ID); err != nil {
		return GuardResult{}, err
	}
	return GuardResult{SubmissionRevoked: true, RemainingHours: &total}, nil
}

// SubmitTimesheet is the forward direction: it creates the (user, day)
// submission when the day's total qualifies. Re-submitting an already
// submitted day returns the existing record.
func SubmitTimesheet(ctx context.Context, s Store, userID string, day Day) (*TimesheetSubmission, error) {
	total, err := s.SumHoursForUserDay(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	if !MeetsSubmissionThreshold(total) {
		return nil, invalid("date", "the day's total hours are below the submission threshold")
	}

	if existing, err := s.GetSubmission(ctx, userID, day); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	sub := TimesheetSubmission{
		ID:     uuid.NewString(),
		UserID: userID,
		Date:   day,
	}
	if err := s.SaveSubmission(ctx, sub); err != nil {
		return nil, err
	}
	return &sub, nil
}
