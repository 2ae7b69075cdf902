package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexhours/billing-engine/billing"
	"github.com/lexhours/billing-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// seedUserDay creates a user, a client, and one entry per given hour
// amount, all on the same day.
func seedUserDay(t *testing.T, store *sqlite.Store, userID string, day billing.Day, hours ...float64) []string {
	ctx := context.Background()
	require.NoError(t, store.SaveUser(ctx, billing.User{ID: userID, Name: "n-" + userID, Role: billing.RoleLawyer}))
	require.NoError(t, store.SaveClient(ctx, billing.Client{
		ID: "cli-" + userID, Name: "c-" + userID, Type: billing.ClientRegular,
		HourlyRate: decPtr(200), Status: billing.ClientActive,
	}))

	now := time.Now().UTC()
	ids := make([]string, 0, len(hours))
	for i, h := range hours {
		id := userID + "-e" + string(rune('a'+i))
		require.NoError(t, store.SaveTimeEntry(ctx, billing.TimeEntry{
			ID: id, UserID: userID, ClientID: "cli-" + userID, Date: day,
			Hours: decimal.NewFromFloat(h), CreatedAt: now, UpdatedAt: now,
		}))
		ids = append(ids, id)
	}
	return ids
}

func setHours(t *testing.T, store *sqlite.Store, entryID string, hours float64) {
	ctx := context.Background()
	e, err := store.GetTimeEntry(ctx, entryID)
	require.NoError(t, err)
	require.NotNil(t, e)
	e.Hours = decimal.NewFromFloat(hours)
	e.UpdatedAt = time.Now().UTC()
	require.NoError(t, store.UpdateTimeEntry(ctx, *e))
}

// =============================================================================
// THRESHOLD
// =============================================================================

func TestMeetsSubmissionThreshold(t *testing.T) {
	assert.True(t, billing.MeetsSubmissionThreshold(dec(8)))
	assert.True(t, billing.MeetsSubmissionThreshold(dec(10.25)))
	assert.False(t, billing.MeetsSubmissionThreshold(dec(7.99)))
	assert.False(t, billing.MeetsSubmissionThreshold(decimal.Zero))
}

// =============================================================================
// GUARD
// =============================================================================

func TestGuard_RevokesWhenTotalDropsBelowThreshold(t *testing.T) {
	// GIVEN: A submitted day with 10 hours (6 + 4)
	// WHEN: The 6h entry is cut to 1h (total 5) and the guard runs
	// THEN: The submission is deleted; revoked with remaining 5

	store := newTestStore(t)
	ctx := context.Background()
	day := billing.NewDay(2025, time.March, 10)
	ids := seedUserDay(t, store, "u1", day, 6, 4)
	require.NoError(t, store.SaveSubmission(ctx, billing.TimesheetSubmission{ID: "sub-1", UserID: "u1", Date: day}))

	setHours(t, store, ids[0], 1)

	var result billing.GuardResult
	err := store.WithTx(ctx, func(s billing.Store) error {
		var err error
		result, err = billing.EnforceSubmissionInvariant(ctx, s, "u1", day)
		return err
	})
	require.NoError(t, err)

	assert.True(t, result.SubmissionRevoked)
	require.NotNil(t, result.RemainingHours)
	assert.True(t, result.RemainingHours.Equal(dec(5)), "got %s", result.RemainingHours)

	sub, err := store.GetSubmission(ctx, "u1", day)
	require.NoError(t, err)
	assert.Nil(t, sub, "submission should be gone")
}

func TestGuard_KeepsSubmissionAtOrAboveThreshold(t *testing.T) {
	// Total drops 10 -> 9, still above 8: nothing happens.
	store := newTestStore(t)
	ctx := context.Background()
	day := billing.NewDay(2025, time.March, 10)
	ids := seedUserDay(t, store, "u1", day, 6, 4)
	require.NoError(t, store.SaveSubmission(ctx, billing.TimesheetSubmission{ID: "sub-1", UserID: "u1", Date: day}))

	setHours(t, store, ids[0], 5)

	var result billing.GuardResult
	err := store.WithTx(ctx, func(s billing.Store) error {
		var err error
		result, err = billing.EnforceSubmissionInvariant(ctx, s, "u1", day)
		return err
	})
	require.NoError(t, err)

	assert.False(t, result.SubmissionRevoked)
	assert.Nil(t, result.RemainingHours)

	sub, err := store.GetSubmission(ctx, "u1", day)
	require.NoError(t, err)
	assert.NotNil(t, sub, "submission should survive")
}

func TestGuard_NoSubmissionToRevoke(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	day := billing.NewDay(2025, time.March, 10)
	seedUserDay(t, store, "u1", day, 3)

	var result billing.GuardResult
	err := store.WithTx(ctx, func(s billing.Store) error {
		var err error
		result, err = billing.EnforceSubmissionInvariant(ctx, s, "u1", day)
		return err
	})
	require.NoError(t, err)

	assert.False(t, result.SubmissionRevoked)
	assert.Nil(t, result.RemainingHours)
}

func TestGuard_IdempotentOnRerun(t *testing.T) {
	// GIVEN: A revocation already happened
	// WHEN: The guard runs again with no new mutation
	// THEN: Nothing to delete, revoked is never reported twice

	store := newTestStore(t)
	ctx := context.Background()
	day := billing.NewDay(2025, time.March, 10)
	ids := seedUserDay(t, store, "u1", day, 10)
	require.NoError(t, store.SaveSubmission(ctx, billing.TimesheetSubmission{ID: "sub-1", UserID: "u1", Date: day}))

	setHours(t, store, ids[0], 2)

	var first, second billing.GuardResult
	require.NoError(t, store.WithTx(ctx, func(s billing.Store) error {
		var err error
		first, err = billing.EnforceSubmissionInvariant(ctx, s, "u1", day)
		return err
	}))
	require.NoError(t, store.WithTx(ctx, func(s billing.Store) error {
		var err error
		second, err = billing.EnforceSubmissionInvariant(ctx, s, "u1", day)
		return err
	}))

	assert.True(t, first.SubmissionRevoked)
	assert.False(t, second.SubmissionRevoked)
	assert.Nil(t, second.RemainingHours)
}

// =============================================================================
// SUBMIT (FORWARD DIRECTION)
// =============================================================================

func TestSubmitTimesheet_RequiresThreshold(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	day := billing.NewDay(2025, time.March, 10)
	seedUserDay(t, store, "u1", day, 5)

	err := store.WithTx(ctx, func(s billing.Store) error {
		_, err := billing.SubmitTimesheet(ctx, s, "u1", day)
		return err
	})

	var verr *billing.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestSubmitTimesheet_CreatesAndIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	day := billing.NewDay(2025, time.March, 10)
	seedUserDay(t, store, "u1", day, 5, 4)

	var first, second *billing.TimesheetSubmission
	require.NoError(t, store.WithTx(ctx, func(s billing.Store) error {
		var err error
		first, err = billing.SubmitTimesheet(ctx, s, "u1", day)
		return err
	}))
	require.NoError(t, store.WithTx(ctx, func(s billing.Store) error {
		var err error
		second, err = billing.SubmitTimesheet(ctx, s, "u1", day)
		return err
	}))

	require.NotNil(t, first)
	assert.Equal(t, first.ID, second.ID, "resubmit returns the existing record")
}
