/*
store.go - Persistence interfaces for the billing engine

PURPOSE:
  Defines the interface between the domain logic and the database.
  The engine never touches SQL; the submission guard and deletion
  cascade run against whatever Store they are handed, which inside a
  mutation is the transaction-scoped store from TxStore.WithTx.

KEY INTERFACES:
  Store:   All reads and writes, one flat interface
  TxStore: Store plus WithTx for atomic multi-step mutations

TRANSACTIONAL CONTRACT:
  Every mutation endpoint runs its primary write AND its consistency
  maintenance (submission guard, write-off cascade) inside a single
  WithTx call. A failure at any step rolls back the whole operation;
  no partially-applied mutation is ever visible to other readers.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: production sqlite store

SEE ALSO:
  - submission.go, cascade.go: consumers of the transaction-scoped Store
*/
package billing

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STORE - Flat persistence interface
// =============================================================================

type Store interface {
	// Users and catalog
	GetUser(ctx context.Context, id string) (*User, error)
	SaveUser(ctx context.Context, u User) error
	GetClient(ctx context.Context, id string) (*Client, error)
	SaveClient(ctx context.Context, c Client) error
	GetTopic(ctx context.Context, id string) (*Topic, error)
	SaveTopic(ctx context.Context, t Topic) error
	GetSubtopic(ctx context.Context, id string) (*Subtopic, error)
	SaveSubtopic(ctx context.Context, st Subtopic) error

	// Time entries
	GetTimeEntry(ctx context.Context, id string) (*TimeEntry, error)
	SaveTimeEntry(ctx context.Context, e TimeEntry) error
	UpdateTimeEntry(ctx context.Context, e TimeEntry) error
	DeleteTimeEntry(ctx context.Context, id string) error

	// SumHoursForUserDay returns the decimal sum of hours across all of
	// the user's entries on the given day. Zero when there are none.
	SumHoursForUserDay(ctx context.Context, userID string, day Day) (decimal.Decimal, error)

	// ListReportEntries returns entries in [from, to] joined with their
	// client and authoring user, newest date first. An empty userID
	// returns entries for all users.
	ListReportEntries(ctx context.Context, from, to Day, userID string) ([]ReportEntry, error)

	// EntryBilledFinalized reports whether any line item of a FINALIZED
	// service description references the entry.
	EntryBilledFinalized(ctx context.Context, entryID string) (bool, error)

	// SetWriteOff flips an entry's is_written_off flag.
	SetWriteOff(ctx context.Context, entryID string, writtenOff bool) error

	// Submissions
	GetSubmission(ctx context.Context, userID string, day Day) (*TimesheetSubmission, error)
	SaveSubmission(ctx context.Context, sub TimesheetSubmission) error
	DeleteSubmission(ctx context.Context, id string) error

	// Billing documents
	GetServiceDescription(ctx context.Context, id string) (*ServiceDescription, error)
	SaveServiceDescription(ctx context.Context, sd ServiceDescription) error
	GetBillingTopic(ctx context.Context, id string) (*ServiceDescriptionTopic, error)
	SaveBillingTopic(ctx context.Context, t ServiceDescriptionTopic) error

	// UpdateBillingTopic applies a normalized partial update produced by
	// ValidateTopicPatch. Unset fields are left untouched.
	UpdateBillingTopic(ctx context.Context, topicID string, update TopicUpdate) error

	// DeleteBillingTopic removes the topic; the schema-level cascade
	// removes its line items.
	DeleteBillingTopic(ctx context.Context, topicID string) error

	SaveLineItem(ctx context.Context, li LineItem) error

	// WaivedEntryIDs returns the distinct time-entry ids referenced by
	// the topic's line items with a non-null waive mode.
	WaivedEntryIDs(ctx context.Context, topicID string) ([]string, error)

	// CountWaiveReferences returns how many line items, under any topic,
	// currently reference the entry with a non-null waive mode.
	CountWaiveReferences(ctx context.Context, entryID string) (int, error)
}

// =============================================================================
// TRANSACTIONAL STORE
// =============================================================================

// TxStore wraps Store with transaction support. If fn returns an error
// the transaction is rolled back, otherwise committed. The Store handed
// to fn is scoped to the transaction.
type TxStore interface {
	Store

	WithTx(ctx context.Context, fn func(Store) error) error
}
