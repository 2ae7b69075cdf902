/*
Package billing provides the core billing aggregation and submission
integrity engine for the time-tracking back office.

PURPOSE:
  This package contains the domain types and algorithms shared by the
  reporting, billing-topic, and timesheet mutation paths: report
  aggregation with role-sensitive revenue visibility, pricing/discount
  partial-update resolution, timesheet submission invariant enforcement,
  and the billing-topic deletion cascade.

KEY CONCEPTS IN THIS FILE (types.go):
  - Day: A calendar day with no time component (timesheet grain)
  - TimeEntry: A lawyer's logged hours against a client/topic
  - ServiceDescriptionTopic: Pricing rules for a group of billed entries
  - TimesheetSubmission: Derived "day is finalized" marker

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal for every hour and money value
  2. Purity: Aggregation and validation are plain functions over values;
     persistence stays behind the Store interfaces (store.go)
  3. Snapshots: Topic/subtopic names on an entry are point-in-time copies
     for historical reporting, refreshed only when the reference changes

SEE ALSO:
  - report.go: Report aggregation and viewer projection
  - discount.go: Pricing/discount partial-update validation
  - submission.go: Submission integrity guard
  - cascade.go: Billing-topic deletion cascade
*/
package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ENUMERATIONS
// =============================================================================

type Role string

const (
	RoleLawyer Role = "lawyer"
	RoleAdmin  Role = "admin"
)

type ClientType string

const (
	ClientRegular    ClientType = "REGULAR"
	ClientInternal   ClientType = "INTERNAL"
	ClientManagement ClientType = "MANAGEMENT"
)

type ClientStatus string

const (
	ClientActive   ClientStatus = "ACTIVE"
	ClientInactive ClientStatus = "INACTIVE"
)

type CatalogStatus string

const (
	CatalogActive   CatalogStatus = "ACTIVE"
	CatalogInactive CatalogStatus = "INACTIVE"
)

type PricingMode string

const (
	PricingHourly PricingMode = "HOURLY"
	PricingFixed  PricingMode = "FIXED"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountAmount     DiscountType = "AMOUNT"
)

type ServiceDescriptionStatus string

const (
	ServiceDescriptionDraft     ServiceDescriptionStatus = "DRAFT"
	ServiceDescriptionFinalized ServiceDescriptionStatus = "FINALIZED"
)

// =============================================================================
// LIMITS
// =============================================================================

var (
	// MaxEntryHours is the per-entry ceiling: no single time entry may
	// exceed this many hours.
	MaxEntryHours = decimal.NewFromInt(12)

	// SubmissionThresholdHours is the minimum qualifying total for a day
	// to remain submitted. See submission.go.
	SubmissionThresholdHours = decimal.NewFromInt(8)
)

// UncategorizedTopic is the display name used in reports for entries
// logged without a topic.
const UncategorizedTopic = "Uncategorized"

// =============================================================================
// DAY - Calendar day, no time component
// =============================================================================

// Day is a calendar day. Time entries and submissions are keyed by Day;
// comparisons and storage always normalize to midnight UTC.
type Day struct {
	t time.Time
}

func NewDay(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf truncates an arbitrary time to its calendar day.
func DayOf(t time.Time) Day {
	return NewDay(t.Year(), t.Month(), t.Day())
}

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DayOf(t), nil
}

func (d Day) Before(other Day) bool { return d.t.Before(other.t) }
func (d Day) After(other Day) bool  { return d.t.After(other.t) }
func (d Day) Equal(other Day) bool  { return d.t.Equal(other.t) }
func (d Day) IsZero() bool          { return d.t.IsZero() }
func (d Day) Time() time.Time       { return d.t }
func (d Day) AddDays(n int) Day     { return DayOf(d.t.AddDate(0, 0, n)) }

func (d Day) String() string { return d.t.Format("2006-01-02") }

// =============================================================================
// DOMAIN RECORDS
// =============================================================================

// User is a firm member. Admins are privileged report viewers; lawyers
// see only their own rows and no revenue figures.
type User struct {
	ID   string
	Name string
	Role Role
}

func (u *User) Privileged() bool { return u.Role == RoleAdmin }

// Client is a firm client. Only REGULAR clients generate revenue;
// INTERNAL and MANAGEMENT work is tracked but never billed.
type Client struct {
	ID         string
	Name       string
	Type       ClientType
	HourlyRate *decimal.Decimal // nil when the client has no rate
	Status     ClientStatus
}

// Topic and Subtopic form the catalog time entries are logged against.
type Topic struct {
	ID     string
	Name   string
	Status CatalogStatus
}

type Subtopic struct {
	ID      string
	TopicID string
	Name    string
	Status  CatalogStatus
}

// TimeEntry is one logged block of hours.
//
// TopicName/SubtopicName are denormalized snapshots taken when the
// reference was set; they survive later catalog renames so historical
// reports show what the entry was logged against at the time.
type TimeEntry struct {
	ID           string
	UserID       string
	ClientID     string
	Date         Day
	Hours        decimal.Decimal // always > 0 and <= MaxEntryHours
	Description  string
	TopicID      *string
	TopicName    *string
	SubtopicID   *string
	SubtopicName *string
	IsWrittenOff bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ServiceDescription is a billing document grouping topics and their
// line items for a client engagement. Once FINALIZED it, its topics,
// and every time entry they reference become immutable.
type ServiceDescription struct {
	ID       string
	ClientID string
	Name     string
	Status   ServiceDescriptionStatus
}

func (sd *ServiceDescription) Finalized() bool {
	return sd.Status == ServiceDescriptionFinalized
}

// ServiceDescriptionTopic carries the pricing rules for a group of
// billed entries. Invariants (enforced by discount.go):
//   - DiscountValue requires a DiscountType
//   - PERCENTAGE discounts never exceed 100
//   - CapHours is only meaningful under HOURLY pricing
//   - discount/cap decimals are strictly positive when present
type ServiceDescriptionTopic struct {
	ID                   string
	ServiceDescriptionID string
	Name                 string
	PricingMode          PricingMode
	HourlyRate           *decimal.Decimal
	FixedFee             *decimal.Decimal
	CapHours             *decimal.Decimal
	DiscountType         *DiscountType
	DiscountValue        *decimal.Decimal
}

// LineItem links a billing topic to a time entry. A non-nil WaiveMode
// means the referenced entry is written off for billing under this
// topic.
type LineItem struct {
	ID          string
	TopicID     string
	TimeEntryID string
	WaiveMode   *string
}

// TimesheetSubmission marks a user's day as finalized. Its existence is
// derived state: it must not outlive a day whose qualifying hours drop
// below SubmissionThresholdHours (see submission.go).
type TimesheetSubmission struct {
	ID     string
	UserID string
	Date   Day
}
