/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types
  decouple the internal domain model from the external API contract.
  All hour and money values cross the boundary as plain JSON numbers;
  the store's fixed-point string representation never leaks out.

NULL VS OMITTED:
  Revenue, billable-hours, and rate fields are pointers WITHOUT
  omitempty: for non-privileged viewers they serialize as explicit
  nulls, which is the contract. remainingHours on mutation responses is
  the opposite - it is omitted entirely unless a submission was revoked.

NAMING CONVENTION:
  - *DTO: response types returned to clients
  - *Request: request body types from clients

SEE ALSO:
  - handlers.go: uses these types
  - billing/report.go: the domain shapes these project
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/lexhours/billing-engine/billing"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// REPORT TYPES
// =============================================================================

type ReportDTO struct {
	Summary    ReportSummaryDTO     `json:"summary"`
	ByEmployee []EmployeeSummaryDTO `json:"byEmployee"`
	ByClient   []ClientSummaryDTO   `json:"byClient"`
	Entries    []ReportRowDTO       `json:"entries"`
}

type ReportSummaryDTO struct {
	TotalHours           float64  `json:"totalHours"`
	TotalRevenue         *float64 `json:"totalRevenue"`
	TotalWrittenOffHours *float64 `json:"totalWrittenOffHours"`
	ClientCount          int      `json:"clientCount"`
}

type EmployeeSummaryDTO struct {
	UserID        string           `json:"userId"`
	UserName      string           `json:"userName"`
	TotalHours    float64          `json:"totalHours"`
	BillableHours *float64         `json:"billableHours"`
	Revenue       *float64         `json:"revenue"`
	ClientCount   int              `json:"clientCount"`
	TopClient     *ClientHoursDTO  `json:"topClient,omitempty"`
	Clients       []ClientHoursDTO `json:"clients"`
	DailyHours    []DayHoursDTO    `json:"dailyHours"`
	Topics        []TopicHoursDTO  `json:"topics"`
}

type ClientSummaryDTO struct {
	ClientID   string             `json:"clientId"`
	ClientName string             `json:"clientName"`
	ClientType string             `json:"clientType"`
	HourlyRate *float64           `json:"hourlyRate"`
	TotalHours float64            `json:"totalHours"`
	Revenue    *float64           `json:"revenue"`
	Employees  []EmployeeHoursDTO `json:"employees"`
}

type ClientHoursDTO struct {
	ClientID   string  `json:"clientId"`
	ClientName string  `json:"clientName"`
	Hours      float64 `json:"hours"`
}

type EmployeeHoursDTO struct {
	UserID   string  `json:"userId"`
	UserName string  `json:"userName"`
	Hours    float64 `json:"hours"`
}

type DayHoursDTO struct {
	Date  string  `json:"date"`
	Hours float64 `json:"hours"`
}

type TopicHoursDTO struct {
	TopicName       string  `json:"topicName"`
	Hours           float64 `json:"hours"`
	WrittenOffHours float64 `json:"writtenOffHours"`
}

type ReportRowDTO struct {
	Date         string  `json:"date"`
	Hours        float64 `json:"hours"`
	Description  string  `json:"description"`
	UserID       string  `json:"userId"`
	UserName     string  `json:"userName"`
	ClientID     string  `json:"clientId"`
	ClientName   string  `json:"clientName"`
	TopicName    string  `json:"topicName"`
	IsWrittenOff bool    `json:"isWrittenOff"`
	ClientType   string  `json:"clientType"`
}

// =============================================================================
// TIMESHEET TYPES
// =============================================================================

type TimeEntryDTO struct {
	ID           string   `json:"id"`
	UserID       string   `json:"userId"`
	ClientID     string   `json:"clientId"`
	Date         string   `json:"date"`
	Hours        float64  `json:"hours"`
	Description  string   `json:"description"`
	TopicID      *string  `json:"topicId"`
	TopicName    *string  `json:"topicName"`
	SubtopicID   *string  `json:"subtopicId"`
	SubtopicName *string  `json:"subtopicName"`
	IsWrittenOff bool     `json:"isWrittenOff"`
}

// UpdateTimeEntryRequest is a partial update; nil fields are untouched.
// An empty-string topicId/subtopicId clears the reference.
type UpdateTimeEntryRequest struct {
	Hours       *float64 `json:"hours"`
	Description *string  `json:"description"`
	ClientID    *string  `json:"clientId"`
	TopicID     *string  `json:"topicId"`
	SubtopicID  *string  `json:"subtopicId"`
}

// EntryMutationResponse reports the mutation result plus what the
// submission guard did. RemainingHours appears only on revocation.
type EntryMutationResponse struct {
	Entry             *TimeEntryDTO `json:"entry,omitempty"`
	SubmissionRevoked bool          `json:"submissionRevoked"`
	RemainingHours    *float64      `json:"remainingHours,omitempty"`
}

type SubmitTimesheetRequest struct {
	Date string `json:"date"`
}

type SubmissionDTO struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Date   string `json:"date"`
}

// =============================================================================
// BILLING TYPES
// =============================================================================

type BillingTopicDTO struct {
	ID                   string   `json:"id"`
	ServiceDescriptionID string   `json:"serviceDescriptionId"`
	Name                 string   `json:"name"`
	PricingMode          string   `json:"pricingMode"`
	HourlyRate           *float64 `json:"hourlyRate"`
	FixedFee             *float64 `json:"fixedFee"`
	CapHours             *float64 `json:"capHours"`
	DiscountType         *string  `json:"discountType"`
	DiscountValue        *float64 `json:"discountValue"`
}

// UpdateBillingTopicRequest is a partial update; nil fields are untouched.
type UpdateBillingTopicRequest struct {
	PricingMode   *string  `json:"pricingMode"`
	HourlyRate    *float64 `json:"hourlyRate"`
	FixedFee      *float64 `json:"fixedFee"`
	CapHours      *float64 `json:"capHours"`
	DiscountType  *string  `json:"discountType"`
	DiscountValue *float64 `json:"discountValue"`
}

type DeleteBillingTopicResponse struct {
	Deleted        bool     `json:"deleted"`
	ClearedEntries []string `json:"clearedEntries"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func decToFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func decPtrToFloat(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := decToFloat(*d)
	return &f
}

func floatPtrToDec(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := decimal.NewFromFloat(*f)
	return &d
}

func toReportDTO(r *billing.ReportData) ReportDTO {
	dto := ReportDTO{
		Summary: ReportSummaryDTO{
			TotalHours:           decToFloat(r.Summary.TotalHours),
			TotalRevenue:         decPtrToFloat(r.Summary.TotalRevenue),
			TotalWrittenOffHours: decPtrToFloat(r.Summary.TotalWrittenOffHours),
			ClientCount:          r.Summary.ClientCount,
		},
		ByEmployee: make([]EmployeeSummaryDTO, 0, len(r.ByEmployee)),
		ByClient:   make([]ClientSummaryDTO, 0, len(r.ByClient)),
		Entries:    make([]ReportRowDTO, 0, len(r.Entries)),
	}

	for _, e := range r.ByEmployee {
		emp := EmployeeSummaryDTO{
			UserID:        e.UserID,
			UserName:      e.UserName,
			TotalHours:    decToFloat(e.TotalHours),
			BillableHours: decPtrToFloat(e.BillableHours),
			Revenue:       decPtrToFloat(e.Revenue),
			ClientCount:   e.ClientCount,
			Clients:       make([]ClientHoursDTO, 0, len(e.Clients)),
			DailyHours:    make([]DayHoursDTO, 0, len(e.DailyHours)),
			Topics:        make([]TopicHoursDTO, 0, len(e.Topics)),
		}
		if e.TopClient != nil {
			emp.TopClient = &ClientHoursDTO{
				ClientID:   e.TopClient.ClientID,
				ClientName: e.TopClient.ClientName,
				Hours:      decToFloat(e.TopClient.Hours),
			}
		}
		for _, ch := range e.Clients {
			emp.Clients = append(emp.Clients, ClientHoursDTO{
				ClientID: ch.ClientID, ClientName: ch.ClientName, Hours: decToFloat(ch.Hours),
			})
		}
		for _, dh := range e.DailyHours {
			emp.DailyHours = append(emp.DailyHours, DayHoursDTO{
				Date: dh.Date.String(), Hours: decToFloat(dh.Hours),
			})
		}
		for _, th := range e.Topics {
			emp.Topics = append(emp.Topics, TopicHoursDTO{
				TopicName:       th.TopicName,
				Hours:           decToFloat(th.Hours),
				WrittenOffHours: decToFloat(th.WrittenOffHours),
			})
		}
		dto.ByEmployee = append(dto.ByEmployee, emp)
	}

	for _, c := range r.ByClient {
		clnt := ClientSummaryDTO{
			ClientID:   c.ClientID,
			ClientName: c.ClientName,
			ClientType: string(c.ClientType),
			HourlyRate: decPtrToFloat(c.HourlyRate),
			TotalHours: decToFloat(c.TotalHours),
			Revenue:    decPtrToFloat(c.Revenue),
			Employees:  make([]EmployeeHoursDTO, 0, len(c.Employees)),
		}
		for _, eh := range c.Employees {
			clnt.Employees = append(clnt.Employees, EmployeeHoursDTO{
				UserID: eh.UserID, UserName: eh.UserName, Hours: decToFloat(eh.Hours),
			})
		}
		dto.ByClient = append(dto.ByClient, clnt)
	}

	for _, row := range r.Entries {
		dto.Entries = append(dto.Entries, ReportRowDTO{
			Date:         row.Date.String(),
			Hours:        decToFloat(row.Hours),
			Description:  row.Description,
			UserID:       row.UserID,
			UserName:     row.UserName,
			ClientID:     row.ClientID,
			ClientName:   row.ClientName,
			TopicName:    row.TopicName,
			IsWrittenOff: row.IsWrittenOff,
			ClientType:   string(row.ClientType),
		})
	}

	return dto
}

func toTimeEntryDTO(e *billing.TimeEntry) *TimeEntryDTO {
	return &TimeEntryDTO{
		ID:           e.ID,
		UserID:       e.UserID,
		ClientID:     e.ClientID,
		Date:         e.Date.String(),
		Hours:        decToFloat(e.Hours),
		Description:  e.Description,
		TopicID:      e.TopicID,
		TopicName:    e.TopicName,
		SubtopicID:   e.SubtopicID,
		SubtopicName: e.SubtopicName,
		IsWrittenOff: e.IsWrittenOff,
	}
}

func toBillingTopicDTO(t *billing.ServiceDescriptionTopic) BillingTopicDTO {
	dto := BillingTopicDTO{
		ID:                   t.ID,
		ServiceDescriptionID: t.ServiceDescriptionID,
		Name:                 t.Name,
		PricingMode:          string(t.PricingMode),
		HourlyRate:           decPtrToFloat(t.HourlyRate),
		FixedFee:             decPtrToFloat(t.FixedFee),
		CapHours:             decPtrToFloat(t.CapHours),
		DiscountValue:        decPtrToFloat(t.DiscountValue),
	}
	if t.DiscountType != nil {
		s := string(*t.DiscountType)
		dto.DiscountType = &s
	}
	return dto
}
