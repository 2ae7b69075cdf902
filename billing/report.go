/*
report.go - Report aggregation with role-sensitive revenue visibility

PURPOSE:
  Folds a flat list of time entries (joined with their client and
  authoring user) into employee-, client-, and topic-level rollups with
  revenue and write-off totals for management reporting.

ALGORITHM:
  Single pass over the entries, accumulating into per-employee and
  per-client maps keyed by id. Revenue accrues only for non-written-off
  entries on REGULAR clients with a positive hourly rate, as
  hours x rate; written-off hours accrue whenever the flag is set,
  regardless of client type. After the pass, rollups are sorted:
  employees/clients by total hours descending (stable, ties keep
  first-seen order), daily hours ascending by date, per-client and
  per-employee breakdowns descending by hours, entries by date
  descending.

VISIBILITY:
  BuildReport always accumulates the full privileged view. Role
  filtering is a projection applied once at the output boundary
  (ReportData.Project): non-privileged viewers get revenue, billable
  hours, and hourly rates nulled (not omitted) and byEmployee reduced to
  their own row. Keeping the fold single-purpose keeps it independently
  testable.

NUMERIC SEMANTICS:
  All accumulation is decimal; revenue is the exact product of decimal
  hours and decimal rate, rounded only at display time by the API layer.

SEE ALSO:
  - api/handlers.go: date-range validation and viewer resolution
  - store/sqlite: ListReportEntries supplies the joined rows
*/
package billing

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// INPUT
// =============================================================================

// ReportEntry is a time entry joined with its client and authoring
// user, as supplied by the store for a date range.
type ReportEntry struct {
	EntryID      string
	Date         Day
	Hours        decimal.Decimal
	Description  string
	UserID       string
	UserName     string
	ClientID     string
	ClientName   string
	ClientType   ClientType
	HourlyRate   *decimal.Decimal
	TopicName    string // empty when the entry has no topic
	IsWrittenOff bool
}

// Viewer identifies who is looking at the report. Non-privileged
// viewers see only their own rows and no revenue figures.
type Viewer struct {
	UserID     string
	Privileged bool
}

// =============================================================================
// OUTPUT
// =============================================================================

type ReportData struct {
	Summary    ReportSummary
	ByEmployee []EmployeeSummary
	ByClient   []ClientSummary
	Entries    []ReportRow
}

type ReportSummary struct {
	TotalHours           decimal.Decimal
	TotalRevenue         *decimal.Decimal // nil for non-privileged viewers
	TotalWrittenOffHours *decimal.Decimal // nil for non-privileged viewers
	ClientCount          int
}

type EmployeeSummary struct {
	UserID        string
	UserName      string
	TotalHours    decimal.Decimal
	BillableHours *decimal.Decimal // nil for non-privileged viewers
	Revenue       *decimal.Decimal // nil for non-privileged viewers
	ClientCount   int
	TopClient     *ClientHours
	Clients       []ClientHours // sorted by hours descending
	DailyHours    []DayHours    // sorted by date ascending
	Topics        []TopicHours
}

type ClientSummary struct {
	ClientID   string
	ClientName string
	ClientType ClientType
	HourlyRate *decimal.Decimal // nil for non-privileged viewers
	TotalHours decimal.Decimal
	Revenue    *decimal.Decimal // nil for non-privileged viewers
	Employees  []EmployeeHours  // sorted by hours descending
}

type ClientHours struct {
	ClientID   string
	ClientName string
	Hours      decimal.Decimal
}

type EmployeeHours struct {
	UserID   string
	UserName string
	Hours    decimal.Decimal
}

type DayHours struct {
	Date  Day
	Hours decimal.Decimal
}

type TopicHours struct {
	TopicName       string
	Hours           decimal.Decimal
	WrittenOffHours decimal.Decimal
}

// ReportRow is an entry projected to the flat shape returned under
// "entries", sorted by date descending.
type ReportRow struct {
	Date         Day
	Hours        decimal.Decimal
	Description  string
	UserID       string
	UserName     string
	ClientID     string
	ClientName   string
	TopicName    string
	IsWrittenOff bool
	ClientType   ClientType
}

// =============================================================================
// ACCUMULATION
// =============================================================================

type employeeAccum struct {
	summary  *EmployeeSummary
	byClient map[string]*ClientHours
	byDay    map[string]*DayHours
	byTopic  map[string]*TopicHours
}

type clientAccum struct {
	summary    *ClientSummary
	byEmployee map[string]*EmployeeHours
}

// billable reports whether the entry generates revenue.
func billable(e ReportEntry) bool {
	return !e.IsWrittenOff &&
		e.ClientType == ClientRegular &&
		e.HourlyRate != nil && e.HourlyRate.IsPositive()
}

// BuildReport folds entries into the full (privileged) report. Apply
// Project before returning the result to a caller.
func BuildReport(entries []ReportEntry) *ReportData {
	var (
		totalHours   = decimal.Zero
		totalRevenue = decimal.Zero
		writtenOff   = decimal.Zero

		employees  = map[string]*employeeAccum{}
		clients    = map[string]*clientAccum{}
		empOrder   []string
		clntOrder  []string
		rows       = make([]ReportRow, 0, len(entries))
	)

	for _, e := range entries {
		totalHours = totalHours.Add(e.Hours)

		revenue := decimal.Zero
		if billable(e) {
			revenue = e.Hours.Mul(*e.HourlyRate)
			totalRevenue = totalRevenue.Add(revenue)
		}
		if e.IsWrittenOff {
			writtenOff = writtenOff.Add(e.Hours)
		}

		topicName := e.TopicName
		if topicName == "" {
			topicName = UncategorizedTopic
		}

		// Employee rollup
		emp, ok := employees[e.UserID]
		if !ok {
			emp = &employeeAccum{
				summary: &EmployeeSummary{
					UserID:        e.UserID,
					UserName:      e.UserName,
					BillableHours: DecimalPtr(decimal.Zero),
					Revenue:       DecimalPtr(decimal.Zero),
				},
				byClient: map[string]*ClientHours{},
				byDay:    map[string]*DayHours{},
				byTopic:  map[string]*TopicHours{},
			}
			employees[e.UserID] = emp
			empOrder = append(empOrder, e.UserID)
		}
		emp.summary.TotalHours = emp.summary.TotalHours.Add(e.Hours)
		if billable(e) {
			*emp.summary.BillableHours = emp.summary.BillableHours.Add(e.Hours)
			*emp.summary.Revenue = emp.summary.Revenue.Add(revenue)
		}

		ch, ok := emp.byClient[e.ClientID]
		if !ok {
			ch = &ClientHours{ClientID: e.ClientID, ClientName: e.ClientName}
			emp.byClient[e.ClientID] = ch
		}
		ch.Hours = ch.Hours.Add(e.Hours)

		dh, ok := emp.byDay[e.Date.String()]
		if !ok {
			dh = &DayHours{Date: e.Date}
			emp.byDay[e.Date.String()] = dh
		}
		dh.Hours = dh.Hours.Add(e.Hours)

		th, ok := emp.byTopic[topicName]
		if !ok {
			th = &TopicHours{TopicName: topicName}
			emp.byTopic[topicName] = th
		}
		th.Hours = th.Hours.Add(e.Hours)
		if e.IsWrittenOff {
			th.WrittenOffHours = th.WrittenOffHours.Add(e.Hours)
		}

		// Client rollup
		clnt, ok := clients[e.ClientID]
		if !ok {
			clnt = &clientAccum{
				summary: &ClientSummary{
					ClientID:   e.ClientID,
					ClientName: e.ClientName,
					ClientType: e.ClientType,
					HourlyRate: e.HourlyRate,
					Revenue:    DecimalPtr(decimal.Zero),
				},
				byEmployee: map[string]*EmployeeHours{},
			}
			clients[e.ClientID] = clnt
			clntOrder = append(clntOrder, e.ClientID)
		}
		clnt.summary.TotalHours = clnt.summary.TotalHours.Add(e.Hours)
		if billable(e) {
			*clnt.summary.Revenue = clnt.summary.Revenue.Add(revenue)
		}

		eh, ok := clnt.byEmployee[e.UserID]
		if !ok {
			eh = &EmployeeHours{UserID: e.UserID, UserName: e.UserName}
			clnt.byEmployee[e.UserID] = eh
		}
		eh.Hours = eh.Hours.Add(e.Hours)

		rows = append(rows, ReportRow{
			Date:         e.Date,
			Hours:        e.Hours,
			Description:  e.Description,
			UserID:       e.UserID,
			UserName:     e.UserName,
			ClientID:     e.ClientID,
			ClientName:   e.ClientName,
			TopicName:    topicName,
			IsWrittenOff: e.IsWrittenOff,
			ClientType:   e.ClientType,
		})
	}

	// Assemble employee summaries in first-seen order, then sort.
	byEmployee := make([]EmployeeSummary, 0, len(empOrder))
	for _, id := range empOrder {
		emp := employees[id]
		s := *emp.summary

		s.Clients = make([]ClientHours, 0, len(emp.byClient))
		for _, ch := range emp.byClient {
			s.Clients = append(s.Clients, *ch)
		}
		sort.SliceStable(s.Clients, func(i, j int) bool {
			return s.Clients[i].Hours.GreaterThan(s.Clients[j].Hours)
		})
		s.ClientCount = len(s.Clients)
		if len(s.Clients) > 0 {
			top := s.Clients[0]
			s.TopClient = &top
		}

		s.DailyHours = make([]DayHours, 0, len(emp.byDay))
		for _, dh := range emp.byDay {
			s.DailyHours = append(s.DailyHours, *dh)
		}
		sort.Slice(s.DailyHours, func(i, j int) bool {
			return s.DailyHours[i].Date.Before(s.DailyHours[j].Date)
		})

		s.Topics = make([]TopicHours, 0, len(emp.byTopic))
		for _, th := range emp.byTopic {
			s.Topics = append(s.Topics, *th)
		}
		sort.SliceStable(s.Topics, func(i, j int) bool {
			return s.Topics[i].Hours.GreaterThan(s.Topics[j].Hours)
		})

		byEmployee = append(byEmployee, s)
	}
	sort.SliceStable(byEmployee, func(i, j int) bool {
		return byEmployee[i].TotalHours.GreaterThan(byEmployee[j].TotalHours)
	})

	byClient := make([]ClientSummary, 0, len(clntOrder))
	for _, id := range clntOrder {
		clnt := clients[id]
		s := *clnt.summary

		s.Employees = make([]EmployeeHours, 0, len(clnt.byEmployee))
		for _, eh := range clnt.byEmployee {
			s.Employees = append(s.Employees, *eh)
		}
		sort.SliceStable(s.Employees, func(i, j int) bool {
			return s.Employees[i].Hours.GreaterThan(s.Employees[j].Hours)
		})

		byClient = append(byClient, s)
	}
	sort.SliceStable(byClient, func(i, j int) bool {
		return byClient[i].TotalHours.GreaterThan(byClient[j].TotalHours)
	})

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.After(rows[j].Date)
	})

	return &ReportData{
		Summary: ReportSummary{
			TotalHours:           totalHours,
			TotalRevenue:         DecimalPtr(totalRevenue),
			TotalWrittenOffHours: DecimalPtr(writtenOff),
			ClientCount:          len(clntOrder),
		},
		ByEmployee: byEmployee,
		ByClient:   byClient,
		Entries:    rows,
	}
}

// =============================================================================
// VIEWER PROJECTION
// =============================================================================

// Project applies role-sensitive visibility in place. Privileged
// viewers see everything; everyone else gets revenue, billable hours,
// and rates nulled (not omitted) and byEmployee reduced to their own
// row.
func (r *ReportData) Project(viewer Viewer) {
	if viewer.Privileged {
		return
	}

	r.Summary.TotalRevenue = nil
	r.Summary.TotalWrittenOffHours = nil

	own := r.ByEmployee[:0]
	for i := range r.ByEmployee {
		e := r.ByEmployee[i]
		e.BillableHours = nil
		e.Revenue = nil
		if e.UserID == viewer.UserID {
			own = append(own, e)
		}
	}
	r.ByEmployee = own

	for i := range r.ByClient {
		r.ByClient[i].HourlyRate = nil
		r.ByClient[i].Revenue = nil
	}
}
