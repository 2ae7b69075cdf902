package billing_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexhours/billing-engine/billing"
)

// =============================================================================
// TEST FIXTURE
// =============================================================================

var (
	march10 = billing.NewDay(2025, time.March, 10)
	march11 = billing.NewDay(2025, time.March, 11)
	march12 = billing.NewDay(2025, time.March, 12)
)

type entryOpt func(*billing.ReportEntry)

func writtenOff() entryOpt {
	return func(e *billing.ReportEntry) { e.IsWrittenOff = true }
}

func clientType(ct billing.ClientType) entryOpt {
	return func(e *billing.ReportEntry) { e.ClientType = ct }
}

func noRate() entryOpt {
	return func(e *billing.ReportEntry) { e.HourlyRate = nil }
}

func topic(name string) entryOpt {
	return func(e *billing.ReportEntry) { e.TopicName = name }
}

func entry(user, client string, day billing.Day, hours float64, opts ...entryOpt) billing.ReportEntry {
	e := billing.ReportEntry{
		EntryID:    user + "-" + client + "-" + day.String(),
		Date:       day,
		Hours:      decimal.NewFromFloat(hours),
		UserID:     user,
		UserName:   "name-" + user,
		ClientID:   client,
		ClientName: "name-" + client,
		ClientType: billing.ClientRegular,
		HourlyRate: billing.DecimalPtr(decimal.NewFromInt(200)),
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// =============================================================================
// SUMMARY TOTALS
// =============================================================================

func TestBuildReport_TotalHoursIsArithmeticSum(t *testing.T) {
	report := billing.BuildReport([]billing.ReportEntry{
		entry("u1", "c1", march10, 2.5),
		entry("u1", "c2", march10, 0.1),
		entry("u2", "c1", march11, 7.25),
	})

	assert.True(t, report.Summary.TotalHours.Equal(decimal.NewFromFloat(9.85)),
		"got %s", report.Summary.TotalHours)
}

func TestBuildReport_RevenueExcludesNonBillableEntries(t *testing.T) {
	// GIVEN: One billable entry plus written-off, non-REGULAR, and
	//        rate-less entries
	// WHEN: The report is built
	// THEN: Only the billable entry contributes revenue

	report := billing.BuildReport([]billing.ReportEntry{
		entry("u1", "c1", march10, 3),                                  // 3 x 200 = 600
		entry("u1", "c2", march10, 5, writtenOff()),                    // written off
		entry("u1", "c3", march10, 4, clientType(billing.ClientInternal)), // internal
		entry("u1", "c4", march10, 2, noRate()),                        // no rate
	})

	require.NotNil(t, report.Summary.TotalRevenue)
	assert.True(t, report.Summary.TotalRevenue.Equal(decimal.NewFromInt(600)),
		"got %s", report.Summary.TotalRevenue)
}

func TestBuildReport_WrittenOffHoursAccrueRegardlessOfClientType(t *testing.T) {
	report := billing.BuildReport([]billing.ReportEntry{
		entry("u1", "c1", march10, 5, writtenOff()),
		entry("u1", "c2", march10, 2, writtenOff(), clientType(billing.ClientManagement)),
		entry("u1", "c3", march10, 1),
	})

	require.NotNil(t, report.Summary.TotalWrittenOffHours)
	assert.True(t, report.Summary.TotalWrittenOffHours.Equal(decimal.NewFromInt(7)))
}

func TestBuildReport_CountsDistinctClients(t *testing.T) {
	report := billing.BuildReport([]billing.ReportEntry{
		entry("u1", "c1", march10, 1),
		entry("u2", "c1", march11, 1),
		entry("u2", "c2", march11, 1),
	})

	assert.Equal(t, 2, report.Summary.ClientCount)
}

// =============================================================================
// ROLLUPS AND ORDERING
// =============================================================================

func TestBuildReport_EmployeesSortedByHoursDescending(t *testing.T) {
	report := billing.BuildReport([]billing.ReportEntry{
		entry("u1", "c1", march10, 2),
		entry("u2", "c1", march10, 8),
		entry("u3", "c1", march10, 5),
	})

	require.Len(t, report.ByEmployee, 3)
	assert.Equal(t, "u2", report.ByEmployee[0].UserID)
	assert.Equal(t, "u3", report.ByEmployee[1].UserID)
	assert.Equal(t, "u1", report.ByEmployee[2].UserID)
}

func TestBuildReport_TiesKeepFirstSeenOrder(t *testing.T) {
	report := billing.BuildReport([]billing.ReportEntry{
		entry("u1", "c1", march10, 4),
		entry("u2", "c1", march10, 4),
	})

	require.Len(t, report.ByEmployee, 2)
	assert.Equal(t, "u1", report.ByEmployee[0].UserID)
	assert.Equal(t, "u2", report.ByEmployee[1].UserID)
}

func TestBuildReport_DailyHoursAscendingClientsDescending(t *testing.T) {
	report := billing.BuildReport([]billing.ReportEntry{
		entry("u1", "c-small", march12, 1),
		entry("u1", "c-big", march10, 6),
		entry("u1", "c-big", march11, 2),
	})

	require.Len(t, report.ByEmployee, 1)
	emp := report.ByEmployee[0]

	require.Len(t, emp.DailyHours, 3)
	assert.Equal(t, march10, emp.DailyHours[0].Date)
	assert.Equal(t, march12, emp.DailyHours[2].Date)

	require.Len(t, emp.Clients, 2)
	assert.Equal(t, "c-big", emp.Clients[0].ClientID)
	require.NotNil(t, emp.TopClient)
	assert.Equal(t, "c-big", emp.TopClient.ClientID)
	assert.Equal(t, 2, emp.ClientCount)
}

func TestBuildReport_EntriesSortedByDateDescending(t *testing.T) {
	report := billing.BuildReport([]billing.ReportEntry{
		entry("u1", "c1", march10, 1),
		entry("u1", "c1", march12, 1),
		entry("u1", "c1", march11, 1),
	})

	require.Len(t, report.Entries, 3)
	assert.Equal(t, march12, report.Entries[0].Date)
	assert.Equal(t, march10, report.Entries[2].Date)
}

func TestBuildReport_TopicFallbackIsUncategorized(t *testing.T) {
	report := billing.BuildReport([]billing.ReportEntry{
		entry("u1", "c1", march10, 2),
		entry("u1", "c1", march10, 3, topic("Litigation"), writtenOff()),
	})

	require.Len(t, report.ByEmployee, 1)
	topics := report.ByEmployee[0].Topics
	require.Len(t, topics, 2)

	byName := map[string]billing.TopicHours{}
	for _, th := range topics {
		byName[th.TopicName] = th
	}
	require.Contains(t, byName, billing.UncategorizedTopic)
	assert.True(t, byName[billing.UncategorizedTopic].Hours.Equal(decimal.NewFromInt(2)))
	assert.True(t, byName["Litigation"].WrittenOffHours.Equal(decimal.NewFromInt(3)))
}

func TestBuildReport_ClientRollupBreaksDownByEmployee(t *testing.T) {
	report := billing.BuildReport([]billing.ReportEntry{
		entry("u1", "c1", march10, 2),
		entry("u2", "c1", march10, 6),
	})

	require.Len(t, report.ByClient, 1)
	clnt := report.ByClient[0]
	assert.True(t, clnt.TotalHours.Equal(decimal.NewFromInt(8)))
	require.Len(t, clnt.Employees, 2)
	assert.Equal(t, "u2", clnt.Employees[0].UserID, "employee breakdown sorted by hours desc")
	require.NotNil(t, clnt.Revenue)
	assert.True(t, clnt.Revenue.Equal(decimal.NewFromInt(1600)))
}

// =============================================================================
// VIEWER PROJECTION
// =============================================================================

func TestProject_PrivilegedViewerSeesEverything(t *testing.T) {
	report := billing.BuildReport([]billing.ReportEntry{
		entry("u1", "c1", march10, 4),
		entry("u2", "c1", march10, 6),
	})
	report.Project(billing.Viewer{UserID: "u1", Privileged: true})

	assert.NotNil(t, report.Summary.TotalRevenue)
	assert.Len(t, report.ByEmployee, 2)
	assert.NotNil(t, report.ByEmployee[0].Revenue)
}

func TestProject_NonPrivilegedViewerGetsNulledFieldsAndOwnRowOnly(t *testing.T) {
	// GIVEN: A report over two employees
	// WHEN: Projected for a non-privileged viewer (u1)
	// THEN: Revenue/billable/rate fields are nulled, byEmployee keeps
	//       only u1, byClient survives with nulled money fields

	report := billing.BuildReport([]billing.ReportEntry{
		entry("u1", "c1", march10, 4),
		entry("u2", "c1", march10, 6),
	})
	report.Project(billing.Viewer{UserID: "u1", Privileged: false})

	assert.Nil(t, report.Summary.TotalRevenue)
	assert.Nil(t, report.Summary.TotalWrittenOffHours)

	require.Len(t, report.ByEmployee, 1)
	own := report.ByEmployee[0]
	assert.Equal(t, "u1", own.UserID)
	assert.Nil(t, own.Revenue)
	assert.Nil(t, own.BillableHours)
	assert.True(t, own.TotalHours.Equal(decimal.NewFromInt(4)), "hours stay visible")

	require.Len(t, report.ByClient, 1)
	assert.Nil(t, report.ByClient[0].HourlyRate)
	assert.Nil(t, report.ByClient[0].Revenue)
	assert.False(t, report.ByClient[0].TotalHours.IsZero())
}

func TestBuildReport_EmptyInput(t *testing.T) {
	report := billing.BuildReport(nil)

	assert.True(t, report.Summary.TotalHours.IsZero())
	assert.Equal(t, 0, report.Summary.ClientCount)
	assert.Empty(t, report.ByEmployee)
	assert.Empty(t, report.ByClient)
	assert.Empty(t, report.Entries)
}
