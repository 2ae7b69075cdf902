/*
Package sqlite provides the SQLite-backed implementation of the billing
store interfaces.

PURPOSE:
  Implements billing.Store and billing.TxStore using database/sql over
  mattn/go-sqlite3. In production the same patterns apply to PostgreSQL -
  only minor SQL dialect differences.

DECIMALS AT REST:
  Every hour and money column is a fixed-point TEXT produced by
  billing.FormatStoredDecimal and parsed by billing.ParseStoredDecimal.
  No float ever touches the schema, so aggregation stays exact.

KEY TABLES:
  users:                          firm members and their report role
  clients:                        client catalog with type/rate/status
  topics, subtopics:              logging catalog (name snapshots source)
  time_entries:                   logged hours, denormalized topic names
  service_descriptions:           DRAFT/FINALIZED billing documents
  service_description_topics:     pricing/discount/cap rules
  service_description_line_items: topic-to-entry links with waive mode
  timesheet_submissions:          per-user-per-day finalization markers

TRANSACTIONS:
  WithTx opens an IMMEDIATE transaction (the _txlock DSN parameter), so
  the write lock is taken up front and concurrent mutations to the same
  user/day serialize instead of both reading a pre-update total. The
  Store handed to the callback is scoped to that transaction.

WAL MODE:
  Opened with WAL for better concurrency: readers don't block, a single
  writer at a time, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/billing.db")
  if err != nil { log.Fatal(err) }
  defer store.Close()

SEE ALSO:
  - billing/store.go: interface definitions
  - billing/submission.go, billing/cascade.go: transactional consumers
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/lexhours/billing-engine/billing"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries implements billing.Store against either the database or an
// open transaction.
type queries struct {
	db dbtx
}

// Store implements billing.TxStore using SQLite.
type Store struct {
	queries
	sqlDB *sql.DB
	mu    sync.Mutex
}

// New creates a new SQLite store at the given path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps in-memory databases coherent across the
	// pool and serializes sqlite's single writer at the pool level.
	db.SetMaxOpenConns(1)

	store := &Store{queries: queries{db: db}, sqlDB: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.sqlDB.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id   TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		role TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS clients (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		client_type TEXT NOT NULL,
		hourly_rate TEXT,
		status      TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS topics (
		id     TEXT PRIMARY KEY,
		name   TEXT NOT NULL,
		status TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS subtopics (
		id       TEXT PRIMARY KEY,
		topic_id TEXT NOT NULL REFERENCES topics(id),
		name     TEXT NOT NULL,
		status   TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS time_entries (
		id             TEXT PRIMARY KEY,
		user_id        TEXT NOT NULL REFERENCES users(id),
		client_id      TEXT NOT NULL REFERENCES clients(id),
		entry_date     TEXT NOT NULL,
		hours          TEXT NOT NULL,
		description    TEXT NOT NULL DEFAULT '',
		topic_id       TEXT,
		topic_name     TEXT,
		subtopic_id    TEXT,
		subtopic_name  TEXT,
		is_written_off INTEGER NOT NULL DEFAULT 0,
		created_at     TEXT NOT NULL,
		updated_at     TEXT NOT NULL
	);

	-- Day-total recomputation (submission guard hot path)
	CREATE INDEX IF NOT EXISTS idx_time_entries_user_date
		ON time_entries(user_id, entry_date);
	-- Report range scans
	CREATE INDEX IF NOT EXISTS idx_time_entries_date
		ON time_entries(entry_date);

	CREATE TABLE IF NOT EXISTS service_descriptions (
		id        TEXT PRIMARY KEY,
		client_id TEXT NOT NULL REFERENCES clients(id),
		name      TEXT NOT NULL,
		status    TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS service_description_topics (
		id                     TEXT PRIMARY KEY,
		service_description_id TEXT NOT NULL REFERENCES service_descriptions(id) ON DELETE CASCADE,
		name                   TEXT NOT NULL,
		pricing_mode           TEXT NOT NULL,
		hourly_rate            TEXT,
		fixed_fee              TEXT,
		cap_hours              TEXT,
		discount_type          TEXT,
		discount_value         TEXT
	);

	-- Deleting a topic cascades to its line items (cascade step 2)
	CREATE TABLE IF NOT EXISTS service_description_line_items (
		id                            TEXT PRIMARY KEY,
		service_description_topic_id  TEXT NOT NULL REFERENCES service_description_topics(id) ON DELETE CASCADE,
		time_entry_id                 TEXT NOT NULL REFERENCES time_entries(id),
		waive_mode                    TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_line_items_topic
		ON service_description_line_items(service_description_topic_id);
	-- Waive-reference counting (cascade step 3)
	CREATE INDEX IF NOT EXISTS idx_line_items_waived_entry
		ON service_description_line_items(time_entry_id)
		WHERE waive_mode IS NOT NULL;

	CREATE TABLE IF NOT EXISTS timesheet_submissions (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users(id),
		entry_date TEXT NOT NULL,
		UNIQUE(user_id, entry_date)
	);
	`

	_, err := s.sqlDB.Exec(schema)
	return err
}

// WithTx executes fn within an IMMEDIATE database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(billing.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&queries{db: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

// =============================================================================
// USERS AND CATALOG
// =============================================================================

func (q *queries) GetUser(ctx context.Context, id string) (*billing.User, error) {
	var u billing.User
	err := q.db.QueryRowContext(ctx,
		`SELECT id, name, role FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Name, &u.Role)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (q *queries) SaveUser(ctx context.Context, u billing.User) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO users (id, name, role) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, role = excluded.role
	`, u.ID, u.Name, string(u.Role))
	return err
}

func (q *queries) GetClient(ctx context.Context, id string) (*billing.Client, error) {
	var (
		c    billing.Client
		rate sql.NullString
	)
	err := q.db.QueryRowContext(ctx,
		`SELECT id, name, client_type, hourly_rate, status FROM clients WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.Type, &rate, &c.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if c.HourlyRate, err = nullableToDecimal(rate); err != nil {
		return nil, err
	}
	return &c, nil
}

func (q *queries) SaveClient(ctx context.Context, c billing.Client) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO clients (id, name, client_type, hourly_rate, status) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, client_type = excluded.client_type,
			hourly_rate = excluded.hourly_rate, status = excluded.status
	`, c.ID, c.Name, string(c.Type), nullableDecimal(c.HourlyRate), string(c.Status))
	return err
}

func (q *queries) GetTopic(ctx context.Context, id string) (*billing.Topic, error) {
	var t billing.Topic
	err := q.db.QueryRowContext(ctx,
		`SELECT id, name, status FROM topics WHERE id = ?`, id,
	).Scan(&t.ID, &t.Name, &t.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (q *queries) SaveTopic(ctx context.Context, t billing.Topic) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO topics (id, name, status) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, status = excluded.status
	`, t.ID, t.Name, string(t.Status))
	return err
}

func (q *queries) GetSubtopic(ctx context.Context, id string) (*billing.Subtopic, error) {
	var st billing.Subtopic
	err := q.db.QueryRowContext(ctx,
		`SELECT id, topic_id, name, status FROM subtopics WHERE id = ?`, id,
	).Scan(&st.ID, &st.TopicID, &st.Name, &st.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (q *queries) SaveSubtopic(ctx context.Context, st billing.Subtopic) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO subtopics (id, topic_id, name, status) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			topic_id = excluded.topic_id, name = excluded.name, status = excluded.status
	`, st.ID, st.TopicID, st.Name, string(st.Status))
	return err
}

// =============================================================================
// TIME ENTRIES
// =============================================================================

const timeEntryColumns = `id, user_id, client_id, entry_date, hours, description,
	topic_id, topic_name, subtopic_id, subtopic_name, is_written_off, created_at, updated_at`

func (q *queries) GetTimeEntry(ctx context.Context, id string) (*billing.TimeEntry, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+timeEntryColumns+` FROM time_entries WHERE id = ?`, id)
	e, err := scanTimeEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (q *queries) SaveTimeEntry(ctx context.Context, e billing.TimeEntry) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO time_entries (`+timeEntryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID, e.UserID, e.ClientID, e.Date.String(),
		billing.FormatStoredDecimal(e.Hours), e.Description,
		e.TopicID, e.TopicName, e.SubtopicID, e.SubtopicName,
		boolToInt(e.IsWrittenOff),
		e.CreatedAt.UTC().Format(time.RFC3339),
		e.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (q *queries) UpdateTimeEntry(ctx context.Context, e billing.TimeEntry) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE time_entries SET
			client_id = ?, entry_date = ?, hours = ?, description = ?,
			topic_id = ?, topic_name = ?, subtopic_id = ?, subtopic_name = ?,
			is_written_off = ?, updated_at = ?
		WHERE id = ?
	`,
		e.ClientID, e.Date.String(),
		billing.FormatStoredDecimal(e.Hours), e.Description,
		e.TopicID, e.TopicName, e.SubtopicID, e.SubtopicName,
		boolToInt(e.IsWrittenOff),
		e.UpdatedAt.UTC().Format(time.RFC3339),
		e.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res, billing.ErrEntryNotFound)
}

func (q *queries) DeleteTimeEntry(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM time_entries WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res, billing.ErrEntryNotFound)
}

// SumHoursForUserDay sums in Go rather than SQL so the fixed-point TEXT
// column never goes through sqlite's float arithmetic.
func (q *queries) SumHoursForUserDay(ctx context.Context, userID string, day billing.Day) (decimal.Decimal, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT hours FROM time_entries WHERE user_id = ? AND entry_date = ?`,
		userID, day.String())
	if err != nil {
		return decimal.Decimal{}, err
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return decimal.Decimal{}, err
		}
		h, err := billing.ParseStoredDecimal(raw)
		if err != nil {
			return decimal.Decimal{}, err
		}
		total = total.Add(h)
	}
	return total, rows.Err()
}

func (q *queries) ListReportEntries(ctx context.Context, from, to billing.Day, userID string) ([]billing.ReportEntry, error) {
	query := `
		SELECT e.id, e.entry_date, e.hours, e.description,
		       u.id, u.name,
		       c.id, c.name, c.client_type, c.hourly_rate,
		       COALESCE(e.topic_name, ''), e.is_written_off
		FROM time_entries e
		JOIN users u ON u.id = e.user_id
		JOIN clients c ON c.id = e.client_id
		WHERE e.entry_date >= ? AND e.entry_date <= ?`
	args := []any{from.String(), to.String()}
	if userID != "" {
		query += ` AND e.user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY e.entry_date DESC, e.created_at DESC`

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []billing.ReportEntry
	for rows.Next() {
		var (
			e          billing.ReportEntry
			date       string
			hours      string
			rate       sql.NullString
			writtenOff int
		)
		if err := rows.Scan(
			&e.EntryID, &date, &hours, &e.Description,
			&e.UserID, &e.UserName,
			&e.ClientID, &e.ClientName, &e.ClientType, &rate,
			&e.TopicName, &writtenOff,
		); err != nil {
			return nil, err
		}
		if e.Date, err = billing.ParseDay(date); err != nil {
			return nil, err
		}
		if e.Hours, err = billing.ParseStoredDecimal(hours); err != nil {
			return nil, err
		}
		if e.HourlyRate, err = nullableToDecimal(rate); err != nil {
			return nil, err
		}
		e.IsWrittenOff = writtenOff != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (q *queries) EntryBilledFinalized(ctx context.Context, entryID string) (bool, error) {
	var count int
	err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(1)
		FROM service_description_line_items li
		JOIN service_description_topics t ON t.id = li.service_description_topic_id
		JOIN service_descriptions sd ON sd.id = t.service_description_id
		WHERE li.time_entry_id = ? AND sd.status = ?
	`, entryID, string(billing.ServiceDescriptionFinalized)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (q *queries) SetWriteOff(ctx context.Context, entryID string, writtenOff bool) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE time_entries SET is_written_off = ? WHERE id = ?`,
		boolToInt(writtenOff), entryID)
	if err != nil {
		return err
	}
	return requireRow(res, billing.ErrEntryNotFound)
}

// =============================================================================
// SUBMISSIONS
// =============================================================================

func (q *queries) GetSubmission(ctx context.Context, userID string, day billing.Day) (*billing.TimesheetSubmission, error) {
	var (
		sub  billing.TimesheetSubmission
		date string
	)
	err := q.db.QueryRowContext(ctx,
		`SELECT id, user_id, entry_date FROM timesheet_submissions WHERE user_id = ? AND entry_date = ?`,
		userID, day.String(),
	).Scan(&sub.ID, &sub.UserID, &date)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if sub.Date, err = billing.ParseDay(date); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (q *queries) SaveSubmission(ctx context.Context, sub billing.TimesheetSubmission) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO timesheet_submissions (id, user_id, entry_date) VALUES (?, ?, ?)`,
		sub.ID, sub.UserID, sub.Date.String())
	return err
}

func (q *queries) DeleteSubmission(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM timesheet_submissions WHERE id = ?`, id)
	return err
}

// =============================================================================
// BILLING DOCUMENTS
// =============================================================================

func (q *queries) GetServiceDescription(ctx context.Context, id string) (*billing.ServiceDescription, error) {
	var sd billing.ServiceDescription
	err := q.db.QueryRowContext(ctx,
		`SELECT id, client_id, name, status FROM service_descriptions WHERE id = ?`, id,
	).Scan(&sd.ID, &sd.ClientID, &sd.Name, &sd.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sd, nil
}

func (q *queries) SaveServiceDescription(ctx context.Context, sd billing.ServiceDescription) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO service_descriptions (id, client_id, name, status) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			client_id = excluded.client_id, name = excluded.name, status = excluded.status
	`, sd.ID, sd.ClientID, sd.Name, string(sd.Status))
	return err
}

func (q *queries) GetBillingTopic(ctx context.Context, id string) (*billing.ServiceDescriptionTopic, error) {
	var (
		t            billing.ServiceDescriptionTopic
		hourlyRate   sql.NullString
		fixedFee     sql.NullString
		capHours     sql.NullString
		discountType sql.NullString
		discountVal  sql.NullString
	)
	err := q.db.QueryRowContext(ctx, `
		SELECT id, service_description_id, name, pricing_mode,
		       hourly_rate, fixed_fee, cap_hours, discount_type, discount_value
		FROM service_description_topics WHERE id = ?
	`, id).Scan(&t.ID, &t.ServiceDescriptionID, &t.Name, &t.PricingMode,
		&hourlyRate, &fixedFee, &capHours, &discountType, &discountVal)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if t.HourlyRate, err = nullableToDecimal(hourlyRate); err != nil {
		return nil, err
	}
	if t.FixedFee, err = nullableToDecimal(fixedFee); err != nil {
		return nil, err
	}
	if t.CapHours, err = nullableToDecimal(capHours); err != nil {
		return nil, err
	}
	if t.DiscountValue, err = nullableToDecimal(discountVal); err != nil {
		return nil, err
	}
	if discountType.Valid {
		dt := billing.DiscountType(discountType.String)
		t.DiscountType = &dt
	}
	return &t, nil
}

func (q *queries) SaveBillingTopic(ctx context.Context, t billing.ServiceDescriptionTopic) error {
	var discountType *string
	if t.DiscountType != nil {
		s := string(*t.DiscountType)
		discountType = &s
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO service_description_topics
			(id, service_description_id, name, pricing_mode,
			 hourly_rate, fixed_fee, cap_hours, discount_type, discount_value)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.ServiceDescriptionID, t.Name, string(t.PricingMode),
		nullableDecimal(t.HourlyRate), nullableDecimal(t.FixedFee),
		nullableDecimal(t.CapHours), discountType, nullableDecimal(t.DiscountValue))
	return err
}

// UpdateBillingTopic builds the SET clause from the normalized update;
// unset fields never appear in the statement.
func (q *queries) UpdateBillingTopic(ctx context.Context, topicID string, update billing.TopicUpdate) error {
	var (
		sets []string
		args []any
	)
	if update.PricingMode != nil {
		sets = append(sets, "pricing_mode = ?")
		args = append(args, string(*update.PricingMode))
	}
	if update.HourlyRate != nil {
		sets = append(sets, "hourly_rate = ?")
		args = append(args, billing.FormatStoredDecimal(*update.HourlyRate))
	}
	if update.FixedFee != nil {
		sets = append(sets, "fixed_fee = ?")
		args = append(args, billing.FormatStoredDecimal(*update.FixedFee))
	}
	if update.ClearCapHours {
		sets = append(sets, "cap_hours = NULL")
	} else if update.CapHours != nil {
		sets = append(sets, "cap_hours = ?")
		args = append(args, billing.FormatStoredDecimal(*update.CapHours))
	}
	if update.SetDiscount {
		sets = append(sets, "discount_type = ?", "discount_value = ?")
		var discountType *string
		if update.DiscountType != nil {
			s := string(*update.DiscountType)
			discountType = &s
		}
		args = append(args, discountType, nullableDecimal(update.DiscountValue))
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, topicID)
	res, err := q.db.ExecContext(ctx,
		`UPDATE service_description_topics SET `+strings.Join(sets, ", ")+` WHERE id = ?`,
		args...)
	if err != nil {
		return err
	}
	return requireRow(res, billing.ErrBillingTopicNotFound)
}

func (q *queries) DeleteBillingTopic(ctx context.Context, topicID string) error {
	res, err := q.db.ExecContext(ctx,
		`DELETE FROM service_description_topics WHERE id = ?`, topicID)
	if err != nil {
		return err
	}
	return requireRow(res, billing.ErrBillingTopicNotFound)
}

func (q *queries) SaveLineItem(ctx context.Context, li billing.LineItem) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO service_description_line_items
			(id, service_description_topic_id, time_entry_id, waive_mode)
		VALUES (?, ?, ?, ?)
	`, li.ID, li.TopicID, li.TimeEntryID, li.WaiveMode)
	return err
}

func (q *queries) WaivedEntryIDs(ctx context.Context, topicID string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT DISTINCT time_entry_id
		FROM service_description_line_items
		WHERE service_description_topic_id = ? AND waive_mode IS NOT NULL
	`, topicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (q *queries) CountWaiveReferences(ctx context.Context, entryID string) (int, error) {
	var count int
	err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(1)
		FROM service_description_line_items
		WHERE time_entry_id = ? AND waive_mode IS NOT NULL
	`, entryID).Scan(&count)
	return count, err
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTimeEntry(row rowScanner) (*billing.TimeEntry, error) {
	var (
		e          billing.TimeEntry
		date       string
		hours      string
		writtenOff int
		createdAt  string
		updatedAt  string
	)
	if err := row.Scan(
		&e.ID, &e.UserID, &e.ClientID, &date, &hours, &e.Description,
		&e.TopicID, &e.TopicName, &e.SubtopicID, &e.SubtopicName,
		&writtenOff, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if e.Date, err = billing.ParseDay(date); err != nil {
		return nil, err
	}
	if e.Hours, err = billing.ParseStoredDecimal(hours); err != nil {
		return nil, err
	}
	e.IsWrittenOff = writtenOff != 0
	if e.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, err
	}
	if e.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func nullableDecimal(d *decimal.Decimal) *string {
	return billing.FormatStoredDecimalPtr(d)
}

func nullableToDecimal(s sql.NullString) (*decimal.Decimal, error) {
	if !s.Valid {
		return nil, nil
	}
	d, err := billing.ParseStoredDecimal(s.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func requireRow(res sql.Result, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return missing
	}
	return nil
}
