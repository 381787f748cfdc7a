package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"maude/internal/domain"
	"maude/internal/value"
)

// Dialect captures what differs between the relational backends.
type Dialect struct {
	Name string
	// Bind returns the placeholder for the n-th (1-based) argument.
	Bind func(n int) string
	// Schema holds idempotent statements creating the four tables.
	Schema []string
	// Output is placed between the column list and VALUES of the events
	// insert, Returning after it. When either is set the new id is read from
	// the result row instead of LastInsertId.
	Output    string
	Returning string
}

// QuestionMark binds every argument as "?".
func QuestionMark(int) string { return "?" }

// Tables in parent-first order.
var Tables = []string{"events", "devices", "patients", "mdr_texts"}

// SQLStore implements Store on database/sql for any Dialect.
type SQLStore struct {
	db *sql.DB
	d  Dialect

	insertEvent   string
	insertDevice  string
	insertPatient string
	insertText    string
	findHash      string
}

// NewSQLStore wraps db. Call EnsureSchema before first use.
func NewSQLStore(db *sql.DB, d Dialect) *SQLStore {
	if d.Bind == nil {
		d.Bind = QuestionMark
	}
	s := &SQLStore{db: db, d: d}
	s.insertEvent = fmt.Sprintf("INSERT INTO events (%s) %sVALUES (%s)%s",
		strings.Join(EventColumns, ", "), spaced(d.Output), s.binds(len(EventColumns)), prefixed(d.Returning))
	s.insertDevice = s.insertSQL("devices", DeviceColumns)
	s.insertPatient = s.insertSQL("patients", PatientColumns)
	s.insertText = s.insertSQL("mdr_texts", TextColumns)
	s.findHash = "SELECT id FROM events WHERE raw_hash = " + d.Bind(1)
	return s
}

func spaced(s string) string {
	if s == "" {
		return ""
	}
	return s + " "
}

func prefixed(s string) string {
	if s == "" {
		return ""
	}
	return " " + s
}

func (s *SQLStore) binds(n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = s.d.Bind(i + 1)
	}
	return strings.Join(ph, ", ")
}

func (s *SQLStore) insertSQL(table string, cols []string) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), s.binds(len(cols)))
}

// DB exposes the underlying handle.
func (s *SQLStore) DB() *sql.DB { return s.db }

// EnsureSchema runs the dialect's schema statements.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range s.d.Schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: schema: %w", s.d.Name, err)
		}
	}
	return nil
}

// Insert stores docs in a single transaction.
func (s *SQLStore) Insert(ctx context.Context, docs []value.Value) (InsertResult, error) {
	var res InsertResult
	if len(docs) == 0 {
		return res, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("%s: begin tx: %w", s.d.Name, err)
	}
	for i, doc := range docs {
		split, err := SplitDoc(doc)
		if err != nil {
			_ = tx.Rollback()
			return InsertResult{}, fmt.Errorf("%s: insert doc %d: %w", s.d.Name, i, err)
		}
		dup, err := s.exists(ctx, tx, split.Hash)
		if err != nil {
			_ = tx.Rollback()
			return InsertResult{}, err
		}
		if dup {
			res.Duplicates++
			continue
		}
		if err := s.insertSplit(ctx, tx, split); err != nil {
			_ = tx.Rollback()
			return InsertResult{}, err
		}
		res.Inserted++
	}
	if err := tx.Commit(); err != nil {
		return InsertResult{}, fmt.Errorf("%s: commit: %w", s.d.Name, err)
	}
	return res, nil
}

func (s *SQLStore) exists(ctx context.Context, tx *sql.Tx, hash string) (bool, error) {
	var id int64
	err := tx.QueryRowContext(ctx, s.findHash, hash).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("%s: lookup hash: %w", s.d.Name, err)
	}
	return true, nil
}

func (s *SQLStore) insertSplit(ctx context.Context, tx *sql.Tx, split Split) error {
	var id int64
	if s.d.Output != "" || s.d.Returning != "" {
		if err := tx.QueryRowContext(ctx, s.insertEvent, split.Event...).Scan(&id); err != nil {
			return fmt.Errorf("%s: insert event: %w", s.d.Name, err)
		}
	} else {
		r, err := tx.ExecContext(ctx, s.insertEvent, split.Event...)
		if err != nil {
			return fmt.Errorf("%s: insert event: %w", s.d.Name, err)
		}
		if id, err = r.LastInsertId(); err != nil {
			return fmt.Errorf("%s: event id: %w", s.d.Name, err)
		}
	}
	children := []struct {
		stmt string
		rows [][]any
	}{
		{s.insertDevice, split.Devices},
		{s.insertPatient, split.Patients},
		{s.insertText, split.Texts},
	}
	for _, c := range children {
		for _, row := range c.rows {
			row[0] = id
			if _, err := tx.ExecContext(ctx, c.stmt, row...); err != nil {
				return fmt.Errorf("%s: insert child: %w", s.d.Name, err)
			}
		}
	}
	return nil
}

func (s *SQLStore) Scan(ctx context.Context, fn func(Raw) error) error {
	rows, err := s.db.QueryContext(ctx, "SELECT id, raw_json FROM events ORDER BY id")
	if err != nil {
		return fmt.Errorf("%s: scan: %w", s.d.Name, err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			r   Raw
			raw sql.NullString
		)
		if err := rows.Scan(&r.ID, &raw); err != nil {
			return fmt.Errorf("%s: scan row: %w", s.d.Name, err)
		}
		r.JSON = []byte(raw.String)
		if err := fn(r); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%s: scan: %w", s.d.Name, err)
	}
	return nil
}

func (s *SQLStore) MissingPatients(ctx context.Context) ([]domain.MissingPatient, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT e.id, e.report_number
FROM events e
LEFT JOIN patients p ON e.id = p.event_id
WHERE p.id IS NULL
ORDER BY e.id`)
	if err != nil {
		return nil, fmt.Errorf("%s: missing patients: %w", s.d.Name, err)
	}
	defer rows.Close()
	var out []domain.MissingPatient
	for rows.Next() {
		var (
			m  domain.MissingPatient
			rn sql.NullString
		)
		if err := rows.Scan(&m.EventID, &rn); err != nil {
			return nil, fmt.Errorf("%s: missing patients: %w", s.d.Name, err)
		}
		m.ReportNumber = rn.String
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: missing patients: %w", s.d.Name, err)
	}
	return out, nil
}

func (s *SQLStore) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	dst := []*int64{&c.Events, &c.Devices, &c.Patients, &c.Texts}
	for i, t := range Tables {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t).Scan(dst[i]); err != nil {
			return Counts{}, fmt.Errorf("%s: count %s: %w", s.d.Name, t, err)
		}
	}
	return c, nil
}

func (s *SQLStore) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", s.d.Name, err)
	}
	for i := len(Tables) - 1; i >= 0; i-- {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+Tables[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("%s: clear %s: %w", s.d.Name, Tables[i], err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", s.d.Name, err)
	}
	return nil
}

// Close closes the database handle.
func (s *SQLStore) Close() { _ = s.db.Close() }

var _ Store = (*SQLStore)(nil)
