// Package sqlite provides a durable Storage backend on SQLite. Policies are
// stored as their structured JSON documents with the uid, family type and
// effect lifted into columns; candidate retrieval pushes the checker's
// family (and, for the literal string strategies, a JSON1 condition match)
// down into the query.
//
// The backend uses WAL journaling and a busy timeout, and is suitable for
// single-instance deployments that need policies to survive restarts.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite" // SQLite driver

	"warden-hq/warden/pkg/checker"
	"warden-hq/warden/pkg/policy"
	"warden-hq/warden/pkg/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS warden_policies (
	uid      TEXT PRIMARY KEY,
	type     TEXT NOT NULL,
	effect   TEXT NOT NULL,
	document TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_warden_policies_type ON warden_policies(type);
`

// Storage implements the storage contract on a SQLite database.
type Storage struct {
	db     *sql.DB
	logger *slog.Logger

	addStmt    *sql.Stmt
	getStmt    *sql.Stmt
	getAllStmt *sql.Stmt
	updateStmt *sql.Stmt
	deleteStmt *sql.Stmt
}

// New opens (creating if needed) the database at dbPath. Use ":memory:"
// for an ephemeral store.
func New(dbPath string, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", dbPath, err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: create schema: %w", err)
	}

	s := &Storage{
		db:     db,
		logger: logger.With("component", "storage.sqlite"),
	}
	if err := s.prepare(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Storage) prepare() error {
	stmts := []struct {
		target **sql.Stmt
		query  string
	}{
		{&s.addStmt, `INSERT INTO warden_policies (uid, type, effect, document) VALUES (?, ?, ?, ?) ON CONFLICT(uid) DO NOTHING`},
		{&s.getStmt, `SELECT document FROM warden_policies WHERE uid = ?`},
		{&s.getAllStmt, `SELECT document FROM warden_policies ORDER BY uid LIMIT ? OFFSET ?`},
		{&s.updateStmt, `UPDATE warden_policies SET type = ?, effect = ?, document = ? WHERE uid = ?`},
		{&s.deleteStmt, `DELETE FROM warden_policies WHERE uid = ?`},
	}
	for _, st := range stmts {
		prepared, err := s.db.Prepare(st.query)
		if err != nil {
			return fmt.Errorf("sqlite: prepare %q: %w", st.query, err)
		}
		*st.target = prepared
	}
	return nil
}

// Close releases the prepared statements and the database handle.
func (s *Storage) Close() error {
	for _, stmt := range []*sql.Stmt{s.addStmt, s.getStmt, s.getAllStmt, s.updateStmt, s.deleteStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return s.db.Close()
}

// Add implements storage.Storage.
func (s *Storage) Add(ctx context.Context, p *policy.Policy) error {
	typ, effect, doc, err := encode(p)
	if err != nil {
		return &storage.PolicyCreationError{UID: p.UID, Cause: err}
	}

	res, err := s.addStmt.ExecContext(ctx, p.UID, typ, effect, doc)
	if err != nil {
		return &storage.PolicyCreationError{UID: p.UID, Cause: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return &storage.PolicyCreationError{UID: p.UID, Cause: err}
	}
	if affected == 0 {
		return &storage.PolicyExistsError{UID: p.UID}
	}

	s.logger.Debug("policy added", "uid", p.UID)
	return nil
}

// Get implements storage.Storage.
func (s *Storage) Get(ctx context.Context, uid string) (*policy.Policy, error) {
	var doc string
	err := s.getStmt.QueryRowContext(ctx, uid).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get %q: %w", uid, err)
	}
	return decode(doc)
}

// GetAll implements storage.Storage. The page order is stable (by uid).
func (s *Storage) GetAll(ctx context.Context, limit, offset int) ([]*policy.Policy, error) {
	if err := storage.ValidatePagination(limit, offset); err != nil {
		return nil, err
	}

	rows, err := s.getAllStmt.QueryContext(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("sqlite: get all: %w", err)
	}
	defer rows.Close()
	return collect(rows)
}

// FindForInquiry implements storage.Storage. The checker's policy family is
// always pushed down; the exact and fuzzy strategies additionally push down
// their per-field condition matches via JSON1, mirroring what the checker
// will recompute.
func (s *Storage) FindForInquiry(ctx context.Context, inquiry *policy.Inquiry, chk checker.Checker) ([]*policy.Policy, error) {
	query, args, err := buildFilter(inquiry, chk)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: find for inquiry: %w", err)
	}
	defer rows.Close()
	return collect(rows)
}

// Update implements storage.Storage.
func (s *Storage) Update(ctx context.Context, p *policy.Policy) error {
	typ, effect, doc, err := encode(p)
	if err != nil {
		return &storage.PolicyUpdateError{UID: p.UID, Cause: err}
	}

	res, err := s.updateStmt.ExecContext(ctx, typ, effect, doc, p.UID)
	if err != nil {
		return &storage.PolicyUpdateError{UID: p.UID, Cause: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return &storage.PolicyUpdateError{UID: p.UID, Cause: err}
	}
	if affected == 0 {
		return &storage.PolicyUpdateError{UID: p.UID, Cause: &storage.PolicyNotFoundError{UID: p.UID}}
	}

	s.logger.Debug("policy updated", "uid", p.UID)
	return nil
}

// Delete implements storage.Storage.
func (s *Storage) Delete(ctx context.Context, uid string) error {
	res, err := s.deleteStmt.ExecContext(ctx, uid)
	if err != nil {
		return &storage.PolicyDeletionError{UID: uid, Cause: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return &storage.PolicyDeletionError{UID: uid, Cause: err}
	}
	if affected == 0 {
		return &storage.PolicyNotFoundError{UID: uid}
	}

	s.logger.Debug("policy deleted", "uid", uid)
	return nil
}

// buildFilter translates the checker into a candidate query. Rows the
// checker could possibly match are never excluded.
func buildFilter(inquiry *policy.Inquiry, chk checker.Checker) (string, []any, error) {
	base := `SELECT document FROM warden_policies`

	if chk == nil {
		return base + ` ORDER BY uid`, nil, nil
	}

	switch chk.Kind() {
	case checker.KindRegex:
		return base + ` WHERE type = ? ORDER BY uid`, []any{string(policy.TypeStringBased)}, nil

	case checker.KindRules:
		return base + ` WHERE type = ? ORDER BY uid`, []any{string(policy.TypeRuleBased)}, nil

	case checker.KindExact:
		return conditionFilter(inquiry, `json_each.value = ?`)

	case checker.KindFuzzy:
		// instr(x, '') is 0 in SQLite while an empty pattern matches any
		// string, so empty patterns are admitted explicitly.
		return conditionFilter(inquiry, `(instr(?, json_each.value) > 0 OR json_each.value = '')`)

	default:
		return "", nil, &checker.UnknownCheckerTypeError{Kind: chk.Kind()}
	}
}

// conditionFilter builds the per-field JSON1 pushdown shared by the exact
// and fuzzy strategies. condition references json_each.value and takes the
// inquiry's field string as its single argument.
func conditionFilter(inquiry *policy.Inquiry, condition string) (string, []any, error) {
	fields := []struct {
		column string
		value  any
	}{
		{"subjects", inquiry.Subject},
		{"resources", inquiry.Resource},
		{"actions", inquiry.Action},
	}

	query := `SELECT document FROM warden_policies WHERE type = ?`
	args := []any{string(policy.TypeStringBased)}

	for _, f := range fields {
		s, ok := stringField(f.value)
		if !ok {
			// A non-string inquiry field cannot match any string-based
			// policy; the empty candidate set is exact, not an omission.
			return `SELECT document FROM warden_policies WHERE 0`, nil, nil
		}
		query += fmt.Sprintf(
			` AND EXISTS (SELECT 1 FROM json_each(json_extract(document, '$.%s')) WHERE %s)`,
			f.column, condition,
		)
		args = append(args, s)
	}

	return query + ` ORDER BY uid`, args, nil
}

func stringField(v any) (string, bool) {
	switch s := v.(type) {
	case nil:
		return "", true
	case string:
		return s, true
	default:
		return "", false
	}
}

func encode(p *policy.Policy) (typ, effect, doc string, err error) {
	if err := p.Validate(); err != nil {
		return "", "", "", err
	}
	derived, _ := p.DeriveType()

	data, err := json.Marshal(p)
	if err != nil {
		return "", "", "", err
	}

	eff := p.Effect
	if eff == "" {
		eff = policy.Deny
	}
	return string(derived), string(eff), string(data), nil
}

func decode(doc string) (*policy.Policy, error) {
	var p policy.Policy
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, fmt.Errorf("sqlite: decode policy document: %w", err)
	}
	return &p, nil
}

func collect(rows *sql.Rows) ([]*policy.Policy, error) {
	var out []*policy.Policy
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("sqlite: scan row: %w", err)
		}
		p, err := decode(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate rows: %w", err)
	}
	return out, nil
}
