// Package ecomschema creates and seeds the e-commerce schema in the
// provisioned PostgreSQL database.
package ecomschema

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Store runs DDL and seed statements against a single database.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

func NewStore(db *sql.DB, log *zap.Logger) *Store {
	return &Store{db: db, log: log}
}

// TableResult reports which tables a CreateTables run produced and which
// statements failed. Failed tables do not abort the remaining ones.
type TableResult struct {
	Created []string
	Errors  []error
}

// TableCount is how many tables CreateTables manages.
func TableCount() int {
	return len(tableOrder)
}

// CreateTables creates the nine e-commerce tables in dependency order,
// then the supporting indexes. All statements are IF NOT EXISTS, so a
// rerun against an existing schema is a no-op.
func (s *Store) CreateTables(ctx context.Context) (TableResult, error) {
	var res TableResult

	for _, name := range tableOrder {
		s.log.Info("creating table", zap.String("table", name))
		if _, err := s.db.ExecContext(ctx, tableDDL[name]); err != nil {
			s.log.Error("table creation failed", zap.String("table", name), zap.Error(err))
			res.Errors = append(res.Errors, errors.Wrapf(err, "creating table %s", name))
			continue
		}
		res.Created = append(res.Created, name)
	}

	for _, stmt := range indexDDL {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			s.log.Warn("index creation failed", zap.Error(err))
		}
	}

	if len(res.Errors) > 0 {
		return res, errors.Newf("%d of %d tables failed", len(res.Errors), len(tableOrder))
	}
	return res, nil
}

// CreateCustomTable runs a caller-provided CREATE TABLE statement,
// rewriting it to IF NOT EXISTS when the caller did not say so.
func (s *Store) CreateCustomTable(ctx context.Context, name, ddl string) error {
	stmt := ensureIfNotExists(name, ddl)
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return errors.Wrapf(err, "creating custom table %s", name)
	}
	s.log.Info("custom table created", zap.String("table", name))
	return nil
}

// ListTables returns the table names in the public schema.
func (s *Store) ListTables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT table_name FROM information_schema.tables
		 WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
		 ORDER BY table_name`)
	if err != nil {
		return nil, errors.Wrap(err, "listing tables")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "scanning table name")
		}
		names = append(names, name)
	}
	return names, errors.Wrap(rows.Err(), "listing tables")
}

// QueryRows runs an arbitrary fetching query and returns the rows as
// string slices, one per row, with the column names first.
func (s *Store) QueryRows(ctx context.Context, query string) ([]string, [][]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, errors.Wrap(err, "running query")
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, errors.Wrap(err, "reading columns")
	}

	var out [][]string
	for rows.Next() {
		raw := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, errors.Wrap(err, "scanning row")
		}
		rec := make([]string, len(cols))
		for i, v := range raw {
			rec[i] = v.String
		}
		out = append(out, rec)
	}
	return cols, out, errors.Wrap(rows.Err(), "running query")
}

// Exec runs a non-fetching statement.
func (s *Store) Exec(ctx context.Context, stmt string) error {
	_, err := s.db.ExecContext(ctx, stmt)
	return errors.Wrap(err, "executing statement")
}
