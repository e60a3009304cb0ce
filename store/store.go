package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/remiges-tech/amlsynth/synth"
	"github.com/remiges-tech/logharbour/logharbour"
)

// Store persists datasets into the raw_* tables of a Postgres database.
type Store struct {
	pool   *pgxpool.Pool
	logger *logharbour.Logger
}

// Open connects to databaseURL and checks the connection.
func Open(ctx context.Context, databaseURL string, logger *logharbour.Logger) (*Store, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database url cannot be empty")
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return New(pool, logger), nil
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool, logger *logharbour.Logger) *Store {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Store{pool: pool, logger: logger.WithModule("store")}
}

// Close releases every pooled connection.
func (s *Store) Close() {
	s.pool.Close()
}

// Migrate creates or upgrades the raw_* tables.
func (s *Store) Migrate(ctx context.Context) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()
	if err := MigrateDatabase(ctx, conn.Conn()); err != nil {
		s.logger.Error(err).LogActivity("Migration failed", nil)
		return err
	}
	s.logger.Debug0().LogActivity("Schema migrated", nil)
	return nil
}

// LoadResult counts the rows a load wrote per table.
type LoadResult struct {
	Customers    int64
	Accounts     int64
	Merchants    int64
	Transactions int64
}

// LoadDataset replaces the contents of the raw_* tables with ds. The load
// runs in a single transaction: either every table holds the new dataset or
// the previous contents are kept.
func (s *Store) LoadDataset(ctx context.Context, ds *synth.Dataset) (LoadResult, error) {
	var res LoadResult

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return res, fmt.Errorf("begin load: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "TRUNCATE raw_transactions, raw_accounts, raw_merchants, raw_customers"); err != nil {
		return res, fmt.Errorf("truncate raw tables: %w", err)
	}

	if res.Customers, err = copyRows(ctx, tx, "raw_customers", customerColumns, ds.Customers, customerRow); err != nil {
		return res, err
	}
	if res.Accounts, err = copyRows(ctx, tx, "raw_accounts", accountColumns, ds.Accounts, accountRow); err != nil {
		return res, err
	}
	if res.Merchants, err = copyRows(ctx, tx, "raw_merchants", merchantColumns, ds.Merchants, merchantRow); err != nil {
		return res, err
	}
	if res.Transactions, err = copyRows(ctx, tx, "raw_transactions", transactionColumns, ds.Transactions, transactionRow); err != nil {
		return res, err
	}

	if err := tx.Commit(ctx); err != nil {
		return LoadResult{}, fmt.Errorf("commit load: %w", err)
	}
	s.logger.Info().LogActivity("Dataset loaded", map[string]any{
		"customers":    res.Customers,
		"accounts":     res.Accounts,
		"merchants":    res.Merchants,
		"transactions": res.Transactions,
	})
	return res, nil
}

func copyRows[T any](ctx context.Context, tx pgx.Tx, table string, columns []string, rows []T, row func(T) []any) (int64, error) {
	n, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
		return row(rows[i]), nil
	}))
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", table, err)
	}
	return n, nil
}

// ExecSQL runs a script of one or more statements through the simple query
// protocol. Statements of a script without explicit transaction control run
// in one implicit transaction.
func (s *Store) ExecSQL(ctx context.Context, sql string) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()
	_, err = conn.Conn().PgConn().Exec(ctx, sql).ReadAll()
	return err
}

// Count returns the number of rows in one of the raw_* tables.
func (s *Store) Count(ctx context.Context, table string) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, "SELECT count(*) FROM "+pgx.Identifier{table}.Sanitize()).Scan(&n)
	return n, err
}
