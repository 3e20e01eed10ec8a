package database

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/library-register/cmd/api/record"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// SchemaVersion is the migration version the store code expects.
const SchemaVersion uint = 1

//go:embed migrations/*.sql
var migrations embed.FS

type Config struct {
	Driver string
	DSN    string
}

type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db     *sql.DB
	driver string
}

/* Opens the database described by cfg and checks it answers. */
func Open(ctx context.Context, cfg Config) (*Store, error) {
	switch cfg.Driver {
	case DriverSQLite:
		if err := ensureDir(cfg.DSN); err != nil {
			return nil, record.NewErrWithCause(record.ErrResponseStorageUnavailable, fmt.Errorf("connecting to db: %w", err))
		}
	case DriverPostgres:
	default:
		return nil, record.NewErrWithCause(record.ErrResponseStorageUnavailable, fmt.Errorf("connecting to db: unknown driver %q", cfg.Driver))
	}

	sqlDB, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, record.NewErrWithCause(record.ErrResponseStorageUnavailable, fmt.Errorf("connecting to db, openning: %w", err))
	}
	if cfg.Driver == DriverSQLite {
		// One writer at a time; sqlite would answer SQLITE_BUSY otherwise.
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, record.NewErrWithCause(record.ErrResponseStorageUnavailable, fmt.Errorf("connecting to db, pingging: %w", err))
	}

	slog.Info("connected to db", "driver", cfg.Driver)
	return &Store{db: sqlDB, driver: cfg.Driver}, nil
}

func ensureDir(dsn string) error {
	if dsn == "" || dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	dir := filepath.Dir(dsn)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (store *Store) Close() error {
	return store.db.Close()
}

/* Brings the schema up to SchemaVersion. A store already at that version is left untouched. */
func MigrationUp(store *Store) error {
	var (
		driver migratedb.Driver
		err    error
	)
	switch store.driver {
	case DriverPostgres:
		driver, err = postgres.WithInstance(store.db, &postgres.Config{})
	default:
		driver, err = sqlite.WithInstance(store.db, &sqlite.Config{})
	}
	if err != nil {
		return record.NewErrWithCause(record.ErrResponseSchemaUpgrade, fmt.Errorf("migrating up: %w", err))
	}

	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return record.NewErrWithCause(record.ErrResponseSchemaUpgrade, fmt.Errorf("migrating up: %w", err))
	}

	// m.Close is not called: it would close the shared *sql.DB.
	m, err := migrate.NewWithInstance("iofs", src, store.driver, driver)
	if err != nil {
		return record.NewErrWithCause(record.ErrResponseSchemaUpgrade, fmt.Errorf("migrating up: %w", err))
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return record.NewErrWithCause(record.ErrResponseSchemaUpgrade, fmt.Errorf("migrating up: %w", err))
	}

	version, dirty, err := m.Version()
	if err != nil {
		return record.NewErrWithCause(record.ErrResponseSchemaUpgrade, fmt.Errorf("reading schema version: %w", err))
	}
	if dirty || version != SchemaVersion {
		return record.NewErrWithCause(record.ErrResponseSchemaUpgrade, fmt.Errorf("schema at version %d (dirty=%v), want %d", version, dirty, SchemaVersion))
	}
	return nil
}

const recordColumns = `acquisition_number, date_entry, class_number, book_title, publisher, publication_date, pages, price,
	medium, date_return, notes, student_name, student_class, borrow_date, due_date, extra`

// Queries are written with ? placeholders; postgres wants $n.
func (store *Store) rebind(query string) string {
	if store.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func recordArgs(r record.AcquisitionRecord) ([]any, error) {
	extra := "{}"
	if len(r.Extra) > 0 {
		data, err := json.Marshal(r.Extra)
		if err != nil {
			return nil, fmt.Errorf("encoding extra members: %w", err)
		}
		extra = string(data)
	}
	return []any{
		r.AcquisitionNumber, r.DateEntry, r.ClassNumber, r.BookTitle, r.Publisher, r.PublicationDate, r.Pages, r.Price,
		r.Medium, r.DateReturn, r.Notes, r.StudentName, r.StudentClass, r.BorrowDate, r.DueDate, extra,
	}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (record.AcquisitionRecord, error) {
	var r record.AcquisitionRecord
	var extra string
	err := row.Scan(&r.AcquisitionNumber, &r.DateEntry, &r.ClassNumber, &r.BookTitle, &r.Publisher, &r.PublicationDate, &r.Pages, &r.Price,
		&r.Medium, &r.DateReturn, &r.Notes, &r.StudentName, &r.StudentClass, &r.BorrowDate, &r.DueDate, &extra)
	if err != nil {
		return record.AcquisitionRecord{}, err
	}
	if extra != "" && extra != "{}" {
		if err := json.Unmarshal([]byte(extra), &r.Extra); err != nil {
			return record.AcquisitionRecord{}, fmt.Errorf("decoding extra members: %w", err)
		}
	}
	return r, nil
}

/* Inserts a new record. An acquisition number already stored is a DuplicateKey error. */
func (store *Store) AddRecord(ctx context.Context, r record.AcquisitionRecord) error {
	if r.AcquisitionNumber == "" {
		return fmt.Errorf("adding record on db: %w", record.ErrMissingKey)
	}
	args, err := recordArgs(r)
	if err != nil {
		return fmt.Errorf("adding record on db: %w", err)
	}

	sqlStatement := store.rebind(`
	INSERT INTO acquisitions (` + recordColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (acquisition_number) DO NOTHING`)
	res, err := store.db.ExecContext(ctx, sqlStatement, args...)
	if err != nil {
		return fmt.Errorf("adding record on db: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("adding record on db: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("adding record on db: %w", record.ErrResponseDuplicateKey)
	}
	return nil
}

func (store *Store) putRecord(ctx context.Context, exc DBTX, r record.AcquisitionRecord) error {
	if r.AcquisitionNumber == "" {
		return record.ErrMissingKey
	}
	args, err := recordArgs(r)
	if err != nil {
		return err
	}

	sqlStatement := store.rebind(`
	INSERT INTO acquisitions (` + recordColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (acquisition_number) DO UPDATE SET
	date_entry = excluded.date_entry, class_number = excluded.class_number, book_title = excluded.book_title,
	publisher = excluded.publisher, publication_date = excluded.publication_date, pages = excluded.pages,
	price = excluded.price, medium = excluded.medium, date_return = excluded.date_return, notes = excluded.notes,
	student_name = excluded.student_name, student_class = excluded.student_class, borrow_date = excluded.borrow_date,
	due_date = excluded.due_date, extra = excluded.extra`)
	_, err = exc.ExecContext(ctx, sqlStatement, args...)
	return err
}

/* Stores the record, replacing the one with the same acquisition number if present. */
func (store *Store) PutRecord(ctx context.Context, r record.AcquisitionRecord) error {
	if err := store.putRecord(ctx, store.db, r); err != nil {
		return fmt.Errorf("putting record on db: %w", err)
	}
	return nil
}

/* Upserts all the records inside one transaction. */
func (store *Store) PutRecords(ctx context.Context, rs []record.AcquisitionRecord) error {
	tx, err := store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, r := range rs {
		if err := store.putRecord(ctx, tx, r); err != nil {
			return fmt.Errorf("putting record %q on db: %w", r.AcquisitionNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (store *Store) DeleteRecord(ctx context.Context, acquisitionNumber string) error {
	sqlStatement := store.rebind(`DELETE FROM acquisitions WHERE acquisition_number = ?;`)
	_, err := store.db.ExecContext(ctx, sqlStatement, acquisitionNumber)
	if err != nil {
		return fmt.Errorf("deleting record from db: %w", err)
	}
	return nil
}

/* Searches a record by acquisition number and returns it if succeed. */
func (store *Store) GetRecord(ctx context.Context, acquisitionNumber string) (record.AcquisitionRecord, error) {
	sqlStatement := store.rebind(`SELECT ` + recordColumns + `
	FROM acquisitions
	WHERE acquisition_number = ?;`)
	r, err := scanRecord(store.db.QueryRowContext(ctx, sqlStatement, acquisitionNumber))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return record.AcquisitionRecord{}, fmt.Errorf("searching by acquisition number: %w", record.ErrResponseRecordNotFound)
		default:
			return record.AcquisitionRecord{}, fmt.Errorf("searching by acquisition number: %w", err)
		}
	}
	return r, nil
}

/* Returns every stored record ordered by acquisition number. */
func (store *Store) ListRecords(ctx context.Context) ([]record.AcquisitionRecord, error) {
	sqlStatement := `SELECT ` + recordColumns + `
	FROM acquisitions
	ORDER BY acquisition_number;`
	rows, err := store.db.QueryContext(ctx, sqlStatement)
	if err != nil {
		return nil, fmt.Errorf("listing records from db: %w", err)
	}
	defer rows.Close()

	records := []record.AcquisitionRecord{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("listing records from db: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing records from db: %w", err)
	}
	return records, nil
}
