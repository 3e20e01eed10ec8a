package inmemory

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-memdb"
	"github.com/library-register/cmd/api/record"
)

const acquisitionsTable = "acquisitions"

type InMemoryStore struct {
	db *memdb.MemDB
}

func NewInMemoryStore() (*InMemoryStore, error) {
	// Define the schema
	schema := &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			acquisitionsTable: {
				Name: acquisitionsTable,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "AcquisitionNumber"},
					},
				},
			},
		},
	}

	if err := schema.Validate(); err != nil {
		return nil, record.NewErrWithCause(record.ErrResponseSchemaUpgrade, err)
	}

	db, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, record.NewErrWithCause(record.ErrResponseSchemaUpgrade, fmt.Errorf("failed to initialize in-memory database: %w", err))
	}
	return &InMemoryStore{db: db}, nil
}

func (store *InMemoryStore) AddRecord(ctx context.Context, r record.AcquisitionRecord) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("adding record on db: %w", err)
	}
	if r.AcquisitionNumber == "" {
		return fmt.Errorf("adding record on db: %w", record.ErrMissingKey)
	}

	txn := store.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(acquisitionsTable, "id", r.AcquisitionNumber)
	if err != nil {
		return fmt.Errorf("adding record on db: %w", err)
	}
	if raw != nil {
		return fmt.Errorf("adding record on db: %w", record.ErrResponseDuplicateKey)
	}

	if err := txn.Insert(acquisitionsTable, r.Clone()); err != nil {
		return fmt.Errorf("adding record on db: %w", err)
	}

	txn.Commit()
	return nil
}

func (store *InMemoryStore) PutRecord(ctx context.Context, r record.AcquisitionRecord) error {
	return store.PutRecords(ctx, []record.AcquisitionRecord{r})
}

/* Upserts all the records in one write transaction. Nothing is kept if any of them fails. */
func (store *InMemoryStore) PutRecords(ctx context.Context, rs []record.AcquisitionRecord) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("putting records on db: %w", err)
	}

	txn := store.db.Txn(true)
	defer txn.Abort()

	for _, r := range rs {
		if r.AcquisitionNumber == "" {
			return fmt.Errorf("putting records on db: %w", record.ErrMissingKey)
		}
		if err := txn.Insert(acquisitionsTable, r.Clone()); err != nil {
			return fmt.Errorf("putting record %q on db: %w", r.AcquisitionNumber, err)
		}
	}

	txn.Commit()
	return nil
}

func (store *InMemoryStore) DeleteRecord(ctx context.Context, acquisitionNumber string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("deleting record from db: %w", err)
	}

	txn := store.db.Txn(true)
	defer txn.Abort()

	// An absent key deletes nothing, which is fine.
	if _, err := txn.DeleteAll(acquisitionsTable, "id", acquisitionNumber); err != nil {
		return fmt.Errorf("deleting record from db: %w", err)
	}

	txn.Commit()
	return nil
}

func (store *InMemoryStore) GetRecord(ctx context.Context, acquisitionNumber string) (record.AcquisitionRecord, error) {
	if err := ctx.Err(); err != nil {
		return record.AcquisitionRecord{}, fmt.Errorf("searching by acquisition number: %w", err)
	}

	txn := store.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(acquisitionsTable, "id", acquisitionNumber)
	if err != nil {
		return record.AcquisitionRecord{}, fmt.Errorf("searching by acquisition number: %w", err)
	}
	if raw == nil {
		return record.AcquisitionRecord{}, fmt.Errorf("searching by acquisition number: %w", record.ErrResponseRecordNotFound)
	}

	return raw.(record.AcquisitionRecord).Clone(), nil
}

func (store *InMemoryStore) ListRecords(ctx context.Context) ([]record.AcquisitionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("listing records from db: %w", err)
	}

	txn := store.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(acquisitionsTable, "id")
	if err != nil {
		return nil, fmt.Errorf("listing records from db: %w", err)
	}

	records := []record.AcquisitionRecord{}
	for obj := it.Next(); obj != nil; obj = it.Next() {
		records = append(records, obj.(record.AcquisitionRecord).Clone())
	}
	return records, nil
}
