package repositories

import (
	"database/sql"
	"fmt"
)

// Document sequence kinds.
const (
	SequenceKindInvoice = "invoice"
	SequenceKindReceipt = "receipt"
)

// SequenceRepository hands out per-day document numbers atomically. The
// upsert-and-return makes concurrent finalizations safe, unlike counting
// same-day rows.
type SequenceRepository interface {
	// NextDocumentSequence returns the next sequence value for (kind, day),
	// where day is formatted YYYYMMDD.
	NextDocumentSequence(executor SQLExecutor, kind, day string) (int64, error)
}

type sequenceRepository struct {
	db *sql.DB
}

// NewSequenceRepository creates a new instance of SequenceRepository.
func NewSequenceRepository(db *sql.DB) SequenceRepository {
	return &sequenceRepository{db: db}
}

func (r *sequenceRepository) NextDocumentSequence(executor SQLExecutor, kind, day string) (int64, error) {
	var value int64
	query := `INSERT INTO doc_sequences (kind, day, value)
	          VALUES ($1, $2, 1)
	          ON CONFLICT (kind, day) DO UPDATE SET value = doc_sequences.value + 1
	          RETURNING value`
	err := executor.QueryRow(query, kind, day).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("%w: advancing %s sequence for day %s: %v", ErrDatabaseError, kind, day, err)
	}
	return value, nil
}
