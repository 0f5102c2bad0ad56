package statement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentStore is the single access path to statement documents. Mutate and
// MutateByStorageRef run fn under a per-document write lock: fn sees the
// current row, and either the whole mutation commits or nothing does. Two
// concurrent webhook deliveries for the same document therefore serialize
// instead of computing jointly-incorrect results from the same prior state.
type DocumentStore interface {
	Create(ctx context.Context, doc *Document) error
	Get(ctx context.Context, id int64) (*Document, error)
	List(ctx context.Context, limit, offset int) ([]*Document, int, error)
	Mutate(ctx context.Context, id int64, fn func(*Document) error) (*Document, error)
	MutateByStorageRef(ctx context.Context, storageRef string, fn func(*Document) error) (*Document, error)
	StaleCorrections(ctx context.Context, before time.Time) ([]int64, error)
}

// PostgresDocumentStore persists documents in a single table; the failed
// transaction list and correction history live in jsonb columns and are
// always written together with the status in one UPDATE.
type PostgresDocumentStore struct {
	pool *pgxpool.Pool
}

func NewPostgresDocumentStore(pool *pgxpool.Pool) *PostgresDocumentStore {
	return &PostgresDocumentStore{pool: pool}
}

const documentColumns = `id, carrier_id, file_name, storage_ref, status, error_message,
	textract_job_id, json_output_key, csv_output_key, completion_message,
	total_transactions, successful_count, failed_transactions, correction_history,
	created_at, updated_at`

func (s *PostgresDocumentStore) Create(ctx context.Context, doc *Document) error {
	failedJSON, historyJSON, err := marshalLists(doc)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	err = s.pool.QueryRow(ctx, `
		INSERT INTO statement_documents
			(carrier_id, file_name, storage_ref, status, error_message,
			 textract_job_id, json_output_key, csv_output_key, completion_message,
			 total_transactions, successful_count, failed_transactions, correction_history,
			 created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		RETURNING id`,
		doc.CarrierID, doc.FileName, doc.StorageRef, doc.Status, doc.ErrorMessage,
		doc.TextractJobID, doc.JSONOutputKey, doc.CSVOutputKey, doc.CompletionMessage,
		doc.TotalTransactions, doc.SuccessfulCount, failedJSON, historyJSON,
		doc.CreatedAt, doc.UpdatedAt,
	).Scan(&doc.ID)
	if err != nil {
		return fmt.Errorf("insert document: %s", pgFriendlyMessage(err))
	}
	return nil
}

func (s *PostgresDocumentStore) Get(ctx context.Context, id int64) (*Document, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM statement_documents WHERE id = $1`, id)
	return scanDocument(row)
}

func (s *PostgresDocumentStore) List(ctx context.Context, limit, offset int) ([]*Document, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM statement_documents`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+documentColumns+` FROM statement_documents
		 ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]*Document, 0, limit)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, 0, err
		}
		docs = append(docs, doc)
	}
	return docs, total, rows.Err()
}

func (s *PostgresDocumentStore) Mutate(ctx context.Context, id int64, fn func(*Document) error) (*Document, error) {
	return s.mutate(ctx, `WHERE id = $1`, id, fn)
}

func (s *PostgresDocumentStore) MutateByStorageRef(ctx context.Context, storageRef string, fn func(*Document) error) (*Document, error) {
	return s.mutate(ctx, `WHERE storage_ref = $1`, storageRef, fn)
}

// mutate locks the row FOR UPDATE for the duration of validate-then-write.
// A failed fn rolls the transaction back and leaves the row untouched.
func (s *PostgresDocumentStore) mutate(ctx context.Context, where string, arg interface{}, fn func(*Document) error) (*Document, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM statement_documents `+where+` FOR UPDATE`, arg)
	doc, err := scanDocument(row)
	if err != nil {
		return nil, err
	}
	if err := fn(doc); err != nil {
		return nil, err
	}

	failedJSON, historyJSON, err := marshalLists(doc)
	if err != nil {
		return nil, err
	}
	doc.UpdatedAt = time.Now().UTC()
	_, err = tx.Exec(ctx, `
		UPDATE statement_documents SET
			status = $2, error_message = $3, textract_job_id = $4,
			json_output_key = $5, csv_output_key = $6, completion_message = $7,
			total_transactions = $8, successful_count = $9,
			failed_transactions = $10, correction_history = $11, updated_at = $12
		WHERE id = $1`,
		doc.ID, doc.Status, doc.ErrorMessage, doc.TextractJobID,
		doc.JSONOutputKey, doc.CSVOutputKey, doc.CompletionMessage,
		doc.TotalTransactions, doc.SuccessfulCount,
		failedJSON, historyJSON, doc.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update document: %s", pgFriendlyMessage(err))
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return doc, nil
}

func (s *PostgresDocumentStore) StaleCorrections(ctx context.Context, before time.Time) ([]int64, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id FROM statement_documents WHERE status = $1 AND updated_at < $2`,
		StatusCorrectionPending, before)
	if err != nil {
		return nil, fmt.Errorf("stale corrections: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (*Document, error) {
	var doc Document
	var failedJSON, historyJSON []byte
	err := row.Scan(
		&doc.ID, &doc.CarrierID, &doc.FileName, &doc.StorageRef, &doc.Status, &doc.ErrorMessage,
		&doc.TextractJobID, &doc.JSONOutputKey, &doc.CSVOutputKey, &doc.CompletionMessage,
		&doc.TotalTransactions, &doc.SuccessfulCount, &failedJSON, &historyJSON,
		&doc.CreatedAt, &doc.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan document: %w", err)
	}
	if len(failedJSON) > 0 {
		if err := json.Unmarshal(failedJSON, &doc.FailedTransactions); err != nil {
			return nil, fmt.Errorf("decode failed_transactions: %w", err)
		}
	}
	if len(historyJSON) > 0 {
		if err := json.Unmarshal(historyJSON, &doc.CorrectionHistory); err != nil {
			return nil, fmt.Errorf("decode correction_history: %w", err)
		}
	}
	return &doc, nil
}

func marshalLists(doc *Document) ([]byte, []byte, error) {
	if doc.FailedTransactions == nil {
		doc.FailedTransactions = []FailedTransaction{}
	}
	if doc.CorrectionHistory == nil {
		doc.CorrectionHistory = []CorrectionAttempt{}
	}
	failedJSON, err := json.Marshal(doc.FailedTransactions)
	if err != nil {
		return nil, nil, fmt.Errorf("encode failed_transactions: %w", err)
	}
	historyJSON, err := json.Marshal(doc.CorrectionHistory)
	if err != nil {
		return nil, nil, fmt.Errorf("encode correction_history: %w", err)
	}
	return failedJSON, historyJSON, nil
}

// pgFriendlyMessage maps common Postgres error codes to messages safe to
// surface to the review UI.
func pgFriendlyMessage(err error) string {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err.Error()
	}
	switch pgErr.Code {
	case "23505":
		if pgErr.ConstraintName == "uniq_storage_ref" {
			return "This statement file was already uploaded earlier. Please upload a different file."
		}
		return "A record with the same unique value already exists."
	case "23503":
		return "Some referenced data was not found (please refresh and try again)."
	case "23514":
		return "Some fields have invalid values. Please check and try again."
	default:
		return "Database error while processing the request. Please try again."
	}
}
