package statement

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory DocumentStore for handler tests. Mutations run
// against a copy and only replace the stored document when fn succeeds,
// matching the rollback behavior of the Postgres store.
type memStore struct {
	mu     sync.Mutex
	nextID int64
	docs   map[int64]*Document
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[int64]*Document)}
}

func cloneDocument(doc *Document) *Document {
	out := *doc
	if doc.FailedTransactions != nil {
		out.FailedTransactions = make([]FailedTransaction, len(doc.FailedTransactions))
		copy(out.FailedTransactions, doc.FailedTransactions)
		for i, ft := range doc.FailedTransactions {
			if ft.OriginalData != nil {
				data := make(map[string]interface{}, len(ft.OriginalData))
				for k, v := range ft.OriginalData {
					data[k] = v
				}
				out.FailedTransactions[i].OriginalData = data
			}
		}
	}
	if doc.CorrectionHistory != nil {
		out.CorrectionHistory = make([]CorrectionAttempt, len(doc.CorrectionHistory))
		copy(out.CorrectionHistory, doc.CorrectionHistory)
	}
	return &out
}

func (m *memStore) Create(_ context.Context, doc *Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.docs {
		if existing.StorageRef == doc.StorageRef {
			return fmt.Errorf("insert document: This statement file was already uploaded earlier. Please upload a different file.")
		}
	}
	m.nextID++
	doc.ID = m.nextID
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if doc.FailedTransactions == nil {
		doc.FailedTransactions = []FailedTransaction{}
	}
	if doc.CorrectionHistory == nil {
		doc.CorrectionHistory = []CorrectionAttempt{}
	}
	m.docs[doc.ID] = cloneDocument(doc)
	return nil
}

func (m *memStore) Get(_ context.Context, id int64) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneDocument(doc), nil
}

func (m *memStore) List(_ context.Context, limit, offset int) ([]*Document, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0, len(m.docs))
	for id := range m.docs {
		ids = append(ids, id)
	}
	// newest first, ids are monotonic
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if ids[j] > ids[i] {
				ids[i], ids[j] = ids[j], ids[i]
			}
		}
	}
	docs := make([]*Document, 0, limit)
	for i, id := range ids {
		if i < offset {
			continue
		}
		if len(docs) >= limit {
			break
		}
		docs = append(docs, cloneDocument(m.docs[id]))
	}
	return docs, len(ids), nil
}

func (m *memStore) Mutate(_ context.Context, id int64, fn func(*Document) error) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return m.apply(stored, fn)
}

func (m *memStore) MutateByStorageRef(_ context.Context, storageRef string, fn func(*Document) error) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, stored := range m.docs {
		if stored.StorageRef == storageRef {
			return m.apply(stored, fn)
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) apply(stored *Document, fn func(*Document) error) (*Document, error) {
	working := cloneDocument(stored)
	if err := fn(working); err != nil {
		return nil, err
	}
	working.UpdatedAt = time.Now().UTC()
	m.docs[working.ID] = cloneDocument(working)
	return working, nil
}

func (m *memStore) StaleCorrections(_ context.Context, before time.Time) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []int64
	for id, doc := range m.docs {
		if doc.Status == StatusCorrectionPending && doc.UpdatedAt.Before(before) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func mustCreate(t *testing.T, store *memStore, doc *Document) *Document {
	t.Helper()
	require.NoError(t, store.Create(context.Background(), doc))
	return doc
}

func TestMemStoreMutateRollsBackOnError(t *testing.T) {
	store := newMemStore()
	doc := mustCreate(t, store, &Document{
		CarrierID:  "carrier-1",
		StorageRef: "uploads/carrier-1/a/file.pdf",
		Status:     StatusReviewPending,
	})

	_, err := store.Mutate(context.Background(), doc.ID, func(d *Document) error {
		d.Status = StatusCompleted
		return fmt.Errorf("boom")
	})
	require.Error(t, err)

	got, err := store.Get(context.Background(), doc.ID)
	require.NoError(t, err)
	require.Equal(t, StatusReviewPending, got.Status)
}

// Two callback deliveries for the same document land concurrently. The store
// serializes them, so both rounds reconcile against committed state and the
// count invariant holds at the end.
func TestConcurrentCorrectionDeliveries(t *testing.T) {
	store := newMemStore()
	doc := mustCreate(t, store, &Document{
		CarrierID:         "carrier-1",
		StorageRef:        "uploads/carrier-1/a/file.pdf",
		Status:            StatusCompletedWithErrors,
		TotalTransactions: 10,
		SuccessfulCount:   7,
		FailedTransactions: []FailedTransaction{
			{ID: "id-1", PolicyNumber: "P-1"},
			{ID: "id-2", PolicyNumber: "P-2"},
			{ID: "id-3", PolicyNumber: "P-3"},
		},
	})

	rounds := []*CorrectionNotification{
		{DocumentID: doc.ID, StorageRef: doc.StorageRef, TotalProcessed: 1, SuccessCount: 1,
			Results: CorrectionResults{Successful: []TransactionResult{{TransactionID: "id-1", PolicyNumber: "P-1"}}}},
		{DocumentID: doc.ID, StorageRef: doc.StorageRef, TotalProcessed: 1, SuccessCount: 1,
			Results: CorrectionResults{Successful: []TransactionResult{{TransactionID: "id-2", PolicyNumber: "P-2"}}}},
	}

	var wg sync.WaitGroup
	for _, n := range rounds {
		wg.Add(1)
		go func(n *CorrectionNotification) {
			defer wg.Done()
			_, err := store.Mutate(context.Background(), n.DocumentID, func(d *Document) error {
				return ApplyCorrection(d, n, time.Now().UTC())
			})
			assert.NoError(t, err)
		}(n)
	}
	wg.Wait()

	got, err := store.Get(context.Background(), doc.ID)
	require.NoError(t, err)
	require.Len(t, got.FailedTransactions, 1)
	require.Equal(t, "id-3", got.FailedTransactions[0].ID)
	require.Equal(t, 9, got.SuccessfulCount)
	require.NoError(t, ValidateCounts(got.SuccessfulCount, len(got.FailedTransactions), got.TotalTransactions))
	require.Len(t, got.CorrectionHistory, 2)
}

func TestMemStoreNotFound(t *testing.T) {
	store := newMemStore()
	_, err := store.Get(context.Background(), 42)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = store.MutateByStorageRef(context.Background(), "missing", func(*Document) error { return nil })
	require.ErrorIs(t, err, ErrNotFound)
}
