package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/medisure/go-coverage/internal/domain/medication"
)

func TestStorePutAndGet(t *testing.T) {
	store := NewStore()

	rec, err := store.Put(context.Background(), medication.Record{
		Code: "M1234", Name: "Aspirin1", CoveragePercentage: 80, Deductible: 10, BasePrice: 100,
	})
	require.NoError(t, err)
	require.False(t, rec.CreatedAt.IsZero())
	require.Equal(t, rec.CreatedAt, rec.UpdatedAt)

	got, err := store.GetByCode(context.Background(), "M1234")
	require.NoError(t, err)
	require.Equal(t, rec, got)

	got, err = store.GetByCode(context.Background(), "m1234")
	require.NoError(t, err)
	require.Equal(t, "M1234", got.Code)
}

func TestStorePut_DuplicateCode(t *testing.T) {
	store := NewStore()
	rec := medication.Record{Code: "M1234", Name: "Aspirin1", CoveragePercentage: 80, Deductible: 10, BasePrice: 100}

	_, err := store.Put(context.Background(), rec)
	require.NoError(t, err)

	_, err = store.Put(context.Background(), rec)
	require.Equal(t, medication.CodeConflict, medication.CodeOf(err))
}

func TestStorePut_ConcurrentSameCode(t *testing.T) {
	store := NewStore()
	rec := medication.Record{Code: "M1234", Name: "Aspirin1", CoveragePercentage: 80, Deductible: 10, BasePrice: 100}

	const writers = 32
	var wins, conflicts int64
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			_, err := store.Put(context.Background(), rec)
			switch {
			case err == nil:
				atomic.AddInt64(&wins, 1)
			case medication.CodeOf(err) == medication.CodeConflict:
				atomic.AddInt64(&conflicts, 1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int64(1), atomic.LoadInt64(&wins))
	require.Equal(t, int64(writers-1), atomic.LoadInt64(&conflicts))

	got, err := store.GetByCode(context.Background(), "M1234")
	require.NoError(t, err)
	require.Equal(t, "Aspirin1", got.Name)
}

func TestStoreUpdate(t *testing.T) {
	store := NewStore()
	rec := medication.Record{Code: "M1234", Name: "Aspirin1", CoveragePercentage: 80, Deductible: 10, BasePrice: 100}
	created, err := store.Put(context.Background(), rec)
	require.NoError(t, err)

	rec.CoveragePercentage = 60
	updated, err := store.Update(context.Background(), rec)
	require.NoError(t, err)
	require.Equal(t, 60.0, updated.CoveragePercentage)
	require.Equal(t, created.CreatedAt, updated.CreatedAt)

	_, err = store.Update(context.Background(), medication.Record{Code: "M9999", Name: "x"})
	require.Equal(t, medication.CodeNotFound, medication.CodeOf(err))
}

func TestStoreDelete_ReindexesRemaining(t *testing.T) {
	store := NewStore()
	for _, rec := range []medication.Record{
		{Code: "M1", Name: "A", CoveragePercentage: 1, BasePrice: 1},
		{Code: "M2", Name: "B", CoveragePercentage: 2, BasePrice: 1},
		{Code: "M3", Name: "C", CoveragePercentage: 3, BasePrice: 1},
	} {
		_, err := store.Put(context.Background(), rec)
		require.NoError(t, err)
	}

	deleted, err := store.Delete(context.Background(), "M2")
	require.NoError(t, err)
	require.Equal(t, "M2", deleted.Code)

	_, err = store.GetByCode(context.Background(), "M2")
	require.Equal(t, medication.CodeNotFound, medication.CodeOf(err))

	// Records after the removed index still resolve.
	got, err := store.GetByCode(context.Background(), "M3")
	require.NoError(t, err)
	require.Equal(t, "C", got.Name)
}

func TestStoreFindByName(t *testing.T) {
	store := NewStore()
	for _, rec := range []medication.Record{
		{Code: "M1", Name: "Ibuprofen", CoveragePercentage: 1, BasePrice: 1},
		{Code: "M2", Name: "Aspirin", CoveragePercentage: 2, BasePrice: 1},
		{Code: "M3", Name: "ibuprofen", CoveragePercentage: 3, BasePrice: 1},
	} {
		_, err := store.Put(context.Background(), rec)
		require.NoError(t, err)
	}

	matches, err := store.FindByName(context.Background(), "IBUPROFEN")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	require.Equal(t, "M1", matches[0].Code)
	require.Equal(t, "M3", matches[1].Code)

	matches, err = store.FindByName(context.Background(), "missing")
	require.NoError(t, err)
	require.Empty(t, matches)
}
