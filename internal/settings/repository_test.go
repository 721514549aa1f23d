package settings

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/gray-logic-toolkit/internal/remap"
)

func TestSQLiteRepository_SaveGet(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	ctx := context.Background()

	rec := Record{
		ID:        "counter.total",
		Value:     1000,
		Wire:      remap.Of(uint64(math.MaxUint64)),
		Source:    SourceMQTT,
		UpdatedAt: fixedTime,
	}
	require.NoError(t, repo.Save(ctx, rec))

	got, err := repo.Get(ctx, "counter.total")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, got.Value)
	assert.True(t, got.Wire.Equal(rec.Wire), "uint64 max must survive storage, got %v", got.Wire)
	assert.Equal(t, SourceMQTT, got.Source)
	assert.True(t, got.UpdatedAt.Equal(fixedTime))
}

func TestSQLiteRepository_SaveUpserts(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, Record{ID: "a", Value: 1, Wire: remap.Of(int16(-5))}))
	require.NoError(t, repo.Save(ctx, Record{ID: "a", Value: 2, Wire: remap.Of(float32(2.5)), Source: SourceCLI}))

	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.Value)
	assert.Equal(t, remap.Float32, got.Wire.Kind())
	assert.Equal(t, float32(2.5), remap.As[float32](got.Wire))
	assert.Equal(t, SourceCLI, got.Source)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSQLiteRepository_Defaults(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	ctx := context.Background()

	before := time.Now().Add(-time.Second)
	require.NoError(t, repo.Save(ctx, Record{ID: "a", Value: 1, Wire: remap.Of(uint8(1))}))

	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, SourceAPI, got.Source)
	assert.True(t, got.UpdatedAt.After(before))
}

func TestSQLiteRepository_Validation(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	ctx := context.Background()

	assert.ErrorIs(t, repo.Save(ctx, Record{Value: 1, Wire: remap.Of(uint8(1))}), ErrInvalidValue)
	assert.ErrorIs(t, repo.Save(ctx, Record{ID: "a", Value: 1}), ErrInvalidValue)
}

func TestSQLiteRepository_NotFound(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	ctx := context.Background()

	_, err := repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrSettingNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "missing"), ErrSettingNotFound)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestSQLiteRepository_ListAndDelete(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	ctx := context.Background()

	for _, id := range []string{"b", "a", "c"} {
		require.NoError(t, repo.Save(ctx, Record{ID: id, Value: 1, Wire: remap.Of(int8(-128))}))
	}
	require.NoError(t, repo.Delete(ctx, "b"))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "c", list[1].ID)
	assert.True(t, list[0].Wire.IsMin())
}
