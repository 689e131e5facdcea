package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type teamView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func TestGetOrLoad_DeduplicatesConcurrentLoads(t *testing.T) {
	t.Parallel()

	loader := NewLoader(NewMemoryStore(), time.Minute, "test")
	var calls atomic.Int32

	load := func(context.Context) (teamView, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return teamView{ID: 2184, Name: "Al-Hilal"}, nil
	}

	const workers = 16
	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			got, err := GetOrLoad(context.Background(), loader, loader.Key("team", "2184"), load)
			if err != nil {
				errs <- err
				return
			}
			if got.ID != 2184 {
				errs <- errors.New("unexpected value")
			}
		}()
	}
	close(start)
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("unexpected error: %v", err)
	}

	assert.Equal(t, int32(1), calls.Load())
}

func TestGetOrLoad_ServesCachedValue(t *testing.T) {
	t.Parallel()

	loader := NewLoader(NewMemoryStore(), time.Minute, "test")
	var calls atomic.Int32
	load := func(context.Context) ([]teamView, error) {
		calls.Add(1)
		return []teamView{{ID: 1, Name: "A"}}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := GetOrLoad(context.Background(), loader, "k", load)
		require.NoError(t, err)
		require.Len(t, got, 1)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetOrLoad_LoadErrorNotCached(t *testing.T) {
	t.Parallel()

	loader := NewLoader(NewMemoryStore(), time.Minute, "test")
	boom := errors.New("db down")
	_, err := GetOrLoad(context.Background(), loader, "k", func(context.Context) (int, error) { return 0, boom })
	require.ErrorIs(t, err, boom)

	got, err := GetOrLoad(context.Background(), loader, "k", func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestMemoryStore_Expiry(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(context.Background(), "a:1", []byte("x"), time.Second))
	_, err := store.Get(context.Background(), "a:1")
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	_, err = store.Get(context.Background(), "a:1")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryStore_DeletePrefix(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "q:fixtures:1", []byte("1"), 0))
	require.NoError(t, store.Set(ctx, "q:teams:1", []byte("2"), 0))
	require.NoError(t, store.Set(ctx, "other:1", []byte("3"), 0))

	require.NoError(t, store.DeletePrefix(ctx, "q:"))

	_, err := store.Get(ctx, "q:fixtures:1")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = store.Get(ctx, "other:1")
	assert.NoError(t, err)
}

func TestRedisStore_GetMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db)

	mock.ExpectGet("q:teams").RedisNil()
	_, err := store.Get(context.Background(), "q:teams")
	assert.ErrorIs(t, err, ErrMiss)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_ReadThrough(t *testing.T) {
	db, mock := redismock.NewClientMock()
	loader := NewLoader(NewRedisStore(db), 5*time.Minute, "q")

	key := loader.Key("teams", "all")
	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, []byte(`[{"id":1,"name":"A"}]`), 5*time.Minute).SetVal("OK")

	got, err := GetOrLoad(context.Background(), loader, key, func(context.Context) ([]teamView, error) {
		return []teamView{{ID: 1, Name: "A"}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []teamView{{ID: 1, Name: "A"}}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_DeletePrefix(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db)

	mock.ExpectScan(0, "q:*", 200).SetVal([]string{"q:a", "q:b"}, 0)
	mock.ExpectDel("q:a", "q:b").SetVal(2)

	require.NoError(t, store.DeletePrefix(context.Background(), "q:"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoader_Key(t *testing.T) {
	loader := NewLoader(nil, 0, "")
	assert.Equal(t, "quantfoot:fixtures:date:2026-01_01", loader.Key("fixtures", "date", "2026-01:01"))
}
