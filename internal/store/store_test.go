package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingBackend records Put calls and can be told to fail.
type countingBackend struct {
	*MemoryBackend

	mu      sync.Mutex
	puts    int
	failPut error
	failGet error
}

func newCountingBackend() *countingBackend {
	return &countingBackend{MemoryBackend: NewMemoryBackend()}
}

func (b *countingBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b.mu.Lock()
	err := b.failGet
	b.mu.Unlock()
	if err != nil {
		return nil, false, err
	}
	return b.MemoryBackend.Get(ctx, key)
}

func (b *countingBackend) Put(ctx context.Context, key string, value []byte) error {
	b.mu.Lock()
	b.puts++
	err := b.failPut
	b.mu.Unlock()
	if err != nil {
		return err
	}
	return b.MemoryBackend.Put(ctx, key, value)
}

func (b *countingBackend) putCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.puts
}

type doc struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

func TestSave_CoalescesRapidWrites(t *testing.T) {
	t.Parallel()

	b := newCountingBackend()
	s := New(b, WithDebounce(30*time.Millisecond))

	for i := 0; i < 10; i++ {
		require.NoError(t, s.Save("k", doc{Name: "v", Items: make([]string, i)}))
	}
	assert.Equal(t, 0, b.putCount(), "nothing is written inside the window")

	require.Eventually(t, func() bool { return b.putCount() == 1 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, b.putCount())

	got, ok := Load[doc](context.Background(), s, "k")
	require.True(t, ok)
	assert.Len(t, got.Items, 9)
}

func TestSave_RoundTripAfterFlush(t *testing.T) {
	t.Parallel()

	b := NewMemoryBackend()
	s := New(b, WithDebounce(time.Hour))

	want := doc{Name: "dashboard", Items: []string{"a", "b"}}
	require.NoError(t, s.Save("k", want))
	require.Equal(t, 1, s.Pending())
	require.NoError(t, s.Flush(context.Background()))
	require.Equal(t, 0, s.Pending())

	// A fresh adapter over the same backend sees the value.
	got, ok := Load[doc](context.Background(), New(b), "k")
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestLoad_ReturnsPendingValue(t *testing.T) {
	t.Parallel()

	s := New(NewMemoryBackend(), WithDebounce(time.Hour))
	require.NoError(t, s.Save("k", doc{Name: "pending"}))

	got, ok := Load[doc](context.Background(), s, "k")
	require.True(t, ok)
	assert.Equal(t, "pending", got.Name)
}

func TestLoad_SnapshotIsTakenAtSave(t *testing.T) {
	t.Parallel()

	s := New(NewMemoryBackend(), WithDebounce(time.Hour))
	v := doc{Items: []string{"a"}}
	require.NoError(t, s.Save("k", v))
	v.Items[0] = "mutated"

	got, _ := Load[doc](context.Background(), s, "k")
	assert.Equal(t, []string{"a"}, got.Items)
}

func TestLoad_MissingAndCorrupt(t *testing.T) {
	t.Parallel()

	b := NewMemoryBackend()
	s := New(b)
	ctx := context.Background()

	_, ok := Load[doc](ctx, s, "missing")
	assert.False(t, ok)

	require.NoError(t, b.Put(ctx, "bad", []byte("{not json")))
	got, ok := Load[doc](ctx, s, "bad")
	assert.False(t, ok)
	assert.Equal(t, doc{}, got)
}

func TestLoad_ReadErrorIsAbsent(t *testing.T) {
	t.Parallel()

	b := newCountingBackend()
	b.failGet = errors.New("disk on fire")
	_, ok := Load[doc](context.Background(), New(b), "k")
	assert.False(t, ok)
}

func TestLoadInto_KeepsDefaultsForMissingFields(t *testing.T) {
	t.Parallel()

	b := NewMemoryBackend()
	ctx := context.Background()
	require.NoError(t, b.Put(ctx, "k", []byte(`{"name":"stored"}`)))

	dst := doc{Name: "default", Items: []string{"x"}}
	require.True(t, New(b).LoadInto(ctx, "k", &dst))
	assert.Equal(t, doc{Name: "stored", Items: []string{"x"}}, dst)
}

func TestSave_WriteFailureIsReportedNotReturned(t *testing.T) {
	t.Parallel()

	b := newCountingBackend()
	b.failPut = errors.New("quota exceeded")

	var (
		mu     sync.Mutex
		gotKey string
	)
	s := New(b,
		WithDebounce(5*time.Millisecond),
		WithWriteErrorHandler(func(key string, err error) {
			mu.Lock()
			defer mu.Unlock()
			gotKey = key
		}),
	)

	require.NoError(t, s.Save("k", doc{Name: "x"}))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return gotKey == "k"
	}, 2*time.Second, 5*time.Millisecond)

	slow := New(b, WithDebounce(time.Hour))
	require.NoError(t, slow.Save("k", doc{Name: "y"}))
	require.Error(t, slow.Flush(context.Background()))
}

func TestSave_UnmarshalableValue(t *testing.T) {
	t.Parallel()

	s := New(NewMemoryBackend())
	require.Error(t, s.Save("k", make(chan int)))
	assert.Equal(t, 0, s.Pending())
}

func TestSaveNow_ReplacesPending(t *testing.T) {
	t.Parallel()

	b := newCountingBackend()
	s := New(b, WithDebounce(20*time.Millisecond))
	ctx := context.Background()

	require.NoError(t, s.Save("k", doc{Name: "old"}))
	require.NoError(t, s.SaveNow(ctx, "k", doc{Name: "new"}))
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 1, b.putCount())
	got, _ := Load[doc](ctx, s, "k")
	assert.Equal(t, "new", got.Name)
}

func TestDelete_DropsPending(t *testing.T) {
	t.Parallel()

	b := newCountingBackend()
	s := New(b, WithDebounce(10*time.Millisecond))
	ctx := context.Background()

	require.NoError(t, s.Save("k", doc{Name: "x"}))
	require.NoError(t, s.Delete(ctx, "k"))
	time.Sleep(40 * time.Millisecond)

	assert.Equal(t, 0, b.putCount())
	_, ok := Load[doc](ctx, s, "k")
	assert.False(t, ok)
}

func TestClose_FlushesAndRejectsLaterSaves(t *testing.T) {
	t.Parallel()

	b := NewMemoryBackend()
	s := New(b, WithDebounce(time.Hour))
	require.NoError(t, s.Save("k", doc{Name: "last"}))
	require.NoError(t, s.Close())

	raw, ok, err := b.Get(context.Background(), "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"name":"last","items":null}`, string(raw))

	assert.ErrorIs(t, s.Save("k", doc{}), ErrClosed)
}

func TestKeys(t *testing.T) {
	t.Parallel()

	s := New(NewMemoryBackend())
	ctx := context.Background()
	for _, k := range []string{"notes-b", "notes-a", "todo-a"} {
		require.NoError(t, s.SaveNow(ctx, k, 1))
	}
	keys, err := s.Keys(ctx, "notes-")
	require.NoError(t, err)
	assert.Equal(t, []string{"notes-a", "notes-b"}, keys)
}
