package storage

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemoryStorage(start time.Time) (*MemoryStorage, *time.Time) {
	now := start
	s := NewMemoryStorage()
	s.now = func() time.Time { return now }
	return s, &now
}

func TestMemoryStorage_RecordLogin(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s, now := newTestMemoryStorage(start)

	require.NoError(t, s.RecordLogin(ctx, "sub-1", "owner@shop.example", "Owner"))

	record, err := s.GetLogin(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, "owner@shop.example", record.Email)
	assert.Equal(t, int64(1), record.LoginCount)
	assert.Equal(t, start, record.FirstSeen)
	assert.Equal(t, start, record.LastSeen)

	*now = start.Add(time.Hour)
	require.NoError(t, s.RecordLogin(ctx, "sub-1", "owner@shop.example", "Shop Owner"))

	record, err = s.GetLogin(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, "Shop Owner", record.Name)
	assert.Equal(t, int64(2), record.LoginCount)
	assert.Equal(t, start, record.FirstSeen)
	assert.Equal(t, start.Add(time.Hour), record.LastSeen)
}

func TestMemoryStorage_GetLoginNotFound(t *testing.T) {
	s := NewMemoryStorage()
	_, err := s.GetLogin(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrLoginNotFound)
}

func TestMemoryStorage_GetLoginReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	require.NoError(t, s.RecordLogin(ctx, "sub-1", "owner@shop.example", ""))

	record, err := s.GetLogin(ctx, "sub-1")
	require.NoError(t, err)
	record.LoginCount = 100

	again, err := s.GetLogin(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), again.LoginCount)
}

func TestMemoryStorage_ListLogins(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s, now := newTestMemoryStorage(start)

	logins, err := s.ListLogins(ctx)
	require.NoError(t, err)
	assert.Empty(t, logins)
	assert.NotNil(t, logins)

	for i, sub := range []string{"a", "b", "c"} {
		*now = start.Add(time.Duration(i) * time.Minute)
		require.NoError(t, s.RecordLogin(ctx, sub, sub+"@shop.example", ""))
	}
	*now = start.Add(time.Hour)
	require.NoError(t, s.RecordLogin(ctx, "a", "a@shop.example", ""))

	logins, err = s.ListLogins(ctx)
	require.NoError(t, err)
	require.Len(t, logins, 3)
	assert.Equal(t, "a", logins[0].Subject)
	assert.Equal(t, "c", logins[1].Subject)
	assert.Equal(t, "b", logins[2].Subject)
}

func TestMemoryStorage_ConcurrentRecordLogin(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.RecordLogin(ctx, "sub-1", fmt.Sprintf("user%d@shop.example", i), ""))
		}()
	}
	wg.Wait()

	record, err := s.GetLogin(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, int64(50), record.LoginCount)
}
