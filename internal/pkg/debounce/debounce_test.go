package debounce

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_Allow(t *testing.T) {
	ctx := context.Background()
	d := NewMemory(5 * time.Second)
	t0 := time.Date(2025, 7, 7, 9, 0, 0, 0, time.UTC)

	ok, err := d.Allow(ctx, "EMP001", t0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = d.Allow(ctx, "EMP001", t0.Add(2*time.Second))
	assert.False(t, ok, "inside cooldown")

	ok, _ = d.Allow(ctx, "EMP002", t0.Add(2*time.Second))
	assert.True(t, ok, "other keys are independent")

	// the rejected scan at +2s must not push the window to +7s
	ok, _ = d.Allow(ctx, "EMP001", t0.Add(5*time.Second))
	assert.True(t, ok)
}

func TestMemory_Release(t *testing.T) {
	ctx := context.Background()
	d := NewMemory(5 * time.Second)
	t0 := time.Date(2025, 7, 7, 9, 0, 0, 0, time.UTC)

	ok, _ := d.Allow(ctx, "EMP001", t0)
	require.True(t, ok)
	require.NoError(t, d.Release(ctx, "EMP001"))

	ok, _ = d.Allow(ctx, "EMP001", t0.Add(time.Second))
	assert.True(t, ok, "released key may be admitted again at once")
	assert.NoError(t, d.Release(ctx, "never-seen"))
}

func TestMemory_Sweep(t *testing.T) {
	ctx := context.Background()
	d := NewMemory(time.Minute)
	t0 := time.Date(2025, 7, 7, 9, 0, 0, 0, time.UTC)

	_, _ = d.Allow(ctx, "a", t0)
	_, _ = d.Allow(ctx, "b", t0.Add(30*time.Second))
	require.Equal(t, 2, d.Len())

	assert.Equal(t, 1, d.Sweep(t0.Add(time.Minute)))
	assert.Equal(t, 1, d.Len())

	ok, _ := d.Allow(ctx, "b", t0.Add(time.Minute))
	assert.False(t, ok, "sweep keeps keys still cooling down")
}

func TestRedis_Allow(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	d := NewRedis(db, 5*time.Second, "scan:")
	now := time.Date(2025, 7, 7, 9, 0, 0, 0, time.UTC)
	value := strconv.FormatInt(now.UnixMilli(), 10)

	mock.ExpectSetNX("scan:EMP001", value, 5*time.Second).SetVal(true)
	ok, err := d.Allow(ctx, "EMP001", now)
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectSetNX("scan:EMP001", value, 5*time.Second).SetVal(false)
	ok, err = d.Allow(ctx, "EMP001", now)
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectSetNX("scan:EMP001", value, 5*time.Second).SetErr(errors.New("connection refused"))
	_, err = d.Allow(ctx, "EMP001", now)
	assert.ErrorContains(t, err, "connection refused")

	mock.ExpectDel("scan:EMP001").SetVal(1)
	assert.NoError(t, d.Release(ctx, "EMP001"))

	mock.ExpectDel("scan:EMP001").SetErr(errors.New("connection refused"))
	assert.ErrorContains(t, d.Release(ctx, "EMP001"), "release EMP001")

	assert.NoError(t, mock.ExpectationsWereMet())
}
