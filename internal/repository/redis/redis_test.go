package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// fakeClient keeps strings, sets and lists in memory.
type fakeClient struct {
	mu      sync.Mutex
	strings map[string]string
	sets    map[string]map[string]struct{}
	lists   map[string][]string
	failOn  string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		strings: make(map[string]string),
		sets:    make(map[string]map[string]struct{}),
		lists:   make(map[string][]string),
	}
}

var errFake = errors.New("connection refused")

func toString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	default:
		return fmt.Sprint(val)
	}
}

func (f *fakeClient) Get(_ context.Context, key string) *goredis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn == "get" {
		return goredis.NewStringResult("", errFake)
	}
	v, ok := f.strings[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(v, nil)
}

func (f *fakeClient) Set(_ context.Context, key string, value interface{}, _ time.Duration) *goredis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn == "set" {
		return goredis.NewStatusResult("", errFake)
	}
	f.strings[key] = toString(value)
	return goredis.NewStatusResult("OK", nil)
}

func (f *fakeClient) Del(_ context.Context, keys ...string) *goredis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.strings[k]; ok {
			delete(f.strings, k)
			n++
		}
	}
	return goredis.NewIntResult(n, nil)
}

func (f *fakeClient) SAdd(_ context.Context, key string, members ...interface{}) *goredis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, ok := f.sets[key]
	if !ok {
		set = make(map[string]struct{})
		f.sets[key] = set
	}
	var n int64
	for _, m := range members {
		s := toString(m)
		if _, ok := set[s]; !ok {
			set[s] = struct{}{}
			n++
		}
	}
	return goredis.NewIntResult(n, nil)
}

func (f *fakeClient) SRem(_ context.Context, key string, members ...interface{}) *goredis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, m := range members {
		s := toString(m)
		if _, ok := f.sets[key][s]; ok {
			delete(f.sets[key], s)
			n++
		}
	}
	return goredis.NewIntResult(n, nil)
}

func (f *fakeClient) SMembers(_ context.Context, key string) *goredis.StringSliceCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn == "smembers" {
		return goredis.NewStringSliceResult(nil, errFake)
	}
	members := make([]string, 0, len(f.sets[key]))
	for m := range f.sets[key] {
		members = append(members, m)
	}
	// Redis sets are unordered; reverse order keeps callers honest.
	sort.Sort(sort.Reverse(sort.StringSlice(members)))
	return goredis.NewStringSliceResult(members, nil)
}

func (f *fakeClient) RPush(_ context.Context, key string, values ...interface{}) *goredis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range values {
		f.lists[key] = append(f.lists[key], toString(v))
	}
	return goredis.NewIntResult(int64(len(f.lists[key])), nil)
}

func (f *fakeClient) Ping(_ context.Context) *goredis.StatusCmd {
	if f.failOn == "ping" {
		return goredis.NewStatusResult("", errFake)
	}
	return goredis.NewStatusResult("PONG", nil)
}

func encodingOf(v float32) domain.FaceEncoding {
	var enc domain.FaceEncoding
	for i := range enc {
		enc[i] = v
	}
	return enc
}

func TestUserStore(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	store := NewUserStore(client)
	now := time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, domain.NewUser("Grace Hopper", encodingOf(0.2), now)))
	require.NoError(t, store.Save(ctx, domain.NewUser("Ada Lovelace", encodingOf(0.1), now)))

	t.Run("get by key", func(t *testing.T) {
		user, err := store.GetByKey(ctx, "ada_lovelace")
		require.NoError(t, err)
		assert.Equal(t, "Ada Lovelace", user.Name)
		assert.Equal(t, encodingOf(0.1), user.Encoding)
		assert.True(t, now.Equal(user.RegisteredAt))
	})

	t.Run("list is ordered by key", func(t *testing.T) {
		users, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "ada_lovelace", users[0].Key)
		assert.Equal(t, "grace_hopper", users[1].Key)
	})

	t.Run("save overwrites existing key", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.NewUser("ada lovelace", encodingOf(0.5), now)))
		users, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, encodingOf(0.5), users[0].Encoding)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := store.GetByKey(ctx, "nobody")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("dangling index entry is skipped", func(t *testing.T) {
		client.sets[usersIndexKey]["ghost"] = struct{}{}
		users, err := store.List(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 2)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "grace_hopper"))
		assert.ErrorIs(t, store.Delete(ctx, "grace_hopper"), domain.ErrUserNotFound)
		_, ok := client.sets[usersIndexKey]["grace_hopper"]
		assert.False(t, ok)
	})
}

func TestAttendanceStore(t *testing.T) {
	ctx := context.Background()
	store := NewAttendanceStore(newFakeClient())
	day := time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC)

	marks := []domain.AttendanceRecord{
		{UserKey: "grace_hopper", Name: "Grace Hopper", MarkedAt: day.Add(time.Hour)},
		{UserKey: "ada_lovelace", Name: "Ada Lovelace", MarkedAt: day},
		{UserKey: "ada_lovelace", Name: "Ada Lovelace", MarkedAt: day.Add(3 * time.Hour)},
		{UserKey: "ada_lovelace", Name: "Ada Lovelace", MarkedAt: day.Add(24 * time.Hour)},
	}
	for i := range marks {
		require.NoError(t, store.Mark(ctx, &marks[i]))
	}

	records, err := store.ListByDate(ctx, "2024-03-09")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "grace_hopper", records[0].UserKey)
	assert.Equal(t, "ada_lovelace", records[1].UserKey)
	assert.Equal(t, "11:00:00", records[1].Time())

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2024-03-10", all[2].Date())

	empty, err := store.ListByDate(ctx, "2024-01-01")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStores_Errors(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	users := NewUserStore(client)
	attendance := NewAttendanceStore(client)

	client.failOn = "set"
	err := users.Save(ctx, domain.NewUser("Ada", encodingOf(0), time.Now()))
	assert.ErrorIs(t, err, errFake)
	err = attendance.Mark(ctx, &domain.AttendanceRecord{UserKey: "ada", Name: "Ada", MarkedAt: time.Now()})
	assert.ErrorIs(t, err, errFake)

	client.failOn = "smembers"
	_, err = users.List(ctx)
	assert.ErrorIs(t, err, errFake)
	_, err = attendance.List(ctx)
	assert.ErrorIs(t, err, errFake)

	client.failOn = "ping"
	assert.Error(t, Ping(ctx, client))

	client.failOn = ""
	assert.NoError(t, Ping(ctx, client))
}

func TestStores_ShareOneClient(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	users := NewUserStore(client)
	attendance := NewAttendanceStore(client)
	day := time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC)

	require.NoError(t, users.Save(ctx, domain.NewUser("Ada Lovelace", encodingOf(0.1), day)))
	require.NoError(t, attendance.Mark(ctx, &domain.AttendanceRecord{UserKey: "ada_lovelace", Name: "Ada Lovelace", MarkedAt: day}))

	listedUsers, err := users.List(ctx)
	require.NoError(t, err)
	listedRecords, err := attendance.List(ctx)
	require.NoError(t, err)

	require.Len(t, listedUsers, 1)
	require.Len(t, listedRecords, 1)
	assert.Equal(t, listedUsers[0].Key, listedRecords[0].UserKey)
}

func TestCaptureAttemptStore(t *testing.T) {
	client := newFakeClient()
	store := NewCaptureAttemptStore(client)
	fixed := time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	attempt := &domain.CaptureAttempt{Purpose: domain.PurposeAttendance, Outcome: "completed", Frames: 40}
	require.NoError(t, store.Create(context.Background(), attempt))

	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", attempt.ID.String())
	assert.Equal(t, fixed, attempt.CreatedAt)
	require.Len(t, client.lists[captureAttemptsKey], 1)
	assert.Contains(t, client.lists[captureAttemptsKey][0], `"purpose":"attendance"`)
}
