// Package redis stores users and attendance in Redis.
//
// Layout:
//
//	users:<key>                JSON user with encoding
//	users:index                set of user keys
//	attendance:<date>:<key>    JSON attendance record
//	attendance:<date>:index    set of user keys marked on <date>
//	attendance:dates           set of dates with at least one record
//	capture_attempts           list of JSON capture attempts
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	usersIndexKey      = "users:index"
	attendanceDatesKey = "attendance:dates"
	captureAttemptsKey = "capture_attempts"
)

// Client is the subset of goredis.Cmdable used by the stores.
type Client interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
	SAdd(ctx context.Context, key string, members ...interface{}) *goredis.IntCmd
	SRem(ctx context.Context, key string, members ...interface{}) *goredis.IntCmd
	SMembers(ctx context.Context, key string) *goredis.StringSliceCmd
	RPush(ctx context.Context, key string, values ...interface{}) *goredis.IntCmd
	Ping(ctx context.Context) *goredis.StatusCmd
}

type Options struct {
	Address  string
	Password string
	DB       int
}

// Connect opens a client and pings the server.
func Connect(ctx context.Context, opts Options) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", opts.Address, err)
	}

	return client, nil
}

func Ping(ctx context.Context, client Client) error {
	return client.Ping(ctx).Err()
}

func userKey(key string) string {
	return "users:" + key
}

func attendanceKey(date, key string) string {
	return "attendance:" + date + ":" + key
}

func attendanceIndexKey(date string) string {
	return "attendance:" + date + ":index"
}
