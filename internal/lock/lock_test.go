package lock

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_SerializesSameKey(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := With(ctx, l, "exam:u1", func(context.Context) error {
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Equal(t, 0, l.held())
}

func TestLocal_DifferentKeysIndependent(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	release, err := l.Acquire(ctx, "exam:u1")
	require.NoError(t, err)
	defer release()

	ctx2, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	other, err := l.Acquire(ctx2, "exam:u2")
	require.NoError(t, err)
	require.NoError(t, other())
}

func TestLocal_ContextCancelled(t *testing.T) {
	l := NewLocal()
	release, err := l.Acquire(context.Background(), "k")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Acquire(ctx, "k")
	require.ErrorIs(t, err, ErrNotAcquired)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, release())
	assert.Equal(t, 0, l.held())
}

func TestLocal_ReleaseTwiceIsSafe(t *testing.T) {
	l := NewLocal()
	release, err := l.Acquire(context.Background(), "k")
	require.NoError(t, err)
	require.NoError(t, release())
	require.NoError(t, release())

	again, err := l.Acquire(context.Background(), "k")
	require.NoError(t, err)
	require.NoError(t, again())
}

func TestWith_ReleasesOnError(t *testing.T) {
	l := NewLocal()
	boom := errors.New("boom")

	err := With(context.Background(), l, "k", func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, l.held())
}

func TestWith_ReleasesOnPanic(t *testing.T) {
	l := NewLocal()

	assert.Panics(t, func() {
		_ = With(context.Background(), l, "k", func(context.Context) error { panic("boom") })
	})
	assert.Equal(t, 0, l.held())
}

// The Redis tests need a live server: RCCM_TEST_REDIS_ADDR=localhost:6379.
func redisForTest(t *testing.T) *Redis {
	t.Helper()
	addr := os.Getenv("RCCM_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("RCCM_TEST_REDIS_ADDR not set")
	}
	r, err := NewRedis(context.Background(), addr, RedisOptions{
		TTL:           2 * time.Second,
		RetryInterval: 10 * time.Millisecond,
		Prefix:        "rccm:test:" + t.Name() + ":",
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRedis_ExclusiveAndReleased(t *testing.T) {
	r := redisForTest(t)
	ctx := context.Background()

	release, err := r.Acquire(ctx, "exam:u1")
	require.NoError(t, err)

	short, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = r.Acquire(short, "exam:u1")
	require.ErrorIs(t, err, ErrNotAcquired)

	require.NoError(t, release())

	again, err := r.Acquire(ctx, "exam:u1")
	require.NoError(t, err)
	require.NoError(t, again())
}

func TestRedis_ReleaseKeepsForeignToken(t *testing.T) {
	r := redisForTest(t)
	ctx := context.Background()

	release, err := r.Acquire(ctx, "k")
	require.NoError(t, err)

	// Simulate expiry and takeover by another holder.
	full := r.opts.Prefix + "k"
	require.NoError(t, r.rdb.Set(ctx, full, "someone-else", time.Second).Err())
	require.NoError(t, release())

	val, err := r.rdb.Get(ctx, full).Result()
	require.NoError(t, err)
	assert.Equal(t, "someone-else", val)
	require.NoError(t, r.rdb.Del(ctx, full).Err())
}

func TestNewRedis_RequiresAddr(t *testing.T) {
	_, err := NewRedis(context.Background(), "", RedisOptions{}, nil)
	assert.Error(t, err)
}

func TestNewRedisFromClient_Defaults(t *testing.T) {
	r := NewRedisFromClient(goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:0"}), RedisOptions{}, nil)
	defer r.Close()
	assert.Equal(t, 30*time.Second, r.opts.TTL)
	assert.Equal(t, 50*time.Millisecond, r.opts.RetryInterval)
	assert.Equal(t, "rccm:lock:", r.opts.Prefix)
}
