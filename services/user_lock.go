package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"creature-training-system/logger"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// UserLocker serializes mutations for one user id. unlock must be called
// exactly once; extra calls are ignored.
type UserLocker interface {
	Lock(ctx context.Context, userID string) (unlock func(), err error)
}

var errUserBusy = &AppError{Code: "user_busy", Message: "Another request for this user is still running", Err: ErrConflict}

// LockUsers takes the locks of several users in id order, so two requests
// touching the same pair of users cannot deadlock. Duplicate ids are locked once.
func LockUsers(ctx context.Context, l UserLocker, userIDs ...string) (func(), error) {
	ids := append([]string(nil), userIDs...)
	sort.Strings(ids)

	var unlocks []func()
	release := func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
	for i, id := range ids {
		if i > 0 && id == ids[i-1] {
			continue
		}
		unlock, err := l.Lock(ctx, id)
		if err != nil {
			release()
			return nil, err
		}
		unlocks = append(unlocks, unlock)
	}
	return release, nil
}

// ---- in-process ----

type localEntry struct {
	ch   chan struct{}
	refs int
}

// LocalLocker is enough for a single instance. Entries are dropped once no
// goroutine holds or waits for them.
type LocalLocker struct {
	mu      sync.Mutex
	entries map[string]*localEntry
	wait    time.Duration
}

func NewLocalLocker(wait time.Duration) *LocalLocker {
	return &LocalLocker{entries: map[string]*localEntry{}, wait: wait}
}

func (l *LocalLocker) Lock(ctx context.Context, userID string) (func(), error) {
	l.mu.Lock()
	e, ok := l.entries[userID]
	if !ok {
		e = &localEntry{ch: make(chan struct{}, 1)}
		l.entries[userID] = e
	}
	e.refs++
	l.mu.Unlock()

	if l.wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
	}

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(userID, e)
		return nil, errUserBusy
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			l.release(userID, e)
		})
	}, nil
}

func (l *LocalLocker) release(userID string, e *localEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, userID)
	}
}

// ---- redis ----

// releaseScript deletes the key only if we still own it.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker shares the per-user lock across instances.
type RedisLocker struct {
	log    *logger.Logger
	rdb    *goredis.Client
	ttl    time.Duration
	wait   time.Duration
	prefix string
}

func NewRedisLocker(log *logger.Logger, addr string, ttl, wait time.Duration) (*RedisLocker, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisLocker{
		log:    log.With("service", "RedisLocker"),
		rdb:    rdb,
		ttl:    ttl,
		wait:   wait,
		prefix: "creature:lock:user:",
	}, nil
}

func (l *RedisLocker) Close() error { return l.rdb.Close() }

func (l *RedisLocker) Lock(ctx context.Context, userID string) (func(), error) {
	key := l.prefix + userID
	token := uuid.NewString()

	if l.wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
	}

	backoff := 20 * time.Millisecond
	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("acquire user lock: %w", err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, errUserBusy
		case <-time.After(backoff):
		}
		if backoff < 250*time.Millisecond {
			backoff *= 2
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := releaseScript.Run(rctx, l.rdb, []string{key}, token).Err(); err != nil {
				l.log.Warn("[LOCK] release failed", "user_id", userID, "error", err)
			}
		})
	}, nil
}
