package database

import (
	"context"
	"sync"
	"time"

	"poultry-app/config"
	"poultry-app/models"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// CellLocker serializes balance-read-then-append per ledger cell so two
// concurrent postings never compute new_quantity from the same stale balance.
type CellLocker interface {
	Lock(ctx context.Context, key string) (Unlocker, error)
}

type Unlocker interface {
	Release(ctx context.Context) error
}

// NewCellLocker returns a redis-backed locker when REDIS_ADDR is configured
// (required when several instances share the database), otherwise an
// in-process locker.
func NewCellLocker() CellLocker {
	if config.RedisAddr == "" {
		logrus.Info("REDIS_ADDR not set, using in-process ledger cell locks")
		return NewLocalLocker()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
	})
	logrus.WithField("addr", config.RedisAddr).Info("using redis ledger cell locks")
	return &redisLocker{locker: redislock.New(client)}
}

type redisLocker struct {
	locker *redislock.Client
}

func (r *redisLocker) Lock(ctx context.Context, key string) (Unlocker, error) {
	lock, err := r.locker.Obtain(ctx, key, 5*time.Second, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(50*time.Millisecond), 20),
	})
	if err == redislock.ErrNotObtained {
		return nil, models.ErrConcurrencyConflict
	}
	if err != nil {
		return nil, err
	}
	return &redisUnlock{lock: lock}, nil
}

type redisUnlock struct {
	lock *redislock.Lock
}

func (u *redisUnlock) Release(ctx context.Context) error {
	return u.lock.Release(ctx)
}

// LocalLocker is a mutex-per-key locker for single-instance deployments and
// tests.
type LocalLocker struct {
	mu    sync.Mutex
	cells map[string]*sync.Mutex
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{cells: make(map[string]*sync.Mutex)}
}

func (l *LocalLocker) Lock(ctx context.Context, key string) (Unlocker, error) {
	l.mu.Lock()
	cell := l.cells[key]
	if cell == nil {
		cell = &sync.Mutex{}
		l.cells[key] = cell
	}
	l.mu.Unlock()

	cell.Lock()
	return &localUnlock{mu: cell}, nil
}

type localUnlock struct {
	mu *sync.Mutex
}

func (u *localUnlock) Release(ctx context.Context) error {
	u.mu.Unlock()
	return nil
}
