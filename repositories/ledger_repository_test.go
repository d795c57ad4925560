package repositories

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"poultry-app/database"
	"poultry-app/models"
)

// recordingLocker appends lock/release events to a shared trace so tests can
// assert lock lifetime relative to the body running under the locks.
type recordingLocker struct {
	trace   *[]string
	failKey string
}

func (l *recordingLocker) Lock(ctx context.Context, key string) (database.Unlocker, error) {
	if key == l.failKey {
		return nil, models.ErrConcurrencyConflict
	}
	*l.trace = append(*l.trace, "lock "+key)
	return &recordingUnlock{trace: l.trace, key: key}, nil
}

type recordingUnlock struct {
	trace *[]string
	key   string
}

func (u *recordingUnlock) Release(ctx context.Context) error {
	*u.trace = append(*u.trace, "release "+u.key)
	return nil
}

// Multi-leg postings hold every touched cell lock until the enclosing body
// (the database transaction) has finished. Releasing earlier would let a
// concurrent writer compute a balance from a row the in-flight leg is about
// to supersede.
func TestWithCellLocksHeldForWholeBody(t *testing.T) {
	var trace []string
	locker := &recordingLocker{trace: &trace}

	live := models.LedgerCellKey(1, models.BirdBroiler, models.InvLive)
	skin := models.LedgerCellKey(1, models.BirdBroiler, models.InvSkin)

	// Keys arrive unsorted and duplicated, as a multi-item sale produces them.
	err := withCellLocks(context.Background(), locker, []string{skin, live, skin}, func(ctx context.Context) error {
		trace = append(trace, "body")

		held := lockedCells(ctx)
		if !held[live] || !held[skin] {
			t.Errorf("held cells not visible in context: %v", held)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	// Sorted, deduplicated acquisition; release only after the body, in
	// reverse order.
	want := []string{"lock " + live, "lock " + skin, "body", "release " + skin, "release " + live}
	if !reflect.DeepEqual(trace, want) {
		t.Fatalf("trace = %v, want %v", trace, want)
	}
}

func TestWithCellLocksReleasesAfterFailedBody(t *testing.T) {
	var trace []string
	locker := &recordingLocker{trace: &trace}
	key := models.LedgerCellKey(1, models.BirdParentCull, models.InvSkinless)

	bodyErr := errors.New("rolled back")
	err := withCellLocks(context.Background(), locker, []string{key}, func(ctx context.Context) error {
		return bodyErr
	})
	if !errors.Is(err, bodyErr) {
		t.Fatalf("body error not propagated: %v", err)
	}

	want := []string{"lock " + key, "release " + key}
	if !reflect.DeepEqual(trace, want) {
		t.Fatalf("trace = %v, want %v", trace, want)
	}
}

func TestWithCellLocksReleasesOnAcquisitionFailure(t *testing.T) {
	live := models.LedgerCellKey(1, models.BirdBroiler, models.InvLive)
	skin := models.LedgerCellKey(1, models.BirdBroiler, models.InvSkin)

	var trace []string
	locker := &recordingLocker{trace: &trace, failKey: skin}

	err := withCellLocks(context.Background(), locker, []string{live, skin}, func(ctx context.Context) error {
		t.Error("body must not run when a lock was not obtained")
		return nil
	})
	if !errors.Is(err, models.ErrConcurrencyConflict) {
		t.Fatalf("expected concurrency conflict, got %v", err)
	}

	// The lock obtained before the failure is released again.
	want := []string{"lock " + live, "release " + live}
	if !reflect.DeepEqual(trace, want) {
		t.Fatalf("trace = %v, want %v", trace, want)
	}
}
