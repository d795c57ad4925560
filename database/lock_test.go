package database

import (
	"context"
	"sync"
	"testing"

	"poultry-app/models"

	"github.com/shopspring/decimal"
)

// Concurrent postings against the same cell must serialize their
// read-balance-then-apply sequence. Without the lock this loses updates.
func TestLocalLockerSerializesCell(t *testing.T) {
	locker := NewLocalLocker()
	key := models.LedgerCellKey(1, models.BirdBroiler, models.InvLive)

	balance := decimal.Zero
	step := decimal.NewFromFloat(0.5)
	const workers = 50

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(context.Background(), key)
			if err != nil {
				t.Error(err)
				return
			}
			defer unlock.Release(context.Background())

			// Read-modify-write under the lock, as the ledger does.
			balance = balance.Add(step)
		}()
	}
	wg.Wait()

	want := step.Mul(decimal.NewFromInt(workers))
	if !balance.Equal(want) {
		t.Fatalf("balance = %s, want %s: concurrent updates were lost", balance, want)
	}
}

func TestLocalLockerIndependentCells(t *testing.T) {
	locker := NewLocalLocker()

	// Holding one cell must not block a different cell.
	a, err := locker.Lock(context.Background(), models.LedgerCellKey(1, models.BirdBroiler, models.InvLive))
	if err != nil {
		t.Fatal(err)
	}
	defer a.Release(context.Background())

	done := make(chan struct{})
	go func() {
		b, err := locker.Lock(context.Background(), models.LedgerCellKey(1, models.BirdBroiler, models.InvSkin))
		if err != nil {
			t.Error(err)
		} else {
			b.Release(context.Background())
		}
		close(done)
	}()

	<-done
}
