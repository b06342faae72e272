package credits

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestMemoryServiceStartsWithGrant(t *testing.T) {
	svc := NewService(3)
	b, err := svc.Balance(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if b.Credits != 3 || b.Plan != DefaultPlan {
		t.Fatalf("unexpected balance %+v", b)
	}
}

func TestDeductStopsAtZero(t *testing.T) {
	ctx := context.Background()
	svc := NewService(1)

	b, err := svc.Deduct(ctx, "u1", 1)
	if err != nil || b.Credits != 0 {
		t.Fatalf("first deduct = %+v, %v", b, err)
	}
	b, err = svc.Deduct(ctx, "u1", 1)
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}
	if b.Credits != 0 {
		t.Fatalf("failed deduct changed balance: %+v", b)
	}

	b, err = svc.Reset(ctx, "u1")
	if err != nil || b.Credits != 1 {
		t.Fatalf("reset = %+v, %v", b, err)
	}
}

func TestConcurrentDeductNeverOverspends(t *testing.T) {
	ctx := context.Background()
	svc := NewService(5)

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Deduct(ctx, "u1", 1); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if ok != 5 {
		t.Fatalf("expected exactly 5 successful deductions, got %d", ok)
	}
	if b, _ := svc.Balance(ctx, "u1"); b.Credits != 0 {
		t.Fatalf("expected 0 credits left, got %d", b.Credits)
	}
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewService(3).Balance(ctx, "u1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestGuestIdentitiesHoldNoCredits(t *testing.T) {
	ctx := context.Background()
	svc := NewService(3)

	for _, id := range []string{"guest:a", "guest:b"} {
		b, err := svc.Balance(ctx, id)
		if err != nil || b.Credits != 0 || b.Plan != GuestPlan {
			t.Fatalf("%s: unexpected balance %+v %v", id, b, err)
		}
		if _, err := svc.Deduct(ctx, id, 1); !errors.Is(err, ErrInsufficientCredits) {
			t.Fatalf("%s: expected ErrInsufficientCredits, got %v", id, err)
		}
		if b, _ := svc.Reset(ctx, id); b.Credits != 0 {
			t.Fatalf("%s: reset must not grant credits, got %+v", id, b)
		}
	}
}
