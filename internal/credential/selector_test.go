package credential_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alfreddev/weatherproxy/internal/apierrors"
	"github.com/alfreddev/weatherproxy/internal/credential"
	"github.com/alfreddev/weatherproxy/internal/ledger"
)

func newPool() *credential.Pool {
	return credential.NewPool([]credential.Credential{
		{ID: "key_0", Secret: "s0", Priority: 0},
		{ID: "key_1", Secret: "s1", Priority: 1},
		{ID: "key_2", Secret: "s2", Priority: 2},
	})
}

func TestSelectorOrdersByUsageThenPriority(t *testing.T) {
	led := ledger.NewMemory()
	ctx := context.Background()

	// key_1 gets two hits, key_2 gets one, key_0 stays untouched.
	for i := 0; i < 2; i++ {
		if _, err := led.IncrementUsage(ctx, "key_1", "2026-07-30"); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := led.IncrementUsage(ctx, "key_2", "2026-07-30"); err != nil {
		t.Fatal(err)
	}

	sel := credential.NewSelector(newPool(), led, 1000, 3, time.Local)
	cands, err := sel.SelectAll(ctx, "2026-07-30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cands) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(cands))
	}
	if cands[0].Credential.ID != "key_0" || cands[1].Credential.ID != "key_2" || cands[2].Credential.ID != "key_1" {
		t.Fatalf("unexpected order: %+v", cands)
	}
}

func TestSelectorTieBreaksByPriority(t *testing.T) {
	sel := credential.NewSelector(newPool(), ledger.NewMemory(), 1000, 3, time.Local)
	cands, err := sel.SelectAll(context.Background(), "2026-07-30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, c := range cands {
		if c.Credential.Priority != i {
			t.Fatalf("expected priority order, got %+v", cands)
		}
	}
}

func TestSelectorExcludesExhaustedCredentials(t *testing.T) {
	led := ledger.NewMemory()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := led.IncrementUsage(ctx, "key_0", "2026-07-30"); err != nil {
			t.Fatal(err)
		}
	}

	sel := credential.NewSelector(newPool(), led, 5, 3, time.Local)
	cands, err := sel.SelectAll(ctx, "2026-07-30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range cands {
		if c.Credential.ID == "key_0" {
			t.Fatalf("expected key_0 excluded at its daily limit, got %+v", cands)
		}
	}
}

func TestSelectorExcludesCredentialsOverErrorCeiling(t *testing.T) {
	led := ledger.NewMemory()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := led.IncrementError(ctx, "key_1", "2026-07-30"); err != nil {
			t.Fatal(err)
		}
	}

	sel := credential.NewSelector(newPool(), led, 1000, 3, time.Local)
	cands, err := sel.SelectAll(ctx, "2026-07-30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range cands {
		if c.Credential.ID == "key_1" {
			t.Fatalf("expected key_1 excluded at its error ceiling, got %+v", cands)
		}
	}
}

func TestSelectorReturnsNoCredentialsAvailableWhenAllExhausted(t *testing.T) {
	led := ledger.NewMemory()
	ctx := context.Background()

	for _, id := range []string{"key_0", "key_1", "key_2"} {
		for i := 0; i < 3; i++ {
			if _, err := led.IncrementError(ctx, id, "2026-07-30"); err != nil {
				t.Fatal(err)
			}
		}
	}

	sel := credential.NewSelector(newPool(), led, 1000, 3, time.Local)
	_, err := sel.SelectAll(ctx, "2026-07-30")
	if err == nil {
		t.Fatal("expected NoCredentialsAvailable")
	}
	var noCreds *apierrors.NoCredentialsAvailable
	if !errors.As(err, &noCreds) {
		t.Fatalf("expected NoCredentialsAvailable, got %T: %v", err, err)
	}
}

func TestSelectorEmptyPoolReturnsNoCredentialsAvailable(t *testing.T) {
	sel := credential.NewSelector(credential.NewPool(nil), ledger.NewMemory(), 1000, 3, time.Local)
	_, err := sel.SelectAll(context.Background(), "2026-07-30")
	var noCreds *apierrors.NoCredentialsAvailable
	if !errors.As(err, &noCreds) {
		t.Fatalf("expected NoCredentialsAvailable, got %v", err)
	}
}
