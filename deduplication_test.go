package musclemap

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestDeduplicationOwnerAndWaiter(t *testing.T) {
	tracker := NewDeduplicationTracker()

	entry, owner := tracker.GetOrCreateEntry("k")
	if !owner {
		t.Fatal("first caller is not the owner")
	}
	waiterEntry, owner2 := tracker.GetOrCreateEntry("k")
	if owner2 {
		t.Fatal("second caller became an owner")
	}
	if waiterEntry != entry {
		t.Fatal("waiter received a different entry")
	}

	var wg sync.WaitGroup
	wg.Add(1)
	var got any
	var gotErr error
	go func() {
		defer wg.Done()
		got, gotErr = waiterEntry.Wait(context.Background())
	}()

	tracker.Complete("k", map[string]any{"id": "w1"}, nil)
	wg.Wait()

	if gotErr != nil {
		t.Fatalf("Wait() returned error: %v", gotErr)
	}
	if got.(map[string]any)["id"] != "w1" {
		t.Errorf("Wait() = %v", got)
	}
}

func TestDeduplicationSharesErrors(t *testing.T) {
	tracker := NewDeduplicationTracker()
	entry, _ := tracker.GetOrCreateEntry("k")

	wantErr := errors.New("upstream down")
	tracker.Complete("k", nil, wantErr)

	_, err := entry.Wait(context.Background())
	if !errors.Is(err, wantErr) {
		t.Errorf("Wait() error = %v, want owner's error", err)
	}
}

func TestDeduplicationEntryRemovedAfterComplete(t *testing.T) {
	tracker := NewDeduplicationTracker()
	tracker.GetOrCreateEntry("k")
	tracker.Complete("k", "v", nil)

	if _, owner := tracker.GetOrCreateEntry("k"); !owner {
		t.Error("key still tracked after Complete; next caller should own a fresh request")
	}
}

func TestDeduplicationWaitHonorsContext(t *testing.T) {
	tracker := NewDeduplicationTracker()
	entry, _ := tracker.GetOrCreateEntry("k")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := entry.Wait(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want deadline exceeded", err)
	}
}

func TestDeduplicationCompleteUnknownKey(t *testing.T) {
	tracker := NewDeduplicationTracker()
	// Completing a key that was never tracked is a no-op.
	tracker.Complete("missing", "v", nil)
}

func TestDefaultDeduplicationCondition(t *testing.T) {
	tests := []struct {
		method string
		want   bool
	}{
		{"GET", true},
		{"HEAD", true},
		{"OPTIONS", true},
		{"POST", false},
		{"PUT", false},
		{"DELETE", false},
	}
	for _, tt := range tests {
		req := NewRequest(tt.method, "/v1/workouts")
		if got := DefaultDeduplicationCondition(req); got != tt.want {
			t.Errorf("DefaultDeduplicationCondition(%s) = %v, want %v", tt.method, got, tt.want)
		}
	}
}
