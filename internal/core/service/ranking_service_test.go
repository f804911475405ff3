package service

import (
	"context"
	"errors"
	"testing"

	"github.com/learnquest/gamification-system/internal/core/domain"
)

func TestRank_StrictlyGreaterCount(t *testing.T) {
	store := newMemStore()
	store.seedAccount("a", 0, 500)
	store.seedAccount("b", 0, 500)
	store.seedAccount("c", 0, 300)
	store.seedAccount("d", 0, 100)
	svc := NewRankingService(store, discardLogger)

	result, err := svc.Rank(context.Background(), "c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Rank != 3 {
		t.Errorf("xp=300 with two accounts above: expected rank 3, got %d", result.Rank)
	}
	if result.TotalUsers != 4 {
		t.Errorf("expected 4 total users, got %d", result.TotalUsers)
	}
}

func TestRank_TiesShareRank(t *testing.T) {
	store := newMemStore()
	store.seedAccount("a", 0, 500)
	store.seedAccount("b", 0, 500)
	store.seedAccount("c", 0, 300)
	svc := NewRankingService(store, discardLogger)

	for _, id := range []string{"a", "b"} {
		result, err := svc.Rank(context.Background(), id)
		if err != nil {
			t.Fatalf("rank %s: %v", id, err)
		}
		if result.Rank != 1 {
			t.Errorf("rank %s: tied leaders must both rank 1, got %d", id, result.Rank)
		}
	}
}

func TestRank_UnknownUser(t *testing.T) {
	store := newMemStore()
	svc := NewRankingService(store, discardLogger)

	_, err := svc.Rank(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestLeaderboard_OrderAndTieBreak(t *testing.T) {
	store := newMemStore()
	store.seedAccount("z", 0, 500)
	store.seedAccount("a", 0, 500)
	store.seedAccount("m", 0, 300)
	svc := NewRankingService(store, discardLogger)

	entries, err := svc.Leaderboard(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	// ties broken by id ascending for determinism
	wantOrder := []string{"a", "z", "m"}
	for i, want := range wantOrder {
		if entries[i].UserID != want {
			t.Errorf("position %d: expected %q, got %q", i, want, entries[i].UserID)
		}
		if entries[i].Rank != i+1 {
			t.Errorf("position %d: expected rank %d, got %d", i, i+1, entries[i].Rank)
		}
	}
}

func TestLeaderboard_LimitDefaultsAndCaps(t *testing.T) {
	store := newMemStore()
	for i := 0; i < 30; i++ {
		store.seedAccount(string(rune('a'+i)), 0, int64(i*10))
	}
	svc := NewRankingService(store, discardLogger)

	entries, err := svc.Leaderboard(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != defaultLeaderboardLimit {
		t.Errorf("limit 0: expected default %d entries, got %d", defaultLeaderboardLimit, len(entries))
	}

	entries, err = svc.Leaderboard(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 5 {
		t.Errorf("limit 5: expected 5 entries, got %d", len(entries))
	}
}
