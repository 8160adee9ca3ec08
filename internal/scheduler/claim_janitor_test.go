package scheduler

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/MrSnakeDoc/linkdrop/internal/catalog"
	"github.com/MrSnakeDoc/linkdrop/internal/domain"
	"github.com/MrSnakeDoc/linkdrop/internal/logger"
	"github.com/MrSnakeDoc/linkdrop/internal/store/snapshot"
)

func TestStartSweepsImmediately(t *testing.T) {
	log := logger.NewNop()
	store, err := snapshot.New(filepath.Join(t.TempDir(), "linkdrop.json"), log)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(store.Close)

	// One record long past its cooldown, one fresh.
	now := time.Now()
	doc := snapshot.NewDocument()
	doc.Claims["stale"] = domain.ClaimRecord{
		LastClaimAt: now.Add(-domain.ClaimCooldown - time.Hour).UnixMilli(),
	}
	doc.Claims["fresh"] = domain.ClaimRecord{LastClaimAt: now.UnixMilli()}
	if err := store.Save(doc); err != nil {
		t.Fatal(err)
	}

	svc := catalog.New(store, log)
	j := NewClaimJanitor(svc, log, time.Hour)
	if err := j.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer j.Stop()

	got := store.Load()
	if _, ok := got.Claims["stale"]; ok {
		t.Error("expired claim record survived the initial sweep")
	}
	if _, ok := got.Claims["fresh"]; !ok {
		t.Error("fresh claim record was pruned")
	}
}

func TestStopEndsTheLoop(t *testing.T) {
	log := logger.NewNop()
	store, err := snapshot.New(filepath.Join(t.TempDir(), "linkdrop.json"), log)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(store.Close)

	j := NewClaimJanitor(catalog.New(store, log), log, time.Millisecond)
	if err := j.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	j.Stop()

	// The loop must not panic or sweep after Stop; give it a tick to notice.
	time.Sleep(5 * time.Millisecond)
}
