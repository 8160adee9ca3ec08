package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/MrSnakeDoc/linkdrop/internal/errx"
	"github.com/MrSnakeDoc/linkdrop/internal/logger"
	"github.com/MrSnakeDoc/linkdrop/internal/store/snapshot"
)

// fakeClock is a settable time source for cooldown tests.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestService(t *testing.T) (*Service, *fakeClock) {
	t.Helper()

	store, err := snapshot.New(filepath.Join(t.TempDir(), "linkdrop.json"), logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(store.Close)

	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	svc := New(store, logger.NewNop(), WithClock(clock.Now))
	return svc, clock
}

func TestEndToEndScenario(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	folderID, err := svc.AddFolder(ctx, "Tools")
	if err != nil {
		t.Fatalf("AddFolder() error: %v", err)
	}

	linkID, err := svc.AddLink(ctx, folderID, "Site", "https://a.example")
	if err != nil {
		t.Fatalf("AddLink() error: %v", err)
	}

	folders := svc.List(ctx)
	if len(folders) != 1 {
		t.Fatalf("List() = %d folders, want 1", len(folders))
	}
	if folders[0].ID != folderID || folders[0].Title != "Tools" {
		t.Errorf("folder = %+v", folders[0])
	}
	if len(folders[0].Links) != 1 {
		t.Fatalf("folder has %d links, want 1", len(folders[0].Links))
	}
	link := folders[0].Links[0]
	if link.ID != linkID || link.Name != "Site" || link.URL != "https://a.example/" {
		t.Errorf("link = %+v, want canonical url https://a.example/", link)
	}

	url, err := svc.Claim(ctx, "V1", linkID)
	if err != nil {
		t.Fatalf("Claim() error: %v", err)
	}
	if url != "https://a.example/" {
		t.Errorf("Claim() url = %q", url)
	}

	// Immediate repeat must be denied with retryAfter of the full window.
	_, err = svc.Claim(ctx, "V1", linkID)
	if errx.KindOf(err) != errx.RateLimited {
		t.Fatalf("second Claim() kind = %v, want RateLimited", errx.KindOf(err))
	}
	if secs := int64(errx.RetryAfterOf(err).Seconds()); secs != 604800 {
		t.Errorf("retryAfter = %d, want 604800", secs)
	}
}

func TestClaimCooldownMonotonicity(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	folderID, _ := svc.AddFolder(ctx, "Tools")
	linkID, _ := svc.AddLink(ctx, folderID, "Site", "https://a.example")

	if _, err := svc.Claim(ctx, "V1", linkID); err != nil {
		t.Fatalf("first Claim() error: %v", err)
	}

	clock.Advance(24 * time.Hour)
	_, err := svc.Claim(ctx, "V1", linkID)
	first := errx.RetryAfterOf(err)
	if errx.KindOf(err) != errx.RateLimited {
		t.Fatalf("Claim() after 1d kind = %v, want RateLimited", errx.KindOf(err))
	}

	clock.Advance(24 * time.Hour)
	_, err = svc.Claim(ctx, "V1", linkID)
	second := errx.RetryAfterOf(err)
	if second >= first {
		t.Errorf("retryAfter did not decrease: %v then %v", first, second)
	}

	// Cross the 7-day boundary: claim succeeds again.
	clock.Advance(6 * 24 * time.Hour)
	if _, err := svc.Claim(ctx, "V1", linkID); err != nil {
		t.Errorf("Claim() after cooldown elapsed error: %v", err)
	}
}

func TestClaimCooldownIsGlobalAcrossLinks(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	folderID, _ := svc.AddFolder(ctx, "Tools")
	a, _ := svc.AddLink(ctx, folderID, "A", "https://a.example")
	b, _ := svc.AddLink(ctx, folderID, "B", "https://b.example")

	if _, err := svc.Claim(ctx, "V1", a); err != nil {
		t.Fatal(err)
	}
	// The cooldown gates the visitor, not the link.
	if _, err := svc.Claim(ctx, "V1", b); errx.KindOf(err) != errx.RateLimited {
		t.Errorf("Claim() on a different link kind = %v, want RateLimited", errx.KindOf(err))
	}
	// A different visitor is unaffected.
	if _, err := svc.Claim(ctx, "V2", b); err != nil {
		t.Errorf("Claim() by another visitor error: %v", err)
	}
}

func TestClaimUnknownLinkIsNotFoundRegardlessOfCooldown(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	folderID, _ := svc.AddFolder(ctx, "Tools")
	linkID, _ := svc.AddLink(ctx, folderID, "Site", "https://a.example")

	if _, err := svc.Claim(ctx, "V1", linkID); err != nil {
		t.Fatal(err)
	}

	// Even with an active cooldown, an unknown id must be NotFound.
	_, err := svc.Claim(ctx, "V1", "no-such-link")
	if errx.KindOf(err) != errx.NotFound {
		t.Errorf("Claim(unknown) kind = %v, want NotFound", errx.KindOf(err))
	}
}

func TestClearClaimTimer(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	folderID, _ := svc.AddFolder(ctx, "Tools")
	linkID, _ := svc.AddLink(ctx, folderID, "Site", "https://a.example")

	if _, err := svc.Claim(ctx, "V1", linkID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Claim(ctx, "V1", linkID); errx.KindOf(err) != errx.RateLimited {
		t.Fatal("expected cooldown to be active")
	}

	if err := svc.ClearClaimTimer(ctx, "V1"); err != nil {
		t.Fatalf("ClearClaimTimer() error: %v", err)
	}
	if _, err := svc.Claim(ctx, "V1", linkID); err != nil {
		t.Errorf("Claim() after reset error: %v", err)
	}

	// Idempotent for a visitor with no record.
	if err := svc.ClearClaimTimer(ctx, "never-claimed"); err != nil {
		t.Errorf("ClearClaimTimer(no record) error: %v", err)
	}
}

func TestIDUniqueness(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	folderIDs := make(map[string]bool)
	linkIDs := make(map[string]bool)

	for i := 0; i < 10; i++ {
		fid, err := svc.AddFolder(ctx, "Folder")
		if err != nil {
			t.Fatal(err)
		}
		if folderIDs[fid] {
			t.Fatalf("duplicate folder id %s", fid)
		}
		folderIDs[fid] = true

		for j := 0; j < 5; j++ {
			lid, err := svc.AddLink(ctx, fid, "Link", "https://example.com")
			if err != nil {
				t.Fatal(err)
			}
			if linkIDs[lid] {
				t.Fatalf("duplicate link id %s", lid)
			}
			linkIDs[lid] = true
		}
	}
}

func TestRemoveFolderCleansUpLinks(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	folderID, _ := svc.AddFolder(ctx, "Tools")
	l1, _ := svc.AddLink(ctx, folderID, "One", "https://one.example")
	l2, _ := svc.AddLink(ctx, folderID, "Two", "https://two.example")

	if err := svc.RemoveFolder(ctx, folderID); err != nil {
		t.Fatalf("RemoveFolder() error: %v", err)
	}

	for _, id := range []string{l1, l2} {
		if err := svc.RemoveLink(ctx, id); errx.KindOf(err) != errx.NotFound {
			t.Errorf("RemoveLink(%s) kind = %v, want NotFound", id, errx.KindOf(err))
		}
	}
}

func TestAddLinkValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	folderID, _ := svc.AddFolder(ctx, "Tools")

	tests := []struct {
		name     string
		folderID string
		linkName string
		url      string
		wantKind errx.Kind
	}{
		{name: "javascript url", folderID: folderID, linkName: "X", url: "javascript:alert(1)", wantKind: errx.Invalid},
		{name: "empty name", folderID: folderID, linkName: "  ", url: "https://example.com", wantKind: errx.Invalid},
		{name: "empty url", folderID: folderID, linkName: "X", url: "", wantKind: errx.Invalid},
		{name: "missing folder id", folderID: "", linkName: "X", url: "https://example.com", wantKind: errx.Invalid},
		{name: "unknown folder", folderID: "nope", linkName: "X", url: "https://example.com", wantKind: errx.NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddLink(ctx, tt.folderID, tt.linkName, tt.url)
			if errx.KindOf(err) != tt.wantKind {
				t.Errorf("AddLink() kind = %v, want %v", errx.KindOf(err), tt.wantKind)
			}
		})
	}
}

func TestAddFolderValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddFolder(ctx, "   "); errx.KindOf(err) != errx.Invalid {
		t.Errorf("AddFolder(blank) kind = %v, want Invalid", errx.KindOf(err))
	}

	// Titles are stored trimmed.
	id, err := svc.AddFolder(ctx, "  Tools  ")
	if err != nil {
		t.Fatal(err)
	}
	folders := svc.List(ctx)
	if folders[0].ID != id || folders[0].Title != "Tools" {
		t.Errorf("folder = %+v, want trimmed title", folders[0])
	}
}

func TestListIsReadOnly(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	folderID, _ := svc.AddFolder(ctx, "Tools")
	linkID, _ := svc.AddLink(ctx, folderID, "Site", "https://a.example")
	if _, err := svc.Claim(ctx, "V1", linkID); err != nil {
		t.Fatal(err)
	}

	before := svc.List(ctx)
	for i := 0; i < 5; i++ {
		_ = svc.List(ctx)
	}
	after := svc.List(ctx)

	if len(before) != len(after) || before[0].ID != after[0].ID ||
		before[0].Links[0].ID != after[0].Links[0].ID {
		t.Error("List() changed ids between calls")
	}

	// The claim must still be in force.
	if _, err := svc.Claim(ctx, "V1", linkID); errx.KindOf(err) != errx.RateLimited {
		t.Error("List() appears to have mutated claim state")
	}
}

func TestPruneExpiredClaims(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	folderID, _ := svc.AddFolder(ctx, "Tools")
	linkID, _ := svc.AddLink(ctx, folderID, "Site", "https://a.example")

	if _, err := svc.Claim(ctx, "old", linkID); err != nil {
		t.Fatal(err)
	}
	clock.Advance(8 * 24 * time.Hour)
	if _, err := svc.Claim(ctx, "fresh", linkID); err != nil {
		t.Fatal(err)
	}

	removed, err := svc.PruneExpiredClaims(ctx)
	if err != nil {
		t.Fatalf("PruneExpiredClaims() error: %v", err)
	}
	if removed != 1 {
		t.Errorf("PruneExpiredClaims() removed = %d, want 1", removed)
	}

	// The fresh claim still blocks.
	if _, err := svc.Claim(ctx, "fresh", linkID); errx.KindOf(err) != errx.RateLimited {
		t.Error("fresh claim was pruned")
	}
	// The old visitor may claim again (identical to before the prune).
	if _, err := svc.Claim(ctx, "old", linkID); err != nil {
		t.Errorf("old visitor Claim() error: %v", err)
	}

	// Nothing left to prune right after.
	removed, err = svc.PruneExpiredClaims(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 0 {
		t.Errorf("second prune removed = %d, want 0", removed)
	}
}

func TestStatePersistsAcrossServiceInstances(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "linkdrop.json")
	ctx := context.Background()

	store, err := snapshot.New(path, logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	svc := New(store, logger.NewNop())

	folderID, _ := svc.AddFolder(ctx, "Tools")
	linkID, _ := svc.AddLink(ctx, folderID, "Site", "https://a.example")
	if _, err := svc.Claim(ctx, "V1", linkID); err != nil {
		t.Fatal(err)
	}
	store.Close()

	// A new store over the same file sees everything.
	store2, err := snapshot.New(path, logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(store2.Close)
	svc2 := New(store2, logger.NewNop())

	folders := svc2.List(ctx)
	if len(folders) != 1 || len(folders[0].Links) != 1 {
		t.Fatalf("restarted catalog = %+v", folders)
	}
	if _, err := svc2.Claim(ctx, "V1", linkID); errx.KindOf(err) != errx.RateLimited {
		t.Error("claim cooldown did not survive restart")
	}
}
