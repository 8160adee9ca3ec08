// Package catalog implements the stateful server logic over the snapshot
// store: folder/link CRUD, the per-visitor claim cooldown, and claim-record
// maintenance. Every operation is read-modify-write against the full
// snapshot; a single mutex serializes them, so two concurrent claims by the
// same visitor cannot both pass the cooldown check.
package catalog

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/linkdrop/internal/domain"
	"github.com/MrSnakeDoc/linkdrop/internal/errx"
	"github.com/MrSnakeDoc/linkdrop/internal/logger"
	"github.com/MrSnakeDoc/linkdrop/internal/stats"
	"github.com/MrSnakeDoc/linkdrop/internal/store/snapshot"
	"github.com/MrSnakeDoc/linkdrop/internal/urlcheck"
)

var (
	errEmptyTitle      = errors.New("folder title is empty")
	errEmptyName       = errors.New("link name is empty")
	errEmptyFolderID   = errors.New("folder id is empty")
	errEmptyLinkID     = errors.New("link id is empty")
	errEmptyVisitor    = errors.New("visitor id is empty")
	errFolderNotFound  = errors.New("folder not found")
	errLinkNotFound    = errors.New("link not found")
	errInvalidURL      = errors.New("url rejected")
	errCooldownActive  = errors.New("claim cooldown active")
)

// Service is the catalog mutator and claim enforcer.
type Service struct {
	store *snapshot.Store
	log   logger.Logger
	now   func() time.Time
	stats *stats.Recorder

	// mu serializes every load→mutate→save cycle. The snapshot store's write
	// queue orders the saves; this mutex additionally isolates the loads, so
	// concurrent mutations cannot overwrite each other's effect.
	mu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the service's time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithStats attaches the best-effort claim counter recorder.
func WithStats(rec *stats.Recorder) Option {
	return func(s *Service) { s.stats = rec }
}

func New(store *snapshot.Store, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		store: store,
		log:   log,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the full catalog in display order. It never mutates state.
func (s *Service) List(ctx context.Context) []domain.Folder {
	doc := s.store.Load()
	return doc.Folders
}

// Claim resolves linkID and, if the visitor's cooldown has elapsed, records
// the claim and returns the link's URL. Link resolution is checked before the
// cooldown, so an unknown link is NotFound regardless of cooldown state.
func (s *Service) Claim(ctx context.Context, visitorID, linkID string) (string, error) {
	const op = "catalog.Claim"

	if strings.TrimSpace(linkID) == "" {
		return "", errx.E(op, errx.Invalid, errEmptyLinkID)
	}
	if visitorID == "" {
		return "", errx.E(op, errx.Invalid, errEmptyVisitor)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.store.Load()

	link, ok := domain.FindLink(doc.Folders, linkID)
	if !ok {
		return "", errx.E(op, errx.NotFound, errLinkNotFound)
	}

	now := s.now()
	if rec, ok := doc.Claims[visitorID]; ok {
		if remaining := rec.Remaining(now); remaining > 0 {
			secs := domain.RetryAfterSeconds(remaining)
			return "", errx.Retry(op, time.Duration(secs)*time.Second, errCooldownActive)
		}
	}

	doc.Claims[visitorID] = domain.ClaimRecord{LastClaimAt: now.UnixMilli()}
	if err := s.store.Save(doc); err != nil {
		return "", errx.E(op, errx.Internal, err)
	}

	s.stats.RecordClaim(ctx, link.ID)
	s.log.Info("link claimed",
		logger.String("link_id", link.ID),
		logger.String("visitor_id", visitorID))

	return link.URL, nil
}

// AddFolder creates a folder with a fresh id and returns the id.
func (s *Service) AddFolder(ctx context.Context, title string) (string, error) {
	const op = "catalog.AddFolder"

	title = strings.TrimSpace(title)
	if title == "" {
		return "", errx.E(op, errx.Invalid, errEmptyTitle)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.store.Load()
	folder := domain.Folder{
		ID:    uuid.NewString(),
		Title: title,
		Links: []domain.Link{},
	}
	doc.Folders = append(doc.Folders, folder)

	if err := s.store.Save(doc); err != nil {
		return "", errx.E(op, errx.Internal, err)
	}

	s.log.Info("folder added", logger.String("folder_id", folder.ID))
	return folder.ID, nil
}

// RemoveFolder deletes a folder and, transitively, all its links.
func (s *Service) RemoveFolder(ctx context.Context, folderID string) error {
	const op = "catalog.RemoveFolder"

	if strings.TrimSpace(folderID) == "" {
		return errx.E(op, errx.Invalid, errEmptyFolderID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.store.Load()
	folders, ok := domain.RemoveFolder(doc.Folders, folderID)
	if !ok {
		return errx.E(op, errx.NotFound, errFolderNotFound)
	}
	doc.Folders = folders

	if err := s.store.Save(doc); err != nil {
		return errx.E(op, errx.Internal, err)
	}

	s.log.Info("folder removed", logger.String("folder_id", folderID))
	return nil
}

// AddLink validates and canonicalizes rawURL, then appends a new link to the
// folder's list and returns the link id.
func (s *Service) AddLink(ctx context.Context, folderID, name, rawURL string) (string, error) {
	const op = "catalog.AddLink"

	name = strings.TrimSpace(name)
	switch {
	case strings.TrimSpace(folderID) == "":
		return "", errx.E(op, errx.Invalid, errEmptyFolderID)
	case name == "":
		return "", errx.E(op, errx.Invalid, errEmptyName)
	case strings.TrimSpace(rawURL) == "":
		return "", errx.E(op, errx.Invalid, errInvalidURL)
	}

	canonical, ok := urlcheck.Normalize(rawURL)
	if !ok {
		return "", errx.E(op, errx.Invalid, errInvalidURL)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.store.Load()

	var folder *domain.Folder
	for i := range doc.Folders {
		if doc.Folders[i].ID == folderID {
			folder = &doc.Folders[i]
			break
		}
	}
	if folder == nil {
		return "", errx.E(op, errx.NotFound, errFolderNotFound)
	}

	link := domain.Link{
		ID:   uuid.NewString(),
		Name: name,
		URL:  canonical,
	}
	folder.Links = append(folder.Links, link)

	if err := s.store.Save(doc); err != nil {
		return "", errx.E(op, errx.Internal, err)
	}

	s.log.Info("link added",
		logger.String("folder_id", folderID),
		logger.String("link_id", link.ID))
	return link.ID, nil
}

// RemoveLink deletes a link by id from whichever folder holds it.
func (s *Service) RemoveLink(ctx context.Context, linkID string) error {
	const op = "catalog.RemoveLink"

	if strings.TrimSpace(linkID) == "" {
		return errx.E(op, errx.Invalid, errEmptyLinkID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.store.Load()
	if !domain.RemoveLink(doc.Folders, linkID) {
		return errx.E(op, errx.NotFound, errLinkNotFound)
	}

	if err := s.store.Save(doc); err != nil {
		return errx.E(op, errx.Internal, err)
	}

	s.log.Info("link removed", logger.String("link_id", linkID))
	return nil
}

// ClearClaimTimer removes the visitor's claim record so their next claim
// succeeds regardless of elapsed time. Idempotent; persists only on change.
func (s *Service) ClearClaimTimer(ctx context.Context, visitorID string) error {
	const op = "catalog.ClearClaimTimer"

	if visitorID == "" {
		return errx.E(op, errx.Invalid, errEmptyVisitor)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.store.Load()
	if _, ok := doc.Claims[visitorID]; !ok {
		return nil
	}
	delete(doc.Claims, visitorID)

	if err := s.store.Save(doc); err != nil {
		return errx.E(op, errx.Internal, err)
	}

	s.log.Info("claim timer cleared", logger.String("visitor_id", visitorID))
	return nil
}

// PruneExpiredClaims drops claim records whose cooldown has fully elapsed.
// An expired record and an absent record mean the same thing to the claim
// path, so pruning only keeps the snapshot small. Returns how many records
// were removed.
func (s *Service) PruneExpiredClaims(ctx context.Context) (int, error) {
	const op = "catalog.PruneExpiredClaims"

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.store.Load()
	now := s.now()

	removed := 0
	for visitor, rec := range doc.Claims {
		if rec.Remaining(now) == 0 {
			delete(doc.Claims, visitor)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}

	if err := s.store.Save(doc); err != nil {
		return 0, errx.E(op, errx.Internal, err)
	}
	return removed, nil
}
