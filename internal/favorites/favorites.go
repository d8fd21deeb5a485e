// Package favorites keeps the shopper's favorites as a local set plus a
// denormalized entry list. Membership updates synchronously when a mutation
// succeeds; the follow-up refetch only refreshes display data, so IsFavorite
// answers correctly without waiting on the network.
package favorites

import (
	"context"
	"log/slog"
	"sync"

	"github.com/openshelf/storefront/internal/domain"
	"github.com/openshelf/storefront/internal/event"
	apperrors "github.com/openshelf/storefront/pkg/errors"
)

// RemoteFavorites is the slice of the backend the set mutates against.
type RemoteFavorites interface {
	ListFavorites(ctx context.Context) ([]domain.FavoriteEntry, error)
	AddFavorite(ctx context.Context, productID string) error
	RemoveFavorite(ctx context.Context, productID string) error
}

// Session gates mutations and identifies the shopper for activity events.
type Session interface {
	Authenticated() bool
	UserID() string
}

// Set owns the favorite product-id set and the entry list. The id set is the
// authoritative fast-lookup structure; entries carry snapshots for display.
type Set struct {
	remote  RemoteFavorites
	session Session
	events  event.Publisher
	logger  *slog.Logger

	mu sync.Mutex // serializes mutations end to end

	stateMu sync.RWMutex
	ids     map[string]struct{}
	entries []domain.FavoriteEntry
}

func New(remote RemoteFavorites, session Session, events event.Publisher, logger *slog.Logger) *Set {
	if events == nil {
		events = event.Noop{}
	}
	return &Set{
		remote:  remote,
		session: session,
		events:  events,
		logger:  logger,
		ids:     make(map[string]struct{}),
	}
}

// IsFavorite reports membership from the local set, O(1), no network.
func (s *Set) IsFavorite(productID string) bool {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	_, ok := s.ids[productID]
	return ok
}

// Entries returns a copy of the denormalized favorite list.
func (s *Set) Entries() []domain.FavoriteEntry {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return append([]domain.FavoriteEntry(nil), s.entries...)
}

// Count returns the number of favorited products.
func (s *Set) Count() int {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return len(s.ids)
}

// Toggle adds or removes the product depending on current local membership.
func (s *Set) Toggle(ctx context.Context, productID string) error {
	if s.IsFavorite(productID) {
		return s.Remove(ctx, productID)
	}
	return s.Add(ctx, productID)
}

// Add favorites the product. Membership flips as soon as the remote add
// succeeds; the refetch afterwards only reconciles entry display data and its
// failure does not undo the membership change.
func (s *Set) Add(ctx context.Context, productID string) error {
	if err := s.requireSession(); err != nil {
		return err
	}
	if productID == "" {
		return apperrors.InvalidInput("product id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.remote.AddFavorite(ctx, productID); err != nil {
		return err
	}
	if !s.session.Authenticated() {
		// Session was cleared while the call was in flight.
		s.Reset()
		return nil
	}

	s.stateMu.Lock()
	s.ids[productID] = struct{}{}
	s.stateMu.Unlock()

	s.refreshEntries(ctx)
	s.events.Publish(ctx, event.TypeFavoriteToggled, s.session.UserID(), map[string]any{
		"product_id": productID,
		"favorited":  true,
	})
	return nil
}

// Remove unfavorites the product. Same optimistic shape as Add.
func (s *Set) Remove(ctx context.Context, productID string) error {
	if err := s.requireSession(); err != nil {
		return err
	}
	if productID == "" {
		return apperrors.InvalidInput("product id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.remote.RemoveFavorite(ctx, productID); err != nil {
		return err
	}
	if !s.session.Authenticated() {
		s.Reset()
		return nil
	}

	s.stateMu.Lock()
	delete(s.ids, productID)
	for i, e := range s.entries {
		if e.ProductID == productID {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			break
		}
	}
	s.stateMu.Unlock()

	s.refreshEntries(ctx)
	s.events.Publish(ctx, event.TypeFavoriteToggled, s.session.UserID(), map[string]any{
		"product_id": productID,
		"favorited":  false,
	})
	return nil
}

// Load pulls the full favorites list and rebuilds both structures. Called at
// startup and after sign-in.
func (s *Set) Load(ctx context.Context) error {
	if !s.session.Authenticated() {
		s.Reset()
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.remote.ListFavorites(ctx)
	if err != nil {
		return err
	}
	if !s.session.Authenticated() {
		s.Reset()
		return nil
	}

	ids := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		ids[e.ProductID] = struct{}{}
	}

	s.stateMu.Lock()
	s.ids = ids
	s.entries = entries
	s.stateMu.Unlock()
	return nil
}

// Reset drops local state without touching the server. Called on sign-out.
func (s *Set) Reset() {
	s.stateMu.Lock()
	s.ids = make(map[string]struct{})
	s.entries = nil
	s.stateMu.Unlock()
}

// refreshEntries reconciles display data after a successful mutation. The id
// set is already correct, so a failed refetch is logged and swallowed.
func (s *Set) refreshEntries(ctx context.Context) {
	entries, err := s.remote.ListFavorites(ctx)
	if err != nil {
		s.logger.Warn("refresh favorites after mutation", slog.String("error", err.Error()))
		return
	}

	s.stateMu.Lock()
	s.entries = entries
	s.stateMu.Unlock()
}

func (s *Set) requireSession() error {
	if !s.session.Authenticated() {
		return apperrors.Unauthorized("please sign in to save favorites")
	}
	return nil
}
