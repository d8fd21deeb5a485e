package session

import (
	"context"
	"log/slog"
	"strings"

	apperrors "github.com/openshelf/storefront/pkg/errors"

	"github.com/openshelf/storefront/internal/domain"
	"github.com/openshelf/storefront/internal/event"
)

// AuthAPI is the slice of the backend the authentication flow needs.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (domain.AuthGrant, error)
	Register(ctx context.Context, profile domain.RegisterProfile) (domain.AuthGrant, error)
}

// Service runs the sign-in, registration and sign-out flows against the
// backend and keeps the Store in step with the outcome.
type Service struct {
	store  *Store
	api    AuthAPI
	events event.Publisher
	logger *slog.Logger
}

func NewService(store *Store, api AuthAPI, events event.Publisher, logger *slog.Logger) *Service {
	if events == nil {
		events = event.Noop{}
	}
	return &Service{store: store, api: api, events: events, logger: logger}
}

// Login exchanges credentials for a grant and establishes the session.
// On failure the session is left untouched.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Session{}, apperrors.InvalidInput("email and password are required")
	}

	grant, err := s.api.Login(ctx, email, password)
	if err != nil {
		return Session{}, err
	}

	s.store.Establish(grant)
	s.logger.Info("shopper signed in", slog.String("user_id", grant.User.ID))
	s.events.Publish(ctx, event.TypeSessionStarted, grant.User.ID, map[string]any{
		"method": "login",
	})
	return s.store.Current(), nil
}

// Register creates an account and signs the shopper in with the returned
// grant in a single step.
func (s *Service) Register(ctx context.Context, profile domain.RegisterProfile) (Session, error) {
	profile.Email = strings.TrimSpace(profile.Email)
	if profile.Email == "" || profile.Password == "" {
		return Session{}, apperrors.InvalidInput("email and password are required")
	}

	grant, err := s.api.Register(ctx, profile)
	if err != nil {
		return Session{}, err
	}

	s.store.Establish(grant)
	s.logger.Info("shopper registered", slog.String("user_id", grant.User.ID))
	s.events.Publish(ctx, event.TypeSessionStarted, grant.User.ID, map[string]any{
		"method": "register",
	})
	return s.store.Current(), nil
}

// Logout clears the session. Local only; the credential simply stops being
// presented, so there is no backend call and the operation cannot fail.
func (s *Service) Logout() {
	if id := s.store.UserID(); id != "" {
		s.logger.Info("shopper signed out", slog.String("user_id", id))
		s.events.Publish(context.Background(), event.TypeSessionEnded, id, nil)
	}
	s.store.Clear()
}
