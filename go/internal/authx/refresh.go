package authx

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Trade-Ever/tradeever-go/go/internal/models"
)

// Outcome tells a caller that just saw a 401 what to do next.
type Outcome int

const (
	// GiveUp: do not retry; the session is unusable or another refresh owns
	// the critical section.
	GiveUp Outcome = iota
	// Retry: fresh tokens are in place; resend the original request once.
	Retry
)

// Reissuer exchanges a refresh token for a new session. Implemented by the
// marketplace API client.
type Reissuer interface {
	Reissue(ctx context.Context, refreshToken string) (models.AuthSession, error)
}

// RefreshCoordinator serializes token refresh across all authenticated calls:
// at most one refresh in flight, at most maxRetryCount refresh attempts per
// logical request, and a forced sign-out once the refresh token is dead.
//
// Callers that observe a refresh already in flight get GiveUp immediately
// rather than queueing; the in-flight refresh will have installed fresh
// tokens by the time such a caller's own retry budget allows another pass.
type RefreshCoordinator struct {
	store    *SessionStore
	reissuer Reissuer

	// onSignOut runs after tokens are cleared by a failed refresh. The session
	// is permanently unusable at that point; the app must return to login.
	onSignOut func()

	mu            sync.Mutex
	refreshing    bool
	retryCount    int
	maxRetryCount int
}

// NewRefreshCoordinator creates the process-wide coordinator. onSignOut may
// be nil when no teardown hook is needed (tests).
func NewRefreshCoordinator(store *SessionStore, reissuer Reissuer, onSignOut func()) *RefreshCoordinator {
	return &RefreshCoordinator{
		store:         store,
		reissuer:      reissuer,
		onSignOut:     onSignOut,
		maxRetryCount: 1,
	}
}

// EnsureFreshToken is invoked after an authenticated request fails with 401.
// Exactly one caller wins the Idle→Refreshing transition and performs the
// network refresh; concurrent callers observe Refreshing and give up without
// blocking. The retry counter is bounded before any network call so a
// permanently-invalid refresh token can never cause a refresh loop.
func (c *RefreshCoordinator) EnsureFreshToken(ctx context.Context) Outcome {
	c.mu.Lock()
	if c.refreshing {
		c.mu.Unlock()
		log.Debug().Msg("token refresh already in flight, giving up this caller")
		return GiveUp
	}
	c.retryCount++
	if c.retryCount > c.maxRetryCount {
		c.mu.Unlock()
		log.Warn().Int("retry_count", c.retryCount).Msg("token refresh budget exhausted")
		return GiveUp
	}
	c.refreshing = true
	refreshToken := c.store.RefreshToken()
	c.mu.Unlock()

	session, err := c.reissuer.Reissue(ctx, refreshToken)

	c.mu.Lock()
	c.refreshing = false
	if err != nil {
		c.mu.Unlock()
		log.Error().Err(err).Msg("token refresh failed, clearing session")
		c.store.Clear()
		if c.onSignOut != nil {
			c.onSignOut()
		}
		return GiveUp
	}
	c.retryCount = 0
	c.mu.Unlock()

	c.store.Replace(session)
	log.Info().Bool("profile_complete", session.ProfileComplete).Msg("access token refreshed")
	return Retry
}
