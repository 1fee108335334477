package session

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Run drives the recovery loop until ctx is done: while no profile is
// loaded it checks immediately, on every poll tick and on every token
// write, and fetches once a token and a user record are both persisted.
// The timer is stopped while a profile is loaded and restarted when the
// profile is cleared.
func (s *Session) Run(ctx context.Context) error {
	var tokens <-chan struct{}
	if w, ok := s.store.(tokenWatcher); ok {
		ch, cancel := w.SubscribeToken()
		defer cancel()
		tokens = ch
	}

	var (
		ticker *time.Ticker
		tick   <-chan time.Time
	)
	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker, tick = nil, nil
		}
	}
	defer stopTicker()

	s.check(ctx)
	for {
		if s.Profile() == nil && s.poll > 0 {
			if ticker == nil {
				ticker = time.NewTicker(s.poll)
				tick = ticker.C
			}
		} else {
			stopTicker()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick:
			s.check(ctx)
		case <-tokens:
			s.logger.Debug("Session.Run(): token written, checking profile")
			s.check(ctx)
		case <-s.wake:
		}
	}
}

// check fetches the profile when none is loaded and the persisted state
// allows it.
func (s *Session) check(ctx context.Context) {
	if s.Profile() != nil {
		return
	}
	if s.store.GetToken(ctx) == "" || s.store.GetUserData(ctx).ID() == "" {
		return
	}
	if _, err := s.GetUserProfile(ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Debug("Session.check(): profile not loaded yet", zap.Error(err))
	}
}
