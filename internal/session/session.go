// Package session holds the in-memory profile of the signed-in student,
// refreshes it from the backend under a TTL policy and keeps retrying
// until a profile loads.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"cash4edu/internal/api"
	"cash4edu/internal/models"
	"cash4edu/internal/notify"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultTTL          = 30 * time.Second
	DefaultPollInterval = 5 * time.Second

	profileErrorText = "Unable to load your profile. Please try again."
)

var (
	// ErrNoUser: there is no persisted user record with an id.
	ErrNoUser = errors.New("no persisted user")
	// ErrNoToken: a user record is persisted but no auth token is.
	ErrNoToken = errors.New("no persisted auth token")
	// ErrCleared: the session was cleared while the fetch was in flight.
	ErrCleared = errors.New("session cleared during fetch")
	// ErrRejected: the backend answered 2xx without a usable profile.
	ErrRejected = errors.New("profile response rejected")
)

// Store is the persisted state the session reads and merges into.
type Store interface {
	GetToken(ctx context.Context) string
	GetUserData(ctx context.Context) models.UserRecord
	MergeUserData(ctx context.Context, patch map[string]any) (models.UserRecord, bool)
}

// tokenWatcher is implemented by stores that can signal token writes.
type tokenWatcher interface {
	SubscribeToken() (<-chan struct{}, func())
}

// Fetcher loads profile/{id}.
type Fetcher interface {
	GetProfile(ctx context.Context, id string) (*models.Envelope, error)
}

// Options tune a Session. Zero values fall back to the defaults, except
// PollInterval where a negative value disables the timer.
type Options struct {
	TTL          time.Duration
	PollInterval time.Duration
	Now          func() time.Time
	Notifier     notify.Notifier
	Logger       *zap.Logger
}

// Session is the profile state container. It is safe for concurrent use.
type Session struct {
	store    Store
	fetcher  Fetcher
	notifier notify.Notifier
	logger   *zap.Logger
	now      func() time.Time
	ttl      time.Duration
	poll     time.Duration

	group singleflight.Group
	wake  chan struct{}

	// persistMu orders a fetch's commit against ClearWith, so a fetch
	// either persists before a logout wipes the store or not at all.
	persistMu sync.Mutex

	mu         sync.Mutex
	profile    *models.Profile
	inflight   int
	lastFetch  time.Time
	generation uint64
}

func New(store Store, fetcher Fetcher, opts Options) *Session {
	s := &Session{
		store:    store,
		fetcher:  fetcher,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		now:      opts.Now,
		ttl:      opts.TTL,
		poll:     opts.PollInterval,
		wake:     make(chan struct{}, 1),
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTTL
	}
	if s.poll == 0 {
		s.poll = DefaultPollInterval
	}
	return s
}

// Snapshot is a point-in-time copy of the session state.
type Snapshot struct {
	Profile       *models.Profile `json:"profile"`
	Loading       bool            `json:"loading"`
	LastFetchTime *time.Time      `json:"last_fetch_time,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{Profile: s.profile, Loading: s.inflight > 0}
	if !s.lastFetch.IsZero() {
		t := s.lastFetch
		snap.LastFetchTime = &t
	}
	return snap
}

// Profile returns the in-memory profile, or nil.
func (s *Session) Profile() *models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// Loading is true while a fetch is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

// LastFetchTime is the time of the last successful fetch, zero if none.
func (s *Session) LastFetchTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastFetch
}

// SetProfile replaces the in-memory profile. Setting nil resumes the
// recovery loop.
func (s *Session) SetProfile(p *models.Profile) {
	s.mu.Lock()
	s.profile = p
	s.mu.Unlock()
	s.poke()
}

// Clear drops all in-memory state. Fetches still in flight will not write
// their result.
func (s *Session) Clear() {
	s.ClearWith(nil)
}

// ClearWith runs wipe, typically the removal of the persisted token and
// user record, and clears the session in one step with respect to
// in-flight fetches: none of them persists anything after wipe runs.
func (s *Session) ClearWith(wipe func()) {
	s.persistMu.Lock()
	if wipe != nil {
		wipe()
	}
	s.mu.Lock()
	s.profile = nil
	s.lastFetch = time.Time{}
	s.generation++
	s.mu.Unlock()
	s.persistMu.Unlock()
	s.poke()
}

// signedIn returns the persisted user id, or why there is none usable.
func (s *Session) signedIn(ctx context.Context) (string, error) {
	id := s.store.GetUserData(ctx).ID()
	if id == "" {
		return "", ErrNoUser
	}
	if s.store.GetToken(ctx) == "" {
		return "", ErrNoToken
	}
	return id, nil
}

// GetUserProfile fetches the profile unconditionally. Concurrent calls for
// the same user share one request, which outlives any single caller: a
// caller whose ctx ends gets ctx.Err() while the others keep waiting.
func (s *Session) GetUserProfile(ctx context.Context) (*models.Profile, error) {
	id, err := s.signedIn(ctx)
	if err != nil {
		return nil, err
	}
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(id, func() (any, error) {
		return s.fetch(shared, id)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			s.logger.Debug("Session.GetUserProfile(): joined in-flight fetch", zap.String("user_id", id))
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.Profile), nil
	}
}

// RefreshUserProfile returns the cached profile while it is younger than
// the TTL, unless force is set; otherwise it fetches.
func (s *Session) RefreshUserProfile(ctx context.Context, force bool) (*models.Profile, error) {
	if _, err := s.signedIn(ctx); err != nil {
		return nil, err
	}
	if !force {
		s.mu.Lock()
		p, last := s.profile, s.lastFetch
		s.mu.Unlock()
		if p != nil && !last.IsZero() && s.now().Sub(last) < s.ttl {
			return p, nil
		}
	}
	return s.GetUserProfile(ctx)
}

func (s *Session) ForceRefreshProfile(ctx context.Context) (*models.Profile, error) {
	return s.RefreshUserProfile(ctx, true)
}

func (s *Session) fetch(ctx context.Context, id string) (*models.Profile, error) {
	s.mu.Lock()
	s.inflight++
	gen := s.generation
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.inflight--
		s.mu.Unlock()
	}()

	profile, patch, err := s.load(ctx, id)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.logger.Debug("Session.fetch(): profile load canceled", zap.String("user_id", id))
			return nil, err
		}
		s.logger.Warn("Session.fetch(): failed to load profile", zap.String("user_id", id), zap.Error(err))
		notify.Error(s.notifier, "Error", profileErrorText)
		return nil, err
	}

	s.persistMu.Lock()
	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		s.persistMu.Unlock()
		s.logger.Info("Session.fetch(): discarding profile fetched before clear", zap.String("user_id", id))
		return nil, ErrCleared
	}
	s.profile = profile
	s.lastFetch = s.now()
	s.mu.Unlock()

	if _, ok := s.store.MergeUserData(ctx, patch); !ok {
		s.logger.Warn("Session.fetch(): profile loaded but user data was not persisted", zap.String("user_id", id))
	}
	s.persistMu.Unlock()
	s.poke()
	s.logger.Debug("Session.fetch(): profile loaded", zap.String("user_id", id))
	return profile, nil
}

func (s *Session) load(ctx context.Context, id string) (*models.Profile, map[string]any, error) {
	env, err := s.fetcher.GetProfile(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !env.OK() {
		return nil, nil, fmt.Errorf("%w: %s", ErrRejected, env.Message)
	}
	var profile models.Profile
	if err := api.DecodeData(env, &profile); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrRejected, err)
	}
	var patch map[string]any
	if err := json.Unmarshal(env.Data, &patch); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrRejected, err)
	}
	return &profile, patch, nil
}

func (s *Session) poke() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}
