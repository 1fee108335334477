package storage

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"cash4edu/internal/models"

	"go.uber.org/zap"
)

// Persisted keys.
const (
	KeyToken            = "@auth_token"
	KeyUserData         = "@user_data"
	KeyVisitedDashboard = "@user_visited_dashboard"
)

// Store is the typed view over the persisted client state. Every operation
// is best-effort: failures are logged and reported as zero values or false.
type Store struct {
	kv     KV
	sealer *Sealer
	logger *zap.Logger

	mu     sync.Mutex
	subs   map[int]chan struct{}
	nextID int
}

// NewStore wraps kv. sealer may be nil.
func NewStore(kv KV, sealer *Sealer, logger *zap.Logger) *Store {
	return &Store{
		kv:     kv,
		sealer: sealer,
		logger: logger,
		subs:   make(map[int]chan struct{}),
	}
}

func (s *Store) get(ctx context.Context, key string) (string, bool) {
	v, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("Store.get(): failed to read key", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return v, true
}

func (s *Store) set(ctx context.Context, key, value string) bool {
	if err := s.kv.Set(ctx, key, value); err != nil {
		s.logger.Warn("Store.set(): failed to write key", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *Store) remove(ctx context.Context, keys ...string) bool {
	if err := s.kv.Delete(ctx, keys...); err != nil {
		s.logger.Warn("Store.remove(): failed to delete keys", zap.Strings("keys", keys), zap.Error(err))
		return false
	}
	return true
}

// GetToken returns the persisted auth token, or "" when there is none.
func (s *Store) GetToken(ctx context.Context) string {
	v, ok := s.get(ctx, KeyToken)
	if !ok {
		return ""
	}
	if s.sealer != nil {
		plain, err := s.sealer.Open(v)
		if err != nil {
			s.logger.Warn("Store.GetToken(): failed to open sealed token", zap.Error(err))
			return ""
		}
		return plain
	}
	return v
}

// SetToken persists token and wakes token subscribers.
func (s *Store) SetToken(ctx context.Context, token string) bool {
	value := token
	if s.sealer != nil {
		sealed, err := s.sealer.Seal(token)
		if err != nil {
			s.logger.Warn("Store.SetToken(): failed to seal token", zap.Error(err))
			return false
		}
		value = sealed
	}
	if !s.set(ctx, KeyToken, value) {
		return false
	}
	s.signalToken()
	return true
}

func (s *Store) RemoveToken(ctx context.Context) bool {
	return s.remove(ctx, KeyToken)
}

// GetUserData returns the persisted user record, or nil when it is absent
// or unreadable.
func (s *Store) GetUserData(ctx context.Context) models.UserRecord {
	v, ok := s.get(ctx, KeyUserData)
	if !ok {
		return nil
	}
	var rec models.UserRecord
	if err := json.Unmarshal([]byte(v), &rec); err != nil {
		s.logger.Warn("Store.GetUserData(): stored user data is not a JSON object", zap.Error(err))
		return nil
	}
	return rec
}

func (s *Store) SetUserData(ctx context.Context, rec models.UserRecord) bool {
	data, err := json.Marshal(rec)
	if err != nil {
		s.logger.Warn("Store.SetUserData(): failed to encode user data", zap.Error(err))
		return false
	}
	return s.set(ctx, KeyUserData, string(data))
}

// MergeUserData applies patch on top of the persisted record and writes the
// result back. Existing keys not present in patch are preserved.
func (s *Store) MergeUserData(ctx context.Context, patch map[string]any) (models.UserRecord, bool) {
	merged := s.GetUserData(ctx).Merge(patch)
	if !s.SetUserData(ctx, merged) {
		return nil, false
	}
	return merged, true
}

func (s *Store) RemoveUserData(ctx context.Context) bool {
	return s.remove(ctx, KeyUserData)
}

func (s *Store) SetVisitedDashboard(ctx context.Context, visited bool) bool {
	v := "false"
	if visited {
		v = "true"
	}
	return s.set(ctx, KeyVisitedDashboard, v)
}

// HasVisitedDashboard is true only when the flag is stored as "true".
func (s *Store) HasVisitedDashboard(ctx context.Context) bool {
	v, ok := s.get(ctx, KeyVisitedDashboard)
	return ok && v == "true"
}

// ClearAuth removes the token and user record.
func (s *Store) ClearAuth(ctx context.Context) bool {
	return s.remove(ctx, KeyToken, KeyUserData)
}

// ClearAll wipes every persisted key.
func (s *Store) ClearAll(ctx context.Context) bool {
	if err := s.kv.Clear(ctx); err != nil {
		s.logger.Warn("Store.ClearAll(): failed to clear storage", zap.Error(err))
		return false
	}
	return true
}

// SubscribeToken returns a channel that receives a signal after every
// successful SetToken. Signals coalesce while unread.
func (s *Store) SubscribeToken() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) signalToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
