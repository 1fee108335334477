// Package notify carries user-facing toast notifications from the client
// core to whatever UI is attached.
package notify

import (
	"sync"

	"cash4edu/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier receives toasts.
type Notifier interface {
	Notify(t models.Toast)
}

// Error sends an error toast.
func Error(n Notifier, title, detail string) {
	if n == nil {
		return
	}
	n.Notify(models.Toast{Type: models.ToastError, Text1: title, Text2: detail})
}

// Success sends a success toast.
func Success(n Notifier, title, detail string) {
	if n == nil {
		return
	}
	n.Notify(models.Toast{Type: models.ToastSuccess, Text1: title, Text2: detail})
}

// Hub fans toasts out to subscribers. A subscriber that falls behind loses
// toasts rather than blocking the sender.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]chan models.Toast
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subs:   make(map[string]chan models.Toast),
		logger: logger,
	}
}

// Subscribe registers a new subscriber. The returned cancel func must be
// called to release it; it closes the channel.
func (h *Hub) Subscribe() (string, <-chan models.Toast, func()) {
	id := uuid.NewString()
	ch := make(chan models.Toast, 16)

	h.mu.Lock()
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
	return id, ch, cancel
}

func (h *Hub) Notify(t models.Toast) {
	h.logger.Debug("Hub.Notify(): toast", zap.String("type", t.Type), zap.String("text1", t.Text1), zap.String("text2", t.Text2))

	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, ch := range h.subs {
		select {
		case ch <- t:
		default:
			h.logger.Warn("Hub.Notify(): subscriber is slow, toast dropped", zap.String("subscriber", id))
		}
	}
}

// Subscribers returns the number of live subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Recorder keeps every toast it receives. Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	toasts []models.Toast
}

func (r *Recorder) Notify(t models.Toast) {
	r.mu.Lock()
	r.toasts = append(r.toasts, t)
	r.mu.Unlock()
}

// Toasts returns a copy of the recorded toasts.
func (r *Recorder) Toasts() []models.Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Toast(nil), r.toasts...)
}

// Count returns how many toasts of the given type were recorded.
func (r *Recorder) Count(toastType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.toasts {
		if t.Type == toastType {
			n++
		}
	}
	return n
}

// Multi forwards every toast to each notifier in order.
type Multi []Notifier

func (m Multi) Notify(t models.Toast) {
	for _, n := range m {
		if n != nil {
			n.Notify(t)
		}
	}
}
