package notification

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Message types shared by toasts and notifications.
const (
	TypeSuccess = "success"
	TypeError   = "error"
	TypeInfo    = "info"
	TypeWarning = "warning"
)

// DefaultToastTimeout is how long a toast stays in the queue unless removed early.
const DefaultToastTimeout = 5 * time.Second

type (
	// Notification is a persistent, per-session message with read state.
	Notification struct {
		ID      string    `json:"id"`
		Title   string    `json:"title"`
		Message string    `json:"message"`
		Type    string    `json:"type"`
		Date    time.Time `json:"date"` // UTC
		Read    bool      `json:"read"`
	}

	// Toast is an ephemeral message that auto-expires.
	Toast struct {
		ID      string `json:"id"`
		Type    string `json:"type"`
		Message string `json:"message"`
	}

	// Hub owns a session's two independent queues: ephemeral toasts and
	// persistent notifications (newest first).
	Hub struct {
		mu            sync.Mutex
		toasts        []Toast
		notifications []Notification
		toastTimeout  time.Duration
	}
)

func NewHub(toastTimeout time.Duration) *Hub {
	if toastTimeout <= 0 {
		toastTimeout = DefaultToastTimeout
	}
	return &Hub{toastTimeout: toastTimeout}
}

// PushToast appends a toast and schedules its removal after the configured
// timeout. The scheduled removal cannot be canceled; removing the toast early
// makes the expiry a harmless no-op.
func (h *Hub) PushToast(typ, message string) Toast {
	t := Toast{
		ID:      uuid.New().String(),
		Type:    typ,
		Message: message,
	}
	h.mu.Lock()
	h.toasts = append(h.toasts, t)
	h.mu.Unlock()

	time.AfterFunc(h.toastTimeout, func() { h.RemoveToast(t.ID) })
	return t
}

// RemoveToast drops a toast from the queue; unknown IDs are ignored.
func (h *Hub) RemoveToast(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, t := range h.toasts {
		if t.ID == id {
			h.toasts = append(h.toasts[:i], h.toasts[i+1:]...)
			return
		}
	}
}

func (h *Hub) Toasts() []Toast {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Toast, len(h.toasts))
	copy(out, h.toasts)
	return out
}

// Notify prepends a notification (newest first), unread.
func (h *Hub) Notify(title, message, typ string) Notification {
	if typ == "" {
		typ = TypeInfo
	}
	n := Notification{
		ID:      uuid.New().String(),
		Title:   title,
		Message: message,
		Type:    typ,
		Date:    time.Now().UTC(),
	}
	h.mu.Lock()
	h.notifications = append([]Notification{n}, h.notifications...)
	h.mu.Unlock()
	return n
}

func (h *Hub) Notifications() []Notification {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Notification, len(h.notifications))
	copy(out, h.notifications)
	return out
}

// MarkAsRead flips one notification to read; reports whether it was found.
func (h *Hub) MarkAsRead(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.notifications {
		if h.notifications[i].ID == id {
			h.notifications[i].Read = true
			return true
		}
	}
	return false
}

func (h *Hub) MarkAllAsRead() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.notifications {
		h.notifications[i].Read = true
	}
}

func (h *Hub) ClearNotifications() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.notifications = nil
}

// UnreadCount is derived from the list; it is never stored.
func (h *Hub) UnreadCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	var n int
	for _, ntf := range h.notifications {
		if !ntf.Read {
			n++
		}
	}
	return n
}
