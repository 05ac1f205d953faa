package notification

import (
	"testing"
	"time"
)

func TestHub_toastQueue(t *testing.T) {
	h := NewHub(time.Minute) // long enough to never expire mid-test

	t1 := h.PushToast(TypeSuccess, "Welcome back!")
	t2 := h.PushToast(TypeError, "Invalid email or password.")

	toasts := h.Toasts()
	if len(toasts) != 2 {
		t.Fatalf("len(Toasts()) = %d, want 2", len(toasts))
	}
	if toasts[0].ID != t1.ID || toasts[1].ID != t2.ID {
		t.Error("toasts are not in push order")
	}
	if toasts[0].Type != TypeSuccess || toasts[1].Type != TypeError {
		t.Error("toast types not preserved")
	}

	h.RemoveToast(t1.ID)
	if got := h.Toasts(); len(got) != 1 || got[0].ID != t2.ID {
		t.Errorf("after RemoveToast: %+v", got)
	}

	// removing twice (or an unknown ID) is a no-op
	h.RemoveToast(t1.ID)
	h.RemoveToast("nope")
	if got := h.Toasts(); len(got) != 1 {
		t.Errorf("len(Toasts()) = %d, want 1", len(got))
	}
}

func TestHub_toastAutoExpiry(t *testing.T) {
	h := NewHub(10 * time.Millisecond)

	h.PushToast(TypeInfo, "hello")
	if got := h.Toasts(); len(got) != 1 {
		t.Fatalf("len(Toasts()) = %d, want 1", len(got))
	}

	deadline := time.Now().Add(time.Second)
	for len(h.Toasts()) > 0 {
		if time.Now().After(deadline) {
			t.Fatal("toast did not expire")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_defaultTimeout(t *testing.T) {
	if h := NewHub(0); h.toastTimeout != DefaultToastTimeout {
		t.Errorf("toastTimeout = %v, want %v", h.toastTimeout, DefaultToastTimeout)
	}
	if h := NewHub(-1); h.toastTimeout != DefaultToastTimeout {
		t.Errorf("toastTimeout = %v, want %v", h.toastTimeout, DefaultToastTimeout)
	}
}

func TestHub_notifications(t *testing.T) {
	h := NewHub(time.Minute)

	n1 := h.Notify("Welcome!", "Glad to have you.", "")
	n2 := h.Notify("Enrollment Confirmed", "You are enrolled.", TypeSuccess)

	if n1.Type != TypeInfo {
		t.Errorf("empty type should default to info, got %q", n1.Type)
	}

	// newest first
	ntfs := h.Notifications()
	if len(ntfs) != 2 {
		t.Fatalf("len(Notifications()) = %d, want 2", len(ntfs))
	}
	if ntfs[0].ID != n2.ID || ntfs[1].ID != n1.ID {
		t.Error("notifications are not newest-first")
	}
	if got := h.UnreadCount(); got != 2 {
		t.Errorf("UnreadCount() = %d, want 2", got)
	}

	if !h.MarkAsRead(n1.ID) {
		t.Error("MarkAsRead() = false, want true")
	}
	if h.MarkAsRead("nope") {
		t.Error("MarkAsRead(unknown) = true, want false")
	}
	if got := h.UnreadCount(); got != 1 {
		t.Errorf("UnreadCount() = %d, want 1", got)
	}

	h.MarkAllAsRead()
	if got := h.UnreadCount(); got != 0 {
		t.Errorf("UnreadCount() = %d, want 0", got)
	}

	h.ClearNotifications()
	if got := h.Notifications(); len(got) != 0 {
		t.Errorf("len(Notifications()) = %d, want 0", len(got))
	}
}

func TestHub_clearNotificationsKeepsToasts(t *testing.T) {
	h := NewHub(time.Minute)

	h.PushToast(TypeInfo, "still here")
	h.Notify("Gone", "soon", TypeInfo)

	h.ClearNotifications()
	if got := h.Toasts(); len(got) != 1 {
		t.Errorf("len(Toasts()) = %d, want 1; the queues are independent", len(got))
	}
}
