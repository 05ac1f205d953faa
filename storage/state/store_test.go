package state

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/Tomtimmy/learnspace/core/session"
)

func TestFileStore_roundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s, err := NewFileStore(path, nil)
	if err != nil {
		t.Fatalf("NewFileStore() failed, %v", err)
	}

	if _, ok := s.Get(session.KeyPendingEnrollment); ok {
		t.Error("fresh store should be empty")
	}

	s.Set(session.KeyPendingEnrollment, "c-go-fundamentals")
	s.Set(session.KeyHasSeenOnboarding, "true")

	if v, ok := s.Get(session.KeyPendingEnrollment); !ok || v != "c-go-fundamentals" {
		t.Errorf("Get() = %q, %v", v, ok)
	}

	// values survive a reopen
	reopened, err := NewFileStore(path, nil)
	if err != nil {
		t.Fatalf("NewFileStore() failed, %v", err)
	}
	if v, ok := reopened.Get(session.KeyHasSeenOnboarding); !ok || v != "true" {
		t.Errorf("Get() after reopen = %q, %v", v, ok)
	}

	reopened.Delete(session.KeyPendingEnrollment)
	if _, ok := reopened.Get(session.KeyPendingEnrollment); ok {
		t.Error("Delete() did not remove the key")
	}

	// the delete is persisted too
	again, err := NewFileStore(path, nil)
	if err != nil {
		t.Fatalf("NewFileStore() failed, %v", err)
	}
	if _, ok := again.Get(session.KeyPendingEnrollment); ok {
		t.Error("deleted key came back after reopen")
	}
}

func TestFileStore_corruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := ioutil.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStore(path, nil); err == nil {
		t.Error("NewFileStore() should fail on corrupt state")
	}
}

func TestMemStore(t *testing.T) {
	s := NewMemStore()

	s.Set("k", "v")
	if v, ok := s.Get("k"); !ok || v != "v" {
		t.Errorf("Get() = %q, %v", v, ok)
	}
	s.Delete("k")
	if _, ok := s.Get("k"); ok {
		t.Error("Delete() did not remove the key")
	}
	s.Delete("k") // no-op
}
