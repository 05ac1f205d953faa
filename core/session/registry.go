package session

import (
	"sync"
	"time"

	"github.com/Tomtimmy/learnspace/core"
	"github.com/Tomtimmy/learnspace/core/course"
	"github.com/Tomtimmy/learnspace/core/notification"
	"github.com/Tomtimmy/learnspace/core/user"
)

// Registry hands out one Manager per authenticated principal, plus a shared
// anonymous Manager for visitors. A successful login promotes the anonymous
// session — with its toasts and any stashed pending enrollment — into the
// user's session, the way a browser tab carries its state across a login.
type Registry struct {
	users        user.Service
	courses      course.Service
	state        StateStore
	log          core.Logger
	toastTimeout time.Duration

	mu       sync.Mutex
	sessions map[string]*Manager // by user ID
	anon     *Manager
}

func NewRegistry(users user.Service, courses course.Service, state StateStore, log core.Logger, toastTimeout time.Duration) *Registry {
	r := &Registry{
		users:        users,
		courses:      courses,
		state:        state,
		log:          log,
		toastTimeout: toastTimeout,
		sessions:     make(map[string]*Manager),
	}
	r.anon = r.newManager()
	return r
}

func (r *Registry) newManager() *Manager {
	return NewManager(r.users, r.courses, notification.NewHub(r.toastTimeout), r.state, r.log)
}

// Anonymous returns the shared visitor session.
func (r *Registry) Anonymous() *Manager {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.anon
}

// Login authenticates on the anonymous session; on success that session is
// promoted and a fresh anonymous one takes its place.
func (r *Registry) Login(email, password string) (*Manager, bool) {
	r.mu.Lock()
	mgr := r.anon
	r.mu.Unlock()

	if !mgr.Login(email, password) {
		return mgr, false
	}
	r.promote(mgr)
	return mgr, true
}

// Register mirrors Login for self-service signup.
func (r *Registry) Register(name, email, password string) (*Manager, bool) {
	r.mu.Lock()
	mgr := r.anon
	r.mu.Unlock()

	if !mgr.Register(name, email, password) {
		return mgr, false
	}
	r.promote(mgr)
	return mgr, true
}

func (r *Registry) promote(mgr *Manager) {
	usr, ok := mgr.CurrentUser()
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[usr.ID] = mgr
	if r.anon == mgr {
		r.anon = r.newManager()
	}
}

// ForUser returns the session for a user ID, restoring one silently when the
// principal arrives with a valid token but no live session (e.g. after a
// server restart).
func (r *Registry) ForUser(id string) (*Manager, error) {
	r.mu.Lock()
	if mgr, ok := r.sessions[id]; ok {
		r.mu.Unlock()
		return mgr, nil
	}
	r.mu.Unlock()

	usr, err := r.users.GetByID(id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if mgr, ok := r.sessions[id]; ok { // raced another request
		return mgr, nil
	}
	mgr := r.newManager()
	mgr.Restore(usr)
	r.sessions[id] = mgr
	return mgr, nil
}

// Logout ends a user's session and drops it from the registry.
func (r *Registry) Logout(id string) {
	r.mu.Lock()
	mgr, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if ok {
		mgr.Logout()
	}
}
