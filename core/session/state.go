package session

// Client-state keys, mirroring the handful of flags a browser front end would
// keep in local storage.
const (
	// KeyPendingEnrollment holds a course ID stashed when an anonymous visitor
	// attempts to enroll; consumed and deleted right after the next successful
	// login or registration.
	KeyPendingEnrollment = "pendingEnrollment"

	// KeyHasSeenOnboarding is set to "true" once the first-run tour is dismissed.
	KeyHasSeenOnboarding = "hasSeenOnboarding"
)

// StateStore is the tiny persistent key/value surface available to a session.
// Writes cannot fail transiently; implementations persist best-effort.
type StateStore interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}
