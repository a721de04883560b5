// Package notify delivers desktop notifications. Delivery is best-effort:
// failures are returned for the caller to log, never to act on.
package notify

// Notification is one toast.
type Notification struct {
	Title   string
	Message string
}

// Notifier sends a notification to the user.
type Notifier interface {
	Notify(n Notification) error
}

// Silent drops every notification. Used for quiet mode and headless runs.
type Silent struct{}

// Notify discards the toast.
func (Silent) Notify(Notification) error { return nil }
