package notify

import "sync"

// Mock implements Notifier for testing, recording every call.
type Mock struct {
	// NotifyFunc is called when Notify is invoked.
	// If nil, delivery succeeds.
	NotifyFunc func(n Notification) error

	mu   sync.Mutex
	sent []Notification
}

// Notify records the notification and calls NotifyFunc.
func (m *Mock) Notify(n Notification) error {
	m.mu.Lock()
	m.sent = append(m.sent, n)
	m.mu.Unlock()

	if m.NotifyFunc != nil {
		return m.NotifyFunc(n)
	}
	return nil
}

// Sent returns a copy of the notifications recorded so far.
func (m *Mock) Sent() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Notification, len(m.sent))
	copy(out, m.sent)
	return out
}

// Titles returns just the recorded titles, in order.
func (m *Mock) Titles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	titles := make([]string, len(m.sent))
	for i, n := range m.sent {
		titles[i] = n.Title
	}
	return titles
}
