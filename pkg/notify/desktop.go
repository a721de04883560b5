package notify

import (
	"fmt"

	"github.com/gen2brain/beeep"
)

// Desktop sends native desktop toasts via beeep.
type Desktop struct {
	// Icon is an optional path to the notification icon.
	Icon string
}

// NewDesktop creates the native notifier.
func NewDesktop() *Desktop {
	beeep.AppName = "vigil"
	return &Desktop{}
}

// Notify shows the toast.
func (d *Desktop) Notify(n Notification) error {
	if err := beeep.Notify(n.Title, n.Message, d.Icon); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}
