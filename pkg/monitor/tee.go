package monitor

import (
	"fmt"
	"strings"

	"github.com/vigil-agent/go-vigil/pkg/action"
	"github.com/vigil-agent/go-vigil/pkg/status"
)

// Tee forwards scheduler events to the primary event log and mirrors
// them into the status server's ring buffer. The log is authoritative;
// the mirror is best-effort.
type Tee struct {
	Log    action.Sink
	Status *status.Server
}

// Event implements action.Sink.
func (t Tee) Event(code string, kv ...any) error {
	if t.Status != nil {
		var parts []string
		for i := 0; i+1 < len(kv); i += 2 {
			parts = append(parts, fmt.Sprintf("%v=%v", kv[i], kv[i+1]))
		}
		t.Status.AddEvent(code, strings.Join(parts, " "))
	}
	return t.Log.Event(code, kv...)
}
