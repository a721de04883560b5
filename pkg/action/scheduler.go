// Package action turns per-window decisions into debounced side effects:
// break timers, focus session tracking, stress-notification cooldown and
// drowsiness escalation. One Handle call per closed window.
package action

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vigil-agent/go-vigil/internal/log"
	"github.com/vigil-agent/go-vigil/pkg/decision"
	"github.com/vigil-agent/go-vigil/pkg/eventlog"
	"github.com/vigil-agent/go-vigil/pkg/notify"
)

// Config holds the scheduler's debounce parameters.
type Config struct {
	BreakDuration       time.Duration // Break countdown length
	StressCooldown      time.Duration // Minimum gap between stress notifications
	EscalationThreshold int           // Drowsy streak that triggers escalation
}

// DefaultConfig returns the production cadence.
func DefaultConfig() Config {
	return Config{
		BreakDuration:       120 * time.Second,
		StressCooldown:      30 * time.Second,
		EscalationThreshold: 3,
	}
}

// Sink receives event lines. *eventlog.Log satisfies it.
type Sink interface {
	Event(code string, kv ...any) error
}

// Scheduler consumes successive decisions and emits side effects.
// It is invoked once per window close; invocations are serialized by
// construction (one aggregator, one window at a time).
type Scheduler struct {
	cfg      Config
	mem      *Memory
	notifier notify.Notifier
	events   Sink
	history  *eventlog.History // optional

	// Injectable clocks for tests.
	now   func() time.Time
	timer func(d time.Duration) <-chan time.Time
}

// New creates a scheduler. The memory is constructed and owned by the
// caller; the scheduler is its only mutator. history may be nil.
func New(cfg Config, mem *Memory, notifier notify.Notifier, events Sink, history *eventlog.History) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		mem:      mem,
		notifier: notifier,
		events:   events,
		history:  history,
		now:      time.Now,
		timer: func(d time.Duration) <-chan time.Time {
			return time.After(d)
		},
	}
}

// Handle processes one decision. A missing or unrecognized state string
// is treated as unknown rather than crashing; an unmatched (but present)
// state is logged and otherwise ignored.
func (s *Scheduler) Handle(seq uint64, d decision.Decision) {
	state := d.State
	if state == "" {
		state = decision.StateUnknown
	}
	reason := d.Reason
	if reason == "" {
		reason = "no_reason"
	}

	s.event(fmt.Sprintf("STATE=%s", strings.ToUpper(string(state))), "reason", reason)

	if s.history != nil {
		if err := s.history.RecordDecision(seq, string(state), reason, s.now()); err != nil {
			log.Warn("history write failed", "error", err)
		}
	}

	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()

	// Leaving engaged closes the focus session before anything else
	// runs for the new state.
	if s.mem.prevState == decision.StateEngaged && state != decision.StateEngaged {
		s.endFocusSession(fmt.Sprintf("left_engaged_to_%s", state))
	}

	switch state {
	case decision.StateDrowsy:
		s.mem.drowsyStreak++
		s.startBreakTimer()
		if s.mem.drowsyStreak >= s.cfg.EscalationThreshold {
			// Re-evaluated every qualifying window, not one-shot.
			s.event("ACTION=escalation_warning", "streak", s.mem.drowsyStreak)
			s.notify("Repeated Drowsiness",
				"You looked drowsy multiple times. Consider a longer break.")
		}

	case decision.StateStressed:
		s.stressNotification()

	case decision.StateEngaged:
		s.startFocusSession()

	case decision.StateNormal, decision.StateUnknown:
		s.mem.drowsyStreak = 0
		s.event("ACTION=none", "state", state)

	default:
		s.event("ACTION=no_rule", "state", state)
	}

	// Unconditional, even for unmatched labels, so the next
	// leaving-engaged check sees the truth.
	s.mem.prevState = state
}

// startBreakTimer starts the non-blocking break countdown. At most one
// countdown runs at a time; further drowsy decisions while it runs are
// coalesced into a logged no-op, never a restart.
func (s *Scheduler) startBreakTimer() {
	if !s.mem.breakActive.CompareAndSwap(false, true) {
		s.event("ACTION=break_timer_skipped", "reason", "already_running")
		return
	}

	s.event("ACTION=break_timer_started", "duration", s.cfg.BreakDuration)
	s.notify("Break Time",
		fmt.Sprintf("You look tired. Take a short break (%s).", s.cfg.BreakDuration))

	go func() {
		defer s.mem.breakActive.Store(false)
		<-s.timer(s.cfg.BreakDuration)
		s.event("ACTION=break_timer_finished", "message", "break_over")
		s.notify("Break Over", "Time to continue. Welcome back.")
	}()
}

// stressNotification sends the stress-support toast unless one was sent
// within the cooldown. The cooldown timestamp moves only on actual sends.
func (s *Scheduler) stressNotification() {
	now := s.now()
	if elapsed := now.Sub(s.mem.lastStressAt); elapsed < s.cfg.StressCooldown {
		remaining := (s.cfg.StressCooldown - elapsed).Round(time.Second)
		s.event("ACTION=stress_notify_skipped", "cooldown_remaining", remaining)
		return
	}

	s.mem.lastStressAt = now
	s.event("ACTION=stress_notify_sent")
	s.notify("Stress Check", "You seem stressed. Pause and take 5 deep breaths.")
}

// startFocusSession opens a focus session unless one is already open.
func (s *Scheduler) startFocusSession() {
	if s.mem.focusOpen {
		s.event("ACTION=focus_session_already_active")
		return
	}

	s.mem.focusOpen = true
	s.mem.focusStart = s.now()
	s.mem.focusID = uuid.New().String()

	s.event("ACTION=focus_session_started", "session", s.mem.focusID)
	s.notify("Focus Mode", "You look engaged. Keep going.")
}

// endFocusSession closes the open session exactly once.
func (s *Scheduler) endFocusSession(reason string) {
	if !s.mem.focusOpen {
		return
	}

	now := s.now()
	duration := now.Sub(s.mem.focusStart).Round(time.Second)
	start, id := s.mem.focusStart, s.mem.focusID
	s.mem.focusOpen = false
	s.mem.focusStart = time.Time{}
	s.mem.focusID = ""

	s.event("ACTION=focus_session_ended",
		"duration", duration, "reason", reason, "session", id)
	s.notify("Focus Session Ended",
		fmt.Sprintf("Session duration: %d seconds.", int(duration.Seconds())))

	if s.history != nil {
		if err := s.history.RecordSession(id, start, now); err != nil {
			log.Warn("history write failed", "error", err)
		}
	}
}

// notify delivers a toast. Failures are logged and swallowed: a broken
// notification path never aborts the scheduler or loses the decision.
func (s *Scheduler) notify(title, message string) {
	s.event("NOTIFY", "title", title, "msg", message)

	if err := s.notifier.Notify(notify.Notification{Title: title, Message: message}); err != nil {
		s.event("NOTIFY_FAILED", "error", err)
		log.Warn("notification delivery failed", "title", title, "error", err)
	}
}

// event appends to the sink; steady-state append failures are surfaced
// as warnings, not propagated.
func (s *Scheduler) event(code string, kv ...any) {
	if err := s.events.Event(code, kv...); err != nil {
		log.Warn("event log append failed", "error", err)
	}
}
