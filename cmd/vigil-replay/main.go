// vigil-replay feeds a scripted sequence of window observations through
// the decision engine and action scheduler, without a camera. Useful for
// checking rule priority, cooldowns and session bookkeeping offline.
//
// Script format, one window per line:
//
//	happy 85          # dominant emotion and confidence percent
//	sad 90 2.1        # optional third field: max yawn duration (seconds)
//	none              # window closed with no usable emotion sample
//	# comments and blank lines are skipped
//
// With -speed N every duration (window gap, break timer, stress
// cooldown) is divided by N, so a real-time script replays quickly.
package main

import (
	"bufio"
	"flag"
	"fmt"
	stdlog "log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vigil-agent/go-vigil/internal/log"
	"github.com/vigil-agent/go-vigil/pkg/action"
	"github.com/vigil-agent/go-vigil/pkg/decision"
	"github.com/vigil-agent/go-vigil/pkg/notify"
	"github.com/vigil-agent/go-vigil/pkg/window"
)

func main() {
	script := flag.String("script", "", "Script file (default: read stdin)")
	speed := flag.Int("speed", 30, "Time compression factor, 1 = real time")
	flag.Parse()

	log.Init("warn")

	if *speed < 1 {
		stdlog.Fatalf("speed must be >= 1, got %d", *speed)
	}

	in := os.Stdin
	if *script != "" {
		f, err := os.Open(*script)
		if err != nil {
			stdlog.Fatalf("script: %v", err)
		}
		defer f.Close()
		in = f
	}

	cfg := action.DefaultConfig()
	cfg.BreakDuration /= time.Duration(*speed)
	cfg.StressCooldown /= time.Duration(*speed)
	gap := window.DefaultConfig().Duration / time.Duration(*speed)

	sched := action.New(cfg, action.NewMemory(), consoleNotifier{}, consoleSink{}, nil)

	scanner := bufio.NewScanner(in)
	var seq uint64
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		summary, err := parseLine(line)
		if err != nil {
			stdlog.Fatalf("line %d: %v", lineNo, err)
		}
		seq++
		summary.Seq = seq

		d := decision.Decide(summary)
		fmt.Printf("--- window %d: %s (%s)\n", seq, d.State, d.Reason)
		sched.Handle(seq, d)

		time.Sleep(gap)
	}
	if err := scanner.Err(); err != nil {
		stdlog.Fatalf("read: %v", err)
	}

	// Let a pending break timer fire before exiting.
	time.Sleep(cfg.BreakDuration + 100*time.Millisecond)
}

// parseLine turns "label conf [yawnSeconds]" into a window summary.
func parseLine(line string) (window.Summary, error) {
	fields := strings.Fields(line)

	var s window.Summary
	if fields[0] != "none" {
		if len(fields) < 2 {
			return s, fmt.Errorf("%q: want label and confidence", line)
		}
		conf, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return s, fmt.Errorf("confidence %q: %w", fields[1], err)
		}
		s.HasEmotion = true
		s.DominantEmotion = fields[0]
		s.EmotionConfidence = conf
		s.SampleCount = 1
		fields = fields[2:]
	} else {
		fields = fields[1:]
	}

	if len(fields) > 0 {
		dur, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return s, fmt.Errorf("yawn duration %q: %w", fields[0], err)
		}
		s.MaxYawnDuration = time.Duration(dur * float64(time.Second))
		s.Yawned = s.MaxYawnDuration >= decision.YawnDuration
		s.MaxRatio = 0.1
	}

	return s, nil
}

// consoleNotifier prints toasts instead of raising them.
type consoleNotifier struct{}

func (consoleNotifier) Notify(n notify.Notification) error {
	fmt.Printf("    [notify] %s: %s\n", n.Title, n.Message)
	return nil
}

// consoleSink prints scheduler events.
type consoleSink struct{}

func (consoleSink) Event(code string, kv ...any) error {
	var b strings.Builder
	b.WriteString("    [event]  ")
	b.WriteString(code)
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
	}
	fmt.Println(b.String())
	return nil
}
