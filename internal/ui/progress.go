package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Spinner represents an animated spinner for long operations
type Spinner struct {
	frames  []string
	current int
	message string
	stop    chan bool
	stopped bool
	mu      sync.Mutex
}

// NewSpinner creates a new spinner
func NewSpinner(message string) *Spinner {
	return &Spinner{
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		current: 0,
		message: message,
		stop:    make(chan bool),
	}
}

// Start begins the spinner animation
func (s *Spinner) Start() {
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.mu.Lock()
				if !s.stopped {
					fmt.Printf("\r%s %s %s",
						ColorProgress(s.frames[s.current]),
						s.message,
						strings.Repeat(" ", 20),
					)
					s.current = (s.current + 1) % len(s.frames)
				}
				s.mu.Unlock()
			}
		}
	}()
}

// Stop stops the spinner
func (s *Spinner) Stop(success bool, message string) {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	close(s.stop)

	fmt.Print("\r\033[K")

	if success {
		fmt.Printf("%s %s\n", ColorSuccess("✓"), message)
	} else {
		fmt.Printf("%s %s\n", ColorError("✗"), message)
	}
}

// UpdateMessage updates the spinner message
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// StageTracker reports progress through the fixed pipeline stages
type StageTracker struct {
	total     int
	current   int
	startTime time.Time
	mu        sync.Mutex
}

// NewStageTracker creates a tracker for a pipeline of n stages
func NewStageTracker(total int) *StageTracker {
	return &StageTracker{total: total, startTime: time.Now()}
}

// Begin announces the next stage
func (t *StageTracker) Begin(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.current++
	fmt.Printf("\n%s Stage [%d/%d]: %s\n",
		ColorProgress("►"),
		t.current,
		t.total,
		ColorBold(name),
	)
}

// Done prints the stage result line
func (t *StageTracker) Done(success bool, message string, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if success {
		fmt.Printf("  %s %s (%s)\n", ColorSuccess("✓"), message, ColorDim(FormatDuration(d)))
	} else {
		fmt.Printf("  %s %s\n", ColorError("✗"), message)
	}
}

// Finish prints the overall pipeline summary line
func (t *StageTracker) Finish(failed int) {
	elapsed := time.Since(t.startTime)
	fmt.Println()
	if failed == 0 {
		fmt.Printf("%s Pipeline completed in %s\n", ColorSuccess("✓"), FormatDuration(elapsed))
	} else {
		fmt.Printf("%s Pipeline finished with %d failed stage(s) in %s\n",
			ColorError("✗"), failed, FormatDuration(elapsed))
	}
}

// Bar renders a fixed-width block bar scaled to max
func Bar(value, max float64, width int) string {
	if max <= 0 || value <= 0 {
		return ""
	}
	filled := int(value / max * float64(width))
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled)
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm%ds", minutes, seconds)
}
