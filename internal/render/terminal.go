package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dharmasatrya/flightfinder/internal/flightquery"
	"github.com/dharmasatrya/flightfinder/internal/validation"
)

// Terminal is a coordinator.Display that prints results to out and the
// loading indicator to status.
type Terminal struct {
	out    io.Writer
	status io.Writer

	mu       sync.Mutex
	loading  bool
	scrolled bool
}

func NewTerminal(out, status io.Writer) *Terminal {
	return &Terminal{out: out, status: status}
}

func (t *Terminal) ShowWarnings(ws []validation.Warning) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, line := range Warnings(ws) {
		fmt.Fprintln(t.out, line)
	}
}

func (t *Terminal) BeginSearch(legs []flightquery.Leg) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scrolled = false
	if len(legs) == 1 {
		t.writeBlock(SectionHeader(flightquery.Return), []string{OneWayNotice})
	}
}

func (t *Terminal) SetLoading(visible bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if visible && !t.loading {
		fmt.Fprintln(t.status, "Loading flights...")
	}
	t.loading = visible
}

func (t *Terminal) ShowLeg(r flightquery.LegResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.writeBlock(SectionHeader(r.Leg), Leg(r))
}

// ScrollToResults only records the request: terminal output already ends
// at the latest result.
func (t *Terminal) ScrollToResults() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scrolled = true
}

func (t *Terminal) Loading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loading
}

func (t *Terminal) Scrolled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.scrolled
}

func (t *Terminal) writeBlock(header string, lines []string) {
	fmt.Fprintf(t.out, "\n%s\n%s\n", header, strings.Repeat("-", len(header)))
	for _, line := range lines {
		fmt.Fprintln(t.out, line)
	}
}
