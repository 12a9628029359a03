package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kbukum/kvbridge/component"
)

// Summary is the startup report written once a service is ready: what
// started, where it listens, and how healthy each component is.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	descriptions    []component.Description
	health          []component.Health
}

// NewSummary creates an empty summary.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version}
}

// SetStartupDuration records how long startup took.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// Collect snapshots descriptions and live health from registry.
func (s *Summary) Collect(ctx context.Context, registry *component.Registry) {
	if registry == nil {
		return
	}
	s.descriptions = registry.Descriptions()
	s.health = registry.HealthAll(ctx)
}

// Healthy reports how many collected components are healthy, out of total.
func (s *Summary) Healthy() (healthy, total int) {
	for _, h := range s.health {
		if h.Status == component.StatusHealthy {
			healthy++
		}
	}
	return healthy, len(s.health)
}

// Render writes the summary to w.
func (s *Summary) Render(w io.Writer) {
	fmt.Fprintf(w, "\n%s %s started in %.2fs\n", s.serviceName, s.version, s.startupDuration.Seconds())

	if len(s.descriptions) > 0 {
		fmt.Fprintf(w, "\nInfrastructure\n")
		for i, d := range s.descriptions {
			details := d.Details
			if d.Port > 0 && !strings.HasSuffix(details, fmt.Sprintf(":%d", d.Port)) {
				details = fmt.Sprintf("%s (:%d)", details, d.Port)
			}
			fmt.Fprintf(w, "  %s %s [%s] %s\n", branch(i, len(s.descriptions)), d.Name, d.Type, details)
		}
	}

	if len(s.health) == 0 {
		fmt.Fprintf(w, "\n  no components registered\n\n")
		return
	}

	fmt.Fprintf(w, "\nHealth\n")
	for i, h := range s.health {
		line := fmt.Sprintf("  %s %s %s: %s", branch(i, len(s.health)), statusMark(h.Status), h.Name, h.Status)
		if h.Message != "" {
			line += " (" + h.Message + ")"
		}
		fmt.Fprintln(w, line)
	}

	healthy, total := s.Healthy()
	if healthy == total {
		fmt.Fprintf(w, "\nAll components healthy (%d/%d)\n\n", healthy, total)
	} else {
		fmt.Fprintf(w, "\nSome components have issues (%d/%d healthy)\n\n", healthy, total)
	}
}

func branch(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func statusMark(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
