package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kbukum/flowview/component"
)

// Summary prints the startup banner: infrastructure from Describable
// components, HTTP routes from RouteProviders and component health.
type Summary struct {
	serviceName     string
	version         string
	out             io.Writer
	startupDuration time.Duration
}

// NewSummary creates a summary writing to out.
func NewSummary(serviceName, version string, out io.Writer) *Summary {
	return &Summary{serviceName: serviceName, version: version, out: out}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// Display writes the summary for every registered component.
func (s *Summary) Display(ctx context.Context, registry *component.Registry) {
	w := s.out
	version := s.version
	if version == "" {
		version = "dev"
	}
	fmt.Fprintf(w, "\n%s %s started in %.2fs\n", s.serviceName, version, s.startupDuration.Seconds())

	var infra []component.Description
	var routes []component.Route
	for _, c := range registry.All() {
		if d, ok := c.(component.Describable); ok {
			infra = append(infra, d.Describe())
		}
		if rp, ok := c.(component.RouteProvider); ok {
			routes = append(routes, rp.Routes()...)
		}
	}

	if len(infra) > 0 {
		fmt.Fprintln(w, "\nInfrastructure")
		for i, d := range infra {
			fmt.Fprintf(w, "  %s %s [%s] %s\n", branch(i, len(infra)), d.Name, d.Type, d.Details)
		}
	}

	if len(routes) > 0 {
		fmt.Fprintln(w, "\nRoutes")
		for i, r := range routes {
			fmt.Fprintf(w, "  %s %-6s %-42s %s\n", branch(i, len(routes)), r.Method, r.Path, r.Handler)
		}
	}

	health := registry.HealthAll(ctx)
	if len(health) == 0 {
		fmt.Fprintln(w)
		return
	}
	fmt.Fprintln(w, "\nComponents")
	healthy := 0
	for i, h := range health {
		line := fmt.Sprintf("  %s %s %s", branch(i, len(health)), statusMark(h.Status), h.Name)
		if h.Message != "" {
			line += " (" + h.Message + ")"
		}
		fmt.Fprintln(w, line)
		if h.Status == component.StatusHealthy {
			healthy++
		}
	}
	if healthy == len(health) {
		fmt.Fprintf(w, "\nAll components healthy (%d/%d)\n\n", healthy, len(health))
	} else {
		fmt.Fprintf(w, "\nSome components have issues (%d/%d healthy)\n\n", healthy, len(health))
	}
}

func branch(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func statusMark(s component.HealthStatus) string {
	switch s {
	case component.StatusHealthy:
		return "[ok]"
	case component.StatusDegraded:
		return "[degraded]"
	default:
		return "[" + strings.ToLower(string(s)) + "]"
	}
}
