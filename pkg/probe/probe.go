// Package probe runs startup checks and reports which ones block startup.
package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// DefaultTimeout bounds a check whose Probe sets no Timeout.
const DefaultTimeout = 5 * time.Second

// CheckFunc performs a check and returns nil when it passes.
type CheckFunc func(ctx context.Context) error

// Probe represents a single startup check.
type Probe struct {
	Name     string
	Check    CheckFunc
	Critical bool          // A failure prevents startup
	Timeout  time.Duration // Zero means DefaultTimeout
}

// Result holds the outcome of a single probe.
type Result struct {
	Probe    Probe
	Error    error
	Duration time.Duration
}

// Pinger is satisfied by *sql.DB and the wrappers around it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Database returns a critical probe that pings db.
func Database(db Pinger) Probe {
	return Probe{Name: "Database", Check: db.PingContext, Critical: true}
}

// Link returns a non-critical probe for a simulator link. An interface
// that is not connected yet must not stop startup; the session retries on
// every tick.
func Link(name string, check CheckFunc) Probe {
	return Probe{Name: name, Check: check, Timeout: 2 * time.Second}
}

// Run executes the probes in order and returns their results.
func Run(ctx context.Context, probes []Probe) []Result {
	results := make([]Result, len(probes))

	for i, p := range probes {
		start := time.Now()

		timeout := p.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		checkCtx, cancel := context.WithTimeout(ctx, timeout)
		err := p.Check(checkCtx)
		cancel()

		results[i] = Result{
			Probe:    p,
			Error:    err,
			Duration: time.Since(start),
		}
	}

	return results
}

// AnalyzeResults logs every result and returns the joined errors of the
// failed critical probes.
func AnalyzeResults(results []Result) error {
	var criticalErrors []error

	slog.Info("Startup Checks Summary")

	for _, r := range results {
		status := "PASS"
		if r.Error != nil {
			status = "FAIL"
		}

		msg := fmt.Sprintf("[%s] %-20s (%v)", status, r.Probe.Name, r.Duration.Round(time.Millisecond))

		switch {
		case r.Error == nil:
			slog.Info(msg)
		case r.Probe.Critical:
			slog.Error(msg, "error", r.Error)
			criticalErrors = append(criticalErrors, fmt.Errorf("%s: %w", r.Probe.Name, r.Error))
		default:
			slog.Warn(msg, "error", r.Error)
		}
	}

	if len(criticalErrors) > 0 {
		return errors.Join(criticalErrors...)
	}

	return nil
}
