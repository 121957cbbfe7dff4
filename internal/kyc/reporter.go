package kyc

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/information-sharing-networks/kyc-demo/internal/sumsub"
)

// Failure describes why a workflow returned no link.
type Failure struct {
	Workflow       string
	Step           string
	RunID          string
	ExternalUserID string

	// AfterReset is true when the user was reset but no new link was issued
	AfterReset bool

	Err error
}

// Kind returns the sumsub error kind of the failure ("unknown" for errors from elsewhere)
func (f Failure) Kind() sumsub.ErrorKind {
	if k := sumsub.KindOf(f.Err); k != sumsub.ErrKindNone {
		return k
	}
	return "unknown"
}

// Reporter receives workflow outcomes.
type Reporter interface {
	Report(ctx context.Context, f Failure)
	Succeeded(ctx context.Context, workflow string)
}

// NopReporter discards all outcomes
type NopReporter struct{}

func (NopReporter) Report(context.Context, Failure)   {}
func (NopReporter) Succeeded(context.Context, string) {}

// FailureKey identifies a failure counter
type FailureKey struct {
	Workflow string
	Step     string
	Kind     sumsub.ErrorKind
}

// Snapshot is a point in time copy of the LogReporter counters
type Snapshot struct {
	Successes map[string]uint64
	Failures  map[FailureKey]uint64

	// ResetWithoutLink counts regenerate runs that reset the user but failed to issue a new link
	ResetWithoutLink uint64
}

// SortedFailureKeys returns the failure keys in a stable order
func (s Snapshot) SortedFailureKeys() []FailureKey {
	keys := make([]FailureKey, 0, len(s.Failures))
	for k := range s.Failures {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Workflow != keys[j].Workflow {
			return keys[i].Workflow < keys[j].Workflow
		}
		if keys[i].Step != keys[j].Step {
			return keys[i].Step < keys[j].Step
		}
		return keys[i].Kind < keys[j].Kind
	})
	return keys
}

// LogReporter logs each failure with its classification and keeps counters for metrics.
type LogReporter struct {
	logger *slog.Logger

	mu               sync.Mutex
	successes        map[string]uint64
	failures         map[FailureKey]uint64
	resetWithoutLink uint64
}

// NewLogReporter creates a LogReporter
func NewLogReporter(logger *slog.Logger) *LogReporter {
	return &LogReporter{
		logger:    logger,
		successes: make(map[string]uint64),
		failures:  make(map[FailureKey]uint64),
	}
}

// Report logs the failure and increments the counter for its workflow, step and kind.
func (r *LogReporter) Report(ctx context.Context, f Failure) {
	kind := f.Kind()

	r.mu.Lock()
	r.failures[FailureKey{Workflow: f.Workflow, Step: f.Step, Kind: kind}]++
	if f.AfterReset {
		r.resetWithoutLink++
	}
	r.mu.Unlock()

	attrs := []slog.Attr{
		slog.String("workflow", f.Workflow),
		slog.String("step", f.Step),
		slog.String("run_id", f.RunID),
		slog.String("external_user_id", f.ExternalUserID),
		slog.String("error_kind", string(kind)),
		slog.String("error", f.Err.Error()),
	}

	var sErr *sumsub.Error
	if errors.As(f.Err, &sErr) {
		if sErr.StatusCode() != 0 {
			attrs = append(attrs, slog.Int("status_code", sErr.StatusCode()))
		}
		if body := sErr.Body(); len(body) > 0 {
			attrs = append(attrs, slog.String("provider_error", string(body)))
		}
	}

	msg := "session link not issued"
	if f.AfterReset {
		attrs = append(attrs, slog.Bool("after_reset", true))
		msg = "user was reset but no new session link was issued"
	}

	r.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

// Succeeded increments the success counter for workflow
func (r *LogReporter) Succeeded(_ context.Context, workflow string) {
	r.mu.Lock()
	r.successes[workflow]++
	r.mu.Unlock()
}

// Snapshot returns a copy of the counters
func (r *LogReporter) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Snapshot{
		Successes:        make(map[string]uint64, len(r.successes)),
		Failures:         make(map[FailureKey]uint64, len(r.failures)),
		ResetWithoutLink: r.resetWithoutLink,
	}
	for k, v := range r.successes {
		s.Successes[k] = v
	}
	for k, v := range r.failures {
		s.Failures[k] = v
	}
	return s
}
