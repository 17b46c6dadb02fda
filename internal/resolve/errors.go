package resolve

import (
	"fmt"
	"strings"
	"time"

	"github.com/kalyptra/ariadne/api/schemas"
)

// Candidate is one search hit kept for diagnostics on failure.
type Candidate struct {
	Content string
	Score   float64
}

// ResolutionFailure reports that no stored element qualified for a
// description: either nothing matched at all, or the best match scored
// below the caller's threshold. It carries the attempted query and the top
// candidates so the failure is actionable without re-running the search.
type ResolutionFailure struct {
	Query      string
	BestScore  float64
	Threshold  float64
	Candidates []Candidate
}

func (e *ResolutionFailure) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "no element matched %q (best score %.2f, threshold %.2f)", e.Query, e.BestScore, e.Threshold)
	if len(e.Candidates) > 0 {
		sb.WriteString("; candidates:")
		for _, c := range e.Candidates {
			line := c.Content
			if i := strings.IndexByte(line, '\n'); i >= 0 {
				line = line[:i]
			}
			fmt.Fprintf(&sb, "\n  %.2f %s", c.Score, line)
		}
	}
	return sb.String()
}

// TimeoutError reports that wait exhausted its budget without a qualifying
// result.
type TimeoutError struct {
	Description string
	Budget      time.Duration
	Attempts    int
	LastErr     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s waiting for %q (%d attempts)", e.Budget, e.Description, e.Attempts)
}

func (e *TimeoutError) Unwrap() error { return e.LastErr }

// DanglingReferenceError reports a stored record pointing at a reference
// the current snapshot no longer holds. Callers treat it like a resolution
// failure; wait retries it.
type DanglingReferenceError struct {
	Ref   string
	Query string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("record for %q references %s, which is not in the current snapshot", e.Query, e.Ref)
}

// UnsupportedActionError reports an action type the engine cannot dispatch.
type UnsupportedActionError struct {
	Type schemas.ActionType
}

func (e *UnsupportedActionError) Error() string {
	return fmt.Sprintf("unsupported action type %q", e.Type)
}

// StoreUnavailableError wraps a semantic-store round-trip failure. wait
// logs and retries it; look and act propagate it immediately.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("semantic store %s failed: %v", e.Op, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error { return e.Err }
