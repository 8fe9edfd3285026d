package collatz

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultGuard is the iteration cap used when [Run] is given a guard <= 0.
	DefaultGuard = 1_000_000

	// DefaultDisplayLimit is how many values the sequence command keeps.
	DefaultDisplayLimit = 256

	// TrimmedNote marks a summary whose sequence was cut short.
	TrimmedNote = "(Sequence trimmed to display limit)"
)

// ErrGuardReached is returned by [Run] when a walk has not reached 1 within
// its iteration guard.
var ErrGuardReached = errors.New("collatz: guard rail reached while iterating, increase the guard for longer traces")

// Walk is the outcome of [Run]. Steps and MaxValue always cover the whole
// trajectory; Sequence holds at most the retained prefix.
type Walk struct {
	StartValue uint64   `json:"start_value"`
	Steps      int      `json:"steps"`
	MaxValue   uint64   `json:"max_value"`
	Truncated  bool     `json:"truncated"`
	Sequence   []uint64 `json:"sequence"`
}

// Run walks start down to 1. At most limit values are kept in the returned
// sequence (limit <= 0 keeps all of them). The walk fails with
// [ErrGuardReached] if it takes guard steps or more; guard <= 0 means
// [DefaultGuard].
func Run(start uint64, limit, guard int) (Walk, error) {
	if start < 1 {
		return Walk{}, ErrNotPositive
	}
	if guard <= 0 {
		guard = DefaultGuard
	}

	w := Walk{StartValue: start, MaxValue: start, Sequence: []uint64{start}}
	n := start
	for i := 0; i < guard; i++ {
		if n == 1 {
			return w, nil
		}
		next, err := Step(n)
		if err != nil {
			return Walk{}, err
		}
		n = next
		w.Steps++
		if n > w.MaxValue {
			w.MaxValue = n
		}
		if limit <= 0 || len(w.Sequence) < limit {
			w.Sequence = append(w.Sequence, n)
		} else {
			w.Truncated = true
		}
	}
	return Walk{}, ErrGuardReached
}

// Summary is a short multi-line description of the walk.
func (w Walk) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Start: %d\n", w.StartValue)
	fmt.Fprintf(&b, "Steps to 1: %d\n", w.Steps)
	fmt.Fprintf(&b, "Max value: %d\n", w.MaxValue)
	fmt.Fprintf(&b, "Sequence length: %d", len(w.Sequence))
	if w.Truncated {
		b.WriteString("\n" + TrimmedNote)
	}
	return b.String()
}
