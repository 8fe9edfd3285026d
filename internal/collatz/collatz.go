// Package collatz computes Collatz trajectories and the statistics document
// the card displays.
//
// A trajectory starts at a positive integer and repeatedly halves even values
// and maps odd values to 3n+1 until it reaches 1.
package collatz

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Arrow is the separator used when formatting a trajectory.
const Arrow = "→"

var (
	// ErrNotPositive is returned for starting values below 1.
	ErrNotPositive = errors.New("collatz: start must be a positive integer")

	// ErrOverflow is returned when 3n+1 does not fit in a uint64.
	ErrOverflow = errors.New("collatz: value overflows uint64")
)

// maxOdd is the largest odd value whose successor fits in a uint64.
const maxOdd = (math.MaxUint64 - 1) / 3

// Result summarises a single trajectory.
type Result struct {
	Start    uint64
	Sequence []uint64
}

// StoppingTime is the number of steps needed to reach 1 (0 when starting at 1).
func (r Result) StoppingTime() int {
	return len(r.Sequence) - 1
}

// TotalStoppingTime equals [Result.StoppingTime] because trajectories end at
// the first 1.
func (r Result) TotalStoppingTime() int {
	return r.StoppingTime()
}

// Peak is the largest value reached.
func (r Result) Peak() uint64 {
	var peak uint64
	for _, v := range r.Sequence {
		if v > peak {
			peak = v
		}
	}
	return peak
}

// Step returns the value following n.
func Step(n uint64) (uint64, error) {
	if n < 1 {
		return 0, ErrNotPositive
	}
	if n%2 == 0 {
		return n / 2, nil
	}
	if n > maxOdd {
		return 0, ErrOverflow
	}
	return 3*n + 1, nil
}

// Sequence returns the full trajectory from start down to and including 1.
func Sequence(start uint64) ([]uint64, error) {
	if start < 1 {
		return nil, ErrNotPositive
	}

	seq := []uint64{start}
	for n := start; n != 1; {
		next, err := Step(n)
		if err != nil {
			return nil, err
		}
		seq = append(seq, next)
		n = next
	}
	return seq, nil
}

// StoppingTime returns how many steps start needs to reach 1.
func StoppingTime(start uint64) (int, error) {
	seq, err := Sequence(start)
	if err != nil {
		return 0, err
	}
	return len(seq) - 1, nil
}

// Summarise computes the trajectory for start.
func Summarise(start uint64) (Result, error) {
	seq, err := Sequence(start)
	if err != nil {
		return Result{}, err
	}
	return Result{Start: start, Sequence: seq}, nil
}

// Format joins a trajectory with " → ".
func Format(seq []uint64) string {
	parts := make([]string, len(seq))
	for i, v := range seq {
		parts[i] = strconv.FormatUint(v, 10)
	}
	return strings.Join(parts, " "+Arrow+" ")
}
