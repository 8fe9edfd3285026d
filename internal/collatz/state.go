package collatz

import (
	"errors"
	"math"
	"time"
)

// State mirrors the collatz_state.json document served to the card.
type State struct {
	GeneratedAt string  `json:"generated_at"`
	Metrics     Metrics `json:"metrics"`
}

// Metrics is the metrics object of [State].
type Metrics struct {
	LargestPrime   uint64        `json:"largest_prime"`
	LatestExecTime float64       `json:"latest_exec_time"`
	MostEfficient  MostEfficient `json:"most_efficient"`
	HighestValue   HighestValue  `json:"highest_value"`
}

// MostEfficient is the prime with the best steps-to-value ratio.
type MostEfficient struct {
	Prime    uint64  `json:"prime"`
	Steps    int     `json:"steps"`
	Ratio    float64 `json:"ratio"`
	Sequence string  `json:"sequence"`
}

// HighestValue is the run that reached the largest intermediate value.
type HighestValue struct {
	MaxValue uint64 `json:"max_value"`
	Prime    uint64 `json:"prime"`
	Sequence string `json:"sequence"`
}

// Ratio is the efficiency of a trajectory: steps per unit of starting value,
// rounded to four decimals.
func Ratio(steps int, start uint64) float64 {
	if start == 0 {
		return 0
	}
	return math.Round(float64(steps)/float64(start)*1e4) / 1e4
}

// BuildState runs every prime in primes and summarises the results. now is
// used for generated_at; exec time is measured around the computation.
func BuildState(primes []uint64, now time.Time) (State, error) {
	if len(primes) == 0 {
		return State{}, errors.New("collatz: at least one prime is required")
	}

	began := time.Now()

	var (
		st       State
		bestEff  Result
		bestPeak Result
		effRatio = -1.0
		peak     uint64
	)

	for _, p := range primes {
		r, err := Summarise(p)
		if err != nil {
			return State{}, err
		}
		if p > st.Metrics.LargestPrime {
			st.Metrics.LargestPrime = p
		}
		if ratio := Ratio(r.StoppingTime(), p); ratio > effRatio {
			effRatio = ratio
			bestEff = r
		}
		if pk := r.Peak(); pk > peak {
			peak = pk
			bestPeak = r
		}
	}

	st.GeneratedAt = now.UTC().Format(time.RFC3339)
	st.Metrics.MostEfficient = MostEfficient{
		Prime:    bestEff.Start,
		Steps:    bestEff.StoppingTime(),
		Ratio:    effRatio,
		Sequence: Format(bestEff.Sequence),
	}
	st.Metrics.HighestValue = HighestValue{
		MaxValue: peak,
		Prime:    bestPeak.Start,
		Sequence: Format(bestPeak.Sequence),
	}
	st.Metrics.LatestExecTime = math.Round(time.Since(began).Seconds()*1e6) / 1e6

	return st, nil
}

// MaxPrimeLimit is the largest limit [Primes] accepts. The sieve keeps one
// byte per candidate, so this caps it at about 10MB.
const MaxPrimeLimit = 10_000_000

// ErrLimitTooLarge is returned by [Primes] for limits above [MaxPrimeLimit].
var ErrLimitTooLarge = errors.New("collatz: prime limit exceeds 10000000")

// Primes returns every prime <= limit using a sieve.
func Primes(limit uint64) ([]uint64, error) {
	if limit > MaxPrimeLimit {
		return nil, ErrLimitTooLarge
	}
	if limit < 2 {
		return nil, nil
	}

	composite := make([]bool, limit+1)
	var out []uint64
	for i := uint64(2); i <= limit; i++ {
		if composite[i] {
			continue
		}
		out = append(out, i)
		for j := i * i; j <= limit; j += i {
			composite[j] = true
		}
	}
	return out, nil
}
