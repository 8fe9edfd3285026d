package collatzcard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jpalmerr/collatzcard/internal/card"
)

// Placeholder is displayed in place of any field the document leaves out.
const Placeholder = "—"

// Arrow is the canonical sequence separator.
const Arrow = "→"

// arrowReplacer rewrites every separator variant the state producers emit.
// Longer variants come first so "-->" is not split into "-" + "->".
var arrowReplacer = strings.NewReplacer(
	`\u2192`, Arrow,
	"-->", Arrow,
	"->", Arrow,
	"=>", Arrow,
	"⇒", Arrow,
	"⟶", Arrow,
	"➔", Arrow,
	"➜", Arrow,
	"➝", Arrow,
)

// NormalizeArrows replaces every arrow variant in s with [Arrow].
func NormalizeArrows(s string) string {
	return arrowReplacer.Replace(s)
}

// Value is a scalar field of the statistics document, kept as the raw JSON
// token so that numbers render exactly as the server wrote them.
//
// The zero Value is absent. JSON null and the empty string are also absent;
// 0 and false are present and render verbatim.
type Value struct {
	raw json.RawMessage
}

// NewValue builds a [Value] from any JSON-encodable value. It is mainly
// useful for constructing documents in code.
func NewValue(v any) Value {
	if v == nil {
		return Value{}
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return Value{}
	}
	return Value{raw: raw}
}

// UnmarshalJSON implements [json.Unmarshaler]. null leaves the value absent.
func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		v.raw = nil
		return nil
	}
	v.raw = append(v.raw[:0], b...)
	return nil
}

// MarshalJSON implements [json.Marshaler]. Absent values encode as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if len(v.raw) == 0 {
		return []byte("null"), nil
	}
	return v.raw, nil
}

// String returns the value as text: strings unquoted, everything else as the
// raw JSON token. Absent values return "".
func (v Value) String() string {
	if len(v.raw) == 0 {
		return ""
	}
	if v.raw[0] == '"' {
		var s string
		if err := json.Unmarshal(v.raw, &s); err == nil {
			return s
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, v.raw); err != nil {
		return string(v.raw)
	}
	return buf.String()
}

// Present reports whether the value carries something to display.
func (v Value) Present() bool {
	return v.String() != ""
}

// Display returns [Value.String], or [Placeholder] when the value is absent.
func (v Value) Display() string {
	if s := v.String(); s != "" {
		return s
	}
	return Placeholder
}

// StatisticsDocument is the payload served at /collatz_state.json.
//
// Every field is optional. Missing objects decode as nil and missing scalars
// as absent [Value]s; the card shows [Placeholder] for each.
type StatisticsDocument struct {
	GeneratedAt Value    `json:"generated_at"`
	Metrics     *Metrics `json:"metrics,omitempty"`
}

// Metrics groups the computed statistics.
type Metrics struct {
	LargestPrime   Value          `json:"largest_prime"`
	LatestExecTime Value          `json:"latest_exec_time"`
	MostEfficient  *MostEfficient `json:"most_efficient,omitempty"`
	HighestValue   *HighestValue  `json:"highest_value,omitempty"`
}

// MostEfficient is the prime with the best steps-to-value ratio.
type MostEfficient struct {
	Prime    Value `json:"prime"`
	Steps    Value `json:"steps"`
	Ratio    Value `json:"ratio"`
	Sequence Value `json:"sequence"`
}

// HighestValue is the run that reached the largest intermediate value.
type HighestValue struct {
	MaxValue Value `json:"max_value"`
	Prime    Value `json:"prime"`
	Sequence Value `json:"sequence"`
}

// Entry labels, in display order.
const (
	LabelLargestPrime  = "Largest Prime"
	LabelMostEfficient = "Most Efficient Prime"
	LabelHighestValue  = "Highest Value"
	LabelExecTime      = "Last Exec Time"
	LabelGenerated     = "Generated"
)

// Project maps a document onto what the card displays: five metric entries
// and two arrow-normalized sequences. A nil document projects to the same
// all-placeholder view as an empty one.
func Project(doc *StatisticsDocument) card.View {
	var (
		m   Metrics
		eff MostEfficient
		hv  HighestValue
		gen Value
	)
	if doc != nil {
		gen = doc.GeneratedAt
		if doc.Metrics != nil {
			m = *doc.Metrics
		}
	}
	if m.MostEfficient != nil {
		eff = *m.MostEfficient
	}
	if m.HighestValue != nil {
		hv = *m.HighestValue
	}

	return card.View{
		Entries: []card.Entry{
			{Term: LabelLargestPrime, Detail: m.LargestPrime.Display()},
			{Term: LabelMostEfficient, Detail: fmt.Sprintf("%s (%s steps, ratio %s)",
				eff.Prime.Display(), eff.Steps.Display(), eff.Ratio.Display())},
			{Term: LabelHighestValue, Detail: fmt.Sprintf("%s (prime %s)",
				hv.MaxValue.Display(), hv.Prime.Display())},
			{Term: LabelExecTime, Detail: m.LatestExecTime.Display() + " s"},
			{Term: LabelGenerated, Detail: gen.Display()},
		},
		EfficientSequence: NormalizeArrows(eff.Sequence.String()),
		HighValueSequence: NormalizeArrows(hv.Sequence.String()),
	}
}

// decodeStatistics parses a response body. A JSON null body yields (nil, nil).
func decodeStatistics(body []byte) (*StatisticsDocument, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errors.New("empty response body")
	}
	if bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var doc StatisticsDocument
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode statistics document: %w", err)
	}
	return &doc, nil
}
