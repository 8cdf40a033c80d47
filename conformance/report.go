package conformance

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mirrorcheck/mirrorcheck"
	"github.com/mirrorcheck/mirrorcheck/errors"
)

// Sentinel is the fixed success message emitted when every pair passes.
const Sentinel = "ALL STRUCTS OK"

// Outcome classifies one pair's result.
type Outcome int

const (
	// Pass means both sides resolved and their layouts agree.
	Pass Outcome = iota
	// Fail means both sides resolved but their layouts disagree.
	Fail
	// Unresolved means a side could not be measured at all.
	Unresolved
)

var outcomeNames = map[Outcome]string{
	Pass:       "pass",
	Fail:       "fail",
	Unresolved: "unresolved",
}

func (o Outcome) String() string {
	if s, ok := outcomeNames[o]; ok {
		return s
	}
	return "unknown"
}

// Side names which half of a pair an unresolved outcome concerns.
type Side string

const (
	SideBinding Side = "binding"
	SideNative  Side = "native"
)

// Result is the outcome of checking one pair.
//
// Binding and Native hold the full measurements when their side resolved, so
// report consumers can show more than the aggregate sizes. For Unresolved
// results the failed side's measurement is zero and Side says which one.
type Result struct {
	Pair    Pair
	Outcome Outcome

	Binding mirrorcheck.Measurement
	Native  mirrorcheck.Measurement

	// Side is set on Unresolved results.
	Side Side
	// Reason is the human-readable diagnostic for Fail and Unresolved.
	Reason string
	// Kind is the machine-readable failure category, empty for Pass.
	Kind errors.Kind
}

// Report is the aggregate of one conformance run: every pair's result in
// registry order plus the overall verdict.
type Report struct {
	Results []Result
	Strict  bool
}

// OK reports the terminal verdict: true only when every pair passed.
func (r *Report) OK() bool {
	for _, res := range r.Results {
		if res.Outcome != Pass {
			return false
		}
	}
	return true
}

// Counts returns how many pairs passed, failed, and did not resolve.
func (r *Report) Counts() (pass, fail, unresolved int) {
	for _, res := range r.Results {
		switch res.Outcome {
		case Pass:
			pass++
		case Fail:
			fail++
		case Unresolved:
			unresolved++
		}
	}
	return
}

// Failures returns the non-passing results in registry order.
func (r *Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Outcome != Pass {
			out = append(out, res)
		}
	}
	return out
}

// Err returns nil when the run passed, and a ChecksFailedError describing
// every non-passing pair otherwise. This is the hard gate for automation:
// callers exit non-zero whenever Err is non-nil.
func (r *Report) Err() error {
	var failures []errors.PairFailure
	for _, res := range r.Results {
		if res.Outcome == Pass {
			continue
		}
		reason := res.Reason
		if res.Outcome == Unresolved {
			reason = fmt.Sprintf("%s side unresolved: %s", res.Side, res.Reason)
		}
		failures = append(failures, errors.PairFailure{
			Group:   res.Pair.Group,
			Binding: res.Pair.Binding,
			Native:  res.Pair.Native,
			Reason:  reason,
			Kind:    res.Kind,
		})
	}
	if len(failures) == 0 {
		return nil
	}
	return errors.NewChecksFailedError(failures)
}

// Write renders the human-readable report: one diagnostic line per
// non-passing pair, then the terminal verdict. A fully passing run prints
// only the success sentinel.
func (r *Report) Write(w io.Writer) error {
	for _, res := range r.Results {
		if res.Outcome == Pass {
			continue
		}
		label := res.Pair.Binding
		if res.Pair.Group != "" {
			label = "[" + res.Pair.Group + "] " + label
		}
		var err error
		switch res.Outcome {
		case Fail:
			_, err = fmt.Fprintf(w, "FAIL       %s: %s\n", label, res.Reason)
		case Unresolved:
			_, err = fmt.Fprintf(w, "UNRESOLVED %s: %s side: %s\n", label, res.Side, res.Reason)
		}
		if err != nil {
			return err
		}
	}

	if r.OK() {
		_, err := fmt.Fprintln(w, Sentinel)
		return err
	}
	_, fail, unresolved := r.Counts()
	_, err := fmt.Fprintf(w, "FAILED: %d of %d mirror pairs did not conform (%d mismatched, %d unresolved)\n",
		fail+unresolved, len(r.Results), fail, unresolved)
	return err
}

// jsonReport is the wire shape of a report.
type jsonReport struct {
	OK         bool         `json:"ok"`
	Checked    int          `json:"checked"`
	Passed     int          `json:"passed"`
	Failed     int          `json:"failed"`
	Unresolved int          `json:"unresolved"`
	Strict     bool         `json:"strict,omitempty"`
	Results    []jsonResult `json:"results"`
}

type jsonResult struct {
	Group   string     `json:"group,omitempty"`
	Binding string     `json:"binding"`
	Native  string     `json:"native"`
	Outcome string     `json:"outcome"`
	Sizes   *jsonSizes `json:"sizes,omitempty"`
	Side    string     `json:"side,omitempty"`
	Reason  string     `json:"reason,omitempty"`
	Kind    string     `json:"kind,omitempty"`
}

type jsonSizes struct {
	Binding uint64 `json:"binding"`
	Native  uint64 `json:"native"`
}

// WriteJSON renders the report as a single JSON document for automation.
func (r *Report) WriteJSON(w io.Writer) error {
	pass, fail, unresolved := r.Counts()
	doc := jsonReport{
		OK:         r.OK(),
		Checked:    len(r.Results),
		Passed:     pass,
		Failed:     fail,
		Unresolved: unresolved,
		Strict:     r.Strict,
		Results:    make([]jsonResult, 0, len(r.Results)),
	}
	for _, res := range r.Results {
		jr := jsonResult{
			Group:   res.Pair.Group,
			Binding: res.Pair.Binding,
			Native:  res.Pair.Native,
			Outcome: res.Outcome.String(),
			Side:    string(res.Side),
			Reason:  res.Reason,
			Kind:    string(res.Kind),
		}
		if res.Outcome != Unresolved {
			jr.Sizes = &jsonSizes{Binding: res.Binding.Size, Native: res.Native.Size}
		}
		doc.Results = append(doc.Results, jr)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
