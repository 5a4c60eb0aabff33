package smoke

import "time"

type Step struct {
	Flow     string        `json:"flow" yaml:"flow"`
	Name     string        `json:"name" yaml:"name"`
	Passed   bool          `json:"passed" yaml:"passed"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Results accumulates step outcomes for one run. It is owned by the caller
// and is not safe for concurrent use.
type Results struct {
	Steps []Step `json:"steps" yaml:"steps"`
}

func (r *Results) Record(flow, name string, started time.Time, err error) {
	step := Step{
		Flow:     flow,
		Name:     name,
		Passed:   err == nil,
		Duration: time.Since(started),
	}
	if err != nil {
		step.Error = err.Error()
	}
	r.Steps = append(r.Steps, step)
}

func (r *Results) Passed() int {
	n := 0
	for _, s := range r.Steps {
		if s.Passed {
			n++
		}
	}
	return n
}

func (r *Results) Failed() int {
	return len(r.Steps) - r.Passed()
}

func (r *Results) OK() bool {
	return r.Failed() == 0
}
