package buildpipeline

import "fmt"

// StepError is a fatal failure of one pipeline step. Target is empty for
// failures before any target was assembled.
type StepError struct {
	Stage  Stage
	Target string
	Err    error
}

func (e *StepError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s: %s failed: %v", e.Target, e.Stage, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

func stepError(stage Stage, target string, err error) error {
	return &StepError{Stage: stage, Target: target, Err: err}
}
