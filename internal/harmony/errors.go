package harmony

import "fmt"

// ErrDegenerate is the sentinel returned by Search and MultipleSearch when
// the engine holds no memory slots or no decision variables. Use errors.Is
// to test for it.
var ErrDegenerate = &StateError{Op: "search", Reason: "engine has no memory slots or no decision variables"}

// StateError reports an operation attempted on an engine whose current state
// cannot support it.
type StateError struct {
	Op     string
	Reason string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// Is makes errors.Is(err, ErrDegenerate) work for any StateError instance.
func (e *StateError) Is(target error) bool {
	_, ok := target.(*StateError)
	return ok
}

// ValidationError reports a configuration value outside its legal range.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
