package plan

import (
	"fmt"
)

// Validate checks the invariants every assembled target must hold. A
// failure means the plan was built wrongly; it is never a runtime condition.
func Validate(targets []Target) error {
	if len(targets) == 0 {
		return fmt.Errorf("no targets: %w", ErrInconsistent)
	}
	names := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		if t.Name == "" {
			return fmt.Errorf("target without a name: %w", ErrInconsistent)
		}
		if _, dup := names[t.Name]; dup {
			return fmt.Errorf("%s: target listed twice: %w", t.Name, ErrInconsistent)
		}
		names[t.Name] = struct{}{}
		if err := validateTarget(t); err != nil {
			return fmt.Errorf("%s: %v: %w", t.Name, err, ErrInconsistent)
		}
	}
	return nil
}

func validateTarget(t Target) error {
	if t.Archive == "" {
		return fmt.Errorf("no archive name")
	}
	if len(t.Sources) == 0 {
		return fmt.Errorf("no sources")
	}
	seen := make(map[string]struct{}, len(t.Defines))
	for _, def := range t.Defines {
		if def.Name == "" {
			return fmt.Errorf("define without a name")
		}
		if _, dup := seen[def.Name]; dup {
			return fmt.Errorf("%s defined twice", def.Name)
		}
		seen[def.Name] = struct{}{}
	}
	if t.Representation != RepresentationUnset {
		other := RepresentationWide
		if t.Representation == RepresentationWide {
			other = RepresentationNarrow
		}
		for _, def := range t.Representation.Defines() {
			if !t.Defines.Has(def.Name) {
				return fmt.Errorf("%s representation without %s", t.Representation, def.Name)
			}
		}
		for _, def := range other.Defines() {
			if t.Defines.Has(def.Name) {
				return fmt.Errorf("%s representation also defines %s", t.Representation, def.Name)
			}
		}
	}
	return nil
}
