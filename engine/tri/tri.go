// Package tri implements three-valued logic for knowledge-limited
// requirement evaluation.
package tri

// State is Yes, No or Unknown.
type State int

const (
	No State = iota
	Yes
	Unknown
)

// From converts a definite bool.
func From(b bool) State {
	if b {
		return Yes
	}
	return No
}

// And is No if either side is No, Unknown if either side is Unknown,
// otherwise Yes.
func And(a, b State) State {
	if a == No || b == No {
		return No
	}
	if a == Unknown || b == Unknown {
		return Unknown
	}
	return Yes
}

// Or is Yes if either side is Yes, Unknown if either side is Unknown,
// otherwise No.
func Or(a, b State) State {
	if a == Yes || b == Yes {
		return Yes
	}
	if a == Unknown || b == Unknown {
		return Unknown
	}
	return No
}

// Not swaps Yes and No. Unknown stays Unknown.
func Not(a State) State {
	switch a {
	case Yes:
		return No
	case No:
		return Yes
	default:
		return Unknown
	}
}

// All folds with And. An empty list is Yes.
func All(states ...State) State {
	out := Yes
	for _, s := range states {
		out = And(out, s)
		if out == No {
			return No
		}
	}
	return out
}

// Any folds with Or. An empty list is No.
func Any(states ...State) State {
	out := No
	for _, s := range states {
		out = Or(out, s)
		if out == Yes {
			return Yes
		}
	}
	return out
}

// Collapse turns Unknown into def.
func Collapse(s State, def bool) bool {
	if s == Unknown {
		return def
	}
	return s == Yes
}

func (s State) String() string {
	switch s {
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return "maybe"
	}
}
