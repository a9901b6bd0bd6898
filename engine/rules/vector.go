package rules

import "github.com/nathoo/civcore/types"

// AreOpposites reports whether two requirements can never both hold:
// same universal, range and survives, differing present flag.
func AreOpposites(a, b types.Requirement) bool {
	return a.Source.Kind == b.Source.Kind &&
		a.Source.Value == b.Source.Value &&
		a.Source.Name == b.Source.Name &&
		a.Range == b.Range &&
		a.Survives == b.Survives &&
		a.Present != b.Present
}

// FulfilledByGovernment reports whether reqs could be active under gov:
// no government requirement in the vector rules it out.
func FulfilledByGovernment(gov int, reqs []types.Requirement) bool {
	for _, r := range reqs {
		if r.Source.Kind != types.KindGovernment {
			continue
		}
		if r.Present && r.Source.Value != gov {
			return false
		}
		if !r.Present && r.Source.Value == gov {
			return false
		}
	}
	return true
}

// Describe renders a requirement the way rulesets write it.
func Describe(r types.Requirement) string {
	s := r.Source.Kind.String() + " " + r.Range.String() + " " + r.Source.Name
	if !r.Present {
		s = "!" + s
	}
	return s
}
