package tri

import "testing"

func TestAnd(t *testing.T) {
	tests := []struct {
		a, b, want State
	}{
		{Yes, Yes, Yes},
		{Yes, No, No},
		{No, Yes, No},
		{Yes, Unknown, Unknown},
		{Unknown, Yes, Unknown},
		{Unknown, No, No},
		{No, Unknown, No},
		{Unknown, Unknown, Unknown},
		{No, No, No},
	}
	for _, tt := range tests {
		if got := And(tt.a, tt.b); got != tt.want {
			t.Errorf("And(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestOr(t *testing.T) {
	tests := []struct {
		a, b, want State
	}{
		{Yes, Yes, Yes},
		{Yes, No, Yes},
		{No, No, No},
		{Unknown, Yes, Yes},
		{No, Unknown, Unknown},
		{Unknown, Unknown, Unknown},
	}
	for _, tt := range tests {
		if got := Or(tt.a, tt.b); got != tt.want {
			t.Errorf("Or(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestNot(t *testing.T) {
	if Not(Yes) != No || Not(No) != Yes || Not(Unknown) != Unknown {
		t.Error("Not() does not swap Yes/No and keep Unknown")
	}
}

func TestAllFold(t *testing.T) {
	tests := []struct {
		name string
		in   []State
		want State
	}{
		{"empty is yes", nil, Yes},
		{"false dominates unknown", []State{Unknown, No}, No},
		{"unknown with rest true", []State{Yes, Unknown, Yes}, Unknown},
		{"all true", []State{Yes, Yes}, Yes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := All(tt.in...); got != tt.want {
				t.Errorf("All(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestAnyFold(t *testing.T) {
	tests := []struct {
		name string
		in   []State
		want State
	}{
		{"empty is no", nil, No},
		{"true wins", []State{Unknown, Yes, No}, Yes},
		{"all false", []State{No, No}, No},
		{"unknown otherwise", []State{No, Unknown}, Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Any(tt.in...); got != tt.want {
				t.Errorf("Any(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCollapse(t *testing.T) {
	if Collapse(Unknown, false) {
		t.Error("Collapse(Unknown, false) = true")
	}
	if !Collapse(Unknown, true) {
		t.Error("Collapse(Unknown, true) = false")
	}
	if !Collapse(Yes, false) || Collapse(No, true) {
		t.Error("Collapse() changed a definite value")
	}
}
