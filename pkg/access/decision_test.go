package access

import "testing"

func TestDecisionOutcomes(t *testing.T) {
	t.Parallel()

	if !Allowed().IsAllowed() {
		t.Fatal("Allowed() should be allowed")
	}
	if !Denied().IsDenied() {
		t.Fatal("Denied() should be denied")
	}
	if !Neutral().IsNeutral() {
		t.Fatal("Neutral() should be neutral")
	}
	var zero Decision
	if !zero.IsNeutral() {
		t.Fatal("zero decision should default to neutral")
	}
}

func TestDecisionAnd(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b Decision
		want Outcome
	}{
		{name: "allowed and allowed", a: Allowed(), b: Allowed(), want: OutcomeAllowed},
		{name: "allowed and neutral", a: Allowed(), b: Neutral(), want: OutcomeNeutral},
		{name: "neutral and neutral", a: Neutral(), b: Neutral(), want: OutcomeNeutral},
		{name: "denied dominates allowed", a: Denied(), b: Allowed(), want: OutcomeDenied},
		{name: "denied dominates neutral", a: Neutral(), b: Denied(), want: OutcomeDenied},
	}

	for _, tt := range tests {
		if got := tt.a.And(tt.b).Outcome(); got != tt.want {
			t.Fatalf("%s: got %s want %s", tt.name, got, tt.want)
		}
	}
}

func TestDecisionAndMergesCacheMetadata(t *testing.T) {
	t.Parallel()

	a := Allowed().WithDependency("order:1").VaryPerPrincipal()
	b := Allowed().WithDependency("order:2", "order:1").VaryPerPermissions()

	combined := a.And(b)
	deps := combined.Dependencies()
	if len(deps) != 2 || deps[0] != "order:1" || deps[1] != "order:2" {
		t.Fatalf("unexpected merged dependencies %v", deps)
	}
	if !combined.VariesPerPrincipal() || !combined.VariesPerPermissions() {
		t.Fatal("expected vary markers to merge")
	}
}

func TestWithDependencyDeduplicates(t *testing.T) {
	t.Parallel()

	d := Neutral().WithDependency("order:1").WithDependency("order:1", "", "order:2")
	if deps := d.Dependencies(); len(deps) != 2 {
		t.Fatalf("expected 2 dependencies, got %v", deps)
	}
}

func TestAllowedIf(t *testing.T) {
	t.Parallel()

	if !AllowedIf(true).IsAllowed() {
		t.Fatal("AllowedIf(true) should allow")
	}
	if !AllowedIf(false).IsDenied() {
		t.Fatal("AllowedIf(false) should deny")
	}
}
