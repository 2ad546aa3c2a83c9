package access

// Outcome is the tri-state result of an access check. Neutral means the check
// has no opinion: other access layers may still allow the operation, so it
// must never be collapsed into Denied by the resolver itself.
type Outcome string

const (
	OutcomeAllowed Outcome = "allowed"
	OutcomeDenied  Outcome = "denied"
	OutcomeNeutral Outcome = "neutral"
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	return string(o)
}

// Decision carries an access outcome plus the cache metadata callers need to
// invalidate it correctly: dependency tags for the resources the decision was
// derived from, and vary markers for decisions that differ per principal or
// per permission configuration.
type Decision struct {
	outcome         Outcome
	dependencies    []string
	varyPrincipal   bool
	varyPermissions bool
}

// Allowed builds a positive decision.
func Allowed() Decision {
	return Decision{outcome: OutcomeAllowed}
}

// Denied builds a negative decision.
func Denied() Decision {
	return Decision{outcome: OutcomeDenied}
}

// Neutral builds a no-opinion decision.
func Neutral() Decision {
	return Decision{outcome: OutcomeNeutral}
}

// AllowedIf maps a boolean check onto Allowed/Denied. Used by call sites that
// require a binary answer, such as checkout access.
func AllowedIf(ok bool) Decision {
	if ok {
		return Allowed()
	}
	return Denied()
}

// Outcome returns the decision's outcome.
func (d Decision) Outcome() Outcome {
	if d.outcome == "" {
		return OutcomeNeutral
	}
	return d.outcome
}

// IsAllowed reports whether the decision grants access.
func (d Decision) IsAllowed() bool {
	return d.outcome == OutcomeAllowed
}

// IsDenied reports whether the decision forbids access.
func (d Decision) IsDenied() bool {
	return d.outcome == OutcomeDenied
}

// IsNeutral reports whether the decision has no opinion.
func (d Decision) IsNeutral() bool {
	return d.Outcome() == OutcomeNeutral
}

// WithDependency appends cache dependency tags, skipping duplicates.
func (d Decision) WithDependency(tags ...string) Decision {
	for _, tag := range tags {
		if tag == "" || d.hasDependency(tag) {
			continue
		}
		d.dependencies = append(append([]string(nil), d.dependencies...), tag)
	}
	return d
}

// Dependencies returns the cache dependency tags in insertion order.
func (d Decision) Dependencies() []string {
	return append([]string(nil), d.dependencies...)
}

// VaryPerPrincipal marks the decision as principal-specific so it is never
// cached across users.
func (d Decision) VaryPerPrincipal() Decision {
	d.varyPrincipal = true
	return d
}

// VaryPerPermissions marks the decision as dependent on the permission
// configuration so permission changes invalidate it.
func (d Decision) VaryPerPermissions() Decision {
	d.varyPermissions = true
	return d
}

// VariesPerPrincipal reports whether the decision is principal-specific.
func (d Decision) VariesPerPrincipal() bool {
	return d.varyPrincipal
}

// VariesPerPermissions reports whether the decision depends on the permission
// configuration.
func (d Decision) VariesPerPermissions() bool {
	return d.varyPermissions
}

// And combines two decisions conjunctively. Denied dominates; both must be
// Allowed for the combination to allow; anything else is Neutral. Cache
// metadata from both sides is merged so the combined decision invalidates
// whenever either input would.
func (d Decision) And(other Decision) Decision {
	combined := Decision{
		varyPrincipal:   d.varyPrincipal || other.varyPrincipal,
		varyPermissions: d.varyPermissions || other.varyPermissions,
		dependencies:    d.dependencies,
	}
	combined = combined.WithDependency(other.dependencies...)

	switch {
	case d.IsDenied() || other.IsDenied():
		combined.outcome = OutcomeDenied
	case d.IsAllowed() && other.IsAllowed():
		combined.outcome = OutcomeAllowed
	default:
		combined.outcome = OutcomeNeutral
	}
	return combined
}

func (d Decision) hasDependency(tag string) bool {
	for _, existing := range d.dependencies {
		if existing == tag {
			return true
		}
	}
	return false
}
