package access

import "testing"

func TestPolicyAllowed(t *testing.T) {
	p := NewPolicy([]int64{10, 20}, []int64{10})

	if !p.Allowed(10) || !p.Allowed(20) {
		t.Error("listed users must be allowed")
	}
	if p.Allowed(30) {
		t.Error("unlisted user must be denied")
	}
}

func TestPolicyRoles(t *testing.T) {
	p := NewPolicy([]int64{10, 20}, []int64{10})

	if got := p.RoleOf(10); got != RoleOwner {
		t.Errorf("RoleOf(10) = %v, want owner", got)
	}
	if got := p.RoleOf(20); got != RoleEmployee {
		t.Errorf("RoleOf(20) = %v, want employee", got)
	}
}

func TestCapabilities(t *testing.T) {
	owner := CapabilitiesOf(RoleOwner)
	if !owner.CanViewAnalysis || !owner.CanEditBalance || !owner.CanEditDebts {
		t.Errorf("owner capabilities = %+v, want all true", owner)
	}

	employee := CapabilitiesOf(RoleEmployee)
	if employee != (Capabilities{}) {
		t.Errorf("employee capabilities = %+v, want none", employee)
	}
}
