package permission

import (
	"slices"
	"testing"
)

func TestRegistryAssignsBitsInOrder(t *testing.T) {
	r, err := NewRegistry("a", "b", "c")
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	if bit, ok := r.Bit("c"); !ok || bit != 2 {
		t.Fatalf("expected bit 2, got %d %v", bit, ok)
	}
	if name, ok := r.Name(1); !ok || name != "b" {
		t.Fatalf("expected b, got %q", name)
	}
	if _, err := r.Register("a"); err == nil {
		t.Fatalf("expected duplicate rejected")
	}
	r.Freeze()
	if _, err := r.Register("d"); err == nil {
		t.Fatalf("expected frozen registry to reject")
	}
}

func TestRegistryLimit(t *testing.T) {
	r, _ := NewRegistry()
	for i := 0; i < MaxPermissions; i++ {
		if _, err := r.Register(string(rune('A' + i))); err != nil {
			t.Fatalf("register %d failed: %v", i, err)
		}
	}
	if _, err := r.Register("overflow"); err == nil {
		t.Fatalf("expected limit error")
	}
}

func TestMaskOperations(t *testing.T) {
	var m Mask
	m.Set(0)
	m.Set(63)
	m.Set(64)
	if !m.Has(0) || !m.Has(63) || m.Has(64) || m.Count() != 2 {
		t.Fatalf("unexpected mask %b", m)
	}
	m.Clear(0)
	if m.Has(0) {
		t.Fatalf("expected bit cleared")
	}
	if !Mask(0b111).Contains(0b101) || Mask(0b001).Contains(0b011) {
		t.Fatalf("unexpected Contains result")
	}
}

func TestRoleSetRejectsUnknownPermission(t *testing.T) {
	r, _ := NewRegistry("a")
	rs := NewRoleSet(r)
	if err := rs.Define("x", "missing"); err == nil {
		t.Fatalf("expected unknown permission rejected")
	}
	if err := rs.Define("", "a"); err == nil {
		t.Fatalf("expected empty role rejected")
	}
}

func TestStorefrontRolesAreNested(t *testing.T) {
	rs := Storefront()
	customer, _ := rs.Mask("customer")
	seller, _ := rs.Mask("seller")
	admin, _ := rs.Mask("admin")

	if !seller.Contains(customer) || !admin.Contains(seller) {
		t.Fatalf("expected nested role masks")
	}
	if rs.Allows("customer", ProductsWrite) || !rs.Allows("seller", ProductsWrite) {
		t.Fatalf("unexpected seller permission split")
	}
	if !rs.Allows("admin", UsersManage) || rs.Allows("ghost", OrdersRead) {
		t.Fatalf("unexpected admin permission")
	}

	perms := rs.Permissions("customer")
	want := []string{OrdersRead, OrdersCreate, ProfileWrite, ReviewsWrite}
	if !slices.Equal(perms, want) {
		t.Fatalf("customer permissions = %v, want %v", perms, want)
	}
	if rs.Permissions("ghost") != nil {
		t.Fatalf("unknown role must have no permissions")
	}
}
