package enums

import "testing"

func TestParseRole(t *testing.T) {
	role, err := ParseRole(" Admin ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if role != RoleAdmin {
		t.Fatalf("expected admin, got %s", role)
	}
	if _, err := ParseRole("root"); err == nil {
		t.Fatal("expected error for unknown role")
	}
	if RoleSuperadmin.String() != "superadmin" || !RoleCustomer.IsValid() || Role("x").IsValid() {
		t.Fatal("unexpected role helpers")
	}
}

func TestParseRoles(t *testing.T) {
	roles, err := ParseRoles("admin, customer,,")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(roles) != 2 || roles[0] != RoleAdmin || roles[1] != RoleCustomer {
		t.Fatalf("unexpected roles %v", roles)
	}
	if roles, err := ParseRoles(""); err != nil || len(roles) != 0 {
		t.Fatalf("expected empty roles, got %v %v", roles, err)
	}
	if _, err := ParseRoles("admin,nope"); err == nil {
		t.Fatal("expected error for unknown role in list")
	}
}

func TestParsePaymentMethod(t *testing.T) {
	method, err := ParsePaymentMethod("pix")
	if err != nil || method != PaymentMethodPix {
		t.Fatalf("expected pix, got %s %v", method, err)
	}
	if _, err := ParsePaymentMethod("cash"); err == nil {
		t.Fatal("expected error for unknown method")
	}
	if !PaymentMethodBoleto.IsValid() {
		t.Fatal("boleto should be valid")
	}
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("processing")
	if err != nil || status != OrderStatusProcessing {
		t.Fatalf("expected processing, got %s %v", status, err)
	}
	if _, err := ParseOrderStatus("shipped"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}
