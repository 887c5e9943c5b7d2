package authz

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	return svc
}

func TestEnforceAdminWithRolePolicy(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("ops", "/admin/takeoffs/:id", "GET"); err != nil {
		t.Fatalf("grant role policy failed: %v", err)
	}
	if err := svc.SetAdminRoles(1, []string{"ops"}); err != nil {
		t.Fatalf("set admin roles failed: %v", err)
	}

	allow, err := svc.EnforceAdmin(1, "/api/v1/admin/takeoffs/42", "get")
	if err != nil {
		t.Fatalf("enforce allow failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected allow=true")
	}

	allow, err = svc.EnforceAdmin(1, "/api/v1/admin/takeoffs/42", "POST")
	if err != nil {
		t.Fatalf("enforce deny failed: %v", err)
	}
	if allow {
		t.Fatalf("expected allow=false")
	}
}

func TestSetAdminRolesOverride(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("ops", "/admin/orders", "GET"); err != nil {
		t.Fatalf("grant ops policy failed: %v", err)
	}
	if err := svc.GrantRolePolicy("finance", "/admin/reconciliations", "GET"); err != nil {
		t.Fatalf("grant finance policy failed: %v", err)
	}

	if err := svc.SetAdminRoles(2, []string{"ops"}); err != nil {
		t.Fatalf("set first role failed: %v", err)
	}
	roles, err := svc.GetAdminRoles(2)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:ops" {
		t.Fatalf("roles want [role:ops], got=%v", roles)
	}

	if err := svc.SetAdminRoles(2, []string{"finance"}); err != nil {
		t.Fatalf("set second role failed: %v", err)
	}
	roles, err = svc.GetAdminRoles(2)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:finance" {
		t.Fatalf("roles want [role:finance], got=%v", roles)
	}

	allow, err := svc.EnforceAdmin(2, "/admin/orders", "GET")
	if err != nil {
		t.Fatalf("enforce old role failed: %v", err)
	}
	if allow {
		t.Fatalf("expected old role permission removed")
	}

	allow, err = svc.EnforceAdmin(2, "/admin/reconciliations", "GET")
	if err != nil {
		t.Fatalf("enforce new role failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected new role permission granted")
	}
}

func TestNormalizeObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "/api/v1/admin/orders/:id", want: "/admin/orders/:id"},
		{in: "/admin/orders/:id", want: "/admin/orders/:id"},
		{in: "admin/orders", want: "/admin/orders"},
		{in: "/api/v1", want: "/"},
		{in: "", want: "/"},
	}
	for _, item := range cases {
		got := NormalizeObject(item.in)
		if got != item.want {
			t.Fatalf("normalize object failed, in=%q want=%q got=%q", item.in, item.want, got)
		}
	}
}

func TestBootstrapBuiltinRoles(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}

	roles, err := svc.ListRoles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	wantRoles := map[string]bool{
		"role:readonly_auditor": true,
		"role:operations":       true,
		"role:support":          true,
		"role:finance":          true,
	}
	for _, role := range roles {
		delete(wantRoles, role)
	}
	if len(wantRoles) != 0 {
		t.Fatalf("builtin roles missing: %v", wantRoles)
	}

	if err := svc.SetAdminRoles(3, []string{RoleOperations}); err != nil {
		t.Fatalf("set admin roles failed: %v", err)
	}

	cases := []struct {
		obj   string
		act   string
		allow bool
	}{
		{obj: "/api/v1/admin/transactions", act: "GET", allow: true},
		{obj: "/api/v1/admin/promo-codes/9", act: "PUT", allow: true},
		{obj: "/api/v1/admin/promo-codes/9/reset-reserved", act: "POST", allow: true},
		{obj: "/api/v1/admin/reconciliations/1/resolve", act: "POST", allow: false},
		{obj: "/api/v1/admin/users/5", act: "PATCH", allow: false},
		{obj: "/api/v1/admin/contact-messages/stats", act: "GET", allow: true},
		{obj: "/api/v1/admin/contact-messages/5", act: "DELETE", allow: false},
	}
	for _, tc := range cases {
		allow, err := svc.EnforceAdmin(3, tc.obj, tc.act)
		if err != nil {
			t.Fatalf("enforce %s %s failed: %v", tc.act, tc.obj, err)
		}
		if allow != tc.allow {
			t.Fatalf("enforce %s %s want %v got %v", tc.act, tc.obj, tc.allow, allow)
		}
	}

	if err := svc.SetAdminRoles(4, []string{RoleSupport}); err != nil {
		t.Fatalf("set admin roles failed: %v", err)
	}
	allow, err := svc.EnforceAdmin(4, "/api/v1/admin/contact-messages/5", "DELETE")
	if err != nil || !allow {
		t.Fatalf("support should delete contact messages, allow=%v err=%v", allow, err)
	}

	policies, err := svc.GetRolePolicies(RoleFinance)
	if err != nil {
		t.Fatalf("get finance policies failed: %v", err)
	}
	if len(policies) != 1 || policies[0].Object != "/admin/reconciliations/:id/resolve" {
		t.Fatalf("unexpected finance policies: %+v", policies)
	}
}

func TestBootstrapBuiltinRolesIdempotent(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	for i := 0; i < 2; i++ {
		if err := svc.BootstrapBuiltinRoles(); err != nil {
			t.Fatalf("bootstrap round %d failed: %v", i, err)
		}
	}
	policies, err := svc.GetRolePolicies(RoleReadonlyAuditor)
	if err != nil {
		t.Fatalf("get policies failed: %v", err)
	}
	if len(policies) != 1 {
		t.Fatalf("expected single readonly policy after repeated bootstrap, got %+v", policies)
	}
}

func TestGrantRolePolicyValidation(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	cases := []struct {
		name   string
		role   string
		object string
		action string
		want   error
	}{
		{name: "public route", role: "ops", object: "/api/v1/public/takeoffs", action: "GET", want: ErrObjectInvalid},
		{name: "unknown verb", role: "ops", object: "/admin/takeoffs", action: "PURGE", want: ErrActionInvalid},
		{name: "reserved role", role: "__anchor__", object: "/admin/takeoffs", action: "GET", want: ErrRoleReserved},
		{name: "bad role", role: "1-bad", object: "/admin/takeoffs", action: "GET", want: ErrRoleInvalid},
	}
	for _, tc := range cases {
		err := svc.GrantRolePolicy(tc.role, tc.object, tc.action)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: want %v got %v", tc.name, tc.want, err)
		}
	}
}

func TestRevokeRolePolicy(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("Promo Desk", "/admin/promo-codes", "*"); err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	if err := svc.SetAdminRoles(4, []string{"promo_desk"}); err != nil {
		t.Fatalf("set roles failed: %v", err)
	}
	allow, err := svc.EnforceAdmin(4, "/api/v1/admin/promo-codes", "POST")
	if err != nil || !allow {
		t.Fatalf("expected allow before revoke, allow=%v err=%v", allow, err)
	}

	if err := svc.RevokeRolePolicy("role:promo_desk", "/admin/promo-codes", "*"); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	allow, err = svc.EnforceAdmin(4, "/api/v1/admin/promo-codes", "POST")
	if err != nil {
		t.Fatalf("enforce failed: %v", err)
	}
	if allow {
		t.Fatalf("expected deny after revoke")
	}
}

func TestNilServiceUnavailable(t *testing.T) {
	var svc *Service
	if _, err := svc.EnforceAdmin(1, "/admin/takeoffs", "GET"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("want ErrUnavailable, got %v", err)
	}
	if err := svc.SetAdminRoles(0, nil); !errors.Is(err, ErrAdminRequired) {
		t.Fatalf("want ErrAdminRequired, got %v", err)
	}
}
