package gate_test

import (
	"reflect"
	"testing"

	"github.com/diewo77/go-inventory/gate"
)

func TestRoleProfile_Can(t *testing.T) {
	p := gate.NewRoleProfile("user",
		gate.NewPermission("inventory", gate.ActionList),
		gate.NewPermission("invoice", gate.ActionView),
	)
	if p.Name() != "user" {
		t.Errorf("expected name user, got %s", p.Name())
	}
	if !p.Can("inventory:list") {
		t.Error("expected inventory:list")
	}
	if p.Can("inventory:create") {
		t.Error("did not expect inventory:create")
	}
	admin := gate.NewRoleProfile("admin", gate.PermissionAll)
	if !admin.Can("payment:create") {
		t.Error("admin should hold every permission")
	}
}

func TestRoleProfile_PermissionsSorted(t *testing.T) {
	p := gate.NewRoleProfile("x", "payment:list", "inventory:view", "invoice:list")
	want := []gate.Permission{"inventory:view", "invoice:list", "payment:list"}
	if got := p.Permissions(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v got %v", want, got)
	}
}
