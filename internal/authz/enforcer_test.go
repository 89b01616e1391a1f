package authz

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEmbeddedPolicy(t *testing.T) {
	e, err := NewEnforcer("")
	if err != nil {
		t.Fatalf("NewEnforcer: %v", err)
	}

	tests := []struct {
		role, path, method string
		want               bool
	}{
		{RoleLearner, "/api/skill-tracker", "GET", true},
		{RoleLearner, "/api/skill-tracker/progress", "PUT", true},
		{RoleLearner, "/api/skill-tracker/knowledge-options/frontend", "GET", true},
		{RoleLearner, "/api/courses/react-101/complete", "POST", true},
		{RoleLearner, "/api/courses/react-101/complete", "GET", false},
		{RoleLearner, "/api/admin/users/u1/tracker", "DELETE", false},
		{RoleAdmin, "/api/admin/users/u1/tracker", "DELETE", true},
		{RoleAdmin, "/api/skill-tracker/dashboard", "GET", true},
		{"guest", "/api/skill-tracker", "GET", false},
		{"", "/api/skill-tracker", "GET", false},
	}
	for _, tt := range tests {
		got, err := e.Allow(tt.role, tt.path, tt.method)
		if err != nil {
			t.Fatalf("Allow(%q, %q, %q): %v", tt.role, tt.path, tt.method, err)
		}
		if got != tt.want {
			t.Errorf("Allow(%q, %q, %q) = %v, want %v", tt.role, tt.path, tt.method, got, tt.want)
		}
	}
}

func TestImpliedRoles(t *testing.T) {
	e, err := NewEnforcer("")
	if err != nil {
		t.Fatal(err)
	}
	roles := e.ImpliedRoles(RoleAdmin)
	if len(roles) != 2 || roles[0] != RoleAdmin || roles[1] != RoleLearner {
		t.Errorf("ImpliedRoles(admin) = %v", roles)
	}
}

func TestPolicyFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.csv")
	if err := os.WriteFile(path, []byte("p, auditor, /api/admin/*, GET\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	e, err := NewEnforcer(path)
	if err != nil {
		t.Fatalf("NewEnforcer: %v", err)
	}
	if ok, _ := e.Allow("auditor", "/api/admin/users/u1/tracker", "GET"); !ok {
		t.Error("auditor GET denied")
	}
	if ok, _ := e.Allow(RoleLearner, "/api/skill-tracker", "GET"); ok {
		t.Error("file policy should replace the embedded one")
	}
}

func TestMalformedPolicy(t *testing.T) {
	e, err := NewEnforcer("")
	if err != nil {
		t.Fatal(err)
	}
	if err := loadPolicy(e.enforcer, "p, only-two"); err == nil {
		t.Error("malformed line accepted")
	}
}
