package domain

import "testing"

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"ADMIN":         RoleAdmin,
		" admin ":       RoleAdmin,
		"ROLE_ADMIN":    RoleAdmin,
		"role_admin":    RoleAdmin,
		"USER":          RoleUser,
		"ROLE_USER":     RoleUser,
		"":              RoleUser,
		"moderator":     RoleUser,
		"ADMINISTRATOR": RoleUser,
	}
	for in, want := range cases {
		if got := ParseRole(in); got != want {
			t.Fatalf("ParseRole(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestRole_Satisfies(t *testing.T) {
	if !RoleAdmin.Satisfies(RoleUser) || !RoleAdmin.Satisfies(RoleAdmin) || !RoleAdmin.Satisfies("") {
		t.Fatalf("ADMIN must satisfy every requirement")
	}
	if !RoleUser.Satisfies(RoleUser) || !RoleUser.Satisfies("") {
		t.Fatalf("USER must satisfy USER and any-authenticated")
	}
	if RoleUser.Satisfies(RoleAdmin) {
		t.Fatalf("USER must not satisfy ADMIN")
	}
	if Role("ROOT").Satisfies("") || Role("").Satisfies(RoleUser) {
		t.Fatalf("unknown roles satisfy nothing")
	}
	if RoleAdmin.Satisfies(Role("ROOT")) {
		t.Fatalf("unknown requirements are never satisfied")
	}
}

func TestUserPatch_Apply(t *testing.T) {
	u := &User{Username: "a", Email: "a@x.com", PasswordHash: "h", Role: RoleUser}
	email := "b@x.com"
	role := RoleAdmin
	p := UserPatch{Email: &email, Role: &role}
	if p.Empty() {
		t.Fatalf("patch with fields must not be empty")
	}
	p.Apply(u)
	if u.Username != "a" || u.Email != "b@x.com" || u.PasswordHash != "h" || u.Role != RoleAdmin {
		t.Fatalf("unexpected user after patch: %+v", u)
	}
	if !(UserPatch{}).Empty() {
		t.Fatalf("zero patch must be empty")
	}
}
