package auth_test

import (
	"testing"

	"github.com/okoro-dev/realtyhub/internal/auth"
	"github.com/okoro-dev/realtyhub/internal/domain/account"
)

func TestInviteSignVerify(t *testing.T) {
	s := auth.NewInviteSigner("invite-secret")

	inv, err := s.Sign("a@x.com", account.RoleRealtor)

	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if !s.Verify("a@x.com", account.RoleRealtor, inv) {
		t.Fatal("invitation should verify for the pair it was minted for")
	}
}

func TestInviteBindsEmailAndRole(t *testing.T) {
	s := auth.NewInviteSigner("invite-secret")

	inv, err := s.Sign("a@x.com", account.RoleRealtor)

	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	tests := []struct {
		name  string
		email string
		role  account.Role
	}{
		{"different role", "a@x.com", account.RoleAdmin},
		{"different email", "b@x.com", account.RoleRealtor},
		{"different everything", "b@x.com", account.RoleBuyer},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if s.Verify(tc.email, tc.role, inv) {
				t.Fatalf("invitation for (a@x.com, REALTOR) must not verify for (%s, %s)", tc.email, tc.role)
			}
		})
	}
}

func TestInviteSecretMatters(t *testing.T) {
	a := auth.NewInviteSigner("secret-a")
	b := auth.NewInviteSigner("secret-b")

	inv, err := a.Sign("a@x.com", account.RoleAdmin)

	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if b.Verify("a@x.com", account.RoleAdmin, inv) {
		t.Fatal("invitation must not verify under a different shared secret")
	}
}

func TestInviteOutputIsSalted(t *testing.T) {
	s := auth.NewInviteSigner("invite-secret")

	first, err := s.Sign("a@x.com", account.RoleRealtor)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	second, err := s.Sign("a@x.com", account.RoleRealtor)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if first == second {
		t.Fatal("two invitations for the same pair should differ (random salt)")
	}

	// both still verify
	if !s.Verify("a@x.com", account.RoleRealtor, first) || !s.Verify("a@x.com", account.RoleRealtor, second) {
		t.Fatal("both salted invitations should verify")
	}
}
