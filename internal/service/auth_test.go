package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/okoro-dev/realtyhub/internal/auth"
	"github.com/okoro-dev/realtyhub/internal/domain/account"
	"github.com/okoro-dev/realtyhub/internal/repo/postgres"
	"github.com/okoro-dev/realtyhub/internal/security"
	"github.com/okoro-dev/realtyhub/internal/service"
)

// fakeAccounts mimics the store contract including the unique email
// constraint, so racing creates behave like postgres does.
type fakeAccounts struct {
	mu      sync.Mutex
	byEmail map[string]account.Account
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{byEmail: make(map[string]account.Account)}
}

func (f *fakeAccounts) GetByEmail(_ context.Context, email string) (account.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	a, ok := f.byEmail[email]
	if !ok {
		return account.Account{}, postgres.ErrAccountNotFound
	}
	return a, nil
}

func (f *fakeAccounts) Create(_ context.Context, email, passwordHash, name, phone string, role account.Role) (account.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.byEmail[email]; exists {
		return account.Account{}, postgres.ErrEmailTaken
	}

	now := time.Now().UTC()
	a := account.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Phone:        phone,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.byEmail[email] = a
	return a, nil
}

func newAuthService(accounts *fakeAccounts) (*service.Auth, *auth.Manager, *auth.InviteSigner) {
	codec := auth.NewManager("test-jwt-secret", time.Hour)
	invites := auth.NewInviteSigner("test-invite-secret")

	return service.NewAuth(accounts, codec, invites), codec, invites
}

func TestSignupThenSigninRoundTrip(t *testing.T) {
	accounts := newFakeAccounts()
	svc, codec, _ := newAuthService(accounts)

	ctx := context.Background()

	_, err := svc.Signup(ctx, service.SignupParams{
		Email:    "bob@x.com",
		Password: "pw123456",
		Name:     "Bob",
		Phone:    "0400000000",
	}, account.RoleBuyer)

	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	credential, err := svc.Signin(ctx, "bob@x.com", "pw123456")

	if err != nil {
		t.Fatalf("signin failed: %v", err)
	}

	claims, err := codec.Verify(credential)

	if err != nil {
		t.Fatalf("issued credential should verify: %v", err)
	}

	stored, err := accounts.GetByEmail(ctx, "bob@x.com")
	if err != nil {
		t.Fatalf("stored account missing: %v", err)
	}

	if claims.AccountID() != stored.ID {
		t.Errorf("credential subject = %q, want stored id %q", claims.AccountID(), stored.ID)
	}

	if stored.Role != account.RoleBuyer {
		t.Errorf("stored role = %q, want BUYER", stored.Role)
	}
}

func TestSigninFailures(t *testing.T) {
	accounts := newFakeAccounts()
	svc, _, _ := newAuthService(accounts)

	ctx := context.Background()

	if _, err := svc.Signup(ctx, service.SignupParams{
		Email:    "bob@x.com",
		Password: "pw123456",
		Name:     "Bob",
		Phone:    "0400000000",
	}, account.RoleBuyer); err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "nobody@x.com", "pw123456"},
		{"wrong password", "bob@x.com", "wrongpw"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Signin(ctx, tc.email, tc.password)

			// both failures must collapse into the same error
			if !errors.Is(err, service.ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestPrivilegedSignupRequiresInvitation(t *testing.T) {
	for _, role := range []account.Role{account.RoleRealtor, account.RoleAdmin} {
		t.Run(string(role), func(t *testing.T) {
			accounts := newFakeAccounts()
			svc, _, invites := newAuthService(accounts)

			ctx := context.Background()
			params := service.SignupParams{
				Email:    "pro@x.com",
				Password: "pw123456",
				Name:     "Pro",
				Phone:    "0400000001",
			}

			_, err := svc.Signup(ctx, params, role)
			if !errors.Is(err, service.ErrInvitationRequired) {
				t.Fatalf("missing invitation: expected ErrInvitationRequired, got %v", err)
			}

			params.Invitation = "garbage"
			_, err = svc.Signup(ctx, params, role)
			if !errors.Is(err, service.ErrInvalidInvitation) {
				t.Fatalf("bogus invitation: expected ErrInvalidInvitation, got %v", err)
			}

			// invitation for the wrong role must not unlock this one
			otherRole := account.RoleRealtor
			if role == account.RoleRealtor {
				otherRole = account.RoleAdmin
			}
			wrongRole, err := invites.Sign(params.Email, otherRole)
			if err != nil {
				t.Fatalf("sign failed: %v", err)
			}
			params.Invitation = wrongRole
			_, err = svc.Signup(ctx, params, role)
			if !errors.Is(err, service.ErrInvalidInvitation) {
				t.Fatalf("cross-role invitation: expected ErrInvalidInvitation, got %v", err)
			}

			good, err := svc.IssueInvitation(params.Email, role)
			if err != nil {
				t.Fatalf("issue invitation failed: %v", err)
			}
			params.Invitation = good
			if _, err := svc.Signup(ctx, params, role); err != nil {
				t.Fatalf("matching invitation should pass: %v", err)
			}

			stored, err := accounts.GetByEmail(ctx, params.Email)
			if err != nil {
				t.Fatalf("account not created: %v", err)
			}
			if stored.Role != role {
				t.Errorf("stored role = %q, want %q", stored.Role, role)
			}
		})
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	accounts := newFakeAccounts()
	svc, _, _ := newAuthService(accounts)

	ctx := context.Background()
	params := service.SignupParams{
		Email:    "dup@x.com",
		Password: "pw123456",
		Name:     "Dup",
		Phone:    "0400000002",
	}

	if _, err := svc.Signup(ctx, params, account.RoleBuyer); err != nil {
		t.Fatalf("first signup failed: %v", err)
	}

	_, err := svc.Signup(ctx, params, account.RoleBuyer)
	if !errors.Is(err, service.ErrDuplicateAccount) {
		t.Fatalf("expected ErrDuplicateAccount, got %v", err)
	}
}

func TestSignupConcurrentDuplicates(t *testing.T) {
	accounts := newFakeAccounts()
	svc, _, _ := newAuthService(accounts)

	const attempts = 8

	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := svc.Signup(context.Background(), service.SignupParams{
				Email:    "race@x.com",
				Password: "pw123456",
				Name:     "Race",
				Phone:    "0400000003",
			}, account.RoleBuyer)
			results <- err
		}()
	}

	wg.Wait()
	close(results)

	succeeded := 0
	duplicates := 0

	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, service.ErrDuplicateAccount):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if succeeded != 1 {
		t.Errorf("exactly one signup should win, got %d", succeeded)
	}
	if duplicates != attempts-1 {
		t.Errorf("expected %d duplicate errors, got %d", attempts-1, duplicates)
	}
}

func TestPasswordStoredHashed(t *testing.T) {
	accounts := newFakeAccounts()
	svc, _, _ := newAuthService(accounts)

	ctx := context.Background()

	if _, err := svc.Signup(ctx, service.SignupParams{
		Email:    "bob@x.com",
		Password: "pw123456",
		Name:     "Bob",
		Phone:    "0400000000",
	}, account.RoleBuyer); err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	stored, err := accounts.GetByEmail(ctx, "bob@x.com")
	if err != nil {
		t.Fatalf("account missing: %v", err)
	}

	if stored.PasswordHash == "pw123456" {
		t.Fatal("password must not be stored in plaintext")
	}

	if err := security.CheckPassword(stored.PasswordHash, "pw123456"); err != nil {
		t.Errorf("stored hash should check against the original password: %v", err)
	}
}
