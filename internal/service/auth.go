package service

import (
	"context"
	"errors"

	"github.com/okoro-dev/realtyhub/internal/domain/account"
	"github.com/okoro-dev/realtyhub/internal/repo/postgres"
	"github.com/okoro-dev/realtyhub/internal/security"
)

var (
	// one message for unknown email and wrong password; separate texts
	// would leak which emails have accounts
	ErrInvalidCredentials = errors.New("email or password is incorrect")

	ErrDuplicateAccount   = errors.New("email is already registered")
	ErrInvitationRequired = errors.New("invitation required for this role")
	ErrInvalidInvitation  = errors.New("invitation does not match")
)

type AccountStore interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Create(ctx context.Context, email, passwordHash, name, phone string, role account.Role) (account.Account, error)
}

type CredentialIssuer interface {
	Issue(name, accountID string) (string, error)
}

type InvitationSigner interface {
	Sign(email string, role account.Role) (string, error)
	Verify(email string, role account.Role, invitation string) bool
}

// Auth orchestrates signup, signin and invitation issuance over the
// account store, the credential codec and the invitation signer.
type Auth struct {
	accounts AccountStore
	codec    CredentialIssuer
	invites  InvitationSigner
}

func NewAuth(accounts AccountStore, codec CredentialIssuer, invites InvitationSigner) *Auth {
	return &Auth{
		accounts: accounts,
		codec:    codec,
		invites:  invites,
	}
}

type SignupParams struct {
	Email      string
	Password   string
	Name       string
	Phone      string
	Invitation string
}

// Signup registers an account under the given role and returns an
// issued credential. Non-buyer roles must present an invitation minted
// for exactly this email and role. Duplicate emails lose at the store's
// unique constraint, so a racing pair of signups resolves to exactly
// one account.
func (s *Auth) Signup(ctx context.Context, p SignupParams, role account.Role) (string, error) {
	if role != account.RoleBuyer {
		if p.Invitation == "" {
			return "", ErrInvitationRequired
		}

		if !s.invites.Verify(p.Email, role, p.Invitation) {
			return "", ErrInvalidInvitation
		}
	}

	hash, err := security.HashPassword(p.Password)

	if err != nil {
		return "", err
	}

	acct, err := s.accounts.Create(ctx, p.Email, hash, p.Name, p.Phone, role)

	if err != nil {
		if errors.Is(err, postgres.ErrEmailTaken) {
			return "", ErrDuplicateAccount
		}

		return "", err
	}

	return s.codec.Issue(acct.Name, acct.ID)
}

func (s *Auth) Signin(ctx context.Context, email, password string) (string, error) {
	acct, err := s.accounts.GetByEmail(ctx, email)

	if err != nil {
		if errors.Is(err, postgres.ErrAccountNotFound) {
			return "", ErrInvalidCredentials
		}

		return "", err
	}

	err = security.CheckPassword(acct.PasswordHash, password)

	if err != nil {
		return "", ErrInvalidCredentials
	}

	return s.codec.Issue(acct.Name, acct.ID)
}

// IssueInvitation mints an invitation for the pair; pure delegation.
func (s *Auth) IssueInvitation(email string, role account.Role) (string, error) {
	return s.invites.Sign(email, role)
}
