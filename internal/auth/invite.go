package auth

import (
	"fmt"

	"github.com/okoro-dev/realtyhub/internal/domain/account"
	"golang.org/x/crypto/bcrypt"
)

// Invitations ("product keys") gate signup for privileged roles. The
// signed string is a bcrypt hash of email-role-secret: the embedded
// random salt means two invitations for the same pair never look alike,
// and verification goes through bcrypt's constant-time compare rather
// than string equality.

const inviteCost = 10

type InviteSigner struct {
	secret string
}

func NewInviteSigner(secret string) *InviteSigner {
	return &InviteSigner{secret: secret}
}

func (s *InviteSigner) plaintext(email string, role account.Role) string {
	return fmt.Sprintf("%s-%s-%s", email, role, s.secret)
}

// Sign mints an invitation binding the email to the target role.
func (s *InviteSigner) Sign(email string, role account.Role) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(s.plaintext(email, role)), inviteCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// Verify reports whether the invitation was minted for exactly this
// email and role under the shared secret.
func (s *InviteSigner) Verify(email string, role account.Role, invitation string) bool {
	return bcrypt.CompareHashAndPassword([]byte(invitation), []byte(s.plaintext(email, role))) == nil
}
