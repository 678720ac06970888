package middlewares

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/okoro-dev/realtyhub/internal/auth"
	"github.com/okoro-dev/realtyhub/internal/domain/account"
)

// Keep these interfaces small so tests can fake them easily.

type CredentialVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type AccountReader interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
}

// IdentityResolver is the single trust boundary turning an untrusted
// bearer string into a store-verified identity. The account is
// re-fetched on every request: the token proves who the caller is, the
// store says what they currently are. A token minted before an account
// was deleted therefore resolves to nothing.
type IdentityResolver struct {
	codec    CredentialVerifier
	accounts AccountReader
}

func NewIdentityResolver(codec CredentialVerifier, accounts AccountReader) *IdentityResolver {
	return &IdentityResolver{
		codec:    codec,
		accounts: accounts,
	}
}

// Resolve never produces an error: a missing header, a bad or expired
// token, and a vanished account all come back as (zero, false), which
// callers treat as anonymous.
func (r *IdentityResolver) Resolve(ctx *gin.Context) (account.Identity, bool) {
	authHeader := ctx.GetHeader("Authorization")

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return account.Identity{}, false
	}

	raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))

	if raw == "" {
		return account.Identity{}, false
	}

	claims, err := r.codec.Verify(raw)

	if err != nil {
		return account.Identity{}, false
	}

	acct, err := r.accounts.GetByID(ctx.Request.Context(), claims.AccountID())

	if err != nil {
		return account.Identity{}, false
	}

	return acct.Identity(), true
}

// IdentityFromContext returns the identity the gate stashed for the
// downstream handler.
func IdentityFromContext(ctx *gin.Context) (account.Identity, bool) {
	v, ok := ctx.Get(CtxIdentity)
	if !ok {
		return account.Identity{}, false
	}

	id, ok := v.(account.Identity)
	return id, ok
}
