package middlewares_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/okoro-dev/realtyhub/internal/auth"
	"github.com/okoro-dev/realtyhub/internal/domain/account"
	"github.com/okoro-dev/realtyhub/internal/http/middlewares"
	"github.com/okoro-dev/realtyhub/internal/repo/postgres"
)

type fakeAccountReader struct {
	getByID func(ctx context.Context, id string) (account.Account, error)
}

func (f *fakeAccountReader) GetByID(ctx context.Context, id string) (account.Account, error) {
	return f.getByID(ctx, id)
}

func ginContext(authorization string) *gin.Context {
	gin.SetMode(gin.TestMode)

	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	if authorization != "" {
		ctx.Request.Header.Set("Authorization", authorization)
	}

	return ctx
}

func TestResolveValidCredential(t *testing.T) {
	codec := auth.NewManager("secret", time.Hour)

	token, err := codec.Issue("Alice", "acct-1")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	accounts := &fakeAccountReader{
		getByID: func(_ context.Context, id string) (account.Account, error) {
			if id != "acct-1" {
				t.Errorf("looked up id %q, want acct-1", id)
			}
			return account.Account{
				ID:    "acct-1",
				Email: "alice@x.com",
				Name:  "Alice",
				Role:  account.RoleRealtor,
			}, nil
		},
	}

	resolver := middlewares.NewIdentityResolver(codec, accounts)

	identity, ok := resolver.Resolve(ginContext("Bearer " + token))

	if !ok {
		t.Fatal("expected identity, got anonymous")
	}

	if identity.ID != "acct-1" || identity.Role != account.RoleRealtor {
		t.Errorf("identity = %+v, want acct-1/REALTOR", identity)
	}
}

func TestResolveAnonymous(t *testing.T) {
	codec := auth.NewManager("secret", time.Hour)

	valid, err := codec.Issue("Alice", "acct-1")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	expiredCodec := auth.NewManager("secret", -time.Minute)

	expired, err := expiredCodec.Issue("Alice", "acct-1")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	tests := []struct {
		name          string
		authorization string
		getByID       func(ctx context.Context, id string) (account.Account, error)
	}{
		{
			name:          "no header",
			authorization: "",
		},
		{
			name:          "wrong scheme",
			authorization: "Basic abc123",
		},
		{
			name:          "bearer without token",
			authorization: "Bearer ",
		},
		{
			name:          "malformed token",
			authorization: "Bearer not.a.jwt",
		},
		{
			name:          "expired token",
			authorization: "Bearer " + expired,
		},
		{
			name:          "account deleted after issue",
			authorization: "Bearer " + valid,
			getByID: func(context.Context, string) (account.Account, error) {
				return account.Account{}, postgres.ErrAccountNotFound
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			getByID := tc.getByID
			if getByID == nil {
				getByID = func(context.Context, string) (account.Account, error) {
					t.Error("store must not be consulted without a verified token")
					return account.Account{}, postgres.ErrAccountNotFound
				}
			}

			resolver := middlewares.NewIdentityResolver(codec, &fakeAccountReader{getByID: getByID})

			if _, ok := resolver.Resolve(ginContext(tc.authorization)); ok {
				t.Fatal("expected anonymous resolution")
			}
		})
	}
}
