package middlewares_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/okoro-dev/realtyhub/internal/auth"
	"github.com/okoro-dev/realtyhub/internal/domain/account"
	"github.com/okoro-dev/realtyhub/internal/http/middlewares"
	"github.com/okoro-dev/realtyhub/internal/repo/postgres"
)

// gateFixture wires a real codec and resolver in front of an engine
// whose routes mirror the production table's shape.
type gateFixture struct {
	engine *gin.Engine
	codec  *auth.Manager
}

func newGateFixture(t *testing.T, accounts map[string]account.Account) *gateFixture {
	t.Helper()

	gin.SetMode(gin.TestMode)

	codec := auth.NewManager("secret", time.Hour)

	reader := &fakeAccountReader{
		getByID: func(_ context.Context, id string) (account.Account, error) {
			a, ok := accounts[id]
			if !ok {
				return account.Account{}, postgres.ErrAccountNotFound
			}
			return a, nil
		},
	}

	gate := middlewares.NewGate(middlewares.NewIdentityResolver(codec, reader))
	gate.RequireGroup("/admin", account.RoleAdmin)
	gate.Require(http.MethodGet, "/admin/reports", account.RoleBuyer, account.RoleRealtor, account.RoleAdmin)
	gate.Require(http.MethodPost, "/listings", account.RoleRealtor, account.RoleAdmin)
	gate.Require(http.MethodGet, "/me", account.RoleBuyer, account.RoleRealtor, account.RoleAdmin)

	ok := func(ctx *gin.Context) {
		identity, _ := middlewares.IdentityFromContext(ctx)
		ctx.JSON(http.StatusOK, gin.H{"id": identity.ID})
	}

	engine := gin.New()
	engine.Use(gate.Middleware())
	engine.GET("/public", ok)
	engine.GET("/administrator", ok)
	engine.GET("/admin/panel", ok)
	engine.GET("/admin/reports", ok)
	engine.POST("/listings", ok)
	engine.GET("/me", ok)

	return &gateFixture{engine: engine, codec: codec}
}

func (f *gateFixture) request(t *testing.T, method, path, accountID string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)

	if accountID != "" {
		token, err := f.codec.Issue("Someone", accountID)
		if err != nil {
			t.Fatalf("issue failed: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	return rec
}

func TestGateDecisions(t *testing.T) {
	accounts := map[string]account.Account{
		"buyer-1":   {ID: "buyer-1", Role: account.RoleBuyer},
		"realtor-1": {ID: "realtor-1", Role: account.RoleRealtor},
		"admin-1":   {ID: "admin-1", Role: account.RoleAdmin},
	}

	fixture := newGateFixture(t, accounts)

	tests := []struct {
		name      string
		method    string
		path      string
		accountID string
		status    int
	}{
		{"public without token", http.MethodGet, "/public", "", http.StatusOK},
		{"public with token", http.MethodGet, "/public", "buyer-1", http.StatusOK},
		{"group prefix stops at segment boundary", http.MethodGet, "/administrator", "", http.StatusOK},
		{"group route without token", http.MethodGet, "/admin/panel", "", http.StatusUnauthorized},
		{"group route wrong role", http.MethodGet, "/admin/panel", "buyer-1", http.StatusForbidden},
		{"group route admin", http.MethodGet, "/admin/panel", "admin-1", http.StatusOK},
		{"handler override still needs identity", http.MethodGet, "/admin/reports", "", http.StatusUnauthorized},
		{"handler override beats group default", http.MethodGet, "/admin/reports", "buyer-1", http.StatusOK},
		{"multi-role route realtor", http.MethodPost, "/listings", "realtor-1", http.StatusOK},
		{"multi-role route admin", http.MethodPost, "/listings", "admin-1", http.StatusOK},
		{"multi-role route buyer", http.MethodPost, "/listings", "buyer-1", http.StatusForbidden},
		{"multi-role route anonymous", http.MethodPost, "/listings", "", http.StatusUnauthorized},
		{"me buyer", http.MethodGet, "/me", "buyer-1", http.StatusOK},
		{"unmatched route falls through", http.MethodGet, "/nope", "", http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := fixture.request(t, tc.method, tc.path, tc.accountID)

			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tc.status, rec.Body.String())
			}
		})
	}
}

func TestGateDeletedAccountIsAnonymous(t *testing.T) {
	fixture := newGateFixture(t, map[string]account.Account{})

	// token verifies but the account no longer exists
	rec := fixture.request(t, http.MethodGet, "/me", "ghost-1")

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestGateStashesIdentity(t *testing.T) {
	accounts := map[string]account.Account{
		"realtor-1": {ID: "realtor-1", Role: account.RoleRealtor, Name: "Rhea"},
	}

	fixture := newGateFixture(t, accounts)

	rec := fixture.request(t, http.MethodPost, "/listings", "realtor-1")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	want := `"id":"realtor-1"`
	if body := rec.Body.String(); !strings.Contains(body, want) {
		t.Errorf("body %s does not carry the resolved identity", body)
	}
}
