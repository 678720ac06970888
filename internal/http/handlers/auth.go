package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/okoro-dev/realtyhub/internal/config"
	"github.com/okoro-dev/realtyhub/internal/domain/account"
	"github.com/okoro-dev/realtyhub/internal/http/middlewares"
	"github.com/okoro-dev/realtyhub/internal/observability"
	"github.com/okoro-dev/realtyhub/internal/service"
)

// Keep this small interface so tests can fake the service easily.
type AuthService interface {
	Signup(ctx context.Context, p service.SignupParams, role account.Role) (string, error)
	Signin(ctx context.Context, email, password string) (string, error)
	IssueInvitation(email string, role account.Role) (string, error)
}

type AuthHandler struct {
	svc  AuthService
	prom *observability.Prom
}

func NewAuthHandler(svc AuthService, prom *observability.Prom) *AuthHandler {
	return &AuthHandler{
		svc:  svc,
		prom: prom,
	}
}

func (h *AuthHandler) count(op, result string) {
	if h.prom != nil {
		h.prom.AuthResults.WithLabelValues(op, result).Inc()
	}
}

type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone" binding:"required,min=7,max=20"`
	// invitation string, required for REALTOR/ADMIN signup
	ProductKey string `json:"productKey" binding:"omitempty"`
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type InvitationRequest struct {
	Email    string `json:"email" binding:"required,email"`
	UserType string `json:"userType" binding:"required,oneof=BUYER REALTOR ADMIN"`
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	role, err := account.ParseRole(ctx.Param("userType"))

	if err != nil {
		RespondBadRequest(ctx, "Unknown user type", nil)
		return
	}

	var req SignUpRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)

	defer cancel()

	credential, err := h.svc.Signup(cctx, service.SignupParams{
		Email:      req.Email,
		Password:   req.Password,
		Name:       req.Name,
		Phone:      req.Phone,
		Invitation: req.ProductKey,
	}, role)

	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvitationRequired), errors.Is(err, service.ErrInvalidInvitation):
			h.count("signup", "denied")
			RespondUnAuthorized(ctx, "unauthorized", "Missing or invalid product key")
		case errors.Is(err, service.ErrDuplicateAccount):
			h.count("signup", "denied")
			RespondConflict(ctx, "email_taken", "Email is already in use.")
		default:
			h.count("signup", "error")
			RespondInternal(ctx, "Could not create account")
		}
		return
	}

	h.count("signup", "ok")

	ctx.JSON(http.StatusCreated, gin.H{
		"token": credential,
	})
}

func (h *AuthHandler) SignIn(ctx *gin.Context) {
	var req SignInRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	credential, err := h.svc.Signin(cctx, req.Email, req.Password)

	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.count("signin", "denied")
			RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
			return
		}

		h.count("signin", "error")
		RespondInternal(ctx, "Could not sign in")
		return
	}

	h.count("signin", "ok")

	ctx.JSON(http.StatusOK, gin.H{
		"token": credential,
	})
}

// GenerateKey mints an invitation for an email/role pair. The route is
// ADMIN-gated: an open minting endpoint would defeat the whole scheme.
func (h *AuthHandler) GenerateKey(ctx *gin.Context) {
	var req InvitationRequest

	if !BindJSON(ctx, &req) {
		return
	}

	role, err := account.ParseRole(req.UserType)

	if err != nil {
		RespondBadRequest(ctx, "Unknown user type", nil)
		return
	}

	invitation, err := h.svc.IssueInvitation(req.Email, role)

	if err != nil {
		h.count("key", "error")
		RespondInternal(ctx, "Could not generate product key")
		return
	}

	h.count("key", "ok")

	ctx.JSON(http.StatusOK, gin.H{
		"productKey": invitation,
	})
}

// Me returns the resolved identity the gate attached to the request.
func (h *AuthHandler) Me(ctx *gin.Context) {
	identity, ok := middlewares.IdentityFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	ctx.JSON(http.StatusOK, identity)
}
