package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/okoro-dev/realtyhub/internal/cache"
	"github.com/okoro-dev/realtyhub/internal/config"
	"github.com/okoro-dev/realtyhub/internal/domain/home"
	"github.com/okoro-dev/realtyhub/internal/domain/message"
	"github.com/okoro-dev/realtyhub/internal/http/middlewares"
)

type HomesStore interface {
	Create(ctx context.Context, req home.CreateHomeRequest, realtorID string) (home.Home, error)
	List(ctx context.Context, filter home.ListHomesFilter) ([]home.Home, int, error)
	GetByID(ctx context.Context, id string) (home.Home, error)
	GetRealtorByHomeID(ctx context.Context, id string) (home.Realtor, error)
	Update(ctx context.Context, id string, req home.UpdateHomeRequest) (home.Home, error)
	Delete(ctx context.Context, id string) error
}

type MessagesStore interface {
	Create(ctx context.Context, body, homeID, buyerID, realtorID string) (message.Message, error)
	ListByHome(ctx context.Context, homeID string) ([]message.Thread, error)
}

type HomesHandler struct {
	homes    HomesStore
	messages MessagesStore
	listings *cache.ListingCache
	owners   *cache.Cache
}

func NewHomesHandler(homes HomesStore, messages MessagesStore, listings *cache.ListingCache, owners *cache.Cache) *HomesHandler {
	return &HomesHandler{
		homes:    homes,
		messages: messages,
		listings: listings,
		owners:   owners,
	}
}

type homesListResponse struct {
	Items []home.Home `json:"items"`
	Count int         `json:"count"`
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

func (h *HomesHandler) ListHomes(ctx *gin.Context) {
	filter, ok := parseListFilter(ctx)

	if !ok {
		return
	}

	var cacheKey string

	if h.listings != nil {
		var pt *string
		if filter.PropertyType != nil {
			s := string(*filter.PropertyType)
			pt = &s
		}
		cacheKey = cache.BuildHomesListKey(filter.Limit, filter.Offset, filter.City, pt, filter.MinPrice, filter.MaxPrice)

		var cached homesListResponse
		if h.listings.Get(ctx.Request.Context(), cacheKey, &cached) {
			ctx.JSON(http.StatusOK, cached)
			return
		}
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	homes, total, err := h.homes.List(cctx, filter)

	if err != nil {
		RespondInternal(ctx, "Could not list homes")
		return
	}

	if len(homes) == 0 {
		RespondNotFound(ctx, "No homes match the given filters")
		return
	}

	resp := homesListResponse{Items: homes, Count: total}

	if h.listings != nil {
		h.listings.Set(ctx.Request.Context(), cacheKey, resp)
	}

	ctx.JSON(http.StatusOK, resp)
}

func (h *HomesHandler) GetHome(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	hm, err := h.homes.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, home.ErrNotFound) {
			RespondNotFound(ctx, "Home not found")
			return
		}
		RespondInternal(ctx, "Could not fetch home")
		return
	}

	ctx.JSON(http.StatusOK, hm)
}

func (h *HomesHandler) CreateHome(ctx *gin.Context) {
	identity, ok := middlewares.IdentityFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req home.CreateHomeRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	hm, err := h.homes.Create(cctx, req, identity.ID)

	if err != nil {
		RespondInternal(ctx, "Could not create home")
		return
	}

	if h.listings != nil {
		h.listings.Invalidate(ctx.Request.Context())
	}

	ctx.JSON(http.StatusCreated, hm)
}

func (h *HomesHandler) UpdateHome(ctx *gin.Context) {
	id := ctx.Param("id")

	identity, ok := middlewares.IdentityFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req home.UpdateHomeRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	owner, err := h.realtorFor(cctx, id)

	if err != nil {
		if errors.Is(err, home.ErrNotFound) {
			RespondNotFound(ctx, "Home not found")
			return
		}
		RespondInternal(ctx, "Could not update home")
		return
	}

	// listings can only be changed by the realtor who owns them
	if owner.ID != identity.ID {
		RespondForbidden(ctx, "not_owner", "Only the listing realtor can modify this home")
		return
	}

	hm, err := h.homes.Update(cctx, id, req)

	if err != nil {
		if errors.Is(err, home.ErrNotFound) {
			RespondNotFound(ctx, "Home not found")
			return
		}
		RespondInternal(ctx, "Could not update home")
		return
	}

	if h.listings != nil {
		h.listings.Invalidate(ctx.Request.Context())
	}

	ctx.JSON(http.StatusOK, hm)
}

func (h *HomesHandler) DeleteHome(ctx *gin.Context) {
	id := ctx.Param("id")

	identity, ok := middlewares.IdentityFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	owner, err := h.realtorFor(cctx, id)

	if err != nil {
		if errors.Is(err, home.ErrNotFound) {
			RespondNotFound(ctx, "Home not found")
			return
		}
		RespondInternal(ctx, "Could not delete home")
		return
	}

	if owner.ID != identity.ID {
		RespondForbidden(ctx, "not_owner", "Only the listing realtor can delete this home")
		return
	}

	err = h.homes.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, home.ErrNotFound) {
			RespondNotFound(ctx, "Home not found")
			return
		}
		RespondInternal(ctx, "Could not delete home")
		return
	}

	if h.owners != nil {
		h.owners.Delete(ownerCacheKey(id))
	}

	if h.listings != nil {
		h.listings.Invalidate(ctx.Request.Context())
	}

	ctx.Status(http.StatusNoContent)
}

// Inquire lets a buyer message the realtor behind a listing.
func (h *HomesHandler) Inquire(ctx *gin.Context) {
	id := ctx.Param("id")

	identity, ok := middlewares.IdentityFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req message.InquireRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	owner, err := h.realtorFor(cctx, id)

	if err != nil {
		if errors.Is(err, home.ErrNotFound) {
			RespondNotFound(ctx, "Home not found")
			return
		}
		RespondInternal(ctx, "Could not send inquiry")
		return
	}

	msg, err := h.messages.Create(cctx, req.Message, id, identity.ID, owner.ID)

	if err != nil {
		RespondInternal(ctx, "Could not send inquiry")
		return
	}

	ctx.JSON(http.StatusCreated, msg)
}

// GetHomeMessages returns the inquiry thread to the listing's realtor.
func (h *HomesHandler) GetHomeMessages(ctx *gin.Context) {
	id := ctx.Param("id")

	identity, ok := middlewares.IdentityFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	owner, err := h.realtorFor(cctx, id)

	if err != nil {
		if errors.Is(err, home.ErrNotFound) {
			RespondNotFound(ctx, "Home not found")
			return
		}
		RespondInternal(ctx, "Could not fetch messages")
		return
	}

	if owner.ID != identity.ID {
		RespondForbidden(ctx, "not_owner", "Only the listing realtor can read these messages")
		return
	}

	threads, err := h.messages.ListByHome(cctx, id)

	if err != nil {
		RespondInternal(ctx, "Could not fetch messages")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": threads,
		"count": len(threads),
	})
}

func ownerCacheKey(homeID string) string {
	return "home_realtor:" + homeID
}

// realtorFor resolves the listing owner, through the small in-process
// cache when one is wired (the same lookup runs on every mutation).
func (h *HomesHandler) realtorFor(ctx context.Context, homeID string) (home.Realtor, error) {
	if h.owners != nil {
		if v, ok := h.owners.Get(ownerCacheKey(homeID)); ok {
			if rt, ok := v.(home.Realtor); ok {
				return rt, nil
			}
		}
	}

	rt, err := h.homes.GetRealtorByHomeID(ctx, homeID)

	if err != nil {
		return home.Realtor{}, err
	}

	if h.owners != nil {
		h.owners.Set(ownerCacheKey(homeID), rt)
	}

	return rt, nil
}

func parseListFilter(ctx *gin.Context) (home.ListHomesFilter, bool) {
	filter := home.ListHomesFilter{
		Limit:  defaultListLimit,
		Offset: 0,
	}

	if v := ctx.Query("city"); v != "" {
		filter.City = &v
	}

	if v := ctx.Query("minPrice"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			RespondBadRequest(ctx, "minPrice must be a non-negative number", nil)
			return filter, false
		}
		filter.MinPrice = &f
	}

	if v := ctx.Query("maxPrice"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			RespondBadRequest(ctx, "maxPrice must be a non-negative number", nil)
			return filter, false
		}
		filter.MaxPrice = &f
	}

	if v := ctx.Query("propertyType"); v != "" {
		pt := home.PropertyType(v)

		if pt != home.PropertyResidential && pt != home.PropertyCondo {
			RespondBadRequest(ctx, "propertyType must be RESIDENTIAL or CONDO", nil)
			return filter, false
		}
		filter.PropertyType = &pt
	}

	if v := ctx.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxListLimit {
			RespondBadRequest(ctx, "limit must be between 1 and 100", nil)
			return filter, false
		}
		filter.Limit = n
	}

	if v := ctx.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			RespondBadRequest(ctx, "offset must be non-negative", nil)
			return filter, false
		}
		filter.Offset = n
	}

	return filter, true
}
