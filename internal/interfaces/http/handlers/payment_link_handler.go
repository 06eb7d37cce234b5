package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"link-pago.backend/internal/domain/entities"
	domainerrors "link-pago.backend/internal/domain/errors"
	"link-pago.backend/internal/interfaces/http/middleware"
	"link-pago.backend/internal/interfaces/http/response"
	"link-pago.backend/internal/usecases"
	"link-pago.backend/pkg/utils"
)

type PaymentLinkService interface {
	CreateLink(ctx context.Context, input usecases.CreateLinkInput) (*entities.PaymentLink, error)
	ListLinks(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.PaymentLink, int64, error)
	GetLink(ctx context.Context, id, userID uuid.UUID) (*entities.PaymentLink, error)
	UpdateLink(ctx context.Context, id, userID uuid.UUID, input usecases.UpdateLinkInput) (*entities.PaymentLink, error)
	CancelLink(ctx context.Context, id, userID uuid.UUID) error
}

// PaymentLinkHandler handles the merchant link CRUD endpoints
type PaymentLinkHandler struct {
	linkUsecase PaymentLinkService
	appURL      string
}

func NewPaymentLinkHandler(linkUsecase PaymentLinkService, appURL string) *PaymentLinkHandler {
	return &PaymentLinkHandler{linkUsecase: linkUsecase, appURL: appURL}
}

func (h *PaymentLinkHandler) currentUser(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(middleware.CurrentUserID(c))
	if err != nil {
		response.Error(c, domainerrors.Unauthorized("user not authenticated"))
		return uuid.Nil, false
	}
	return id, true
}

// linkView decorates a link with its shareable URL
func (h *PaymentLinkHandler) linkView(link *entities.PaymentLink) gin.H {
	return gin.H{
		"link":   link,
		"payUrl": h.appURL + "/pay/" + link.Slug,
	}
}

type createLinkRequest struct {
	Amount      int                    `json:"amount" binding:"required"`
	Description string                 `json:"description" binding:"required"`
	SingleUse   bool                   `json:"singleUse"`
	ExpiresAt   *time.Time             `json:"expiresAt"`
	ExtraData   map[string]interface{} `json:"extraData"`
}

// CreateLink creates a new payment link
// POST /api/v1/links
func (h *PaymentLinkHandler) CreateLink(c *gin.Context) {
	var req createLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	link, err := h.linkUsecase.CreateLink(c.Request.Context(), usecases.CreateLinkInput{
		UserID:      userID,
		Amount:      req.Amount,
		Description: req.Description,
		SingleUse:   req.SingleUse,
		ExpiresAt:   req.ExpiresAt,
		ExtraData:   req.ExtraData,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, h.linkView(link))
}

// ListLinks lists the merchant's links, newest first
// GET /api/v1/links
func (h *PaymentLinkHandler) ListLinks(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	params := utils.GetPaginationParams(page, limit)

	links, total, err := h.linkUsecase.ListLinks(c.Request.Context(), userID, params.Limit, params.CalculateOffset())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"links":      links,
		"pagination": utils.CalculateMeta(total, params.Page, params.Limit),
	})
}

// GetLink gets one of the merchant's links by ID
// GET /api/v1/links/:id
func (h *PaymentLinkHandler) GetLink(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid link ID"))
		return
	}

	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	link, err := h.linkUsecase.GetLink(c.Request.Context(), id, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, h.linkView(link))
}

type updateLinkRequest struct {
	Description *string    `json:"description"`
	ExpiresAt   *time.Time `json:"expiresAt"`
	Status      *string    `json:"status"`
}

// UpdateLink patches mutable link fields; absent fields are left untouched
// PATCH /api/v1/links/:id
func (h *PaymentLinkHandler) UpdateLink(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid link ID"))
		return
	}

	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req updateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	link, err := h.linkUsecase.UpdateLink(c.Request.Context(), id, userID, usecases.UpdateLinkInput{
		Description: null.StringFromPtr(req.Description),
		ExpiresAt:   null.TimeFromPtr(req.ExpiresAt),
		Status:      null.StringFromPtr(req.Status),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, h.linkView(link))
}

// CancelLink cancels a link so it can no longer be paid
// DELETE /api/v1/links/:id
func (h *PaymentLinkHandler) CancelLink(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid link ID"))
		return
	}

	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := h.linkUsecase.CancelLink(c.Request.Context(), id, userID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "link cancelled"})
}
