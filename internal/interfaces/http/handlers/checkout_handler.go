package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"link-pago.backend/internal/interfaces/http/response"
	"link-pago.backend/internal/usecases"
)

type CheckoutService interface {
	Start(ctx context.Context, slug string) (*usecases.StartResult, error)
	Init(ctx context.Context, slug string) (string, error)
	Return(ctx context.Context, params usecases.ReturnParams) *usecases.ReturnResult
}

// CheckoutHandler serves the payer-facing pages: the payment page, the
// gateway hand-off and the return reconciliation.
type CheckoutHandler struct {
	checkoutUsecase CheckoutService
}

func NewCheckoutHandler(checkoutUsecase CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutUsecase: checkoutUsecase}
}

// Start renders the payment page for a slug
// GET /pay/:slug
func (h *CheckoutHandler) Start(c *gin.Context) {
	result, err := h.checkoutUsecase.Start(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.renderError(c, http.StatusInternalServerError, "Ocurrió un error. Intenta nuevamente.")
		return
	}

	switch result.State {
	case usecases.StartPayable:
		c.HTML(http.StatusOK, "payment_page.html", gin.H{
			"slug":        result.Link.Slug,
			"description": result.Link.Description,
			"amount":      result.FormattedAmount,
		})
	case usecases.StartAlreadyPaid:
		h.renderError(c, http.StatusGone, "Este link de pago ya fue utilizado.")
	case usecases.StartCancelled:
		h.renderError(c, http.StatusGone, "Este link de pago fue cancelado.")
	case usecases.StartExpired:
		h.renderError(c, http.StatusGone, "Este link de pago ha expirado.")
	default:
		h.renderError(c, http.StatusNotFound, "Link de pago no encontrado.")
	}
}

// Init creates the gateway transaction and returns the hand-off URL. The
// payment page submits this via fetch and navigates to redirect_url itself.
// POST /pay/:slug/init
func (h *CheckoutHandler) Init(c *gin.Context) {
	redirectURL, err := h.checkoutUsecase.Init(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"redirect_url": redirectURL})
}

// Return reconciles the gateway redirect and renders the outcome page.
// Registered for both GET and POST; the gateway uses either depending on
// the abort path taken.
// GET|POST /pay/return
func (h *CheckoutHandler) Return(c *gin.Context) {
	params := usecases.ReturnParams{
		TokenWS:      h.param(c, "token_ws"),
		TBKToken:     h.param(c, "TBK_TOKEN"),
		TBKSessionID: h.param(c, "TBK_ID_SESION"),
		TBKBuyOrder:  h.param(c, "TBK_ORDEN_COMPRA"),
	}

	result := h.checkoutUsecase.Return(c.Request.Context(), params)

	switch result.State {
	case usecases.ReturnSuccess:
		c.HTML(http.StatusOK, "payment_success.html", gin.H{
			"description":       result.Description,
			"amount":            result.FormattedAmount,
			"authorizationCode": result.AuthorizationCode,
			"cardLastFour":      result.CardLastFour,
		})
	case usecases.ReturnDeclined:
		h.renderError(c, http.StatusOK, "El pago fue rechazado por el emisor de la tarjeta.")
	case usecases.ReturnAborted:
		h.renderError(c, http.StatusOK, "El pago fue anulado.")
	case usecases.ReturnTimeout:
		h.renderError(c, http.StatusOK, "La sesión de pago expiró. Vuelve a intentarlo desde el link.")
	case usecases.ReturnCommitError:
		h.renderError(c, http.StatusOK, "Error al confirmar el pago. Por favor intente nuevamente.")
	case usecases.ReturnTransactionNotFound:
		h.renderError(c, http.StatusNotFound, "Transacción no encontrada.")
	default:
		h.renderError(c, http.StatusOK, "No pudimos confirmar el estado del pago. Si el cargo aparece en tu tarjeta, contacta al comercio.")
	}
}

// param reads a value from the query string or, for POST redirects, the form
func (h *CheckoutHandler) param(c *gin.Context, name string) string {
	if v := c.Query(name); v != "" {
		return v
	}
	return c.PostForm(name)
}

func (h *CheckoutHandler) renderError(c *gin.Context, status int, message string) {
	c.HTML(status, "payment_error.html", gin.H{"message": message})
}
