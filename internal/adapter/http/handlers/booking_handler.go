package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	request "booking_reconciliation/internal/adapter/http/dto/request"
	response "booking_reconciliation/internal/adapter/http/dto/response"
	"booking_reconciliation/internal/usecase"
	"booking_reconciliation/pkg"

	"github.com/gin-gonic/gin"
)

var errInvalidReconcilePayload = pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)

// BookingHandler serves the client-facing side of reconciliation: the call made after the
// checkout redirect and the booking read model.
type BookingHandler struct {
	usecase usecase.IReconciliationUseCase
}

func NewBookingHandler(uc usecase.IReconciliationUseCase) *BookingHandler {
	return &BookingHandler{usecase: uc}
}

// Reconcile godoc
// @Summary      Confirm a paid checkout
// @Description  Turns a completed gateway payment into its booking. Safe to repeat.
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        request     body   request.ReconcileBookingRequest  false  "Session reference"
// @Param        session_id  query  string  false  "Session reference"
// @Param        payment_id  query  string  false  "Mercado Pago payment id"
// @Success      200  {object}  response.BookingEnvelope
// @Failure      400  {object}  pkg.HTTPError
// @Failure      404  {object}  pkg.HTTPError
// @Failure      500  {object}  pkg.HTTPError
// @Router       /bookings/reconcile [post]
func (h *BookingHandler) Reconcile(c *gin.Context) {
	payload, err := readReconcilePayload(c)
	if err != nil {
		log.Printf("[booking][handler] invalid payload err=%v", err)
		c.JSON(errInvalidReconcilePayload.HTTPStatus, errInvalidReconcilePayload.ToHTTPError())
		return
	}
	ref := payload.ResolveSessionReference(c.Query("session_id"), c.Query("payment_id"))
	log.Printf("[booking][handler] reconcile start session_reference=%q", ref)

	details, err := h.usecase.Reconcile(c.Request.Context(), ref)
	if err != nil {
		log.Printf("[booking][handler] reconcile failed session_reference=%q err=%v", ref, err)
		appErr := mapReconciliationError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	log.Printf("[booking][handler] reconcile success session_reference=%s booking_id=%s", ref, details.Booking.ID)

	c.JSON(http.StatusOK, response.NewBookingEnvelope(details))
}

// GetBooking godoc
// @Summary      Get a reconciled booking
// @Tags         bookings
// @Produce      json
// @Param        id   path      string  true  "Booking id"
// @Success      200  {object}  response.BookingEnvelope
// @Failure      404  {object}  pkg.HTTPError
// @Failure      500  {object}  pkg.HTTPError
// @Router       /bookings/{id} [get]
func (h *BookingHandler) GetBooking(c *gin.Context) {
	id := c.Param("id")
	log.Printf("[booking][handler] get start booking_id=%s", id)

	details, err := h.usecase.GetBooking(c.Request.Context(), id)
	if err != nil {
		log.Printf("[booking][handler] get failed booking_id=%s err=%v", id, err)
		appErr := mapReconciliationError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.NewBookingEnvelope(details))
}

// readReconcilePayload tolerates an empty body; the reference may come from the query.
func readReconcilePayload(c *gin.Context) (request.ReconcileBookingRequest, error) {
	var payload request.ReconcileBookingRequest
	raw, err := c.GetRawData()
	if err != nil {
		return payload, err
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return payload, err
	}
	return payload, nil
}

func mapReconciliationError(err error) *pkg.AppError {
	switch {
	case errors.Is(err, usecase.ErrInvalidRequest):
		return pkg.NewDomainError("INVALID_REQUEST", "Invalid request", err, http.StatusBadRequest)
	case errors.Is(err, usecase.ErrPaymentNotConfirmed):
		return pkg.NewDomainErrorSimple("PAYMENT_NOT_CONFIRMED", "Payment not confirmed", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrCatalogNotFound):
		return pkg.NewDomainError("CATALOG_NOT_FOUND", "Tenant, service or staff not found", err, http.StatusNotFound)
	case errors.Is(err, usecase.ErrBookingNotFound):
		return pkg.NewDomainErrorSimple("BOOKING_NOT_FOUND", "Booking not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrGatewayError):
		return pkg.NewDomainError("GATEWAY_ERROR", "Payment provider error", err, http.StatusInternalServerError)
	case errors.Is(err, usecase.ErrConflictRetryExhausted):
		return pkg.NewDomainError("CONFLICT_RETRY_EXHAUSTED", "Booking could not be reconciled, try again", err, http.StatusInternalServerError)
	case errors.Is(err, usecase.ErrPersistenceError):
		return pkg.NewDomainError("PERSISTENCE_ERROR", "Booking could not be saved", err, http.StatusInternalServerError)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}
