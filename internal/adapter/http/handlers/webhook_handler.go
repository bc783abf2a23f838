package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	request "booking_reconciliation/internal/adapter/http/dto/request"
	response "booking_reconciliation/internal/adapter/http/dto/response"
	"booking_reconciliation/internal/usecase"

	"github.com/gin-gonic/gin"
)

// WebhookHandler receives Mercado Pago payment notifications, the server-side caller that
// races the client redirect.
type WebhookHandler struct {
	usecase usecase.IReconciliationUseCase
}

func NewWebhookHandler(uc usecase.IReconciliationUseCase) *WebhookHandler {
	return &WebhookHandler{usecase: uc}
}

// MercadoPago godoc
// @Summary      Mercado Pago payment notification
// @Description  Reconciles approved payments. Other topics and pending payments answer {"ignored": true}.
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        request  body   request.PaymentNotificationRequest  false  "Notification"
// @Param        type     query  string  false  "Notification type"
// @Param        data.id  query  string  false  "Payment id"
// @Success      200  {object}  response.BookingEnvelope
// @Failure      400  {object}  pkg.HTTPError
// @Failure      500  {object}  pkg.HTTPError
// @Router       /webhooks/mercadopago [post]
func (h *WebhookHandler) MercadoPago(c *gin.Context) {
	var payload request.PaymentNotificationRequest
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(errInvalidReconcilePayload.HTTPStatus, errInvalidReconcilePayload.ToHTTPError())
		return
	}
	if len(strings.TrimSpace(string(raw))) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			log.Printf("[webhook][handler] invalid payload err=%v", err)
			c.JSON(errInvalidReconcilePayload.HTTPStatus, errInvalidReconcilePayload.ToHTTPError())
			return
		}
	}

	notification := payload.ToEntity(request.NotificationQuery{
		Type:   c.Query("type"),
		Topic:  c.Query("topic"),
		DataID: c.Query("data.id"),
		ID:     c.Query("id"),
	})
	log.Printf("[webhook][handler] received type=%q action=%q resource_id=%q", notification.Type, notification.Action, notification.ResourceID)

	details, handled, err := h.usecase.HandlePaymentNotification(c.Request.Context(), notification)
	if err != nil {
		log.Printf("[webhook][handler] reconcile failed resource_id=%q err=%v", notification.ResourceID, err)
		appErr := mapReconciliationError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	if !handled {
		c.JSON(http.StatusOK, response.IgnoredNotificationResponse{Ignored: true})
		return
	}
	log.Printf("[webhook][handler] reconciled resource_id=%s booking_id=%s", notification.ResourceID, details.Booking.ID)

	c.JSON(http.StatusOK, response.NewBookingEnvelope(details))
}
