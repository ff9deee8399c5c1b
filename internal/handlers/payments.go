package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"contenthub/internal/middleware"
	"contenthub/internal/payment"
	"contenthub/internal/service"
)

type chargeRequest struct {
	Token string `json:"token" form:"stripeToken"`
}

func (h HandlerSet) Charge(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		h.writeError(c, service.ErrUnauthorized)
		return
	}

	var req chargeRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.payments.Charge(c.Request.Context(), user.ID, req.Token)
	if err != nil {
		if errors.Is(err, payment.ErrChargeFailed) || errors.Is(err, payment.ErrMissingSource) {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
			return
		}
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "charge_id": result.ID})
}
