package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"referral-rewards/internal/models"
	"referral-rewards/internal/services"
)

type ReferralHandler struct {
	referralService *services.ReferralService
}

func NewReferralHandler(referralService *services.ReferralService) *ReferralHandler {
	return &ReferralHandler{
		referralService: referralService,
	}
}

// AcceptReferral records a referral claim submitted after signup
// POST /api/referrals
func (h *ReferralHandler) AcceptReferral(c *gin.Context) {
	var req models.ReferralClaim
	if err := c.ShouldBindJSON(&req); err != nil {
		refErr := &services.ReferralError{Kind: services.KindMissingFields}
		c.JSON(http.StatusBadRequest, gin.H{"error": refErr.Kind, "message": refErr.Message()})
		return
	}

	if _, err := h.referralService.AcceptReferral(c.Request.Context(), req); err != nil {
		var refErr *services.ReferralError
		if !errors.As(err, &refErr) {
			refErr = &services.ReferralError{Kind: services.KindStorageFailure, Err: err}
		}

		status := http.StatusInternalServerError
		if refErr.IsClientError() {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": refErr.Kind, "message": refErr.Message()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
