package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"referral-rewards/internal/auth"
	"referral-rewards/internal/repository"
	"referral-rewards/internal/services"
)

// UserHandler handles user-related endpoints
type UserHandler struct {
	userService  *services.UserService
	shareService *services.SocialShareService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *services.UserService, shareService *services.SocialShareService) *UserHandler {
	return &UserHandler{userService: userService, shareService: shareService}
}

// EnsureAccount creates the caller's account after signup
// POST /api/user/account
func (h *UserHandler) EnsureAccount(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	email, _ := auth.GetEmail(c)

	user, err := h.userService.EnsureAccount(c.Request.Context(), userID, email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// GetProfile returns the current user's account
// GET /api/user/me
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// GetDashboard returns the dashboard aggregate
// GET /api/user/dashboard
func (h *UserHandler) GetDashboard(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	dashboard, err := h.userService.Dashboard(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": dashboard})
}

// GetReferrals returns referrals credited to the current user
// GET /api/user/referrals
func (h *UserHandler) GetReferrals(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	referrals, err := h.userService.GetUserReferrals(c.Request.Context(), userID, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve referrals"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    referrals,
		"count":   len(referrals),
	})
}

// GetReferralLink returns the referral link and its QR code as base64 PNG
// GET /api/user/referral-link
func (h *UserHandler) GetReferralLink(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	link, err := h.userService.ReferralLink(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build referral link"})
		return
	}

	png, err := h.userService.ReferralQRCode(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render QR code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"referral_link": link,
		"qr_code":       base64.StdEncoding.EncodeToString(png),
	})
}

// GetReferralQRCode serves the referral link QR code as a PNG image
// GET /api/user/referral-qr
func (h *UserHandler) GetReferralQRCode(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	png, err := h.userService.ReferralQRCode(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render QR code"})
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

// GetShareLinks returns prefilled share intents for the referral link
// GET /api/user/share-links
func (h *UserHandler) GetShareLinks(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	targets, err := h.shareService.ShareTargets(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build share links"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": targets})
}
