package utils

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"
)

// GenerateReferralLink builds the signup link carrying the referrer's id
func GenerateReferralLink(baseURL string, userID string) (string, error) {
	if baseURL == "" {
		return "", fmt.Errorf("base URL is not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("user id is required for a referral link")
	}

	return fmt.Sprintf("%s/join?ref=%s", strings.TrimRight(baseURL, "/"), url.QueryEscape(userID)), nil
}

// GenerateQRCode renders link as a PNG QR code of size pixels
func GenerateQRCode(link string, size int) ([]byte, error) {
	if link == "" {
		return nil, fmt.Errorf("link is required for a QR code")
	}

	png, err := qrcode.Encode(link, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return png, nil
}
