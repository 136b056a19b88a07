package services

import (
	"fmt"
	"net/url"
)

const (
	shareSubject = "Join me and earn rewards!"
	shareText    = "Join me and earn rewards with this referral link!"
)

// ShareTarget is a prefilled share intent for one channel
type ShareTarget struct {
	Channel string `json:"channel"`
	URL     string `json:"url"`
}

// SocialShareService builds share intents for a user's referral link
type SocialShareService struct {
	links *UserService
}

func NewSocialShareService(links *UserService) *SocialShareService {
	return &SocialShareService{
		links: links,
	}
}

// ShareTargets returns the share intents for userID's referral link
func (s *SocialShareService) ShareTargets(userID string) ([]ShareTarget, error) {
	link, err := s.links.ReferralLink(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to build referral link: %w", err)
	}
	return BuildShareTargets(link), nil
}

// BuildShareTargets returns email, SMS and social intents carrying link
func BuildShareTargets(link string) []ShareTarget {
	esc := url.QueryEscape
	body := fmt.Sprintf("Hi there,\n\nI thought you might be interested in joining this platform. "+
		"Use my referral link to sign up and we'll both earn rewards!\n\n%s\n\nCheers!", link)
	sms := fmt.Sprintf("Join me and earn rewards! Use my referral link: %s", link)

	return []ShareTarget{
		{Channel: "email", URL: "mailto:?subject=" + esc(shareSubject) + "&body=" + esc(body)},
		{Channel: "sms", URL: "sms:?&body=" + esc(sms)},
		{Channel: "facebook", URL: "https://www.facebook.com/sharer/sharer.php?u=" + esc(link)},
		{Channel: "twitter", URL: "https://twitter.com/intent/tweet?text=" + esc(shareText) + "&url=" + esc(link)},
		{Channel: "linkedin", URL: "https://www.linkedin.com/sharing/share-offsite/?url=" + esc(link)},
	}
}
