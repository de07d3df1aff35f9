package provider

import (
	"strings"

	"github.com/Zer0phucks/pubhub-connect/internal/conf"
	"github.com/Zer0phucks/pubhub-connect/internal/models"
)

// Get returns the OAuth provider for a platform. The switch covers the
// closed platform set; blog is rejected because it does not use OAuth.
func Get(platform models.Platform, external *conf.ProviderConfiguration) (OAuthProvider, error) {
	ext, err := Credentials(platform, external)
	if err != nil {
		return nil, err
	}

	switch platform {
	case models.PlatformTwitter:
		return NewTwitterProvider(*ext)
	case models.PlatformInstagram:
		return NewInstagramProvider(*ext)
	case models.PlatformLinkedin:
		return NewLinkedinProvider(*ext)
	case models.PlatformFacebook:
		return NewFacebookProvider(*ext)
	case models.PlatformYoutube:
		return NewYoutubeProvider(*ext)
	case models.PlatformTiktok:
		return NewTikTokProvider(*ext)
	case models.PlatformPinterest:
		return NewPinterestProvider(*ext)
	case models.PlatformReddit:
		return NewRedditProvider(*ext)
	case models.PlatformBlog:
		return nil, models.InvalidPlatformError{Name: string(platform)}
	}
	return nil, models.InvalidPlatformError{Name: string(platform)}
}

// Credentials returns the configured credentials block for a platform.
func Credentials(platform models.Platform, external *conf.ProviderConfiguration) (*conf.OAuthProviderConfiguration, error) {
	switch platform {
	case models.PlatformTwitter:
		return &external.Twitter, nil
	case models.PlatformInstagram:
		return &external.Instagram, nil
	case models.PlatformLinkedin:
		return &external.Linkedin, nil
	case models.PlatformFacebook:
		return &external.Facebook, nil
	case models.PlatformYoutube:
		return &external.Youtube, nil
	case models.PlatformTiktok:
		return &external.Tiktok, nil
	case models.PlatformPinterest:
		return &external.Pinterest, nil
	case models.PlatformReddit:
		return &external.Reddit, nil
	}
	return nil, models.InvalidPlatformError{Name: string(platform)}
}

// IsConfigured reports whether the operator supplied a client id and secret
// for the platform. Side-effect free; diagnostics polls it.
func IsConfigured(platform models.Platform, external *conf.ProviderConfiguration) bool {
	ext, err := Credentials(platform, external)
	if err != nil {
		return false
	}
	return ext.IsConfigured()
}

// RequiredEnvKeys names the environment keys a platform's server-side
// credentials live under.
func RequiredEnvKeys(platform models.Platform) []string {
	prefix := strings.ToUpper(string(platform))
	return []string{
		prefix + "_CLIENT_ID",
		prefix + "_CLIENT_SECRET",
	}
}

// ListMissing names the env keys still absent for a platform, for operator
// remediation. Empty means the platform is fully configured.
func ListMissing(platform models.Platform, external *conf.ProviderConfiguration) []string {
	ext, err := Credentials(platform, external)
	if err != nil {
		return nil
	}

	prefix := strings.ToUpper(string(platform))
	var missing []string
	if ext.ClientID == "" {
		missing = append(missing, prefix+"_CLIENT_ID")
	}
	if ext.Secret == "" {
		missing = append(missing, prefix+"_CLIENT_SECRET")
	}
	return missing
}
