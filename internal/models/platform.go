package models

import "fmt"

// Platform identifies one of the social platforms a project can connect.
// The set is closed; adding a platform is a compile-time change here and in
// the provider registry.
type Platform string

const (
	PlatformTwitter   Platform = "twitter"
	PlatformInstagram Platform = "instagram"
	PlatformLinkedin  Platform = "linkedin"
	PlatformFacebook  Platform = "facebook"
	PlatformYoutube   Platform = "youtube"
	PlatformTiktok    Platform = "tiktok"
	PlatformPinterest Platform = "pinterest"
	PlatformReddit    Platform = "reddit"

	// PlatformBlog is the non-OAuth WordPress sibling, authenticated with a
	// site URL plus application password instead of a redirect flow.
	PlatformBlog Platform = "blog"
)

// OAuthPlatforms lists every platform that connects through the
// authorization-code flow, in dashboard display order.
var OAuthPlatforms = []Platform{
	PlatformTwitter,
	PlatformInstagram,
	PlatformLinkedin,
	PlatformFacebook,
	PlatformYoutube,
	PlatformTiktok,
	PlatformPinterest,
	PlatformReddit,
}

// AllPlatforms is OAuthPlatforms plus the blog platform.
var AllPlatforms = append(append([]Platform{}, OAuthPlatforms...), PlatformBlog)

type InvalidPlatformError struct {
	Name string
}

func (e InvalidPlatformError) Error() string {
	return fmt.Sprintf("invalid platform %q", e.Name)
}

// ParsePlatform validates a platform identifier from an untrusted source.
func ParsePlatform(name string) (Platform, error) {
	switch Platform(name) {
	case PlatformTwitter, PlatformInstagram, PlatformLinkedin, PlatformFacebook,
		PlatformYoutube, PlatformTiktok, PlatformPinterest, PlatformReddit,
		PlatformBlog:
		return Platform(name), nil
	}
	return "", InvalidPlatformError{Name: name}
}

func (p Platform) String() string {
	return string(p)
}

// IsOAuth reports whether the platform connects via the OAuth2
// authorization-code flow.
func (p Platform) IsOAuth() bool {
	return p != PlatformBlog
}
