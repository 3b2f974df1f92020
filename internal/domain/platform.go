package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Platform string

const (
	PlatformFacebook        Platform = "facebook"
	PlatformEventbrite      Platform = "eventbrite"
	PlatformResidentAdvisor Platform = "resident_advisor"
	PlatformBandsintown     Platform = "bandsintown"
)

// Platforms lists every supported platform in display order.
var Platforms = []Platform{
	PlatformFacebook,
	PlatformEventbrite,
	PlatformResidentAdvisor,
	PlatformBandsintown,
}

func (p Platform) Valid() bool {
	switch p {
	case PlatformFacebook, PlatformEventbrite, PlatformResidentAdvisor, PlatformBandsintown:
		return true
	}
	return false
}

// ParsePlatform accepts the canonical names plus a few spellings used by older rows.
func ParsePlatform(s string) (Platform, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.ReplaceAll(v, "-", "_")
	switch v {
	case "ra", "residentadvisor":
		v = string(PlatformResidentAdvisor)
	}
	p := Platform(v)
	if !p.Valid() {
		return "", ErrValidationMeta("unknown platform", map[string]string{"platform": s})
	}
	return p, nil
}

// PlatformConfig is the per-platform part of a connection.
// Each platform has exactly one concrete variant.
type PlatformConfig interface {
	Platform() Platform
}

type FacebookConfig struct {
	// PageID pins the page events are created on. Empty means the first manageable page.
	PageID string `json:"page_id,omitempty"`
}

type EventbriteConfig struct {
	// OrganizationID skips the "my organizations" lookup when set.
	OrganizationID string `json:"organization_id,omitempty"`
}

type ResidentAdvisorConfig struct{}

type BandsintownConfig struct {
	ArtistID string `json:"artist_id" validate:"required"`
}

func (FacebookConfig) Platform() Platform        { return PlatformFacebook }
func (EventbriteConfig) Platform() Platform      { return PlatformEventbrite }
func (ResidentAdvisorConfig) Platform() Platform { return PlatformResidentAdvisor }
func (BandsintownConfig) Platform() Platform     { return PlatformBandsintown }

// Connection is an organizer's stored credentials for one platform.
// Config is nil when the stored metadata could not be decoded; ConfigErr says why.
type Connection struct {
	ID          string
	OrganizerID string
	Platform    Platform
	AccessToken string
	Config      PlatformConfig
	ConfigErr   error
}

// NewConnection decodes metadata into the platform variant.
// A decode failure is kept on the connection rather than returned, so one bad row
// only fails its own platform.
func NewConnection(id, organizerID, platform, accessToken string, metadata []byte) Connection {
	c := Connection{
		ID:          id,
		OrganizerID: organizerID,
		Platform:    Platform(platform),
		AccessToken: accessToken,
	}
	if p, err := ParsePlatform(platform); err == nil {
		c.Platform = p
	}
	c.Config, c.ConfigErr = DecodeConnectionConfig(c.Platform, metadata)
	return c
}

var configValidate = validator.New()

// legacyMetadata covers the keys written by the first OAuth flow.
type legacyMetadata struct {
	SelectedPageID string `json:"selectedPageId"`
	OrganizationID string `json:"organizationId"`
	ArtistID       string `json:"artistId"`
}

// DecodeConnectionConfig turns a stored metadata blob into the typed config for platform.
// Missing required fields are reported as validation errors.
func DecodeConnectionConfig(platform Platform, raw []byte) (PlatformConfig, error) {
	if len(strings.TrimSpace(string(raw))) == 0 || string(raw) == "null" {
		raw = []byte("{}")
	}

	var legacy legacyMetadata
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, fmt.Errorf("decode %s connection metadata: %w", platform, err)
	}

	var cfg PlatformConfig
	switch platform {
	case PlatformFacebook:
		var c FacebookConfig
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("decode facebook connection metadata: %w", err)
		}
		if c.PageID == "" {
			c.PageID = legacy.SelectedPageID
		}
		cfg = c
	case PlatformEventbrite:
		var c EventbriteConfig
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("decode eventbrite connection metadata: %w", err)
		}
		if c.OrganizationID == "" {
			c.OrganizationID = legacy.OrganizationID
		}
		cfg = c
	case PlatformResidentAdvisor:
		cfg = ResidentAdvisorConfig{}
	case PlatformBandsintown:
		var c BandsintownConfig
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("decode bandsintown connection metadata: %w", err)
		}
		if c.ArtistID == "" {
			c.ArtistID = legacy.ArtistID
		}
		cfg = c
	default:
		return nil, ErrUnsupported(fmt.Sprintf("unsupported platform %q", platform))
	}

	if err := configValidate.Struct(cfg); err != nil {
		return nil, ErrValidationMeta("invalid connection config", map[string]string{
			"platform": string(platform),
			"reason":   err.Error(),
		})
	}
	return cfg, nil
}
