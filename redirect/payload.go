package redirect

import (
	"encoding/json"

	"github.com/zeflq/getrevio-core/model"
)

// KeyPrefix namespaces redirect entries in the cache store.
const KeyPrefix = "sl:"

// CacheKey returns the cache key for a short code.
func CacheKey(code string) string {
	return KeyPrefix + code
}

// targetRef is the compact target form stored in the cache payload.
type targetRef struct {
	Kind string `json:"t"`
	ID   string `json:"id"`
}

// Payload is the versioned cache value derived from a redirect record and its
// resolved destination. Never authoritative; always reconstructable from the
// record plus slug lookups. V stays at 1 until the shape changes.
type Payload struct {
	V          int               `json:"v"`
	Active     int               `json:"a"`
	URL        string            `json:"u"`
	MerchantID string            `json:"mid"`
	Target     targetRef         `json:"tgt"`
	ExpiresAt  int64             `json:"ea,omitempty"`
	ThemeID    string            `json:"th,omitempty"`
	UTM        map[string]string `json:"utm,omitempty"`
	ChannelUTM map[string]string `json:"cm,omitempty"`
}

// NewPayload derives the cache value for a record whose target resolved to
// destination.
func NewPayload(rec model.Redirect, destination string) Payload {
	p := Payload{
		V:          1,
		URL:        destination,
		MerchantID: rec.MerchantID,
		Target:     refOf(rec.Target),
		ThemeID:    rec.ThemeID,
		UTM:        rec.UTM,
	}
	if rec.Active {
		p.Active = 1
	}
	if rec.ExpiresAt != nil {
		p.ExpiresAt = rec.ExpiresAt.Unix()
	}
	if rec.Channel != "" {
		p.ChannelUTM = map[string]string{"utm_source": rec.Channel, "utm_medium": "redirect"}
	}
	return p
}

// Encode serializes the payload to its UTF-8 JSON wire form.
func (p Payload) Encode() (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func refOf(t model.Target) targetRef {
	switch t.Kind {
	case model.TargetCampaign:
		return targetRef{Kind: string(t.Kind), ID: t.CampaignID}
	case model.TargetPlace:
		return targetRef{Kind: string(t.Kind), ID: t.PlaceID}
	}
	return targetRef{Kind: string(t.Kind)}
}
