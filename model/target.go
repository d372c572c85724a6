package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// TargetKind discriminates the redirect target union.
type TargetKind string

const (
	TargetCampaign TargetKind = "campaign"
	TargetPlace    TargetKind = "place"
)

// Target is the polymorphic redirect destination: exactly one variant, no
// shared fields beyond the tag. Consumers must switch on Kind exhaustively.
type Target struct {
	Kind       TargetKind `json:"type"`
	CampaignID string     `json:"campaignId,omitempty"`
	PlaceID    string     `json:"placeId,omitempty"`
}

// CampaignTarget builds the campaign variant.
func CampaignTarget(campaignID string) Target {
	return Target{Kind: TargetCampaign, CampaignID: campaignID}
}

// PlaceTarget builds the place variant.
func PlaceTarget(placeID string) Target {
	return Target{Kind: TargetPlace, PlaceID: placeID}
}

var errTargetVariant = errors.New("target must carry exactly the id of its variant")

// Validate enforces the union shape: a known tag and only the matching id.
func (t Target) Validate() error {
	switch t.Kind {
	case TargetCampaign:
		if t.CampaignID == "" || t.PlaceID != "" {
			return errTargetVariant
		}
	case TargetPlace:
		if t.PlaceID == "" || t.CampaignID != "" {
			return errTargetVariant
		}
	default:
		return fmt.Errorf("unknown target type %q", t.Kind)
	}
	return nil
}

// UnmarshalJSON rejects malformed unions at the decode boundary instead of
// letting them surface later as unresolvable targets.
func (t *Target) UnmarshalJSON(data []byte) error {
	type alias Target
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*t = Target(a)
	return t.Validate()
}
