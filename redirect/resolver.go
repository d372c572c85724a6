package redirect

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/zeflq/getrevio-core/model"
	"github.com/zeflq/getrevio-core/store"
)

// Resolver turns a redirect target into its destination URL by following the
// slug chain. An unresolvable target is a normal outcome, not an error: places
// get deleted out from under campaigns and slugs get blanked, and callers
// interpret ok=false as "remove any cache entry".
type Resolver struct {
	places    store.Adapter[model.Place]
	campaigns store.Adapter[model.Campaign]
}

// NewResolver builds a resolver over the two lookup adapters.
func NewResolver(places store.Adapter[model.Place], campaigns store.Adapter[model.Campaign]) *Resolver {
	return &Resolver{places: places, campaigns: campaigns}
}

// Resolve returns the destination URL for a target. ok is false when the slug
// chain breaks; err is reserved for store failures and malformed targets.
func (r *Resolver) Resolve(ctx context.Context, baseURL string, target model.Target) (string, bool, error) {
	switch target.Kind {
	case model.TargetPlace:
		return r.placeURL(ctx, baseURL, target.PlaceID, "")
	case model.TargetCampaign:
		campaign, err := r.campaigns.FindFirst(ctx, store.Where{store.Eq("id", target.CampaignID)})
		if err != nil {
			return "", false, err
		}
		if campaign == nil {
			return "", false, nil
		}
		return r.placeURL(ctx, baseURL, campaign.PlaceID, campaign.ID)
	default:
		return "", false, fmt.Errorf("unknown target type %q", target.Kind)
	}
}

// placeURL builds baseURL/slug, appending the campaign id as the `c` query
// parameter when the hop started from a campaign.
func (r *Resolver) placeURL(ctx context.Context, baseURL, placeID, campaignID string) (string, bool, error) {
	place, err := r.places.FindFirst(ctx, store.Where{store.Eq("id", placeID)})
	if err != nil {
		return "", false, err
	}
	if place == nil || place.Slug == "" {
		return "", false, nil
	}
	dest := strings.TrimRight(baseURL, "/") + "/" + place.Slug
	if campaignID != "" {
		dest += "?c=" + url.QueryEscape(campaignID)
	}
	return dest, true, nil
}
