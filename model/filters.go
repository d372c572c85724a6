package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/zeflq/getrevio-core/policy"
	"github.com/zeflq/getrevio-core/store"
)

// listParamRules are shared by every filter spec: page and pageSize must be
// positive when supplied, dir must be asc/desc or absent. Clamping happens
// later in the engine; validation only rejects shapes that make no sense.
func listParamRules(p *policy.ListParams) []*validation.FieldRules {
	return []*validation.FieldRules{
		validation.Field(&p.Page, validation.Min(1)),
		validation.Field(&p.PageSize, validation.Min(1)),
		validation.Field(&p.Dir, validation.In(policy.Asc, policy.Desc)),
		validation.Field(&p.Limit, validation.Min(0)),
	}
}

// MerchantFilter filters the merchant listing.
type MerchantFilter struct {
	policy.ListParams
	Search string `json:"q,omitempty"`
	Plan   string `json:"plan,omitempty"`
}

func (f MerchantFilter) Validate() error {
	rules := listParamRules(&f.ListParams)
	rules = append(rules, validation.Field(&f.Plan, validation.In("free", "pro", "enterprise")))
	return validation.ValidateStruct(&f, rules...)
}

func (f MerchantFilter) Params() policy.ListParams { return f.ListParams }

func (f MerchantFilter) Where() store.Where {
	var w store.Where
	if f.Search != "" {
		w = w.And(store.Contains("name", f.Search))
	}
	if f.Plan != "" {
		w = w.And(store.Eq("plan", f.Plan))
	}
	return w
}

// PlaceFilter filters the place listing.
type PlaceFilter struct {
	policy.ListParams
	Search  string `json:"q,omitempty"`
	ThemeID string `json:"themeId,omitempty"`
}

func (f PlaceFilter) Validate() error {
	return validation.ValidateStruct(&f, listParamRules(&f.ListParams)...)
}

func (f PlaceFilter) Params() policy.ListParams { return f.ListParams }

func (f PlaceFilter) Where() store.Where {
	var w store.Where
	if f.Search != "" {
		w = w.And(store.Contains("name", f.Search))
	}
	if f.ThemeID != "" {
		w = w.And(store.Eq("themeId", f.ThemeID))
	}
	return w
}

// CampaignFilter filters the campaign listing.
type CampaignFilter struct {
	policy.ListParams
	Search  string `json:"q,omitempty"`
	PlaceID string `json:"placeId,omitempty"`
	Channel string `json:"channel,omitempty"`
}

func (f CampaignFilter) Validate() error {
	return validation.ValidateStruct(&f, listParamRules(&f.ListParams)...)
}

func (f CampaignFilter) Params() policy.ListParams { return f.ListParams }

func (f CampaignFilter) Where() store.Where {
	var w store.Where
	if f.Search != "" {
		w = w.And(store.Contains("name", f.Search))
	}
	if f.PlaceID != "" {
		w = w.And(store.Eq("placeId", f.PlaceID))
	}
	if f.Channel != "" {
		w = w.And(store.Eq("channel", f.Channel))
	}
	return w
}

// ThemeFilter filters the theme listing.
type ThemeFilter struct {
	policy.ListParams
	Search string `json:"q,omitempty"`
}

func (f ThemeFilter) Validate() error {
	return validation.ValidateStruct(&f, listParamRules(&f.ListParams)...)
}

func (f ThemeFilter) Params() policy.ListParams { return f.ListParams }

func (f ThemeFilter) Where() store.Where {
	var w store.Where
	if f.Search != "" {
		w = w.And(store.Contains("name", f.Search))
	}
	return w
}

// RedirectFilter filters the redirect code listing.
type RedirectFilter struct {
	policy.ListParams
	Code    string `json:"code,omitempty"`
	Channel string `json:"channel,omitempty"`
	Active  *bool  `json:"active,omitempty"`
}

func (f RedirectFilter) Validate() error {
	rules := listParamRules(&f.ListParams)
	rules = append(rules, validation.Field(&f.Code, validation.Length(0, 32)))
	return validation.ValidateStruct(&f, rules...)
}

func (f RedirectFilter) Params() policy.ListParams { return f.ListParams }

func (f RedirectFilter) Where() store.Where {
	var w store.Where
	if f.Code != "" {
		w = w.And(store.Contains("code", f.Code))
	}
	if f.Channel != "" {
		w = w.And(store.Eq("channel", f.Channel))
	}
	if f.Active != nil {
		w = w.And(store.Eq("active", *f.Active))
	}
	return w
}
