// Package model holds the back-office domain records and their filter specs.
// Records carry bun struct tags for the relational adapter and json tags for
// the public surface; filter specs implement the query engine's Filter
// contract and validate themselves with ozzo rules.
package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/uptrace/bun"
)

// Merchant is the tenant boundary. Every scoped record carries its id.
type Merchant struct {
	bun.BaseModel `bun:"table:merchants,alias:m" json:"-"`

	ID        string    `bun:"id,pk" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Plan      string    `bun:"plan" json:"plan"`
	CreatedAt time.Time `bun:"created_at,nullzero" json:"createdAt"`
}

func (m Merchant) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&m.Plan, validation.In("free", "pro", "enterprise")),
	)
}

// Place is a physical location owned by a merchant. Its slug is the public
// path segment redirect destinations are built from; an empty slug makes
// every target pointing at the place unresolvable.
type Place struct {
	bun.BaseModel `bun:"table:places,alias:p" json:"-"`

	ID         string    `bun:"id,pk" json:"id"`
	MerchantID string    `bun:"merchant_id,notnull" json:"merchantId"`
	Name       string    `bun:"name,notnull" json:"name"`
	Slug       string    `bun:"slug" json:"slug"`
	ThemeID    string    `bun:"theme_id,nullzero" json:"themeId,omitempty"`
	CreatedAt  time.Time `bun:"created_at,nullzero" json:"createdAt"`
}

func (p Place) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&p.Slug, validation.Length(0, 80)),
	)
}

// Campaign is a marketing push tied to a place.
type Campaign struct {
	bun.BaseModel `bun:"table:campaigns,alias:c" json:"-"`

	ID         string     `bun:"id,pk" json:"id"`
	MerchantID string     `bun:"merchant_id,notnull" json:"merchantId"`
	PlaceID    string     `bun:"place_id,notnull" json:"placeId"`
	Name       string     `bun:"name,notnull" json:"name"`
	Channel    string     `bun:"channel" json:"channel,omitempty"`
	StartsAt   *time.Time `bun:"starts_at" json:"startsAt,omitempty"`
	EndsAt     *time.Time `bun:"ends_at" json:"endsAt,omitempty"`
	CreatedAt  time.Time  `bun:"created_at,nullzero" json:"createdAt"`
}

func (c Campaign) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&c.PlaceID, validation.Required),
	)
}

// Theme customizes the landing surface a redirect lands on.
type Theme struct {
	bun.BaseModel `bun:"table:themes,alias:t" json:"-"`

	ID         string    `bun:"id,pk" json:"id"`
	MerchantID string    `bun:"merchant_id,notnull" json:"merchantId"`
	Name       string    `bun:"name,notnull" json:"name"`
	Primary    string    `bun:"primary_color" json:"primary,omitempty"`
	Accent     string    `bun:"accent_color" json:"accent,omitempty"`
	CreatedAt  time.Time `bun:"created_at,nullzero" json:"createdAt"`
}

func (t Theme) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Name, validation.Required, validation.Length(1, 120)),
	)
}

// Redirect is the authoritative record behind a short code. The cache entry
// derived from it has no independent lifecycle.
type Redirect struct {
	bun.BaseModel `bun:"table:redirects,alias:r" json:"-"`

	ID         string            `bun:"id,pk" json:"id"`
	MerchantID string            `bun:"merchant_id,notnull" json:"merchantId"`
	Code       string            `bun:"code,notnull,unique" json:"code"`
	Target     Target            `bun:"target,type:jsonb" json:"target"`
	Channel    string            `bun:"channel" json:"channel,omitempty"`
	ThemeID    string            `bun:"theme_id,nullzero" json:"themeId,omitempty"`
	Active     bool              `bun:"active" json:"active"`
	ExpiresAt  *time.Time        `bun:"expires_at" json:"expiresAt,omitempty"`
	UTM        map[string]string `bun:"utm,type:jsonb" json:"utm,omitempty"`
	CreatedAt  time.Time         `bun:"created_at,nullzero" json:"createdAt"`
	UpdatedAt  time.Time         `bun:"updated_at,nullzero" json:"updatedAt"`
}

func (r Redirect) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code, validation.Length(0, 32)),
		validation.Field(&r.Target),
	)
}

// Option is the lite projection used by selection widgets.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}
