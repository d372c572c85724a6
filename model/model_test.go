package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/zeflq/getrevio-core/policy"
	"github.com/zeflq/getrevio-core/store"
)

func TestMerchantValidate(t *testing.T) {
	ok := Merchant{Name: "Bella Pizza", Plan: "pro"}
	if err := ok.Validate(); err != nil {
		t.Errorf("valid merchant rejected: %v", err)
	}
	if err := (Merchant{Plan: "pro"}).Validate(); err == nil {
		t.Error("missing name accepted")
	}
	if err := (Merchant{Name: "x", Plan: "gold"}).Validate(); err == nil {
		t.Error("unknown plan accepted")
	}
}

func TestCampaignValidate(t *testing.T) {
	ok := Campaign{Name: "Summer", PlaceID: "pl_1"}
	if err := ok.Validate(); err != nil {
		t.Errorf("valid campaign rejected: %v", err)
	}
	if err := (Campaign{Name: "Summer"}).Validate(); err == nil {
		t.Error("campaign without a place accepted")
	}
}

func TestRedirectValidate(t *testing.T) {
	ok := Redirect{Code: "abc123", Target: PlaceTarget("pl_1")}
	if err := ok.Validate(); err != nil {
		t.Errorf("valid redirect rejected: %v", err)
	}
	bad := Redirect{Code: "abc123", Target: Target{Kind: TargetPlace}}
	if err := bad.Validate(); err == nil {
		t.Error("redirect with empty target id accepted")
	}
}

func TestTargetUnion(t *testing.T) {
	tests := []struct {
		name    string
		target  Target
		wantErr bool
	}{
		{"campaign variant", CampaignTarget("cmp_1"), false},
		{"place variant", PlaceTarget("pl_1"), false},
		{"campaign without id", Target{Kind: TargetCampaign}, true},
		{"both ids set", Target{Kind: TargetPlace, PlaceID: "pl_1", CampaignID: "cmp_1"}, true},
		{"unknown kind", Target{Kind: "banner", PlaceID: "pl_1"}, true},
		{"zero value", Target{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.target.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTargetUnmarshalRejectsMalformedUnions(t *testing.T) {
	var target Target
	if err := json.Unmarshal([]byte(`{"type":"place","placeId":"pl_1"}`), &target); err != nil {
		t.Fatalf("valid union rejected: %v", err)
	}
	if target.PlaceID != "pl_1" {
		t.Errorf("target = %+v", target)
	}

	malformed := []string{
		`{"type":"place"}`,
		`{"type":"place","placeId":"pl_1","campaignId":"cmp_1"}`,
		`{"type":"banner","placeId":"pl_1"}`,
	}
	for _, raw := range malformed {
		var tgt Target
		if err := json.Unmarshal([]byte(raw), &tgt); err == nil {
			t.Errorf("malformed union %s accepted", raw)
		}
	}
}

func TestDecode(t *testing.T) {
	var f RedirectFilter
	err := Decode([]byte(`{"page":1,"pageSize":20,"code":"abc"}`), &f)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if f.Page != 1 || f.Code != "abc" {
		t.Errorf("decoded = %+v", f)
	}
}

func TestDecodeErrorsWrapErrValidation(t *testing.T) {
	var f RedirectFilter
	if err := Decode([]byte(`{bad json`), &f); !errors.Is(err, ErrValidation) {
		t.Errorf("shape error: got %v, want ErrValidation", err)
	}
	if err := Decode([]byte(`{"page":-1}`), &f); !errors.Is(err, ErrValidation) {
		t.Errorf("rule error: got %v, want ErrValidation", err)
	}

	var m Merchant
	if err := Decode([]byte(`{"plan":"gold"}`), &m); !errors.Is(err, ErrValidation) {
		t.Errorf("record error: got %v, want ErrValidation", err)
	}
}

func TestFilterWhere(t *testing.T) {
	active := true
	f := RedirectFilter{Code: "abc", Channel: "qr", Active: &active}
	w := f.Where()
	if len(w) != 3 {
		t.Fatalf("got %d conditions, want 3", len(w))
	}
	if w[0].Op != store.OpContains || w[0].Field != "code" {
		t.Errorf("w[0] = %+v", w[0])
	}
	if w[2].Field != "active" || w[2].Value != true {
		t.Errorf("w[2] = %+v", w[2])
	}

	if got := (RedirectFilter{}).Where(); len(got) != 0 {
		t.Errorf("empty filter produced %v", got)
	}
}

func TestFilterParams(t *testing.T) {
	f := PlaceFilter{ListParams: policy.ListParams{Page: 2, PageSize: 10, Sort: "name", Dir: policy.Asc}}
	p := f.Params()
	if p.Page != 2 || p.Sort != "name" || p.Dir != policy.Asc {
		t.Errorf("params = %+v", p)
	}
}
