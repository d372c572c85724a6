// Package testsupport holds fixture and golden-file helpers plus canned
// domain records the package tests seed their stores with.
package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zeflq/getrevio-core/model"
)

// LoadFixture loads test data from a fixture file.
// The path is relative to the test package directory.
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}

	return data
}

// LoadFixtureJSON loads JSON test data from a fixture file and unmarshals it.
func LoadFixtureJSON(t *testing.T, path string, dest any) {
	t.Helper()

	data := LoadFixture(t, path)
	if err := json.Unmarshal(data, dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
}

// CompareWithGolden compares actual data with expected data from a golden file.
// If the golden file doesn't exist, it creates one with the actual data.
func CompareWithGolden(t *testing.T, path string, actual []byte) {
	t.Helper()

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Logf("golden file %s does not exist, creating it", path)
			WriteGolden(t, path, actual)
			return
		}
		t.Fatalf("failed to read golden file %s: %v", path, err)
	}

	if string(actual) != string(expected) {
		t.Errorf("output mismatch for %s:\nExpected:\n%s\nActual:\n%s", path, expected, actual)
	}
}

// WriteGolden writes test output to a golden file.
// This should typically only be called when updating golden files.
func WriteGolden(t *testing.T, path string, data []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write golden file to %s: %v", path, err)
	}
}

// FixturePath constructs a path to a fixture file relative to the testdata directory.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}

// GoldenPath constructs a path to a golden file relative to the testdata directory.
func GoldenPath(filename string) string {
	return filepath.Join("testdata", "golden", filename)
}

// FixedTime is the reference clock the canned records are stamped with.
var FixedTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// NewMerchant returns a valid merchant with overridable identity.
func NewMerchant(id, name string) model.Merchant {
	return model.Merchant{ID: id, Name: name, Plan: "pro", CreatedAt: FixedTime}
}

// NewPlace returns a valid place owned by merchantID.
func NewPlace(id, merchantID, slug string) model.Place {
	return model.Place{
		ID:         id,
		MerchantID: merchantID,
		Name:       "Place " + id,
		Slug:       slug,
		CreatedAt:  FixedTime,
	}
}

// NewCampaign returns a valid campaign pointing at placeID.
func NewCampaign(id, merchantID, placeID string) model.Campaign {
	return model.Campaign{
		ID:         id,
		MerchantID: merchantID,
		PlaceID:    placeID,
		Name:       "Campaign " + id,
		Channel:    "qr",
		CreatedAt:  FixedTime,
	}
}

// NewRedirect returns an active redirect with a place target.
func NewRedirect(id, merchantID, code, placeID string) model.Redirect {
	return model.Redirect{
		ID:         id,
		MerchantID: merchantID,
		Code:       code,
		Target:     model.PlaceTarget(placeID),
		Active:     true,
		CreatedAt:  FixedTime,
		UpdatedAt:  FixedTime,
	}
}
