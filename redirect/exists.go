package redirect

import (
	"context"

	"github.com/zeflq/getrevio-core/kv"
)

// Existence is one code's probe outcome.
type Existence struct {
	Code   string `json:"code"`
	Exists bool   `json:"exists"`
}

// CheckExistence probes the cache for each code in one batched round trip and
// zips the replies back onto the input positionally. An empty input returns an
// empty result without touching the network.
func CheckExistence(ctx context.Context, client kv.Client, codes []string) ([]Existence, error) {
	out := make([]Existence, 0, len(codes))
	if len(codes) == 0 {
		return out, nil
	}

	batch := client.Batch()
	for _, code := range codes {
		batch.Exists(CacheKey(code))
	}
	results, err := batch.Exec(ctx)
	if err != nil {
		return nil, err
	}

	for i, code := range codes {
		if i < len(results) && results[i].Err != nil {
			return nil, results[i].Err
		}
		exists := i < len(results) && results[i].Val == 1
		out = append(out, Existence{Code: code, Exists: exists})
	}
	return out, nil
}
