// Package redirect implements the short-code resource: code allocation,
// target resolution, and the write-through cache mirror behind it.
//
// # Overview
//
// A redirect maps a short code to a polymorphic target (a place, or a
// campaign that belongs to a place). The relational record is authoritative;
// a derived cache entry under "sl:{code}" lets the hot redirect path answer
// without touching the store. This package owns everything about that
// derived entry and the code's lifecycle; plain CRUD plumbing lives in the
// query and action engines it wires up in NewResource.
//
// # Components
//
//   - **CodeAllocator**: assigns codes at create time. A caller-supplied code
//     is checked for global uniqueness; otherwise a fixed-length code is
//     drawn from a 62-character alphabet with bounded collision retries.
//   - **Resolver**: follows the slug chain from a target to its destination
//     URL. A broken chain (deleted place, blank slug) is a normal outcome,
//     reported as ok=false, never as an error.
//   - **Payload**: the versioned JSON value stored in the cache, rebuilt from
//     the record and the resolved destination on every write.
//   - **Synchronizer**: the write-through mirror invoked from the action
//     engine's after-hooks. Each entry point batches its commands so rename
//     cleanup and the new write travel together.
//   - **CheckExistence**: one batched exists probe per code, zipped back onto
//     the input positionally.
//
// # Consistency Model
//
// The synchronizer is strictly best-effort: every failure is logged and
// swallowed, so a cache outage can never roll back a committed mutation.
// There is no transaction spanning the store and the cache; a crash between
// the two leaves the cache stale until the next write to the same record.
// Callers must treat the store as the source of truth and the cache as an
// accelerator.
//
// # TTL Rule
//
// When a record carries expiresAt, the entry's TTL is the whole number of
// seconds remaining. A zero or negative remainder means the record is
// already expired: the entry is still written but no expiry command is
// issued, and it lives until an update or delete cleans it up.
//
// # Usage
//
// Wire the resource once and drive it through its engines:
//
//	res, err := redirect.NewResource(redirect.ResourceConfig{
//		Redirects: redirectStore,
//		Places:    placeStore,
//		Campaigns: campaignStore,
//		KV:        kvClient,
//		BaseURL:   "https://go.example",
//	})
//
//	rec, err := res.Action.Create(ctx, actx, &model.Redirect{
//		Target: model.PlaceTarget(placeID),
//		Active: true,
//	})
//	page, err := res.Query.List(ctx, tenantID, filter)
package redirect
