package redirect

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/zeflq/getrevio-core/kv"
	"github.com/zeflq/getrevio-core/model"
	"github.com/zeflq/getrevio-core/policy"
	"github.com/zeflq/getrevio-core/store"
)

// SyncConfig assembles a Synchronizer.
type SyncConfig struct {
	KV       kv.Client
	Resolver *Resolver
	BaseURL  string
	Logger   *zap.Logger
	// Now is the clock used for TTL math. Defaults to time.Now.
	Now func() time.Time
}

// Validate reports the first missing required configuration field.
func (c SyncConfig) Validate() error {
	if c.KV == nil {
		return &policy.ConfigError{Field: "KV", Message: "is required"}
	}
	if c.Resolver == nil {
		return &policy.ConfigError{Field: "Resolver", Message: "is required"}
	}
	if c.BaseURL == "" {
		return &policy.ConfigError{Field: "BaseURL", Message: "is required"}
	}
	return nil
}

// Synchronizer mirrors redirect records into the cache store. Every entry
// point is best-effort: failures are logged and swallowed, never propagated,
// so cache trouble can not roll back a committed mutation. The store stays
// the source of truth and the cache may go stale across a crash.
type Synchronizer struct {
	kv       kv.Client
	resolver *Resolver
	baseURL  string
	log      *zap.Logger
	now      func() time.Time
}

// NewSynchronizer validates the configuration and builds a synchronizer.
func NewSynchronizer(cfg SyncConfig) (*Synchronizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Synchronizer{
		kv:       cfg.KV,
		resolver: cfg.Resolver,
		baseURL:  cfg.BaseURL,
		log:      log,
		now:      now,
	}, nil
}

// OnCreated writes the cache entry for a new record. Unresolvable targets
// leave the cache untouched.
func (s *Synchronizer) OnCreated(ctx context.Context, rec *model.Redirect) {
	if rec == nil {
		return
	}
	dest, ok, err := s.resolver.Resolve(ctx, s.baseURL, rec.Target)
	if err != nil {
		s.log.Warn("redirect cache sync skipped: resolve failed",
			zap.String("code", rec.Code), zap.Error(err))
		return
	}
	if !ok {
		return
	}
	batch := s.kv.Batch()
	if !s.queueWrite(batch, *rec, dest) {
		return
	}
	s.exec(ctx, batch, "create", rec.Code)
}

// OnUpdated re-mirrors the effective record, the previous row with the patch
// overlaid. A code change deletes the old key in the same batch; an
// unresolvable effective target deletes the (possibly new) key instead of
// writing it.
func (s *Synchronizer) OnUpdated(ctx context.Context, previous *model.Redirect, patch store.Patch) {
	if previous == nil {
		s.log.Warn("redirect cache sync skipped: previous row not loaded")
		return
	}
	effective := overlay(*previous, patch)

	batch := s.kv.Batch()
	if effective.Code != previous.Code {
		batch.Del(CacheKey(previous.Code))
	}

	dest, ok, err := s.resolver.Resolve(ctx, s.baseURL, effective.Target)
	if err != nil {
		s.log.Warn("redirect cache sync skipped: resolve failed",
			zap.String("code", effective.Code), zap.Error(err))
		return
	}
	if !ok {
		batch.Del(CacheKey(effective.Code))
		s.exec(ctx, batch, "update", effective.Code)
		return
	}
	if !s.queueWrite(batch, effective, dest) {
		return
	}
	s.exec(ctx, batch, "update", effective.Code)
}

// OnDeleted removes the cache entry for a deleted record.
func (s *Synchronizer) OnDeleted(ctx context.Context, previous *model.Redirect) {
	if previous == nil {
		s.log.Warn("redirect cache sync skipped: previous row not loaded")
		return
	}
	batch := s.kv.Batch()
	batch.Del(CacheKey(previous.Code))
	s.exec(ctx, batch, "delete", previous.Code)
}

// queueWrite queues the set, plus the expiry when the record has a future
// expiresAt. A zero or negative remaining lifetime means the record is
// already expired and no expiry command is issued; the entry then lives until
// explicit cleanup.
func (s *Synchronizer) queueWrite(batch kv.Batch, rec model.Redirect, dest string) bool {
	body, err := NewPayload(rec, dest).Encode()
	if err != nil {
		s.log.Warn("redirect cache sync skipped: payload encode failed",
			zap.String("code", rec.Code), zap.Error(err))
		return false
	}
	key := CacheKey(rec.Code)
	batch.Set(key, body)
	if ttl := s.ttl(rec); ttl > 0 {
		batch.Expire(key, ttl)
	}
	return true
}

func (s *Synchronizer) ttl(rec model.Redirect) time.Duration {
	if rec.ExpiresAt == nil {
		return 0
	}
	secs := int64(rec.ExpiresAt.Sub(s.now()).Seconds())
	if secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func (s *Synchronizer) exec(ctx context.Context, batch kv.Batch, op, code string) {
	results, err := batch.Exec(ctx)
	if err != nil {
		s.log.Warn("redirect cache sync failed",
			zap.String("op", op), zap.String("code", code), zap.Error(err))
		return
	}
	for i, r := range results {
		if r.Err != nil {
			s.log.Warn("redirect cache sync command failed",
				zap.String("op", op), zap.String("code", code),
				zap.Int("command", i), zap.Error(r.Err))
		}
	}
}

// overlay applies a patch on top of a record, producing the effective row the
// cache entry must reflect. Unknown fields are ignored; the mutation already
// validated the patch.
func overlay(rec model.Redirect, patch store.Patch) model.Redirect {
	for field, value := range patch {
		switch field {
		case "code":
			if v, ok := value.(string); ok {
				rec.Code = v
			}
		case "active":
			if v, ok := value.(bool); ok {
				rec.Active = v
			}
		case "channel":
			if v, ok := value.(string); ok {
				rec.Channel = v
			}
		case "themeId":
			if v, ok := value.(string); ok {
				rec.ThemeID = v
			}
		case "target":
			if v, ok := value.(model.Target); ok {
				rec.Target = v
			}
		case "utm":
			if value == nil {
				rec.UTM = nil
			} else if v, ok := value.(map[string]string); ok {
				rec.UTM = v
			}
		case "expiresAt":
			switch v := value.(type) {
			case nil:
				rec.ExpiresAt = nil
			case *time.Time:
				rec.ExpiresAt = v
			case time.Time:
				rec.ExpiresAt = &v
			}
		}
	}
	return rec
}
