package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sgcerp/tajbilling/internal/domain"
	"github.com/sgcerp/tajbilling/internal/usecase"
)

// CachedTariffRepository is a read-through cache around a TariffRepository.
// ActiveAt is hit on every bill computation while the tariff table changes a
// few times a year, so lookups are cached per calendar day. Staleness after
// an Append is bounded by the TTL.
type CachedTariffRepository struct {
	inner usecase.TariffRepository
	cache usecase.Cache
	ttl   time.Duration
}

// NewCachedTariffRepository wraps a tariff repository with caching.
func NewCachedTariffRepository(inner usecase.TariffRepository, cache usecase.Cache, ttl time.Duration) *CachedTariffRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedTariffRepository{inner: inner, cache: cache, ttl: ttl}
}

// Append stores a new version and drops the cached lookup for its effective
// day. Other days age out through the TTL.
func (r *CachedTariffRepository) Append(ctx context.Context, version *domain.TariffVersion) error {
	if err := r.inner.Append(ctx, version); err != nil {
		return err
	}
	_ = r.cache.Delete(ctx, activeTariffKey(version.EffectiveFrom))
	_ = r.cache.Delete(ctx, activeTariffKey(time.Now().UTC()))
	return nil
}

// ActiveAt resolves the tariff version in force at asOf, serving from cache
// when possible.
func (r *CachedTariffRepository) ActiveAt(ctx context.Context, asOf time.Time) (*domain.TariffVersion, error) {
	key := activeTariffKey(asOf)
	if data, err := r.cache.Get(ctx, key); err == nil && len(data) > 0 {
		var version domain.TariffVersion
		if err := json.Unmarshal(data, &version); err == nil {
			return &version, nil
		}
	}

	version, err := r.inner.ActiveAt(ctx, asOf)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(version); err == nil {
		_ = r.cache.Set(ctx, key, data, r.ttl)
	}
	return version, nil
}

// List always goes to the source; it is an admin-facing call.
func (r *CachedTariffRepository) List(ctx context.Context, limit, offset int) ([]*domain.TariffVersion, error) {
	return r.inner.List(ctx, limit, offset)
}

func activeTariffKey(asOf time.Time) string {
	return "tariff:active:" + asOf.UTC().Format("2006-01-02")
}
