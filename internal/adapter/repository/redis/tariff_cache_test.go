package redis

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sgcerp/tajbilling/internal/domain"
)

type fakeTariffRepo struct {
	versions    []*domain.TariffVersion
	activeCalls int
}

func (f *fakeTariffRepo) Append(ctx context.Context, version *domain.TariffVersion) error {
	version.Version = int64(len(f.versions) + 1)
	f.versions = append(f.versions, version)
	return nil
}

func (f *fakeTariffRepo) ActiveAt(ctx context.Context, asOf time.Time) (*domain.TariffVersion, error) {
	f.activeCalls++
	var best *domain.TariffVersion
	for _, v := range f.versions {
		if !v.EffectiveFrom.After(asOf) && (best == nil || !v.EffectiveFrom.Before(best.EffectiveFrom)) {
			best = v
		}
	}
	if best == nil {
		return nil, domain.ErrTariffNotFound
	}
	return best, nil
}

func (f *fakeTariffRepo) List(ctx context.Context, limit, offset int) ([]*domain.TariffVersion, error) {
	return f.versions, nil
}

func TestCachedTariffRepositoryActiveAt(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	inner := &fakeTariffRepo{}
	repo := NewCachedTariffRepository(inner, NewCache(client), time.Minute)
	ctx := context.Background()

	err := repo.Append(ctx, &domain.TariffVersion{
		ID:            "tv-1",
		EffectiveFrom: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		CAMSlabs: []domain.CAMSlab{
			{SizeLabel: "4M", ZoneType: domain.ZoneTypeResidential, Amount: decimal.NewFromInt(1500)},
		},
		CreatedBy: "admin",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}

	asOf := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	first, err := repo.ActiveAt(ctx, asOf)
	if err != nil {
		t.Fatalf("first lookup failed: %v", err)
	}
	second, err := repo.ActiveAt(ctx, asOf)
	if err != nil {
		t.Fatalf("second lookup failed: %v", err)
	}

	if inner.activeCalls != 1 {
		t.Fatalf("expected one source lookup, got %d", inner.activeCalls)
	}
	if first.ID != second.ID || second.ID != "tv-1" {
		t.Fatalf("expected tv-1 from both lookups, got %s and %s", first.ID, second.ID)
	}
	if len(second.CAMSlabs) != 1 || !second.CAMSlabs[0].Amount.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("cached version lost its slabs: %+v", second.CAMSlabs)
	}
}

func TestCachedTariffRepositoryAppendInvalidates(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	inner := &fakeTariffRepo{}
	repo := NewCachedTariffRepository(inner, NewCache(client), time.Minute)
	ctx := context.Background()

	effective := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := repo.Append(ctx, &domain.TariffVersion{ID: "tv-1", EffectiveFrom: effective}); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if _, err := repo.ActiveAt(ctx, effective); err != nil {
		t.Fatalf("lookup failed: %v", err)
	}

	// A second version effective the same day must not be shadowed by the
	// cached first one.
	if err := repo.Append(ctx, &domain.TariffVersion{ID: "tv-2", EffectiveFrom: effective}); err != nil {
		t.Fatalf("second append failed: %v", err)
	}

	got, err := repo.ActiveAt(ctx, effective)
	if err != nil {
		t.Fatalf("lookup after append failed: %v", err)
	}
	if got.ID != "tv-2" {
		t.Fatalf("expected tv-2 after invalidation, got %s", got.ID)
	}
}

func TestCachedTariffRepositoryMiss(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	repo := NewCachedTariffRepository(&fakeTariffRepo{}, NewCache(client), time.Minute)

	_, err := repo.ActiveAt(context.Background(), time.Now().UTC())
	if err != domain.ErrTariffNotFound {
		t.Fatalf("expected ErrTariffNotFound, got %v", err)
	}
}
