package redis

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestCacheSetAndGet(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "tariff:active", []byte("v3"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	val, err := cache.Get(ctx, "tariff:active")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if !bytes.Equal(val, []byte("v3")) {
		t.Fatalf("expected v3, got %s", val)
	}

	// Keys are namespaced under the service prefix.
	if !mr.Exists(cache.prefix + "tariff:active") {
		t.Fatalf("expected namespaced key, keys: %v", mr.Keys())
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "tariff:active", []byte("v3"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := cache.Get(ctx, "tariff:active"); err == nil {
		t.Fatal("expected error getting expired key")
	}
}

func TestCacheDelete(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "tariff:active", []byte("v3"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if err := cache.Delete(ctx, "tariff:active"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := cache.Get(ctx, "tariff:active"); err == nil {
		t.Fatal("expected error getting deleted key")
	}
}
