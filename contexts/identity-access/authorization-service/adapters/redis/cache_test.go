package redisadapter_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	redisadapter "backoffice/contexts/identity-access/authorization-service/adapters/redis"
)

func newCache(t *testing.T) (*redisadapter.Cache, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redisadapter.NewCache(client), server
}

func TestDecisionRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache, _ := newCache(t)

	if _, found, err := cache.GetDecision(ctx, "p1|t1|members.view"); err != nil || found {
		t.Fatalf("expected clean miss, found=%v err=%v", found, err)
	}

	if err := cache.SetDecision(ctx, "p1|t1|members.view", true, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	allowed, found, err := cache.GetDecision(ctx, "p1|t1|members.view")
	if err != nil || !found || !allowed {
		t.Fatalf("expected cached allow, allowed=%v found=%v err=%v", allowed, found, err)
	}

	if err := cache.SetDecision(ctx, "p1|t1|tenant.manage", false, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	allowed, found, err = cache.GetDecision(ctx, "p1|t1|tenant.manage")
	if err != nil || !found || allowed {
		t.Fatalf("expected cached deny, allowed=%v found=%v err=%v", allowed, found, err)
	}
}

func TestDecisionExpiry(t *testing.T) {
	ctx := context.Background()
	cache, server := newCache(t)

	if err := cache.SetDecision(ctx, "p1|t1|members.view", true, time.Second); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	server.FastForward(2 * time.Second)

	if _, found, err := cache.GetDecision(ctx, "p1|t1|members.view"); err != nil || found {
		t.Fatalf("expected expiry miss, found=%v err=%v", found, err)
	}
}
