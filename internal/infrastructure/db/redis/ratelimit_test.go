package redis

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func TestRateLimitStore_InProcess(t *testing.T) {
	store := NewRateLimitStore(nil, "auth", 3, time.Minute, zerolog.Nop())

	for i := 0; i < 3; i++ {
		ok, err := store.Allow("10.0.0.1")
		if err != nil || !ok {
			t.Fatalf("request %d: expected allow, got %v, %v", i+1, ok, err)
		}
	}
	if ok, _ := store.Allow("10.0.0.1"); ok {
		t.Fatalf("expected fourth request to be denied")
	}
	if ok, _ := store.Allow("10.0.0.2"); !ok {
		t.Fatalf("other identifiers have their own budget")
	}
}

func TestRateLimitStore_FallsBackWhenRedisDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	store := NewRateLimitStore(client, "api", 1, time.Minute, zerolog.Nop())

	ok, err := store.Allow("10.0.0.1")
	if err != nil || !ok {
		t.Fatalf("expected fallback to allow first request, got %v, %v", ok, err)
	}
	if ok, _ := store.Allow("10.0.0.1"); ok {
		t.Fatalf("expected fallback to enforce the budget")
	}
}

func TestRateLimitStore_KeyIsWindowed(t *testing.T) {
	store := NewRateLimitStore(nil, "auth", 5, time.Minute, zerolog.Nop())
	at := time.Date(2024, 1, 1, 10, 0, 30, 0, time.UTC)

	a := store.key("ip", at)
	b := store.key("ip", at.Add(20*time.Second))
	c := store.key("ip", at.Add(40*time.Second))

	if a != b {
		t.Fatalf("same window must share a key: %s vs %s", a, b)
	}
	if a == c {
		t.Fatalf("next window must use a new key")
	}
	if a != "ratelimit:auth:ip:1704103200" {
		t.Fatalf("unexpected key %s", a)
	}
}
