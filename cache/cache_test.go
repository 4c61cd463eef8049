package cache

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*Listings, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, time.Minute), mr
}

func TestKeyIgnoresParameterOrder(t *testing.T) {
	a := Key("filter", url.Values{"city": {"Pune"}, "bhk": {"2,3"}})
	b := Key("filter", url.Values{"bhk": {"2,3"}, "city": {"Pune"}})
	if a != b {
		t.Errorf("keys differ: %s vs %s", a, b)
	}
	if c := Key("city", url.Values{"city": {"Pune"}, "bhk": {"2,3"}}); c == a {
		t.Error("different routes should not share a key")
	}
}

func TestSetGetAndTTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	key := Key("all", nil)

	if _, ok := c.Get(ctx, key); ok {
		t.Fatal("expected miss on empty cache")
	}
	c.Set(ctx, key, []byte(`[{"city":"Pune"}]`))

	got, ok := c.Get(ctx, key)
	if !ok || string(got) != `[{"city":"Pune"}]` {
		t.Fatalf("Get = %q, %v", got, ok)
	}

	mr.FastForward(2 * time.Minute)
	if _, ok := c.Get(ctx, key); ok {
		t.Error("expected entry to expire")
	}
}

func TestInvalidateOnlyDropsListingKeys(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	for i, route := range []string{"all", "filter", "city"} {
		c.Set(ctx, Key(route, url.Values{"n": {string(rune('a' + i))}}), []byte("x"))
	}
	if err := mr.Set("session:abc", "keep"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	c.Invalidate(ctx)

	for _, k := range mr.Keys() {
		if k != "session:abc" {
			t.Errorf("key %q survived invalidation", k)
		}
	}
	if !mr.Exists("session:abc") {
		t.Error("unrelated key was deleted")
	}
}

func TestNilCacheIsNoop(t *testing.T) {
	var c *Listings
	c.Set(context.Background(), "k", []byte("v"))
	if _, ok := c.Get(context.Background(), "k"); ok {
		t.Error("nil cache returned a hit")
	}
	c.Invalidate(context.Background())
	c.InvalidateAsync()
}
