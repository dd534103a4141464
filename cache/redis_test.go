package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// Runs only when REDIS_ADDR points at a disposable server.
func TestRedisBackend(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()

	rb := NewRedisBackend(client, "test:views:"+time.Now().Format("150405.000")+":")
	vc := New(rb, time.Minute)
	vc.Set(ctx, "/", []byte("page"), "application/json")
	vc.Set(ctx, "/?page=2", []byte("page two"), "application/json")

	e, ok := vc.Get(ctx, "/")
	if !ok || string(e.Body) != "page" || e.ContentType != "application/json" {
		t.Fatalf("Get = %+v, %v", e, ok)
	}
	if err := vc.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok := vc.Get(ctx, "/?page=2"); ok {
		t.Error("entry survived Clear")
	}
}
