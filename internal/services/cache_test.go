package services

import (
	"context"
	"path/filepath"
	"testing"
)

func TestResponseCache(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "responses.db")

	cache, err := NewResponseCache(path)
	if err != nil {
		t.Fatalf("NewResponseCache: %v", err)
	}

	key := CacheKey("generate-questions", "model", "jd", "cv")
	var miss []string
	if ok, err := cache.Get(ctx, key, &miss); err != nil || ok {
		t.Fatalf("expected a miss, got ok=%v err=%v", ok, err)
	}

	if err := cache.Put(ctx, key, []string{"Q1?", "Q2?"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewResponseCache(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	var got []string
	ok, err := reopened.Get(ctx, key, &got)
	if err != nil || !ok {
		t.Fatalf("expected a hit, got ok=%v err=%v", ok, err)
	}
	if len(got) != 2 || got[1] != "Q2?" {
		t.Fatalf("unexpected cached value %q", got)
	}
}

func TestDisabledCache(t *testing.T) {
	cache, err := NewResponseCache("")
	if err != nil {
		t.Fatalf("NewResponseCache: %v", err)
	}
	if err := cache.Put(context.Background(), "k", "v"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	var got string
	if ok, _ := cache.Get(context.Background(), "k", &got); ok {
		t.Fatalf("disabled cache must never hit")
	}
}

func TestCacheKey(t *testing.T) {
	a := CacheKey("op", "model", "ab", "c")
	if a != CacheKey("op", "model", "ab", "c") {
		t.Fatalf("expected a stable key")
	}
	if a == CacheKey("op", "model", "a", "bc") {
		t.Fatalf("input boundaries must change the key")
	}
	if a == CacheKey("op", "other-model", "ab", "c") {
		t.Fatalf("the model must change the key")
	}
}
