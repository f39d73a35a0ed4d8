package wasm

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
)

func TestRegexCache_Get(t *testing.T) {
	cache := newRegexCache(3)

	re1, err := cache.Get(`^(\w+) joined`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !re1.MatchString("Alice joined the game") {
		t.Error("regex should match join line")
	}

	// Second access returns the cached instance.
	re2, err := cache.Get(`^(\w+) joined`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if re1 != re2 {
		t.Error("expected same regex instance from cache")
	}
	if cache.Len() != 1 {
		t.Errorf("expected cache len 1, got %d", cache.Len())
	}
}

func TestRegexCache_Eviction(t *testing.T) {
	cache := newRegexCache(3)

	for _, p := range []string{"a", "b", "c"} {
		if _, err := cache.Get(p); err != nil {
			t.Fatalf("unexpected error for pattern %q: %v", p, err)
		}
	}
	if cache.Len() != 3 {
		t.Errorf("expected cache len 3, got %d", cache.Len())
	}

	// Touch "a" so "b" becomes the oldest, then overflow with "d".
	if _, err := cache.Get("a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := cache.Get("d"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cache.Len() != 3 {
		t.Errorf("expected cache len 3 after eviction, got %d", cache.Len())
	}
	for _, p := range []string{"a", "c", "d"} {
		if _, err := cache.Get(p); err != nil {
			t.Errorf("pattern %q should still resolve: %v", p, err)
		}
	}
	if cache.Len() != 3 {
		t.Errorf("expected cache len 3, got %d", cache.Len())
	}
}

func TestRegexCache_PatternTooLong(t *testing.T) {
	cache := newRegexCache(10)

	_, err := cache.Get(strings.Repeat("a", MaxPatternLength+1))
	if err == nil {
		t.Fatal("expected error for pattern exceeding max length")
	}
	var abiErr *ABIError
	if !errors.As(err, &abiErr) {
		t.Errorf("expected ABIError, got %T", err)
	}
	if cache.Len() != 0 {
		t.Errorf("rejected pattern must not be cached, len %d", cache.Len())
	}
}

func TestRegexCache_InvalidPattern(t *testing.T) {
	cache := newRegexCache(10)

	if _, err := cache.Get("[unclosed"); err == nil {
		t.Fatal("expected error for invalid pattern")
	}
	if cache.Len() != 0 {
		t.Errorf("failed compile must not be cached, len %d", cache.Len())
	}
}

func TestRegexCache_Concurrent(t *testing.T) {
	cache := newRegexCache(10)
	patterns := []string{`joined`, `left`, `<(\w+)>`, `was slain`, `advancement`}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if _, err := cache.Get(patterns[j%len(patterns)]); err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		}()
	}
	wg.Wait()

	if cache.Len() > 10 {
		t.Errorf("cache exceeded max size: %d", cache.Len())
	}
}

func TestRegexCache_ConcurrentSamePattern(t *testing.T) {
	// Many goroutines compiling the same pattern must end up with one entry.
	cache := newRegexCache(10)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Get(`^concurrent$`); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if cache.Len() != 1 {
		t.Errorf("expected cache len 1, got %d", cache.Len())
	}
}

func BenchmarkRegexCache_Get(b *testing.B) {
	cache := newRegexCache(100)
	patterns := make([]string, 50)
	for i := range patterns {
		patterns[i] = fmt.Sprintf("pattern-%d", i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := cache.Get(patterns[i%len(patterns)]); err != nil {
			b.Fatalf("unexpected error: %v", err)
		}
	}
}

func BenchmarkRegexCache_GetParallel(b *testing.B) {
	cache := newRegexCache(100)
	patterns := make([]string, 50)
	for i := range patterns {
		patterns[i] = fmt.Sprintf("pattern-%d", i)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			if _, err := cache.Get(patterns[i%len(patterns)]); err != nil {
				b.Fatalf("unexpected error: %v", err)
			}
			i++
		}
	})
}
