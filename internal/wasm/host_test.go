package wasm

import (
	"context"
	"log/slog"
	"os"
	"regexp"
	"testing"
	"time"
)

func TestNewHostFunctions(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	hf := newHostFunctions(logger)

	if hf.cache == nil {
		t.Error("cache should be initialized")
	}
	if hf.logger == nil {
		t.Error("logger should be set")
	}
	if hf.rateLimiter == nil {
		t.Error("rateLimiter should be initialized")
	}
}

func TestHostFunctions_NowMs(t *testing.T) {
	hf := newHostFunctions(nil)

	before := time.Now().UnixMilli()
	got := hf.nowMs()
	after := time.Now().UnixMilli()

	if got < before || got > after {
		t.Errorf("nowMs returned %d, expected between %d and %d", got, before, after)
	}
}

func TestHostFunctions_LogRateLimit(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	hf := newHostFunctions(logger)

	for i := 0; i < LogRateLimit; i++ {
		if !hf.rateLimiter.Allow() {
			t.Errorf("call %d should be allowed", i)
		}
	}
	if hf.rateLimiter.Allow() {
		t.Error("expected rate limit to be enforced")
	}

	time.Sleep(time.Second)

	if !hf.rateLimiter.Allow() {
		t.Error("rate limiter should have refilled")
	}
}

func TestHostFunctions_RegexCache(t *testing.T) {
	hf := newHostFunctions(nil)

	re, err := hf.cache.Get(`(\w+) fell from a high place`)
	if err != nil {
		t.Fatalf("cache.Get failed: %v", err)
	}
	if !re.MatchString("Bob fell from a high place") {
		t.Error("regex should match death line")
	}
}

func TestRunRegex_Completes(t *testing.T) {
	hf := newHostFunctions(nil)

	re := regexp.MustCompile(`joined the game$`)
	matched, completed := hf.runRegex(context.Background(), func() bool {
		return re.MatchString("Alice joined the game")
	})
	if !completed {
		t.Fatal("expected regex to complete")
	}
	if !matched {
		t.Error("expected regex to match")
	}
}

func TestRunRegex_Timeout(t *testing.T) {
	hf := newHostFunctions(nil)

	started := make(chan struct{})
	_, completed := hf.runRegex(context.Background(), func() bool {
		close(started)
		time.Sleep(RegexTimeout * 20)
		return true
	})
	if completed {
		t.Error("expected runRegex to abandon a slow match")
	}
	<-started
}

// Full round trips through regexMatch, regexFindSubmatch, and log need a
// live module instance with memory; those run in matcher_test.go against
// the regex test plugin.
