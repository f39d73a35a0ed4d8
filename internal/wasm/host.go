package wasm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tetratelabs/wazero/api"
	"golang.org/x/time/rate"
)

const (
	// MaxLogSize is the maximum size of a single plugin log message.
	MaxLogSize = 256

	// LogRateLimit is the maximum number of plugin log calls per second.
	LogRateLimit = 10

	// RegexTimeout is the maximum time allowed for one regex host call.
	RegexTimeout = 5 * time.Millisecond
)

// hostFunctions backs the "env" module imported by plugins: regex helpers
// with a shared compile cache, a rate-limited logger and a clock.
type hostFunctions struct {
	cache       *regexCache
	logger      *slog.Logger
	rateLimiter *rate.Limiter
}

func newHostFunctions(logger *slog.Logger) *hostFunctions {
	return &hostFunctions{
		cache:       newRegexCache(DefaultRegexCacheSize),
		logger:      logger,
		rateLimiter: rate.NewLimiter(LogRateLimit, LogRateLimit),
	}
}

// regexMatch implements the regex_match host function.
// Signature: (str_ptr, str_len, re_ptr, re_len) -> i32
// Returns 1 on match, 0 on no match or error.
func (h *hostFunctions) regexMatch(ctx context.Context, m api.Module, strPtr, strLen, rePtr, reLen uint32) uint32 {
	str, pattern, ok := h.readStringPair(m, strPtr, strLen, rePtr, reLen)
	if !ok {
		return 0
	}

	re, err := h.cache.Get(pattern)
	if err != nil {
		h.warn("regex compilation failed", "pattern", pattern, "error", err)
		return 0
	}

	matched, ok := h.runRegex(ctx, func() bool { return re.MatchString(str) })
	if !ok {
		h.warn("regex match timeout", "pattern", pattern, "str_len", len(str))
		return 0
	}
	if matched {
		return 1
	}
	return 0
}

// regexFindSubmatch implements the regex_find_submatch host function.
// Signature: (str_ptr, str_len, re_ptr, re_len, out_buf_ptr, out_buf_len) -> i32
// Writes the submatches as a JSON string array into the output buffer.
// Returns the number of bytes written, 0 on no match or error, and
// 0xFFFFFFFF when the buffer is too small.
func (h *hostFunctions) regexFindSubmatch(ctx context.Context, m api.Module, strPtr, strLen, rePtr, reLen, outBufPtr, outBufLen uint32) uint32 {
	str, pattern, ok := h.readStringPair(m, strPtr, strLen, rePtr, reLen)
	if !ok {
		return 0
	}

	re, err := h.cache.Get(pattern)
	if err != nil {
		h.warn("regex compilation failed", "pattern", pattern, "error", err)
		return 0
	}

	var matches []string
	done, ok := h.runRegex(ctx, func() bool {
		matches = re.FindStringSubmatch(str)
		return matches != nil
	})
	if !ok {
		h.warn("regex find submatch timeout", "pattern", pattern, "str_len", len(str))
		return 0
	}
	if !done {
		return 0
	}

	jsonBytes, err := json.Marshal(matches)
	if err != nil {
		h.warn("failed to marshal submatch results", "error", err)
		return 0
	}

	if uint32(len(jsonBytes)) > outBufLen {
		return 0xFFFFFFFF
	}
	if !m.Memory().Write(outBufPtr, jsonBytes) {
		return 0
	}
	return uint32(len(jsonBytes))
}

// log implements the log host function.
// Signature: (level, ptr, len)
// Levels: 0=debug, 1=info, 2=warn, 3=error. Messages are rate limited and
// truncated to MaxLogSize.
func (h *hostFunctions) log(_ context.Context, m api.Module, level, ptr, msgLen uint32) {
	if !h.rateLimiter.Allow() {
		return
	}

	truncated := false
	if msgLen > MaxLogSize {
		truncated = true
		msgLen = MaxLogSize
	}

	msgBytes, ok := m.Memory().Read(ptr, msgLen)
	if !ok {
		return
	}

	msg := strings.ToValidUTF8(string(msgBytes), "�")
	if truncated {
		msg += " [truncated]"
	}

	if h.logger == nil {
		return
	}

	switch level {
	case 0:
		h.logger.Debug("[plugin] " + msg)
	case 1:
		h.logger.Info("[plugin] " + msg)
	case 2:
		h.logger.Warn("[plugin] " + msg)
	case 3:
		h.logger.Error("[plugin] " + msg)
	default:
		h.logger.Info(fmt.Sprintf("[plugin] (level=%d) %s", level, msg))
	}
}

// nowMs implements the now_ms host function.
// Signature: () -> i64
// Returns current Unix time in milliseconds.
func (h *hostFunctions) nowMs() int64 {
	return time.Now().UnixMilli()
}

// readStringPair reads two strings out of plugin memory.
func (h *hostFunctions) readStringPair(m api.Module, aPtr, aLen, bPtr, bLen uint32) (string, string, bool) {
	aBytes, ok := m.Memory().Read(aPtr, aLen)
	if !ok {
		return "", "", false
	}
	bBytes, ok := m.Memory().Read(bPtr, bLen)
	if !ok {
		return "", "", false
	}
	return string(aBytes), string(bBytes), true
}

// runRegex executes fn under the regex timeout and returns its result.
// The second return value is false when the timeout fired first.
//
// Go's regexp package cannot be cancelled mid-run, so on timeout the
// goroutine keeps running until it finishes on its own. RE2 semantics
// guarantee linear time and MaxPatternLength caps the pattern, which keeps
// the stragglers short-lived.
func (h *hostFunctions) runRegex(ctx context.Context, fn func() bool) (result bool, completed bool) {
	ctx, cancel := context.WithTimeout(ctx, RegexTimeout)
	defer cancel()

	resultCh := make(chan bool, 1)
	go func() {
		resultCh <- fn()
	}()

	select {
	case r := <-resultCh:
		return r, true
	case <-ctx.Done():
		return false, false
	}
}

// warn logs through the configured logger, if any.
func (h *hostFunctions) warn(msg string, args ...any) {
	if h.logger != nil {
		h.logger.Warn(msg, args...)
	}
}
