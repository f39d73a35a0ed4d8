package wasm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/tetratelabs/wazero"

	"github.com/mclog/mclog-go/pkg/mclog"
	"github.com/mclog/mclog-go/pkg/mclog/event"
	"github.com/mclog/mclog-go/pkg/mclog/logline"
)

const (
	// DefaultTimeout is the default timeout for one match_line execution.
	DefaultTimeout = 50 * time.Millisecond

	// MaxOutputSize is the maximum size of output from match_line (1MB).
	// This prevents memory exhaustion from malicious plugins.
	MaxOutputSize = 1 * 1024 * 1024
)

// matchInput is the JSON the host hands to match_line.
type matchInput struct {
	Line     string `json:"line"`
	Body     string `json:"body"`
	Category string `json:"category"`
}

// matchOutput is the JSON match_line returns.
type matchOutput struct {
	Ok    bool         `json:"ok"`
	Event *event.Event `json:"event"`
	Error *string      `json:"error,omitempty"`
	Code  *string      `json:"code,omitempty"`
}

// WasmMatcher implements mclog.Matcher using a WebAssembly plugin.
// It is goroutine-safe: each Match call instantiates a fresh module, so
// plugin state never leaks between lines or goroutines.
type WasmMatcher struct {
	compiled      *compiledWasm
	timeout       atomic.Int64 // nanoseconds
	logger        *slog.Logger
	abiVersion    uint32
	moduleCounter atomic.Uint64 // unique module names for concurrent calls
}

// Load loads a Wasm plugin from the given file path and verifies its ABI.
func Load(ctx context.Context, path string, logger *slog.Logger) (*WasmMatcher, error) {
	compiled, err := compileWasm(ctx, path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load wasm: %w", err)
	}

	abiVersion, err := callABIVersion(ctx, compiled)
	if err != nil {
		compiled.Close(context.Background())
		return nil, err
	}
	if abiVersion != ExpectedABIVersion {
		compiled.Close(context.Background())
		return nil, ErrABIVersionMismatch
	}

	m := &WasmMatcher{
		compiled:   compiled,
		logger:     logger,
		abiVersion: abiVersion,
	}
	m.timeout.Store(int64(DefaultTimeout))
	return m, nil
}

// callABIVersion instantiates the module once to read its ABI version.
func callABIVersion(ctx context.Context, compiled *compiledWasm) (uint32, error) {
	modConfig := wazero.NewModuleConfig().WithName("plugin-init")
	mod, err := compiled.runtime.InstantiateModule(ctx, compiled.compiled, modConfig)
	if err != nil {
		return 0, &WasmRuntimeError{Operation: "initial module instantiation", Err: err}
	}
	defer mod.Close(context.Background())

	fn := mod.ExportedFunction("abi_version")
	if fn == nil {
		return 0, &ABIError{Function: "abi_version", Reason: "not exported"}
	}

	results, err := fn.Call(ctx)
	if err != nil {
		return 0, &WasmRuntimeError{Operation: "abi_version call", Err: err}
	}
	if len(results) == 0 {
		return 0, &ABIError{Function: "abi_version", Reason: "no return value"}
	}
	return uint32(results[0]), nil
}

// Match runs the plugin's match_line on one tokenized line.
// This method is goroutine-safe.
func (m *WasmMatcher) Match(ctx context.Context, line logline.Line) (mclog.MatchResult, error) {
	if m.compiled == nil {
		return mclog.MatchResult{}, errors.New("matcher is closed")
	}

	timeout := time.Duration(m.timeout.Load())
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Fresh instance per call; the plugin sees one line at a time.
	name := fmt.Sprintf("plugin-%d", m.moduleCounter.Add(1))
	modConfig := wazero.NewModuleConfig().WithName(name)
	mod, err := m.compiled.runtime.InstantiateModule(ctx, m.compiled.compiled, modConfig)
	if err != nil {
		return mclog.MatchResult{}, &WasmRuntimeError{Operation: "module instantiation", Err: err}
	}
	defer mod.Close(context.Background())

	inputJSON, err := json.Marshal(matchInput{
		Line:     line.Raw,
		Body:     line.Body,
		Category: string(line.Category),
	})
	if err != nil {
		return mclog.MatchResult{}, fmt.Errorf("failed to marshal input: %w", err)
	}

	if len(inputJSON) > inputRegionSize {
		return mclog.MatchResult{}, fmt.Errorf("input too large: %d bytes (max %d)", len(inputJSON), inputRegionSize)
	}

	memSize := mod.Memory().Size()
	if inputRegion+uint32(len(inputJSON)) > memSize {
		return mclog.MatchResult{}, fmt.Errorf("input region 0x%x + input size %d exceeds wasm memory size %d; plugin may need larger initial memory", inputRegion, len(inputJSON), memSize)
	}

	if !mod.Memory().Write(inputRegion, inputJSON) {
		return mclog.MatchResult{}, fmt.Errorf("failed to write input to wasm memory")
	}

	matchLineFn := mod.ExportedFunction("match_line")
	if matchLineFn == nil {
		return mclog.MatchResult{}, &ABIError{Function: "match_line", Reason: "not exported"}
	}

	results, err := matchLineFn.Call(ctx, uint64(inputRegion), uint64(len(inputJSON)))
	if err != nil {
		if ctx.Err() != nil {
			if ctx.Err() == context.DeadlineExceeded {
				return mclog.MatchResult{}, ErrTimeout
			}
			return mclog.MatchResult{}, ctx.Err()
		}
		return mclog.MatchResult{}, &WasmRuntimeError{Operation: "match_line call", Err: err}
	}
	if len(results) == 0 {
		return mclog.MatchResult{}, &ABIError{Function: "match_line", Reason: "no return value"}
	}

	// Return value packs (out_len << 32) | out_ptr.
	packed := results[0]
	outPtr := uint32(packed & 0xFFFFFFFF)
	outLen := uint32(packed >> 32)

	if outLen > MaxOutputSize {
		return mclog.MatchResult{}, fmt.Errorf("plugin output too large: %d bytes (max %d)", outLen, MaxOutputSize)
	}

	outBytes, ok := mod.Memory().Read(outPtr, outLen)
	if !ok {
		return mclog.MatchResult{}, fmt.Errorf("failed to read output from wasm memory")
	}

	// Memory().Read returns a view into plugin memory, not a copy; the
	// buffer must be copied before free hands it back to the plugin.
	outCopy := make([]byte, len(outBytes))
	copy(outCopy, outBytes)

	if freeFn := mod.ExportedFunction("free"); freeFn != nil {
		_, _ = freeFn.Call(ctx, uint64(outPtr), uint64(outLen))
	}

	var output matchOutput
	if err := json.Unmarshal(outCopy, &output); err != nil {
		return mclog.MatchResult{}, fmt.Errorf("failed to unmarshal output: %w", err)
	}

	if !output.Ok {
		errMsg := "unknown error"
		if output.Error != nil {
			errMsg = *output.Error
		}
		code := ""
		if output.Code != nil {
			code = *output.Code
		}
		return mclog.MatchResult{}, &PluginError{Code: code, Message: errMsg}
	}

	if output.Event == nil {
		return mclog.MatchResult{}, nil
	}

	ev := *output.Event
	if ev.Timestamp.IsZero() {
		ev.Timestamp = line.Timestamp
	}
	return mclog.MatchResult{Event: ev, Matched: true}, nil
}

// Close releases resources held by the matcher.
// Implements io.Closer. Safe to call multiple times.
func (m *WasmMatcher) Close() error {
	if m.compiled == nil {
		return nil
	}
	err := m.compiled.Close(context.Background())
	m.compiled = nil
	return err
}

// SetTimeout sets the match_line execution timeout.
// This method is goroutine-safe.
func (m *WasmMatcher) SetTimeout(timeout time.Duration) {
	m.timeout.Store(int64(timeout))
}
