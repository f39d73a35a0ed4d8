package wasm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/mclog/mclog-go/internal/safefile"
)

const (
	// MaxWasmFileSize is the maximum size of a Wasm file (10MB).
	MaxWasmFileSize = 10 * 1024 * 1024

	// ExpectedABIVersion is the ABI version this implementation supports.
	ExpectedABIVersion = 1

	// inputRegion is the fixed memory offset where the host writes input
	// data. 64KB in, clear of TinyGo's data segment and stack.
	inputRegion = 0x10000

	// inputRegionSize is the size of the input region (8KB).
	inputRegionSize = 8192
)

// compiledWasm bundles a wazero runtime with one compiled plugin module.
type compiledWasm struct {
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
	cache    wazero.CompilationCache
	host     *hostFunctions
}

// Close releases the runtime resources in reverse order of creation.
// Safe to call multiple times.
func (c *compiledWasm) Close(ctx context.Context) error {
	var firstErr error

	if c.cache != nil {
		if err := c.cache.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
		c.cache = nil
	}
	if c.compiled != nil {
		if err := c.compiled.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
		c.compiled = nil
	}
	if c.runtime != nil {
		if err := c.runtime.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
		c.runtime = nil
	}

	return firstErr
}

// compileWasm reads, validates and AOT-compiles a plugin file.
func compileWasm(ctx context.Context, path string, logger *slog.Logger) (*compiledWasm, error) {
	wasmBytes, err := readWasmFile(path)
	if err != nil {
		return nil, err
	}

	// CloseOnContextDone lets a context deadline abort a running plugin.
	rtConfig := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)

	var cache wazero.CompilationCache
	if cacheDir, err := compilationCacheDir(); err == nil {
		cache, err = wazero.NewCompilationCacheWithDir(cacheDir)
		if err == nil {
			rtConfig = rtConfig.WithCompilationCache(cache)
			if logger != nil {
				logger.Debug("using wasm compilation cache", "dir", cacheDir)
			}
		} else if logger != nil {
			logger.Warn("failed to create compilation cache, continuing without cache", "error", err)
			cache = nil
		}
	}

	rt := wazero.NewRuntimeWithConfig(ctx, rtConfig)
	hf := newHostFunctions(logger)

	// Cleanup on any failure below; contexts in error paths may already be
	// cancelled, so closing uses a fresh one.
	fail := func(err error) (*compiledWasm, error) {
		cleanupCtx := context.Background()
		rt.Close(cleanupCtx)
		if cache != nil {
			cache.Close(cleanupCtx)
		}
		return nil, err
	}

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		return fail(&WasmRuntimeError{Operation: "wasi instantiation", Err: err})
	}

	if err := registerHostModule(ctx, rt, hf); err != nil {
		return fail(&WasmRuntimeError{Operation: "host functions registration", Err: err})
	}

	compiled, err := rt.CompileModule(ctx, wasmBytes)
	if err != nil {
		return fail(fmt.Errorf("%w: %v", ErrInvalidWasm, err))
	}

	if err := validateExports(compiled); err != nil {
		compiled.Close(context.Background())
		return fail(err)
	}

	return &compiledWasm{
		runtime:  rt,
		compiled: compiled,
		cache:    cache,
		host:     hf,
	}, nil
}

// readWasmFile reads a plugin file through safefile with the size cap.
func readWasmFile(path string) ([]byte, error) {
	wasmBytes, err := safefile.ReadAllLimit(path, MaxWasmFileSize)
	if err != nil {
		if errors.Is(err, safefile.ErrFileTooLarge) {
			return nil, ErrFileTooLarge
		}
		return nil, fmt.Errorf("failed to read wasm file: %w", err)
	}
	return wasmBytes, nil
}

// registerHostModule exposes the host functions as the "env" module.
func registerHostModule(ctx context.Context, rt wazero.Runtime, hf *hostFunctions) error {
	builder := rt.NewHostModuleBuilder("env")

	builder = builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, strPtr, strLen, rePtr, reLen uint32) uint32 {
			return hf.regexMatch(ctx, m, strPtr, strLen, rePtr, reLen)
		}).
		Export("regex_match")

	builder = builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, strPtr, strLen, rePtr, reLen, outBufPtr, outBufLen uint32) uint32 {
			return hf.regexFindSubmatch(ctx, m, strPtr, strLen, rePtr, reLen, outBufPtr, outBufLen)
		}).
		Export("regex_find_submatch")

	builder = builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, level, ptr, msgLen uint32) {
			hf.log(ctx, m, level, ptr, msgLen)
		}).
		Export("log")

	builder = builder.NewFunctionBuilder().
		WithFunc(func() int64 {
			return hf.nowMs()
		}).
		Export("now_ms")

	_, err := builder.Instantiate(ctx)
	return err
}

// validateExports checks that the module exports the functions the ABI
// requires. It checks existence only; the version value is verified by
// calling abi_version in Load.
func validateExports(compiled wazero.CompiledModule) error {
	required := []string{"abi_version", "alloc", "free", "match_line"}

	exported := compiled.ExportedFunctions()
	for _, name := range required {
		if _, ok := exported[name]; !ok {
			return &ABIError{
				Function: name,
				Reason:   "missing required export",
			}
		}
	}
	return nil
}

// compilationCacheDir returns the wazero compilation cache directory,
// following the XDG Base Directory specification.
func compilationCacheDir() (string, error) {
	cacheHome := os.Getenv("XDG_CACHE_HOME")
	if cacheHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		cacheHome = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(cacheHome, "mclog", "wasm")

	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}
