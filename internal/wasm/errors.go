// Package wasm runs user matchers compiled to WebAssembly.
package wasm

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidWasm marks a plugin file wazero refused to compile.
	ErrInvalidWasm = errors.New("invalid wasm file")

	// ErrABIVersionMismatch marks a plugin built against a different ABI.
	ErrABIVersionMismatch = errors.New("abi version mismatch")

	// ErrTimeout marks a match_line call that exceeded its time budget.
	ErrTimeout = errors.New("plugin timeout")

	// ErrFileTooLarge marks a plugin file over MaxWasmFileSize.
	ErrFileTooLarge = errors.New("wasm file too large")
)

// ABIError reports a structural ABI violation, such as a missing export.
type ABIError struct {
	Function string
	Reason   string
}

func (e *ABIError) Error() string {
	return fmt.Sprintf("abi error in %s: %s", e.Function, e.Reason)
}

// PluginError carries a failure the plugin itself reported through the
// output JSON ("ok": false).
type PluginError struct {
	Code    string
	Message string
}

func (e *PluginError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("plugin error %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("plugin error: %s", e.Message)
}

// WasmRuntimeError wraps a wazero failure with the operation that hit it.
type WasmRuntimeError struct {
	Operation string
	Err       error
}

func (e *WasmRuntimeError) Error() string {
	return fmt.Sprintf("wasm runtime error during %s: %v", e.Operation, e.Err)
}

func (e *WasmRuntimeError) Unwrap() error {
	return e.Err
}
