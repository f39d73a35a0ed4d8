//go:build tinygo

// Test plugin that never matches any line.
package main

import (
	"encoding/json"
	"unsafe"
)

// Bump allocator; the input region ends at 0x12000.
var heapPtr uintptr = 0x20000

//export abi_version
func abiVersion() uint32 {
	return 1
}

//export alloc
func alloc(size uint32) uint32 {
	ptr := uint32(heapPtr)
	heapPtr += uintptr(size)
	return ptr
}

//export free
func free(ptr, size uint32) {
	// Bump allocator does not free individual allocations.
}

//export match_line
func matchLine(inputPtr, inputLen uint32) uint64 {
	inputBytes := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(inputPtr))), inputLen)

	var input struct {
		Body string `json:"body"`
	}
	if err := json.Unmarshal(inputBytes, &input); err != nil {
		return writeOutput(map[string]interface{}{
			"ok":    false,
			"error": "failed to parse input JSON",
		})
	}

	return writeOutput(map[string]interface{}{
		"ok":    true,
		"event": nil,
	})
}

func writeOutput(output map[string]interface{}) uint64 {
	outputJSON, _ := json.Marshal(output)
	outPtr := alloc(uint32(len(outputJSON)))
	outSlice := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(outPtr))), len(outputJSON))
	copy(outSlice, outputJSON)
	return (uint64(len(outputJSON)) << 32) | uint64(outPtr)
}

func main() {}
