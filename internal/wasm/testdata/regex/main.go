//go:build tinygo

// Test plugin that exercises the host regex and log functions. It
// matches bodies of the form "test_<word>" and reports the word as
// the event player.
package main

import (
	"encoding/json"
	"unsafe"
)

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

// Host functions imported from the "env" module.
//
//go:wasm-module env
//export regex_match
func regexMatch(strPtr, strLen, rePtr, reLen uint32) uint32

//go:wasm-module env
//export regex_find_submatch
func regexFindSubmatch(strPtr, strLen, rePtr, reLen, outBufPtr, outBufLen uint32) uint32

//go:wasm-module env
//export log
func hostLog(level, ptr, msgLen uint32)

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

	pattern := `test_(\w+)`
	bodyPtr := (*byte)(unsafe.Pointer(unsafe.StringData(input.Body)))
	patternPtr := (*byte)(unsafe.Pointer(unsafe.StringData(pattern)))

	matched := regexMatch(
		uint32(uintptr(unsafe.Pointer(bodyPtr))),
		uint32(len(input.Body)),
		uint32(uintptr(unsafe.Pointer(patternPtr))),
		uint32(len(pattern)),
	)
	if matched == 0 {
		return writeOutput(map[string]interface{}{
			"ok":    true,
			"event": nil,
		})
	}

	var submatchBuf [4096]byte
	submatchLen := regexFindSubmatch(
		uint32(uintptr(unsafe.Pointer(bodyPtr))),
		uint32(len(input.Body)),
		uint32(uintptr(unsafe.Pointer(patternPtr))),
		uint32(len(pattern)),
		uint32(uintptr(unsafe.Pointer(&submatchBuf[0]))),
		uint32(len(submatchBuf)),
	)

	var captures []string
	if submatchLen > 0 && submatchLen != 0xFFFFFFFF {
		json.Unmarshal(submatchBuf[:submatchLen], &captures)
	}

	player := ""
	if len(captures) > 1 {
		player = captures[1]
	}

	logMsg := "regex plugin matched"
	logMsgPtr := (*byte)(unsafe.Pointer(unsafe.StringData(logMsg)))
	hostLog(1, uint32(uintptr(unsafe.Pointer(logMsgPtr))), uint32(len(logMsg)))

	return writeOutput(map[string]interface{}{
		"ok": true,
		"event": map[string]interface{}{
			"kind":   "test_regex",
			"player": player,
		},
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
