package utils

import (
	"fmt"
	"math"
	"runtime"
)

func GetMemUsage() string {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	// For info on each, see: https://golang.org/pkg/runtime/#MemStats
	bToMb := func(b uint64) uint64 {
		return b / 1024 / 1024
	}
	return fmt.Sprintf("Alloc = %v MiB TotalAlloc = %v MiB Sys = %v MiB NumGC = %v",
		bToMb(m.Alloc), bToMb(m.TotalAlloc), bToMb(m.Sys), m.NumGC)
}

// IsFinite is false when any value is NaN or infinite
func IsFinite(A any) bool {
	check := func(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
	switch v := A.(type) {
	case float64:
		return check(v)
	case []float64:
		for _, f := range v {
			if !check(f) {
				return false
			}
		}
	case [3]float64:
		return IsFinite(v[:])
	case [2]float64:
		return IsFinite(v[:])
	}
	return true
}
