// Package accel probes the compute hardware available for model inference
// and records the chosen execution target once per process.
package accel

import (
	"os"
	"runtime"
	"sync"

	"github.com/klauspost/cpuid/v2"
)

// Target identifies the execution target chosen for model inference.
type Target string

const (
	// TargetGPU is a discrete GPU with a usable driver.
	TargetGPU Target = "gpu"
	// TargetNeural is a platform accelerator such as Apple Silicon.
	TargetNeural Target = "neural"
	// TargetCPUSIMD is a general-purpose CPU with SIMD extensions that
	// make the XNNPACK delegate worthwhile.
	TargetCPUSIMD Target = "cpu-simd"
	// TargetCPU is a plain general-purpose CPU.
	TargetCPU Target = "cpu"
)

var (
	probeOnce sync.Once
	probed    Target
)

// Probe returns the inference execution target. The probe runs once per
// process; subsequent calls return the recorded result.
func Probe() Target {
	probeOnce.Do(func() {
		probed = probe()
	})
	return probed
}

// ResetForTest clears the recorded target so tests can exercise the probe
// order with a fresh state.
func ResetForTest() {
	probeOnce = sync.Once{}
	probed = ""
}

// probe checks accelerators in fixed priority order: discrete GPU first,
// then platform accelerator, then SIMD-capable CPU, then plain CPU.
func probe() Target {
	if hasDiscreteGPU() {
		return TargetGPU
	}
	if runtime.GOOS == "darwin" && runtime.GOARCH == "arm64" {
		return TargetNeural
	}
	if xnnpackEligible() {
		return TargetCPUSIMD
	}
	return TargetCPU
}

// hasDiscreteGPU reports whether an NVIDIA driver is present. Probing the
// proc interface avoids linking any GPU runtime just to answer the question.
func hasDiscreteGPU() bool {
	if runtime.GOOS != "linux" {
		return false
	}
	_, err := os.Stat("/proc/driver/nvidia/version")
	return err == nil
}

// xnnpackEligible reports whether the CPU has the SIMD extensions XNNPACK
// needs to outperform the reference kernels.
func xnnpackEligible() bool {
	switch runtime.GOARCH {
	case "amd64":
		return cpuid.CPU.Supports(cpuid.AVX2)
	case "arm64":
		// NEON is mandatory on arm64
		return true
	default:
		return false
	}
}

// Threads returns the inference thread count for the given configuration,
// using all logical cores when the setting is zero.
func Threads(configured int) int {
	if configured > 0 {
		return min(configured, runtime.NumCPU())
	}
	if n := cpuid.CPU.LogicalCores; n > 0 {
		return min(n, runtime.NumCPU())
	}
	return runtime.NumCPU()
}
