// Package config holds the engine's tunables (MEM_FACTOR, PAGE_MB,
// SMALL_FN_LIMIT, MAX_TOKEN). Grounded on the teacher's small
// mock-config constructors (getDefaultSearchPath,
// getDefaultCredentials in internal/database/database.go): a plain
// struct of defaults plus a loader, no config file format or library.
package config

import (
	"os"
	"strconv"
)

// Options configures one arena/context at creation time.
type Options struct {
	// ArenaCells is the number of 16-byte cells per semi-space.
	ArenaCells uint64
	// PageMB is the rounding granularity of the new soft cap when a
	// compaction grows it (PAGE_MB).
	PageMB uint64
	// MemFactor is the headroom multiple free space must exceed after a
	// compaction before the soft cap is grown (MEM_FACTOR).
	MemFactor uint64
	// SmallFnLimit bounds compose's ops-list spine walk (SMALL_FN_LIMIT).
	SmallFnLimit int
	// MaxTokenLen bounds a SEAL/OPTOK name (MAX_TOKEN).
	MaxTokenLen int
}

// Default returns the engine's baseline tunables.
func Default() Options {
	return Options{
		ArenaCells:   1 << 20,
		PageMB:       4,
		MemFactor:    2,
		SmallFnLimit: 15,
		MaxTokenLen:  63,
	}
}

// FromEnv starts from Default and overrides fields present in the
// environment: VEX_ARENA_CELLS, VEX_PAGE_MB, VEX_MEM_FACTOR.
func FromEnv() Options {
	o := Default()
	if v, ok := lookupUint(os.Getenv("VEX_ARENA_CELLS")); ok {
		o.ArenaCells = v
	}
	if v, ok := lookupUint(os.Getenv("VEX_PAGE_MB")); ok {
		o.PageMB = v
	}
	if v, ok := lookupUint(os.Getenv("VEX_MEM_FACTOR")); ok {
		o.MemFactor = v
	}
	return o
}

func lookupUint(s string) (uint64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
