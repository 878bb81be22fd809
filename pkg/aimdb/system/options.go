// Package system collects the engine-wide sizing knobs the CLI entry
// point configures once at startup and passes down to the arena,
// catalog, and executor.
package system

// Options configures the engine's single process-wide arena and the
// bucket sizing every hash index uses. The zero value is not usable;
// start from Defaults().
type Options struct {
	// ArenaSize is the total number of bytes the process-wide arena
	// reserves up front. Must be large enough to hold every table,
	// index, and operator scratch buffer for the database being loaded;
	// the arena never grows past this once allocated.
	ArenaSize int64

	// ArenaAlignment is the arena's minimum block size: every
	// arena.Alloc request must be a power-of-two multiple of it (other
	// sizes are rejected, not rounded). Must be at least 8.
	ArenaAlignment int64

	// IndexCellCapBits sizes every hash index created by the catalog at
	// 2^IndexCellCapBits buckets; there is no per-index override.
	IndexCellCapBits int64

	// ResultPageBytes bounds the byte capacity of each result.Table the
	// executor drains a page into, matching the source's
	// ⌊1024/row_length⌋ paging bound (spec.md §5).
	ResultPageBytes int64
}

// Defaults returns the sizing the CLI entry point uses absent any
// override: a 256MiB arena, 8-byte alignment, 2^16 hash index buckets,
// and 1024-byte result pages.
func Defaults() Options {
	return Options{
		ArenaSize:        256 << 20,
		ArenaAlignment:   8,
		IndexCellCapBits: 16,
		ResultPageBytes:  1024,
	}
}
