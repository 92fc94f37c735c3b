package sanmark

import (
	"fmt"
	"runtime"
	"sort"
)

// DefaultChunkSize is used by Partition when no size is given.
const DefaultChunkSize = 200

// Adaptive partitioning thresholds.
const (
	// smallInputLines and below run as a single chunk: parallel fan-out
	// is pure overhead at this size.
	smallInputLines = 100

	// mediumInputLines and below cap the chunk count at a small constant
	// to avoid oversubscription.
	mediumInputLines = 1000
	mediumMaxChunks  = 4

	// Huge inputs fan out to twice the available parallelism, but never
	// past maxChunks.
	maxChunks = 16
)

// Chunk is a contiguous, non-overlapping slice of the input line
// sequence, the unit of parallel work. Line numbers are 1-based and
// inclusive; FilePosition is the byte offset of the chunk's first line
// in the reassembled document.
//
// Chunks hold read-only views for the duration of one run; no two
// workers ever receive the same chunk.
type Chunk struct {
	ID           int
	StartLine    int
	EndLine      int
	Lines        []string
	FilePosition int
}

// Partition splits lines into fixed-size chunks. The last chunk may be
// shorter. chunkSize values below 1 select DefaultChunkSize.
func Partition(lines []string, chunkSize int) []Chunk {
	if chunkSize < 1 {
		chunkSize = DefaultChunkSize
	}

	var chunks []Chunk
	pos := 0
	for start := 0; start < len(lines); start += chunkSize {
		end := start + chunkSize
		if end > len(lines) {
			end = len(lines)
		}
		chunks = append(chunks, Chunk{
			ID:           len(chunks),
			StartLine:    start + 1,
			EndLine:      end,
			Lines:        lines[start:end],
			FilePosition: pos,
		})
		for _, line := range lines[start:end] {
			pos += len(line) + 1 // +1 for the newline
		}
	}
	return chunks
}

// PartitionAdaptive chooses a chunk count from the input size and the
// available parallelism, then delegates to Partition. targetChunks of 0
// (or below) selects the count automatically: small inputs stay in one
// chunk, medium inputs cap the fan-out at min(4, parallelism), and huge
// inputs use min(2×parallelism, 16) so worker counts never run away.
func PartitionAdaptive(lines []string, targetChunks int) []Chunk {
	if targetChunks < 1 {
		targetChunks = autoChunkCount(len(lines))
	}
	// Ceiling division keeps the chunk count at or below the target.
	size := (len(lines) + targetChunks - 1) / targetChunks
	if size < 1 {
		size = 1
	}
	return Partition(lines, size)
}

// autoChunkCount implements the size thresholds for adaptive chunking.
func autoChunkCount(totalLines int) int {
	parallelism := availableParallelism()
	switch {
	case totalLines <= smallInputLines:
		return 1
	case totalLines <= mediumInputLines:
		return min(mediumMaxChunks, parallelism)
	default:
		return min(2*parallelism, maxChunks)
	}
}

// availableParallelism reports the worker slots the runtime offers.
// GOMAXPROCS is container-aware when the binary wires up automaxprocs,
// as the CLI does.
func availableParallelism() int {
	if n := runtime.GOMAXPROCS(0); n > 0 {
		return n
	}
	return 1
}

// Merge reassembles the original line sequence from chunks: sort by
// chunk ID ascending, then concatenate. This is the only place global
// ordering is reconstructed from a partition.
func Merge(chunks []Chunk) []string {
	sorted := make([]Chunk, len(chunks))
	copy(sorted, chunks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	total := 0
	for _, c := range sorted {
		total += len(c.Lines)
	}
	lines := make([]string, 0, total)
	for _, c := range sorted {
		lines = append(lines, c.Lines...)
	}
	return lines
}

// ValidateChunks checks partition integrity: duplicate chunk IDs, line
// gaps or overlaps between consecutive chunks, and empty chunks. It
// returns plain string diagnostics because these are internal partition
// defects, not markup issues a document author can act on.
//
// Partitions produced by Partition or PartitionAdaptive always validate
// clean by construction.
func ValidateChunks(chunks []Chunk) []string {
	var diags []string

	sorted := make([]Chunk, len(chunks))
	copy(sorted, chunks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	seen := make(map[int]bool, len(sorted))
	for _, c := range sorted {
		if seen[c.ID] {
			diags = append(diags, fmt.Sprintf("DUPLICATE_CHUNK_ID: chunk id %d used more than once", c.ID))
		}
		seen[c.ID] = true

		if len(c.Lines) == 0 {
			diags = append(diags, fmt.Sprintf("EMPTY_CHUNK: chunk %d holds no lines", c.ID))
		}
	}

	for i := 1; i < len(sorted); i++ {
		prev, next := sorted[i-1], sorted[i]
		if prev.EndLine+1 != next.StartLine {
			diags = append(diags, fmt.Sprintf(
				"LINE_GAP: chunk %d ends at line %d but chunk %d starts at line %d",
				prev.ID, prev.EndLine, next.ID, next.StartLine))
		}
	}

	return diags
}
