// Package splitter breaks raw corpus text into overlapping fixed-size chunks
// suitable for embedding. Splitting prefers paragraph, line, sentence, and
// word boundaries over hard character cuts, and is fully deterministic so
// that rebuilding an index from the same corpus yields identical chunks.
package splitter

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig is returned when chunk size/overlap parameters are out of
// range. It is a startup configuration error, not a runtime failure.
var ErrInvalidConfig = errors.New("splitter: invalid chunking parameters")

// Chunk is one contiguous slice of the source corpus.
type Chunk struct {
	// Text is the chunk content, at most chunkSize bytes.
	Text string

	// Index is the zero-based position of this chunk in the split sequence.
	Index int

	// Offset is the byte offset of Text within the source string.
	Offset int
}

// separators are tried in order when looking for a natural place to end a
// chunk: paragraph break, line break, sentence end, word gap.
var separators = []string{"\n\n", "\n", ". ", " "}

// Split divides text into chunks of at most chunkSize bytes, with exactly
// chunkOverlap bytes shared between each chunk and its predecessor. The
// overlap region is byte-identical between neighbours and the chunks cover
// the input with no gaps, so the source can be reconstructed from the chunk
// sequence. Boundary snapping is best-effort: when no separator falls in a
// usable position the chunk is cut at chunkSize exactly.
//
// chunkSize must be positive and chunkOverlap must satisfy
// 0 <= chunkOverlap < chunkSize, otherwise ErrInvalidConfig is returned.
func Split(text string, chunkSize, chunkOverlap int) ([]Chunk, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk_size %d must be > 0", ErrInvalidConfig, chunkSize)
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("%w: chunk_overlap %d must be in [0, %d)", ErrInvalidConfig, chunkOverlap, chunkSize)
	}

	if len(text) == 0 {
		return nil, nil
	}

	var chunks []Chunk
	start := 0
	for {
		end := start + chunkSize
		if end >= len(text) {
			chunks = append(chunks, Chunk{Text: text[start:], Index: len(chunks), Offset: start})
			break
		}

		end = snapToBoundary(text, start, end, chunkOverlap)
		chunks = append(chunks, Chunk{Text: text[start:end], Index: len(chunks), Offset: start})
		start = end - chunkOverlap
	}

	return chunks, nil
}

// snapToBoundary moves end backwards to the nearest separator within the
// current chunk, preferring stronger separators first. The cut point must
// stay strictly after start+overlap so that the next chunk makes forward
// progress; if no separator qualifies the original end is kept (hard cut).
func snapToBoundary(text string, start, end, overlap int) int {
	window := text[start:end]
	floor := overlap + 1 // cut must leave more than the overlap behind

	for _, sep := range separators {
		idx := strings.LastIndex(window, sep)
		if idx < 0 {
			continue
		}
		// Cut after the separator so it stays with the leading chunk.
		cut := idx + len(sep)
		if cut >= floor {
			return start + cut
		}
	}
	return end
}

// Reassemble reconstructs the original text from a chunk sequence produced by
// Split with the given overlap. It exists chiefly for verification: the
// coverage invariant says Reassemble(Split(text)) == text.
func Reassemble(chunks []Chunk, chunkOverlap int) string {
	var b strings.Builder
	for i, c := range chunks {
		if i == 0 {
			b.WriteString(c.Text)
			continue
		}
		b.WriteString(c.Text[chunkOverlap:])
	}
	return b.String()
}
