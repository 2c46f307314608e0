package chunker

import (
	"errors"
	"strings"
)

// Splitter cuts raw text into overlapping windows, preferring to end a window
// just after the last sentence terminator or newline when one exists past the
// window midpoint. Adjacent chunks share Overlap characters of raw text so a
// retrieval hit near a boundary still carries its surrounding sentence.
type Splitter struct {
	chunkSize int
	overlap   int
}

var ErrBadOverlap = errors.New("chunker: overlap must be smaller than chunk size")

func NewSplitter(chunkSize int, overlap int) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, errors.New("chunker: chunk size must be positive")
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, ErrBadOverlap
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap}, nil
}

// Split emits chunks in encounter order. Whitespace-only input yields no
// chunks; input shorter than the chunk size yields exactly one trimmed chunk.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	//window arithmetic runs on runes so a boundary never lands inside a
	//multi-byte character
	runes := []rune(text)
	if len(runes) <= s.chunkSize {
		return []string{strings.TrimSpace(text)}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + s.chunkSize
		if end < len(runes) {
			//shrink to just after the last '.' or '\n', but only when that
			//keeps more than half the window - avoids pathologically small chunks
			breakPoint := lastBreak(runes[start:end])
			if breakPoint > s.chunkSize/2 {
				end = start + breakPoint + 1
			}
		}

		sliceEnd := end
		if sliceEnd > len(runes) {
			sliceEnd = len(runes)
		}
		chunks = append(chunks, strings.TrimSpace(string(runes[start:sliceEnd])))

		next := end - s.overlap
		if next <= start {
			//forward progress when the overlap swallows a shrunken window
			next = end
		}
		if next >= len(runes) {
			break
		}
		start = next
	}
	return chunks
}

func lastBreak(window []rune) int {
	last := -1
	for i, r := range window {
		if r == '.' || r == '\n' {
			last = i
		}
	}
	return last
}
