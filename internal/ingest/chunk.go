// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig reports bad chunking parameters. Raised at call time;
// never recovered into an observation.
var ErrInvalidConfig = errors.New("invalid chunking configuration")

// ChunkSpan is one chunk of a page's text with rune offsets into the page.
type ChunkSpan struct {
	Text        string
	StartOffset int
	EndOffset   int
}

// chunkText splits text into spans of chunkSize runes where consecutive
// spans overlap by round(chunkSize*overlapFraction) runes. The final span
// may be shorter than chunkSize but is always emitted; trailing content is
// never dropped. Re-chunking always restarts from offset 0.
//
// chunkSize must be positive and overlapFraction must satisfy
// 0 <= overlapFraction < 1, otherwise ErrInvalidConfig is returned.
func chunkText(text string, chunkSize int, overlapFraction float64) ([]ChunkSpan, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d must be positive", ErrInvalidConfig, chunkSize)
	}
	if overlapFraction < 0 || overlapFraction >= 1 {
		return nil, fmt.Errorf("%w: overlap fraction %g must be in [0,1)", ErrInvalidConfig, overlapFraction)
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil, nil
	}

	overlap := int(math.Round(float64(chunkSize) * overlapFraction))
	step := chunkSize - overlap
	if step <= 0 {
		step = 1
	}

	var spans []ChunkSpan
	for start := 0; ; start += step {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		spans = append(spans, ChunkSpan{
			Text:        string(runes[start:end]),
			StartOffset: start,
			EndOffset:   end,
		})
		if end == len(runes) {
			break
		}
	}

	return spans, nil
}
