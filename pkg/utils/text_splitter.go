package utils

import "fmt"

// SplitText splits a long string into chunks of at most 'chunkSize' characters
// (runes, so multi-byte text is never cut mid-character). Each chunk after the
// first starts 'overlap' characters before the end of the previous one to
// preserve context at boundaries.
//
// overlap must be smaller than chunkSize; violating that is a caller error.
func SplitText(text string, chunkSize int, overlap int) ([]string, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("overlap must be in [0, chunkSize), got overlap=%d chunkSize=%d", overlap, chunkSize)
	}

	runes := []rune(text)
	totalLen := len(runes)

	if totalLen <= chunkSize {
		return []string{text}, nil
	}

	step := chunkSize - overlap

	var chunks []string
	for i := 0; i < totalLen; i += step {
		end := i + chunkSize
		if end > totalLen {
			end = totalLen
		}

		chunks = append(chunks, string(runes[i:end]))

		if end == totalLen {
			break
		}
	}

	return chunks, nil
}
