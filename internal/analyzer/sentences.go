package analyzer

import (
	"strings"
	"unicode"
)

// sentence holds the original and lowercased form together so a Detect call
// lowercases the content only once.
type sentence struct {
	original string
	lower    string
}

// splitSentences naively splits text into sentences using '.', '!' or '?' as
// delimiters, keeping the delimiter at the end of each sentence.
func splitSentences(text string) []sentence {
	if len(text) == 0 {
		return nil
	}

	// Estimate sentence count: roughly 1 sentence per 50 chars average
	estimated := len(text) / 50
	if estimated < 1 {
		estimated = 1
	}

	sentences := make([]sentence, 0, estimated)
	start := 0

	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			// Include the delimiter
			end := i + 1
			// Include following whitespace
			for end < len(text) && unicode.IsSpace(rune(text[end])) {
				end++
			}
			orig := strings.TrimSpace(text[start:end])
			sentences = append(sentences, sentence{
				original: orig,
				lower:    strings.ToLower(orig),
			})
			start = end
		}
	}

	// Capture any trailing text
	if start < len(text) {
		orig := strings.TrimSpace(text[start:])
		sentences = append(sentences, sentence{
			original: orig,
			lower:    strings.ToLower(orig),
		})
	}

	return sentences
}
