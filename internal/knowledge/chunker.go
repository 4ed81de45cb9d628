package knowledge

import "strings"

// DefaultChunkMaxLength bounds chunk length when no limit is configured.
const DefaultChunkMaxLength = 512

// sentenceDelim is the boundary chunks prefer to break on.
const sentenceDelim = ". "

// Chunk splits text into segments of at most maxLength characters, breaking
// on sentence boundaries. Sentences are greedily accumulated into the current
// chunk; when the next sentence would overflow, the accumulated chunk is
// emitted and a new one starts. A single sentence longer than maxLength is
// hard-split at the length boundary so no chunk ever exceeds the limit.
//
// Empty or blank input yields no chunks. maxLength <= 0 falls back to
// DefaultChunkMaxLength.
func Chunk(text string, maxLength int) []string {
	if maxLength <= 0 {
		maxLength = DefaultChunkMaxLength
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	sentences := strings.Split(text, sentenceDelim)

	var chunks []string
	current := ""

	flush := func() {
		if trimmed := strings.TrimSpace(current); trimmed != "" {
			chunks = append(chunks, trimmed)
		}
		current = ""
	}

	for _, sentence := range sentences {
		if len(sentence) > maxLength {
			// Oversized sentence: emit what we have, then hard-split
			// the sentence itself at the length boundary.
			flush()
			runes := []rune(sentence)
			for len(runes) > maxLength {
				chunks = append(chunks, strings.TrimSpace(string(runes[:maxLength])))
				runes = runes[maxLength:]
			}
			if rest := strings.TrimSpace(string(runes)); rest != "" {
				current = rest + sentenceDelim
			}
			continue
		}

		if len(current)+len(sentence) < maxLength {
			current += sentence + sentenceDelim
		} else {
			flush()
			current = sentence + sentenceDelim
		}
	}

	flush()
	return chunks
}
