package chunker

import "strings"

// Split breaks text into chunks of at most targetSize runes. Paragraphs
// (blank-line separated) are packed greedily; a paragraph that alone
// exceeds the budget is cut at sentence boundaries where possible.
// Chunks are trimmed and never empty.
func Split(text string, targetSize int) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return []string{}
	}
	if targetSize <= 0 {
		return []string{trimmed}
	}
	if len([]rune(trimmed)) <= targetSize {
		return []string{trimmed}
	}

	var chunks []string
	var buf []string
	bufLen := 0

	flush := func() {
		if bufLen == 0 {
			return
		}
		joined := strings.TrimSpace(strings.Join(buf, "\n\n"))
		if joined != "" {
			chunks = append(chunks, joined)
		}
		buf = buf[:0]
		bufLen = 0
	}

	for _, para := range strings.Split(trimmed, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		paraLen := len([]rune(para))

		if paraLen > targetSize {
			flush()
			for _, piece := range splitLongParagraph(para, targetSize) {
				chunks = append(chunks, piece)
			}
			continue
		}

		if bufLen+paraLen > targetSize {
			flush()
		}
		buf = append(buf, para)
		bufLen += paraLen
	}
	flush()

	return chunks
}

// splitLongParagraph cuts a paragraph into windows of at most targetSize
// runes, preferring a sentence terminator found in the second half of each
// window over a hard cut.
func splitLongParagraph(para string, targetSize int) []string {
	runes := []rune(para)
	var pieces []string

	for len(runes) > 0 {
		if len(runes) <= targetSize {
			piece := strings.TrimSpace(string(runes))
			if piece != "" {
				pieces = append(pieces, piece)
			}
			break
		}

		cut := targetSize
		for i := targetSize - 1; i > targetSize/2; i-- {
			if isSentenceEnd(runes[i]) {
				cut = i + 1
				break
			}
		}

		piece := strings.TrimSpace(string(runes[:cut]))
		if piece != "" {
			pieces = append(pieces, piece)
		}
		runes = runes[cut:]
		for len(runes) > 0 && (runes[0] == ' ' || runes[0] == '\n' || runes[0] == '\t') {
			runes = runes[1:]
		}
	}

	return pieces
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '\n'
}
