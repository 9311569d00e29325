package schedule

import (
	"regexp"
	"strings"
)

// DefaultMarker opens every vessel entry in a port bulletin.
const DefaultMarker = "◆"

// listNumberPattern matches the optional list number printed before the marker,
// e.g. "12 ◆" or "3.◆".
var listNumberPattern = regexp.MustCompile(`^\d+\s*[.)．、]?\s*`)

// isBlockStart reports whether line opens a new vessel entry.
func isBlockStart(line, marker string) bool {
	trimmed := strings.TrimSpace(line)
	trimmed = listNumberPattern.ReplaceAllString(trimmed, "")
	return strings.HasPrefix(trimmed, marker)
}

// SplitBlocks splits pasted bulletin text into one block per vessel entry.
// A marker line starts a new block and belongs to it; text before the first
// marker forms a block of its own. Whitespace-only blocks are dropped.
func SplitBlocks(text, marker string) []string {
	if marker == "" {
		marker = DefaultMarker
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var blocks []string
	var current []string

	flush := func() {
		block := strings.Join(current, "\n")
		if strings.TrimSpace(block) != "" {
			blocks = append(blocks, block)
		}
		current = nil
	}

	for _, line := range strings.Split(text, "\n") {
		if isBlockStart(line, marker) {
			flush()
		}
		current = append(current, line)
	}
	flush()

	return blocks
}
