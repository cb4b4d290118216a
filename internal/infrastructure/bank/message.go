package bank

import "strings"

const (
	messageMaxLines   = 4
	messageLineLength = 40
)

// SplitPayerMessage breaks a free-form payer message into the bank's message
// block: at most 4 lines of at most 40 characters, split on word boundaries.
// Words longer than a line are truncated; text beyond the fourth line is
// dropped.
func SplitPayerMessage(message string) []string {
	words := strings.Fields(message)
	if len(words) == 0 {
		return nil
	}

	lines := make([]string, 0, messageMaxLines)
	current := ""

	for _, word := range words {
		candidate := current
		if candidate != "" {
			candidate += " "
		}
		candidate += word

		if len([]rune(candidate)) <= messageLineLength {
			current = candidate
			continue
		}

		if current != "" {
			lines = append(lines, current)
		}
		current = truncateRunes(word, messageLineLength)
		if len(lines) >= messageMaxLines {
			break
		}
	}

	if current != "" && len(lines) < messageMaxLines {
		lines = append(lines, current)
	}

	if len(lines) > messageMaxLines {
		lines = lines[:messageMaxLines]
	}
	return lines
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
