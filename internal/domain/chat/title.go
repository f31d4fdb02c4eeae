package chat

import (
	"strings"
	"unicode"
)

const (
	maxTitleRunes   = 30
	fallbackTitle   = "New Conversation"
	legacyNewTitle  = "New Chat"
	maxTitleWords   = 4
	fallbackWordCap = 3
)

var stopWords = toSet(
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you", "your", "yours",
	"yourself", "yourselves", "he", "him", "his", "himself", "she", "her", "hers",
	"herself", "it", "its", "itself", "they", "them", "their", "theirs", "themselves",
	"what", "which", "who", "whom", "this", "that", "these", "those", "am", "is", "are",
	"was", "were", "be", "been", "being", "have", "has", "had", "having", "do", "does",
	"did", "doing", "a", "an", "the", "and", "but", "if", "or", "because", "as", "until",
	"while", "of", "at", "by", "for", "with", "about", "against", "between", "into",
	"through", "during", "before", "after", "above", "below", "up", "down", "in", "out",
	"on", "off", "over", "under", "again", "further", "then", "once", "can", "could",
	"would", "should", "may", "might", "will", "shall",
)

// GenerateTitle derives a short conversation title from its first message.
func GenerateTitle(message string) string {
	title := titleFromMessage(message)
	for _, word := range strings.Fields(strings.ToLower(title)) {
		token := lettersAndDigits(word)
		if token == "hello" || token == "hi" {
			return fallbackTitle
		}
	}
	if strings.TrimSpace(title) == "" {
		return fallbackTitle
	}
	return title
}

func titleFromMessage(message string) string {
	words := strings.Fields(message)
	if len(words) <= maxTitleWords {
		return truncateRunes(strings.Join(words, " "), maxTitleRunes)
	}

	meaningful := make([]string, 0, maxTitleWords)
	for _, word := range words {
		token := strings.ToLower(lettersAndDigits(word))
		if len([]rune(token)) > 2 && !stopWords[token] {
			meaningful = append(meaningful, word)
			if len(meaningful) == maxTitleWords {
				break
			}
		}
	}
	if len(meaningful) == 0 {
		return truncateRunes(strings.Join(words[:fallbackWordCap], " "), maxTitleRunes)
	}
	return capitalize(truncateRunes(strings.Join(meaningful, " "), maxTitleRunes))
}

func isDefaultTitle(title, configured string) bool {
	title = strings.TrimSpace(title)
	return title == configured || title == fallbackTitle || title == legacyNewTitle
}

func lettersAndDigits(word string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return r
		}
		return -1
	}, word)
}

func capitalize(s string) string {
	runes := []rune(strings.ToLower(s))
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func toSet(words ...string) map[string]bool {
	out := make(map[string]bool, len(words))
	for _, w := range words {
		out[w] = true
	}
	return out
}
