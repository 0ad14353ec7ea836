package llm

// CharsPerToken approximates how many characters one token covers.
const CharsPerToken = 4

// EstimateTokens provides a rough token count estimation for the given text.
func EstimateTokens(text string) int {
	n := len([]rune(text)) / CharsPerToken
	if n == 0 && len(text) > 0 {
		return 1
	}
	return n
}

// TruncateToTokens cuts text so its estimated size fits within maxTokens,
// dropping the tail. maxTokens <= 0 disables truncation.
func TruncateToTokens(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return text
	}
	limit := maxTokens * CharsPerToken
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
