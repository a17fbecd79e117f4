package prompt

import "strings"

// adviceKeywords are matched as plain lowercase substrings.
var adviceKeywords = []string{
	"start a business",
	"startup",
	"how to start",
	"guide me",
	"business idea",
	"business plan",
	"funding",
	"marketing",
	"manufacturing",
	"customer service",
	"legal structure",
	"operations",
	"production",
	"inventory",
	"financial management",
	"accounting",
	"forecasting",
	"mentor",
	"advice",
	"industry",
	"market research",
	"product development",
	"supplier",
	"retail",
	"wholesale",
	"online store",
	"brand loyalty",
	"repeat business",
}

// IsGeneralAdvice reports whether message reads as a general business
// question that needs no dataset. It over-triggers on keywords embedded in
// unrelated words and misses synonyms.
func IsGeneralAdvice(message string) bool {
	m := strings.ToLower(message)
	for _, kw := range adviceKeywords {
		if strings.Contains(m, kw) {
			return true
		}
	}
	return false
}

// DetectMode picks the chat mode for message.
func DetectMode(message string) Mode {
	if IsGeneralAdvice(message) {
		return ModeGeneralAdvice
	}
	return ModeDataAnalysis
}
