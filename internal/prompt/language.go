package prompt

import "strings"

// Language keys accepted by the assembler.
const (
	LangEnglish  = "en"
	LangHindi    = "hi"
	LangHinglish = "hi_en"
)

// Profile holds the fixed phrasing for one response language.
type Profile struct {
	Key             string
	Name            string
	ChatDirective   string
	ReportDirective string
	Apology         string
}

var profiles = map[string]Profile{
	LangEnglish: {
		Key:             LangEnglish,
		Name:            "English",
		ChatDirective:   "IMPORTANT: Respond in English. Provide all analysis, insights, and recommendations in clear, professional English.",
		ReportDirective: "IMPORTANT: Generate the report content in English. Use clear, professional business English for all titles, descriptions, and text content.",
		Apology:         "Sorry, I encountered an error while processing your request. Please try again.",
	},
	LangHindi: {
		Key:             LangHindi,
		Name:            "Hindi",
		ChatDirective:   "IMPORTANT: Respond ONLY in Hindi (हिंदी). Use Devanagari script and provide all analysis, insights, and recommendations in Hindi. If you need to use English terms for business concepts, provide Hindi translations or explanations.",
		ReportDirective: "IMPORTANT: Generate the report content in Hindi (हिंदी) using Devanagari script. All titles, descriptions, and text content should be in Hindi. Use Hindi business terminology where appropriate.",
		Apology:         "क्षमा करें, आपके अनुरोध को संसाधित करते समय मुझे एक त्रुटि का सामना करना पड़ा। कृपया फिर से प्रयास करें।",
	},
	LangHinglish: {
		Key:             LangHinglish,
		Name:            "Hinglish",
		ChatDirective:   "IMPORTANT: Respond in Hinglish - a mix of Hindi and English. Use both Hindi (Devanagari script) and English words naturally. This is common in Indian business communication. Provide analysis, insights, and recommendations in this mixed language style.",
		ReportDirective: "IMPORTANT: Generate the report content in Hinglish - a mix of Hindi and English. Use both Hindi (Devanagari script) and English words naturally. This is common in Indian business reports.",
		Apology:         "Sorry, आपके request को process करते time मुझे error का सामना करना पड़ा। Please try again।",
	},
}

// Lookup returns the profile for key. Unknown keys get English.
func Lookup(key string) Profile {
	if p, ok := profiles[strings.ToLower(strings.TrimSpace(key))]; ok {
		return p
	}
	return profiles[LangEnglish]
}

// IsSupported reports whether key names a profile, ignoring case.
func IsSupported(key string) bool {
	_, ok := profiles[strings.ToLower(strings.TrimSpace(key))]
	return ok
}

// Languages lists the supported keys.
func Languages() []string { return []string{LangEnglish, LangHindi, LangHinglish} }
