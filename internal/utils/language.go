package utils

import (
	"regexp"
	"strings"
)

// Language codes
const (
	LangEnglish = "en"
	LangHebrew  = "he"
	LangArabic  = "ar"
	LangRussian = "ru"
	LangChinese = "zh"
	LangKorean  = "ko"
)

// Language represents a detected language
type Language struct {
	Code       string
	Name       string
	Confidence float64
}

// scriptRatio is the ratio of characters in a specific script
type scriptRatio struct {
	Code  string
	Name  string
	Ratio float64
}

var scriptPatterns = []struct {
	code    string
	name    string
	pattern *regexp.Regexp
}{
	{LangHebrew, "Hebrew", regexp.MustCompile(`[\x{0590}-\x{05FF}]`)},
	{LangArabic, "Arabic", regexp.MustCompile(`[\x{0600}-\x{06FF}]`)},
	{LangRussian, "Russian", regexp.MustCompile(`[\x{0400}-\x{04FF}]`)},
	{LangChinese, "Chinese", regexp.MustCompile(`[\x{4E00}-\x{9FFF}]`)},
	{LangKorean, "Korean", regexp.MustCompile(`[\x{AC00}-\x{D7AF}]`)},
}

// DetectLanguage detects the language of the input text based on the ratio of
// characters belonging to each script. Defaults to English.
func DetectLanguage(text string) Language {
	text = strings.TrimSpace(text)
	if text == "" {
		return Language{Code: LangEnglish, Name: "English", Confidence: 0.0}
	}

	textRunes := len([]rune(text))
	best := scriptRatio{Code: LangEnglish, Name: "English", Ratio: 0.0}

	for _, script := range scriptPatterns {
		matches := script.pattern.FindAllString(text, -1)
		ratio := float64(len(matches)) / float64(textRunes)
		// Minimum 10% of characters must be in the target script
		if ratio > 0.1 && ratio > best.Ratio {
			best = scriptRatio{Code: script.code, Name: script.name, Ratio: ratio}
		}
	}

	return Language{Code: best.Code, Name: best.Name, Confidence: best.Ratio}
}

// GetLanguageInstruction returns a reply-language instruction for the model
// based on the detected language
func GetLanguageInstruction(lang Language) string {
	switch lang.Code {
	case LangHebrew:
		return "Please respond in Hebrew (עברית)."
	case LangArabic:
		return "Please respond in Arabic (العربية)."
	case LangRussian:
		return "Please respond in Russian (Русский)."
	case LangChinese:
		return "Please respond in Chinese (中文)."
	case LangKorean:
		return "Please respond in Korean (한국어)."
	default:
		return "Please respond in English."
	}
}
