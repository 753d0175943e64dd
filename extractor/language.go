package extractor

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

// minDetectWords is the shortest text handed to the language detector;
// below it detection is too unreliable to report.
const minDetectWords = 20

// detectableLanguages bounds the detector's model set.
var detectableLanguages = []lingua.Language{
	lingua.English, lingua.Spanish, lingua.French, lingua.German,
	lingua.Italian, lingua.Portuguese, lingua.Dutch, lingua.Polish,
	lingua.Swedish, lingua.Danish, lingua.Turkish, lingua.Russian,
	lingua.Ukrainian, lingua.Arabic, lingua.Hindi, lingua.Japanese,
	lingua.Chinese, lingua.Korean, lingua.Indonesian, lingua.Vietnamese,
}

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

func languageDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(detectableLanguages...).
			WithLowAccuracyMode().
			Build()
	})
	return detector
}

// detectLanguage returns the lowercase ISO 639-1 code of text, or "" when
// the text is short or the detector is undecided.
func detectLanguage(text string) string {
	if wordCount(text) < minDetectWords {
		return ""
	}
	lang, ok := languageDetector().DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}

// primarySubtag reduces a BCP 47 tag such as "en-US" to "en".
func primarySubtag(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		tag = tag[:i]
	}
	return tag
}

// langMatches compares the declared html lang against the detected
// language. Nil when either side is unknown.
func langMatches(htmlLang, detected string) *bool {
	declared := primarySubtag(htmlLang)
	if declared == "" || detected == "" {
		return nil
	}
	match := declared == detected
	return &match
}
