package extractor

import (
	"math"
	"regexp"
	"strings"
)

// sentenceEndRe matches terminal punctuation (plus closing quotes/brackets)
// followed by whitespace or end of line. Requiring the trailing space keeps
// dotted tokens such as URLs and version numbers in one sentence.
var sentenceEndRe = regexp.MustCompile(`[.!?]+["'”’)\]]*(?:\s+|$)`)

var (
	horizontalSpaceRe = regexp.MustCompile(`[ \t\f\v\x{00a0}]+`)
)

// sentence is one sentence and the source line it came from.
type sentence struct {
	text  string
	line  int
	words int
}

// splitSentences splits text on terminal punctuation. Line breaks are
// treated as hard boundaries because they mark block elements.
func splitSentences(text string) []sentence {
	var out []sentence
	for lineNo, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		start := 0
		for _, loc := range sentenceEndRe.FindAllStringIndex(line, -1) {
			if s := strings.TrimSpace(line[start:loc[1]]); s != "" {
				out = append(out, sentence{text: s, line: lineNo, words: wordCount(s)})
			}
			start = loc[1]
		}
		if start < len(line) {
			if s := strings.TrimSpace(line[start:]); s != "" {
				out = append(out, sentence{text: s, line: lineNo, words: wordCount(s)})
			}
		}
	}
	return out
}

// boundSentences greedily keeps whole sentences while the running word count
// stays within maxWords. It stops at the first sentence that would overflow,
// so the kept text is always a prefix of the document.
func boundSentences(sentences []sentence, maxWords int) []sentence {
	total := 0
	for i, s := range sentences {
		if total+s.words > maxWords {
			return sentences[:i]
		}
		total += s.words
	}
	return sentences
}

// joinSentences rebuilds text, keeping sentences of one source line together.
func joinSentences(sentences []sentence) string {
	var b strings.Builder
	for i, s := range sentences {
		if i > 0 {
			if s.line == sentences[i-1].line {
				b.WriteByte(' ')
			} else {
				b.WriteByte('\n')
			}
		}
		b.WriteString(s.text)
	}
	return b.String()
}

// cleanText normalises line endings, collapses runs of horizontal
// whitespace, trims every line and drops empty ones.
func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(horizontalSpaceRe.ReplaceAllString(line, " "))
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// boundedText is the word-bounded body text plus the sentence statistics
// computed over it.
type boundedText struct {
	text              string
	words             int
	sentenceCount     int
	avgSentenceLength float64
}

func boundText(raw string, maxWords int) boundedText {
	kept := boundSentences(splitSentences(cleanText(raw)), maxWords)
	out := boundedText{
		text:          cleanText(joinSentences(kept)),
		sentenceCount: len(kept),
	}
	for _, s := range kept {
		out.words += s.words
	}
	if out.sentenceCount > 0 {
		out.avgSentenceLength = round2(float64(out.words) / float64(out.sentenceCount))
	}
	return out
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
