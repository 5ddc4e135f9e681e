// Package thread turns a raw video transcript into a numbered social media
// thread: cleaning, chunking, persona prompts, generation and normalization.
package thread

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// [00:12], (1:02:03), 00:12.5
	timestampRe = regexp.MustCompile(`[\[(]?\d{1,2}:\d{2}(?::\d{2})?(?:\.\d+)?[\])]?`)
	// [Music], (applause)
	soundCueRe = regexp.MustCompile(`(?i)[\[(](?:music|applause|laughter|laughs|inaudible|silence|cheering|noise)[\])]`)
	// >>, SPEAKER 1:, JOHN:
	speakerRe = regexp.MustCompile(`>>+|(?i:\bspeaker\s?\d+\s?:)|\b[A-Z][A-Z0-9_]+:`)
	fillerRe  = regexp.MustCompile(`(?i)\b(?:u+m+|u+h+|e+r+m+|h+m+|a+h+|you know|i mean|sort of|kind of|basically|literally|actually)\b,?`)
)

// Clean strips timestamps, speaker labels, filler words and stopwords from raw,
// keeping sentence order and dropping sentences left empty.
func Clean(raw string) string {
	return strings.Join(CleanSentences(raw), " ")
}

// CleanSentences is Clean before the final join.
func CleanSentences(raw string) []string {
	s := raw
	for _, re := range []*regexp.Regexp{timestampRe, soundCueRe, speakerRe, fillerRe} {
		s = removeAll(re, s)
	}

	var out []string
	for _, sentence := range splitSentences(s) {
		if kept := dropStopwords(sentence); kept != "" {
			out = append(out, kept)
		}
	}
	return out
}

// removeAll deletes matches until none remain, so a deletion cannot leave
// behind a fresh match.
func removeAll(re *regexp.Regexp, s string) string {
	for i := 0; i < 4; i++ {
		next := re.ReplaceAllString(s, " ")
		if next == s {
			break
		}
		s = next
	}
	return s
}

// splitSentences cuts s after '.', '!' or '?' followed by whitespace.
// Whitespace inside each sentence is collapsed to single spaces.
func splitSentences(s string) []string {
	var out []string
	runes := []rune(s)
	start := 0
	for i, r := range runes {
		if (r == '.' || r == '!' || r == '?') && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			if sentence := strings.Join(strings.Fields(string(runes[start:i+1])), " "); sentence != "" {
				out = append(out, sentence)
			}
			start = i + 1
		}
	}
	if sentence := strings.Join(strings.Fields(string(runes[start:])), " "); sentence != "" {
		out = append(out, sentence)
	}
	return out
}

// dropStopwords removes stopword tokens. The sentence keeps its terminator
// even when the token carrying it was dropped.
func dropStopwords(sentence string) string {
	tokens := strings.Fields(sentence)
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if !isStopword(tok) {
			kept = append(kept, tok)
		}
	}
	if !strings.ContainsFunc(strings.Join(kept, ""), isWordRune) {
		return ""
	}
	if term := terminator(tokens[len(tokens)-1]); term != 0 && terminator(kept[len(kept)-1]) == 0 {
		kept[len(kept)-1] += string(term)
	}
	return strings.Join(kept, " ")
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func terminator(tok string) rune {
	if tok == "" {
		return 0
	}
	switch r := rune(tok[len(tok)-1]); r {
	case '.', '!', '?':
		return r
	}
	return 0
}

func isStopword(tok string) bool {
	w := strings.ReplaceAll(strings.ToLower(tok), "’", "'")
	w = strings.TrimFunc(w, func(r rune) bool {
		return r != '\'' && (unicode.IsPunct(r) || unicode.IsSymbol(r))
	})
	w = strings.Trim(w, "'")
	_, ok := stopwords[w]
	return ok
}
