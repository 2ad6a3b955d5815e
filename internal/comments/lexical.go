package comments

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

var (
	spaceAfterPeriod = regexp.MustCompile(`\.\s+`)
	whitespaceRun    = regexp.MustCompile(`\s+`)
)

// lexicalExtractor pulls block comments out of a snippet with regular
// expressions. It has no notion of syntax, so comment-like text inside string
// literals is matched too. It never fails.
type lexicalExtractor struct {
	lang     Language
	patterns []*regexp.Regexp
}

func newLexicalExtractor(lang Language, spec languageSpec) *lexicalExtractor {
	return &lexicalExtractor{lang: lang, patterns: spec.blockComments}
}

func (e *lexicalExtractor) Language() Language { return e.lang }
func (e *lexicalExtractor) Strategy() Strategy { return Lexical }

// Extract concatenates every comment body in order of appearance and
// normalizes the result.
func (e *lexicalExtractor) Extract(source string) Result {
	type span struct {
		start int
		end   int
		body  string
	}

	var spans []span
	for _, re := range e.patterns {
		for _, m := range re.FindAllStringSubmatchIndex(source, -1) {
			spans = append(spans, span{start: m[0], end: m[1], body: source[m[2]:m[3]]})
		}
	}
	if len(spans) == 0 {
		return Success("")
	}

	// Spans from different patterns interleave; restore source order and
	// drop any span that starts inside an earlier one.
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	bodies := make([]string, 0, len(spans))
	end := -1
	for _, s := range spans {
		if s.start < end {
			continue
		}
		bodies = append(bodies, s.body)
		end = s.end
	}

	return Success(normalizeLexical(strings.Join(bodies, " ")))
}

// normalizeLexical keeps letters, digits, whitespace and periods, collapses
// the whitespace following a period, then collapses and trims the rest.
func normalizeLexical(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '.' {
			return r
		}
		return -1
	}, s)
	s = spaceAfterPeriod.ReplaceAllString(s, ". ")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
