package comments

import "fmt"

// Extractor derives documentation text from a source snippet.
//
// Implementations are pure: they hold no mutable state, do no I/O and are
// safe to call from any number of goroutines at once.
type Extractor interface {
	// Extract returns Success with the cleaned comment text, or Failure when
	// the snippet cannot be processed.
	Extract(source string) Result

	// Language is the language the extractor was bound to.
	Language() Language

	// Strategy is the variant implemented by the extractor.
	Strategy() Strategy
}

// New returns the extractor for a language and strategy. The binding is made
// once per batch by the caller; extractors never re-select per node.
func New(lang Language, strategy Strategy) (Extractor, error) {
	spec, ok := registry[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}

	switch strategy {
	case Lexical:
		return newLexicalExtractor(lang, spec), nil
	case Syntax:
		return newSyntaxExtractor(lang, spec), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
}

// NewFromNames is New for unparsed tags, as read from flags or config.
func NewFromNames(language, strategy string) (Extractor, error) {
	lang, err := ParseLanguage(language)
	if err != nil {
		return nil, err
	}
	st, err := ParseStrategy(strategy)
	if err != nil {
		return nil, err
	}
	return New(lang, st)
}

// ExtractorFunc adapts a plain function to the Extractor interface. It is
// bound to no language and reports strategy "func".
type ExtractorFunc func(source string) Result

func (f ExtractorFunc) Extract(source string) Result { return f(source) }
func (f ExtractorFunc) Language() Language           { return "" }
func (f ExtractorFunc) Strategy() Strategy           { return "func" }
