package comments

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	csitter "github.com/tree-sitter/tree-sitter-c/bindings/go"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Language is the source language tag of a batch.
type Language string

const (
	Java       Language = "java"
	TypeScript Language = "typescript"
	C          Language = "c"
	Rust       Language = "rust"
	PHP        Language = "php"
	Python     Language = "python"
	Ruby       Language = "ruby"
)

// Strategy selects one of the two extractor variants.
type Strategy string

const (
	// Lexical scans for block-comment delimiters with regular expressions.
	Lexical Strategy = "lexical"
	// Syntax parses the snippet with the language grammar.
	Syntax Strategy = "syntax"
)

var (
	// ErrUnsupportedLanguage indicates no extractor is registered for a language tag.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrUnknownStrategy indicates a strategy other than lexical or syntax.
	ErrUnknownStrategy = errors.New("unknown extraction strategy")
)

// languageSpec binds everything both variants need to know about a language.
type languageSpec struct {
	// grammar is loaded once and shared read-only by every parser.
	grammar func() *sitter.Language

	// commentKinds are tree-sitter node kinds that hold comments.
	commentKinds map[string]bool

	// docstrings enables Python-style leading string statements as comments.
	docstrings bool

	// attempts are source rewrites tried in order until one parses cleanly.
	// Members and method snippets are not valid compilation units in every
	// grammar, so later attempts wrap them in a container.
	attempts []attempt

	// blockComments are the lexical patterns. Each has exactly one capture
	// group holding the comment body.
	blockComments []*regexp.Regexp
}

const wrapperName = "__DocmetaWrapper__"

var (
	cBlockComment     = regexp.MustCompile(`(?s)/\*\*?(.*?)\*/`)
	pyDoubleDocstring = regexp.MustCompile(`(?s)"""(.*?)"""`)
	pySingleDocstring = regexp.MustCompile(`(?s)'''(.*?)'''`)
	rubyEmbeddedDocs  = regexp.MustCompile(`(?ms)^=begin\b(.*?)^=end\b`)
	phpOpenTag        = regexp.MustCompile(`^\s*<\?php`)
)

// attempt is one way of presenting a snippet to the parser.
type attempt struct {
	rewrite func(string) string

	// header opens the synthetic container around the snippet. Empty when
	// the snippet is parsed without one.
	header string
}

func plain(rewrite func(string) string) attempt {
	return attempt{rewrite: rewrite}
}

func asIs(s string) string { return s }

// wrapIn places the snippet inside a container declaration that opens with
// header and closes with a single brace on the last line.
func wrapIn(header string) attempt {
	return attempt{
		header: header,
		rewrite: func(s string) string {
			return header + "\n" + s + "\n}"
		},
	}
}

func stripPHPTag(s string) string {
	if phpOpenTag.MatchString(s) {
		return phpOpenTag.ReplaceAllString(s, "")
	}
	return s
}

func withPHPTag(a attempt) attempt {
	rewrite := a.rewrite
	a.rewrite = func(s string) string {
		return "<?php\n" + rewrite(stripPHPTag(s))
	}
	return a
}

var registry = map[Language]languageSpec{
	Java: {
		grammar: sync.OnceValue(func() *sitter.Language {
			return sitter.NewLanguage(java.Language())
		}),
		commentKinds: map[string]bool{"line_comment": true, "block_comment": true},
		attempts: []attempt{
			plain(asIs),
			wrapIn("class " + wrapperName + " {"),
		},
		blockComments: []*regexp.Regexp{cBlockComment},
	},
	TypeScript: {
		grammar: sync.OnceValue(func() *sitter.Language {
			return sitter.NewLanguage(typescript.LanguageTypescript())
		}),
		commentKinds: map[string]bool{"comment": true},
		attempts: []attempt{
			plain(asIs),
			wrapIn("class " + wrapperName + " {"),
		},
		blockComments: []*regexp.Regexp{cBlockComment},
	},
	C: {
		grammar: sync.OnceValue(func() *sitter.Language {
			return sitter.NewLanguage(csitter.Language())
		}),
		commentKinds:  map[string]bool{"comment": true},
		attempts:      []attempt{plain(asIs)},
		blockComments: []*regexp.Regexp{cBlockComment},
	},
	Rust: {
		grammar: sync.OnceValue(func() *sitter.Language {
			return sitter.NewLanguage(rust.Language())
		}),
		commentKinds: map[string]bool{"line_comment": true, "block_comment": true},
		attempts: []attempt{
			plain(asIs),
			wrapIn("impl " + wrapperName + " {"),
		},
		blockComments: []*regexp.Regexp{cBlockComment},
	},
	PHP: {
		grammar: sync.OnceValue(func() *sitter.Language {
			return sitter.NewLanguage(php.LanguagePHP())
		}),
		commentKinds: map[string]bool{"comment": true},
		attempts: []attempt{
			withPHPTag(plain(asIs)),
			withPHPTag(wrapIn("class " + wrapperName + " {")),
		},
		blockComments: []*regexp.Regexp{cBlockComment},
	},
	Python: {
		grammar: sync.OnceValue(func() *sitter.Language {
			return sitter.NewLanguage(python.Language())
		}),
		commentKinds:  map[string]bool{"comment": true},
		docstrings:    true,
		attempts:      []attempt{plain(asIs), plain(dedent)},
		blockComments: []*regexp.Regexp{pyDoubleDocstring, pySingleDocstring},
	},
	Ruby: {
		grammar: sync.OnceValue(func() *sitter.Language {
			return sitter.NewLanguage(ruby.Language())
		}),
		commentKinds:  map[string]bool{"comment": true},
		attempts:      []attempt{plain(asIs)},
		blockComments: []*regexp.Regexp{rubyEmbeddedDocs},
	},
}

// ParseLanguage resolves a language tag, case-insensitively.
func ParseLanguage(s string) (Language, error) {
	lang := Language(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := registry[lang]; !ok {
		return "", fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedLanguage, s, joinLanguages())
	}
	return lang, nil
}

// ParseStrategy resolves a strategy name, case-insensitively.
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToLower(strings.TrimSpace(s))); st {
	case Lexical, Syntax:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %q (valid: lexical, syntax)", ErrUnknownStrategy, s)
	}
}

// Languages returns the supported language tags in sorted order.
func Languages() []Language {
	langs := make([]Language, 0, len(registry))
	for lang := range registry {
		langs = append(langs, lang)
	}
	slices.Sort(langs)
	return langs
}

// Strategies returns both strategies, lexical first.
func Strategies() []Strategy {
	return []Strategy{Lexical, Syntax}
}

func joinLanguages() string {
	langs := Languages()
	names := make([]string, len(langs))
	for i, l := range langs {
		names[i] = string(l)
	}
	return strings.Join(names, ", ")
}

// dedent removes the common leading indentation of all non-blank lines.
func dedent(s string) string {
	lines := strings.Split(s, "\n")
	prefix := ""
	first := true
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if first {
			prefix = indent
			first = false
			continue
		}
		for !strings.HasPrefix(indent, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	if prefix == "" {
		return s
	}
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, prefix)
	}
	return strings.Join(lines, "\n")
}
