package config

import (
	"github.com/mvp-joe/docmeta/internal/comments"
	"github.com/mvp-joe/docmeta/internal/transform"
)

// Extractor builds the extractor named by the extraction section.
func (c *Config) Extractor() (comments.Extractor, error) {
	return comments.NewFromNames(c.Extraction.Language, c.Extraction.Strategy)
}

// DriverOptions converts the concurrency section to driver options. The
// caller fills in the logger and progress callback.
func (c *Config) DriverOptions() transform.Options {
	return transform.Options{
		Workers: c.Concurrency.Workers,
	}
}
