package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mvp-joe/docmeta/internal/comments"
)

var (
	// ErrInvalidLanguage indicates an unsupported extraction language
	ErrInvalidLanguage = errors.New("invalid extraction language")

	// ErrInvalidStrategy indicates an unknown extraction strategy
	ErrInvalidStrategy = errors.New("invalid extraction strategy")

	// ErrInvalidWorkers indicates a negative worker count
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrEmptyPatterns indicates no input patterns were configured
	ErrEmptyPatterns = errors.New("empty input patterns")

	// ErrInvalidFormat indicates an unsupported output format
	ErrInvalidFormat = errors.New("invalid output format")

	// ErrInvalidStorage indicates storage is enabled without a path
	ErrInvalidStorage = errors.New("invalid storage settings")

	// ErrInvalidLogging indicates an unknown log level or format
	ErrInvalidLogging = errors.New("invalid logging settings")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// fieldErrors maps a struct namespace to the sentinel reported for it.
var fieldErrors = map[string]error{
	"Config.Extraction.Language": ErrInvalidLanguage,
	"Config.Extraction.Strategy": ErrInvalidStrategy,
	"Config.Concurrency.Workers": ErrInvalidWorkers,
	"Config.Input.Patterns":      ErrEmptyPatterns,
	"Config.Output.Format":       ErrInvalidFormat,
	"Config.Storage.Path":        ErrInvalidStorage,
	"Config.Logging.Level":       ErrInvalidLogging,
	"Config.Logging.Format":      ErrInvalidLogging,
}

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	normalize(cfg)

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("failed to validate config: %w", err)
		}
		for _, ve := range verrs {
			errs = append(errs, fieldError(ve))
		}
	}

	// The tag rules above only check presence; the language and strategy
	// names must also be known to the extractor registry.
	if cfg.Extraction.Language != "" {
		if _, err := comments.ParseLanguage(cfg.Extraction.Language); err != nil {
			errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidLanguage, err))
		}
	}
	if cfg.Extraction.Strategy != "" {
		if _, err := comments.ParseStrategy(cfg.Extraction.Strategy); err != nil {
			errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidStrategy, err))
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// normalize lowercases the enumerated settings so env vars like
// DOCMETA_OUTPUT_FORMAT=YAML are accepted.
func normalize(cfg *Config) {
	cfg.Extraction.Language = strings.ToLower(strings.TrimSpace(cfg.Extraction.Language))
	cfg.Extraction.Strategy = strings.ToLower(strings.TrimSpace(cfg.Extraction.Strategy))
	cfg.Output.Format = strings.ToLower(strings.TrimSpace(cfg.Output.Format))
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
}

func fieldError(ve validator.FieldError) error {
	sentinel, ok := fieldErrors[ve.StructNamespace()]
	if !ok {
		// dive errors on Input.Patterns[i]
		if strings.HasPrefix(ve.StructNamespace(), "Config.Input.Patterns") {
			sentinel = ErrEmptyPatterns
		} else {
			return fmt.Errorf("%s failed %q validation", ve.StructNamespace(), ve.Tag())
		}
	}

	if ve.Param() != "" {
		return fmt.Errorf("%w: %s must satisfy %s=%s, got '%v'", sentinel, ve.Field(), ve.Tag(), ve.Param(), ve.Value())
	}
	return fmt.Errorf("%w: %s must satisfy %s, got '%v'", sentinel, ve.Field(), ve.Tag(), ve.Value())
}

// joinErrors combines multiple errors into a single error with clear formatting.
// The result still matches every sentinel with errors.Is.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	return validationErrors(errs)
}

type validationErrors []error

func (e validationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

func (e validationErrors) Unwrap() []error {
	return e
}
