package entgraph

import "errors"

var (
	// ErrMissingInput is returned when the input document does not exist.
	ErrMissingInput = errors.New("entgraph: input document not found")

	// ErrUnsupportedFormat is returned for unrecognized file formats.
	ErrUnsupportedFormat = errors.New("entgraph: unsupported document format")

	// ErrParsingFailed is returned when the input document cannot be read.
	ErrParsingFailed = errors.New("entgraph: parsing failed")

	// ErrOracleFailure is returned when the NLP service cannot parse a unit.
	ErrOracleFailure = errors.New("entgraph: nlp oracle failed")

	// ErrLLMRequestFailed is returned when an LLM request fails.
	ErrLLMRequestFailed = errors.New("entgraph: LLM request failed")

	// ErrLLMNotConfigured is returned when the triple pipeline runs without
	// an LLM provider.
	ErrLLMNotConfigured = errors.New("entgraph: LLM provider not configured")

	// ErrInvalidConfig is returned for invalid configuration values.
	ErrInvalidConfig = errors.New("entgraph: invalid configuration")

	// ErrExportFailed is returned when an artifact cannot be written.
	ErrExportFailed = errors.New("entgraph: export failed")
)
