package lexgraph

import "errors"

var (
	// ErrInvalidConfig is returned for invalid configuration values.
	ErrInvalidConfig = errors.New("lexgraph: invalid configuration")

	// ErrEmptyCorpus is returned when a rebuild finds no case records.
	ErrEmptyCorpus = errors.New("lexgraph: corpus is empty")

	// ErrEngineClosed is returned when operating on a closed engine.
	ErrEngineClosed = errors.New("lexgraph: engine is closed")

	// ErrEntityNotFound is returned when a recommendation or explanation
	// target does not exist in the knowledge graph.
	ErrEntityNotFound = errors.New("lexgraph: entity not found in knowledge graph")

	// ErrChatNotConfigured is returned by Ask when no chat provider is set.
	ErrChatNotConfigured = errors.New("lexgraph: chat provider not configured")
)
