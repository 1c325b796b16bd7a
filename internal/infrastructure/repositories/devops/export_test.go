package devops

// EscapeSegment exports escapeSegment for testing.
var EscapeSegment = escapeSegment //nolint:gochecknoglobals // test export

// Snippet exports snippet for testing.
var Snippet = snippet //nolint:gochecknoglobals // test export
