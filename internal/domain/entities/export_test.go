package entities

// ExpandToken exports expandToken for testing.
var ExpandToken = expandToken //nolint:gochecknoglobals // test export

// Truncate2 exports truncate2 for testing.
var Truncate2 = truncate2 //nolint:gochecknoglobals // test export
