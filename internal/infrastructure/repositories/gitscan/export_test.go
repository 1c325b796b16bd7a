package gitscan

// ScanObjects exports scanObjects for testing.
var ScanObjects = scanObjects //nolint:gochecknoglobals // test export
