package commands

// EffectiveConcurrency exports effectiveConcurrency for testing.
var EffectiveConcurrency = effectiveConcurrency //nolint:gochecknoglobals // test export

// FilterProjects exports filterProjects for testing.
var FilterProjects = filterProjects //nolint:gochecknoglobals // test export
