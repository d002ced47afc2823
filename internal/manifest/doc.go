// Package manifest handles parsing and validation of platform manifests: the
// YAML files that declare an installed server platform, its display name,
// version, icon and the classpath of the tools it supports. Validation runs
// the embedded JSON Schema and then checks the version as semver.
package manifest
