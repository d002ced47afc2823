// Package fileobj turns classpath paths into file objects and archive roots.
// A classpath entry is usable in the logical view only when it names an
// existing file that opens as a zip archive. Links are followed, including
// the copy-plus-sidecar links written on systems without symlink support.
package fileobj
