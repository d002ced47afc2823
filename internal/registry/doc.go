// Package registry keeps the set of installed server platforms. Each platform
// is described by a YAML manifest in the platforms directory; manifests may be
// copied in or linked from elsewhere. The registry announces instances being
// added and removed, and the default instance changing, to its subscribers.
package registry
