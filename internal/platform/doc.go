// Package platform defines the server platform handle shown in the logical
// view and its notifications: attribute changes on a single platform and
// instance changes (added, removed, default changed) on the set of installed
// platforms.
package platform
