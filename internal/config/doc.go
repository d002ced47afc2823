// Package config manages user-level settings stored at
// ~/.platformview/config.yaml and the per-project property files the logical
// view reads its server binding from.
package config
