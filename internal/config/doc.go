// Package config implements the layered, inheritable key-value configuration
// that tasks and steps are built from.
//
// A Config is an ordered stack of layers (package defaults, machine, user and
// task-local overrides, lowest precedence first). Looking up an option scans
// the layers from lowest to highest precedence and the last writer wins.
// Values may reference other options with ${section:option} (or ${option} for
// the same section); references are resolved lazily and recursively, and a
// reference chain that revisits an option fails with a cyclic interpolation
// error instead of looping.
//
// Layers are written as YAML documents mapping section names to option maps.
package config
