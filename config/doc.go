// Package config holds the structured configuration surface of a camera
// source.
//
// Settings is a plain value object with typed fields and explicit accessors
// instead of tag-dispatched attribute plumbing. Enumerated settings carry
// static bidirectional tables between their Go values and the device-native
// strings they correspond to, so the mapping lives in one place rather than
// being scattered across call sites.
//
// Settings files are YAML documents unmarshalled over DefaultSettings, and
// Watcher reloads a settings file whenever it changes on disk.
package config
