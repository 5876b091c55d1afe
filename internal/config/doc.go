// Package config provides configuration structures and utilities for leda.
// It defines transport settings, pacing delays, session cache TTL, the media
// resolver's URL rules, and the environment-supplied encryption secret.
package config
