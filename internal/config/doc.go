// Package config loads, normalizes, and validates vcompress configuration data.
//
// It supplies repository defaults (the fixed ffmpeg flag groups, CRF and
// target-size defaults, solver constants, worker capacity), expands user
// paths including tilde shortcuts, reads TOML files, and honours environment
// fallbacks such as VCOMPRESS_FFMPEG and VCOMPRESS_FFPROBE.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical extensions, and clear validation errors.
package config
