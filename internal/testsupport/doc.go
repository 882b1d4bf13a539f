// Package testsupport holds helpers shared by package tests: temp-directory
// configs, /bin/sh stand-ins for ffmpeg and ffprobe, and sized fixture files.
package testsupport
