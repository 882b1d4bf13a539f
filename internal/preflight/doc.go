// Package preflight runs environment checks before a compress run starts:
// external binaries, encoder support, and directory permissions. Results are
// plain values so the CLI can render them as a table or fold them into an
// error.
package preflight
