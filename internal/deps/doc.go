// Package deps checks that the external binaries vcompress shells out to are
// installed, and reports their versions for the status command.
package deps
