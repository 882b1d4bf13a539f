// Package runlock serializes vcompress runs that opt into exclusive mode.
package runlock
