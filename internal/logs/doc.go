// Package logs reads the JSON run log written under paths.log_dir.
//
// Reader tails the file by byte offset with bounded memory and powers
// `vcompress logs --follow`. ParseEntry and Filter turn raw lines into
// records that can be narrowed to one job, one run, or a minimum level.
package logs
