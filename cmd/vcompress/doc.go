// Command vcompress batch-transcodes video files through ffmpeg, either at a
// fixed quality (CRF) or to fit a target file size.
//
// Subcommands:
//
//	compress   encode files or directories, with live progress
//	probe      show codec, bitrate, duration and size for inputs
//	status     check ffmpeg/ffprobe availability and encoder support
//	logs       show or follow the JSON run log
//	config     create, show or validate the configuration file
package main
