// Package file provides a RowSource which reads data from files on disk
// matching a glob. Files are streamed to a consumer in their entirety, so it
// is favourable if individual files represent roughly equal-sized divisions
// of data.
package file
