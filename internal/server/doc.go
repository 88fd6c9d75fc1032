// Package server implements the MCP (Model Context Protocol) server for patch
// feature extraction.
//
// This package provides a JSON-RPC 2.0 server that lets MCP clients compute
// feature vectors for image patches, one patch at a time or by sliding
// windows over a whole frame.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Images:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Streams:
//   - stream_open: Create a frame stream, optionally with a first frame
//   - stream_push: Publish the next frame of a stream
//   - stream_close: Drop a stream
//
// Features:
//   - feature_kinds: Describe the extractor kinds
//   - feature_extract: Feature vectors for listed patches
//   - feature_scan: Feature vectors for every window position
//
// # Streams and Extractor Trees
//
// A stream is a feature.VersionedImage behind a UUID handle. Queries name an
// extractor tree as JSON (see package pipeline); the built tree is kept per
// stream and config, and brought up to date with UpdateVersioned before each
// query. Repeated queries against one frame therefore reuse gray planes,
// pyramids and memos; pushing a frame invalidates them on next use.
//
// Queries that give a path instead of a stream_id use an implicit stream for
// that file. It gets a new frame whenever the image cache holds a different
// decode of the file, e.g. after image_load with reload set.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// A patch that cannot be extracted is not an error; it is reported with
// available set to false.
//
// # Usage
//
//	srv := server.New(cfg, log)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
