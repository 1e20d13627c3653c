// Package server implements the MCP (Model Context Protocol) server for the
// math OCR pipeline.
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
// Full pipeline:
//   - math_process_image: image file to text, expressions and LaTeX
//   - math_process_screen: same, from a screen capture
//
// Individual stages:
//   - math_normalize_image: the binary image given to OCR
//   - math_recognize_text: raw OCR text
//   - math_extract_expressions: expression candidates in text
//   - math_convert_expression: expression to inline LaTeX
//
// Output and diagnostics:
//   - math_export: package text and LaTeX as DOCX, PDF or HTML
//   - math_image_info: dimensions and format of an image file
//   - math_ocr_info: engine, languages and platform support
//
// Every call is processed from scratch; nothing is cached between calls.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with
// code -32000. The data member carries the error kind (invalid_image,
// recognition_unavailable, invalid_argument, export or internal) and the
// error text.
//
// # Usage
//
//	srv := server.New(cfg, p, capture.Resolve())
//	if err := srv.Run(ctx); err != nil {
//	    logger.WithError(err).Fatal("server failed")
//	}
package server
