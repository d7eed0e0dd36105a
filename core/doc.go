// Package core provides low-level PDF syntax primitives: the value model,
// the tokenizer, and the object-graph parser.
//
// This package implements the building blocks for reading a PDF at the
// object level: every PDF value type (null, boolean, integer, real, string,
// hex string, name, array, and dictionary), indirect references, streams
// located by byte range, classical cross-reference tables, and trailer
// dictionaries.
//
// # Value Types
//
// PDF values are represented as types satisfying the Object interface:
//
//   - [Null] - the PDF null object
//   - [Boolean] - PDF boolean values (true/false)
//   - [Integer] - PDF integers, with the explicit-sign marker preserved
//   - [Real] - PDF real numbers, with the explicit-sign marker preserved
//   - [Name] - PDF name objects (e.g., /Type, /Font)
//   - [String] - literal strings, escapes kept verbatim
//   - [HexString] - hexadecimal strings
//   - [Array] - PDF arrays
//   - [Dict] - PDF dictionaries
//
// Additionally, [Stream] represents a PDF stream located by its byte range
// in the source, [Reference] an indirect reference, and [IndirectObject] a
// numbered obj…endobj envelope.
//
// # Parsing
//
// The [Parser] type reads a whole file into a [Document]: the header
// version, the indirect objects, the cross-reference entries, and the
// trailer. The [Lexer] type tokenizes PDF input byte by byte; the [Source]
// type provides the random-access reads and offset tracking it needs.
//
// Stream payloads are located but never copied; they remain readable only
// while the parser's source is open. Use [Stream.Detach] to copy a payload
// out first.
//
// # Limitations
//
// Cross-reference streams and object streams (PDF 1.5+) are not understood
// here, and stream payloads are not decoded.
package core
