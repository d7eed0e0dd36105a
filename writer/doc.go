// Package writer serializes a parsed document back to disk.
//
// The primary path is [Update]: an incremental update that appends new and
// modified objects, a fresh cross-reference section, and a trailer chaining
// back to the previous xref via /Prev. The bytes of the original file are
// never rewritten, so digital signatures over them stay intact.
//
// [Rewrite] is the secondary path: it emits a complete file from scratch
// with a single xref section. It keeps each object's original id; it does
// not renumber, and it reconstructs only the synthetic head of the free
// list.
package writer
