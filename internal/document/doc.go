// Package document implements the Block/Inline document tree: the in-memory
// AST shared by the parser, transform pipeline, and render stages. Every
// node carries a sourcemap.SourceInfo so diagnostics and round-tripping
// writers can always locate the bytes a node came from.
package document
