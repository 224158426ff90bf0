// Package blockimport converts web pages into block-structured content.
// A URL-scoped list of mapping entries binds DOM regions to block types;
// the entries are turned into a transformation ruleset which drives a DOM
// transformer that extracts cells from matched regions and rewrites the
// document as a sequence of blocks, ready for markdown conversion.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, sqlite/, rod/).
package blockimport
