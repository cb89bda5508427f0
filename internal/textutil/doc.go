// Package textutil provides text processing utilities for filename
// sanitization and channel-reference token matching.
//
// The primary use cases are:
//   - Sanitizing video titles and channel names for safe filesystem use
//   - Extracting normalized keyword tokens from channel URLs and names
//     so a configured channel reference can be matched against the free-text
//     channel names recorded in the store
//
// Tokenization lowercases text, splits on non-alphanumeric characters, and
// filters tokens shorter than 2 characters so short handles such as "AI"
// survive.
package textutil
