// Package listing turns a channel reference into work items. Enumeration is
// pure observation: it never touches the store, so a failed listing leaves
// no partial state behind.
package listing
