// Package registry
// Author: momentics <momentics@gmail.com>
//
// Ordered containers for ncrelay.
//
// List is a generic singly linked list with a cached tail: locate, indexed
// get/modify, head/middle/tail insert, remove, extend, unique, reverse and a
// stable merge sort. Element semantics come from caller-supplied equality and
// comparison functions; a release hook takes the place of manual cleanup.
//
// Connections specializes List to live client connections keyed by descriptor.
package registry
