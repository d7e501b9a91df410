// File: registry/list.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Generic singly linked, insertion-ordered list with a cached tail.

package registry

import "github.com/momentics/ncrelay/api"

// EqualFunc reports whether elem matches key.
type EqualFunc[T any] func(elem, key T) bool

// CompareFunc returns a negative, zero or positive value for a<b, a==b, a>b.
type CompareFunc[T any] func(a, b T) int

type node[T any] struct {
	value T
	next  *node[T]
}

// List is an ordered sequence that owns its nodes. Elements leaving the list
// through Remove, Unique or Clear are handed to the release hook, if any.
// List is not safe for concurrent use.
type List[T any] struct {
	root    *node[T]
	last    *node[T]
	length  int
	release func(T)
}

// ListOption customizes a List.
type ListOption[T any] func(*List[T])

// WithRelease installs a hook invoked for every element dropped by the list.
func WithRelease[T any](fn func(T)) ListOption[T] {
	return func(l *List[T]) {
		l.release = fn
	}
}

// NewList returns an empty list.
func NewList[T any](opts ...ListOption[T]) *List[T] {
	l := &List[T]{}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Len returns the number of elements.
func (l *List[T]) Len() int { return l.length }

// Empty reports whether the list holds no elements.
func (l *List[T]) Empty() bool { return l.length == 0 }

// Locate returns the index of the first element matching key, or -1.
func (l *List[T]) Locate(key T, equal EqualFunc[T]) int {
	i := 0
	for p := l.root; p != nil; p = p.next {
		if equal(p.value, key) {
			return i
		}
		i++
	}
	return -1
}

// Get returns the element at index.
func (l *List[T]) Get(index int) (T, error) {
	p := l.nodeAt(index)
	if p == nil {
		var zero T
		return zero, api.ErrIndexOutOfRange
	}
	return p.value, nil
}

// Modify replaces the element at index.
func (l *List[T]) Modify(index int, value T) error {
	p := l.nodeAt(index)
	if p == nil {
		return api.ErrIndexOutOfRange
	}
	p.value = value
	return nil
}

// Append adds value after the current tail in O(1).
func (l *List[T]) Append(value T) {
	n := &node[T]{value: value}
	if l.root == nil {
		l.root = n
	} else {
		l.last.next = n
	}
	l.last = n
	l.length++
}

// Insert places value so that it ends up at index. Valid indexes are 0..Len().
func (l *List[T]) Insert(value T, index int) error {
	if index < 0 || index > l.length {
		return api.ErrIndexOutOfRange
	}
	switch {
	case index == l.length:
		l.Append(value)
	case index == 0:
		l.root = &node[T]{value: value, next: l.root}
		l.length++
	default:
		prev := l.nodeAt(index - 1)
		prev.next = &node[T]{value: value, next: prev.next}
		l.length++
	}
	return nil
}

// Remove drops the first element matching key and returns its former index, or -1.
func (l *List[T]) Remove(key T, equal EqualFunc[T]) int {
	var prev *node[T]
	i := 0
	for p := l.root; p != nil; p = p.next {
		if equal(p.value, key) {
			l.unlink(prev, p)
			return i
		}
		prev = p
		i++
	}
	return -1
}

// Extend appends a copy of every element of src, in order.
func (l *List[T]) Extend(src *List[T]) {
	if src == nil {
		return
	}
	// Bound by the original length so l.Extend(l) terminates.
	n := src.length
	p := src.root
	for i := 0; i < n && p != nil; i++ {
		l.Append(p.value)
		p = p.next
	}
}

// Unique keeps the first occurrence of every value and drops later duplicates.
// It returns the number of elements removed.
func (l *List[T]) Unique(equal EqualFunc[T]) int {
	if l.root == nil {
		return 0
	}
	removed := 0
	prev := l.root
	for p := l.root.next; p != nil; {
		next := p.next
		if l.seenBefore(p, equal) {
			l.unlink(prev, p)
			removed++
		} else {
			prev = p
		}
		p = next
	}
	return removed
}

// seenBefore reports whether any node ahead of target matches it.
func (l *List[T]) seenBefore(target *node[T], equal EqualFunc[T]) bool {
	for q := l.root; q != target; q = q.next {
		if equal(target.value, q.value) {
			return true
		}
	}
	return false
}

// Reverse rebuilds the list in reverse order. It returns false when there is
// nothing to do, i.e. the list has fewer than two elements.
func (l *List[T]) Reverse() bool {
	if l.length <= 1 {
		return false
	}
	tmp := NewList[T]()
	for p := l.root; p != nil; p = p.next {
		_ = tmp.Insert(p.value, 0)
	}
	l.root, l.last = tmp.root, tmp.last
	return true
}

// Sort orders the list with a stable merge sort.
func (l *List[T]) Sort(compare CompareFunc[T]) {
	if l.length <= 1 {
		return
	}
	l.root = mergeSort(l.root, l.length, compare)
	p := l.root
	for p.next != nil {
		p = p.next
	}
	l.last = p
}

// Each visits elements in order until fn returns false.
func (l *List[T]) Each(fn func(index int, value T) bool) {
	i := 0
	for p := l.root; p != nil; p = p.next {
		if !fn(i, p.value) {
			return
		}
		i++
	}
}

// Values returns a snapshot of the elements in order.
func (l *List[T]) Values() []T {
	out := make([]T, 0, l.length)
	for p := l.root; p != nil; p = p.next {
		out = append(out, p.value)
	}
	return out
}

// Clear drops every element, releasing each one.
func (l *List[T]) Clear() {
	for l.root != nil {
		p := l.root
		l.root = p.next
		p.next = nil
		l.drop(p)
	}
	l.last = nil
	l.length = 0
}

func (l *List[T]) nodeAt(index int) *node[T] {
	if index < 0 || index >= l.length {
		return nil
	}
	p := l.root
	for i := 0; i < index; i++ {
		p = p.next
	}
	return p
}

// unlink removes p, whose predecessor is prev (nil when p is the root).
func (l *List[T]) unlink(prev, p *node[T]) {
	if prev == nil {
		l.root = p.next
	} else {
		prev.next = p.next
	}
	if l.last == p {
		l.last = prev
	}
	p.next = nil
	l.length--
	l.drop(p)
}

func (l *List[T]) drop(p *node[T]) {
	if l.release != nil {
		l.release(p.value)
	}
	var zero T
	p.value = zero
}

// mergeSort sorts the first length nodes starting at head.
func mergeSort[T any](head *node[T], length int, compare CompareFunc[T]) *node[T] {
	if length <= 1 {
		if head != nil {
			head.next = nil
		}
		return head
	}
	half := length / 2
	tail := head
	for i := 1; i < half; i++ {
		tail = tail.next
	}
	mid := tail.next
	tail.next = nil
	left := mergeSort(head, half, compare)
	right := mergeSort(mid, length-half, compare)
	return merge(left, right, compare)
}

// merge takes from a on ties, which keeps the sort stable.
func merge[T any](a, b *node[T], compare CompareFunc[T]) *node[T] {
	var head node[T]
	cur := &head
	for a != nil && b != nil {
		if compare(a.value, b.value) <= 0 {
			cur.next, a = a, a.next
		} else {
			cur.next, b = b, b.next
		}
		cur = cur.next
	}
	if a != nil {
		cur.next = a
	} else {
		cur.next = b
	}
	return head.next
}
