//go:build linux
// +build linux

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor - Linux epoll implementation.

package reactor

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// DefaultMaxEvents bounds the events collected by one epoll_wait call.
const DefaultMaxEvents = 20

// epollReactor implements Reactor using Linux epoll.
type epollReactor struct {
	epfd      int
	events    []unix.EpollEvent
	callbacks map[int]FDCallback
}

// New creates an epoll reactor collecting at most maxEvents per Poll.
func New(maxEvents int) (Reactor, error) {
	if maxEvents <= 0 {
		maxEvents = DefaultMaxEvents
	}
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}
	return &epollReactor{
		epfd:      epfd,
		events:    make([]unix.EpollEvent, maxEvents),
		callbacks: make(map[int]FDCallback),
	}, nil
}

// Register adds a file descriptor to the epoll watch list.
func (r *epollReactor) Register(fd int, events FDEventType, cb FDCallback) error {
	if cb == nil {
		return fmt.Errorf("epoll ctl add fd %d: nil callback", fd)
	}
	ev := unix.EpollEvent{
		Events: unix.EPOLLERR | unix.EPOLLHUP | unix.EPOLLET,
		Fd:     int32(fd),
	}
	if events&EventRead != 0 {
		ev.Events |= unix.EPOLLIN | unix.EPOLLRDHUP
	}
	if events&EventWrite != 0 {
		ev.Events |= unix.EPOLLOUT
	}
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return fmt.Errorf("epoll ctl add fd %d: %w", fd, err)
	}
	r.callbacks[fd] = cb
	return nil
}

// Unregister removes a file descriptor from the epoll watch list.
func (r *epollReactor) Unregister(fd int) error {
	delete(r.callbacks, fd)
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return fmt.Errorf("epoll ctl del fd %d: %w", fd, err)
	}
	return nil
}

// Poll blocks and waits for events on registered file descriptors.
func (r *epollReactor) Poll(timeoutMs int) (int, error) {
	if timeoutMs < 0 {
		timeoutMs = -1
	}
	n, err := unix.EpollWait(r.epfd, r.events, timeoutMs)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return 0, nil // interrupted by signal, normal
		}
		return 0, fmt.Errorf("epoll wait: %w", err)
	}

	for i := 0; i < n; i++ {
		ev := r.events[i]
		fd := int(ev.Fd)

		// A callback earlier in this pass may have unregistered fd.
		cb, ok := r.callbacks[fd]
		if !ok {
			continue
		}

		var eventType FDEventType
		if ev.Events&(unix.EPOLLIN|unix.EPOLLRDHUP) != 0 {
			eventType |= EventRead
		}
		if ev.Events&unix.EPOLLOUT != 0 {
			eventType |= EventWrite
		}
		if ev.Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
			eventType |= EventError
		}
		cb(fd, eventType)
	}
	return n, nil
}

// Registered returns the number of watched descriptors.
func (r *epollReactor) Registered() int { return len(r.callbacks) }

// Close releases the epoll file descriptor.
func (r *epollReactor) Close() error {
	r.callbacks = make(map[int]FDCallback)
	return unix.Close(r.epfd)
}
