// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides the poll-mode event reactor used by the relay loop:
// an edge-triggered epoll implementation on Linux and a stub elsewhere.
package reactor
