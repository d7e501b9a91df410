// Package control
// Author: momentics <momentics@gmail.com>
//
// Operator control plane for ncrelay.
//
// Provides:
//   - State: the interpretation Mode and the completion Params, threaded
//     explicitly through the console and the reactor loop
//   - Console: the line-oriented command interpreter for the control channel
//   - Metrics: counters and named probes reported by the "stats" command
//
// State and Console belong to the loop goroutine; Metrics may be read from anywhere.
package control
