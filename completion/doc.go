// Package completion
// Author: momentics <momentics@gmail.com>
//
// CompletionClient for the relay: sends a prompt plus sampling parameters to an
// OpenAI-compatible completions endpoint and returns the first choice's text.
// Failures come back as *api.CompletionError (network, missing field, timeout,
// credential).
package completion
