// File: pool/default.go
// Author: momentics <momentics@gmail.com>

package pool

// DefaultBufferSize is the per-connection receive capacity.
const DefaultBufferSize = 4096
