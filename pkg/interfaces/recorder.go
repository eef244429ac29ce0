package interfaces

import "roomcast/pkg/types"

// Recorder receives a copy of every stored room message for out-of-band
// archival. Implementations must not block the caller.
type Recorder interface {
	Record(msg *types.Message)
}
