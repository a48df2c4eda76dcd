package blob

import memorystore "arcflow/internal/infra/blob/memory"

// NewMemory returns a Store kept in process memory.
func NewMemory() Store { return memorystore.New() }
