package codecs

// Descriptor is the geometry and flag block every stage exposes, per the
// codec descriptor data model: name, correcting/padding flags, block
// geometry, and the reentrancy flag. Non-reentrant stages (FTFInterleaving,
// SyncPointInserter, Interleaving) must not be shared between dispatchers
// without external locking; of these, FTFInterleaving is the one that
// keeps mutable state across calls.
type Descriptor struct {
	Name              string
	IsErrorCorrecting bool
	PreZeroPadData    bool
	DecodedBlockSize  int
	EncodedBlockSize  int
	DecodedSymbolSize int
	EncodedSymbolSize int
	DecodedDataSize   int
	EncodedDataSize   int
	Reentrant         bool
}

// Stage is the interface every pipeline stage implements: a name and
// geometry descriptor, a capacity-propagation function, session reset, and
// the inverse Encode/Decode operations.
type Stage interface {
	// Descriptor returns the stage's current geometry and flags.
	Descriptor() Descriptor

	// InitCapacity derives decoded/encoded data-level sizes from an
	// encoded-buffer capacity, propagating bottom-up from the final
	// stage as the dispatcher builds its chain.
	InitCapacity(encodedCapacity int) error

	// Reset clears any per-session state (the FTF delay line and preload
	// counter, the header stage's last decoded header); stateless stages
	// implement it as a no-op.
	Reset()

	// Encode rewrites buf in place (by value return), growing or
	// shrinking it and possibly changing its item width.
	Encode(buf Buffer) (Buffer, error)

	// Decode is Encode's inverse. Erasure positions (if any) aid FEC
	// stages; stats accumulates the per-call counters.
	Decode(buf Buffer, erasures []int, stats *DecodeStats) (Buffer, error)
}
