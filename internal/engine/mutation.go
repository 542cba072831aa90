package engine

import "time"

// MutationKind identifies what a mutation does to the index.
type MutationKind int

const (
	// MutationReindex parses the file at Path and commits the result.
	MutationReindex MutationKind = iota
	// MutationRemove retracts the document with Key.
	MutationRemove
	// MutationRescan re-walks the whole tree and reconciles the index
	// against it. Used at startup recovery and after watch-channel
	// failure.
	MutationRescan
	// MutationClear drops every document and posting.
	MutationClear
	// MutationApplyBatch applies one debounced watcher batch, with
	// every removal and reindex committing under a single write-lock
	// section. This is what keeps a rename's two halves from being
	// separately visible.
	MutationApplyBatch
)

// String returns a human-readable representation of the kind.
func (k MutationKind) String() string {
	switch k {
	case MutationReindex:
		return "REINDEX"
	case MutationRemove:
		return "REMOVE"
	case MutationRescan:
		return "RESCAN"
	case MutationClear:
		return "CLEAR"
	case MutationApplyBatch:
		return "BATCH"
	default:
		return "UNKNOWN"
	}
}

// MutationState tracks a mutation through the coordinator.
// Pending -> Parsing -> Applying -> Committed, or Rejected on parse
// failure, which leaves prior index state untouched.
type MutationState int

const (
	StatePending MutationState = iota
	StateParsing
	StateApplying
	StateCommitted
	StateRejected
)

// String returns a human-readable representation of the state.
func (s MutationState) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateParsing:
		return "PARSING"
	case StateApplying:
		return "APPLYING"
	case StateCommitted:
		return "COMMITTED"
	case StateRejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// Mutation is one ordered index-mutation request. All mutation sources,
// watcher events and administrative operations alike, go through the
// same stream so they never race each other.
type Mutation struct {
	Kind MutationKind

	// Path is the root-relative file path for Reindex.
	Path string

	// Key is the document key for Remove.
	Key string

	// Ops carries the grouped entries of an ApplyBatch mutation.
	Ops []BatchOp

	// EnqueuedAt is when the mutation entered the stream.
	EnqueuedAt time.Time

	// reply, when non-nil, receives the terminal result exactly once.
	// Used by synchronous administrative operations.
	reply chan error
}

// Reindex builds a reindex mutation for a root-relative path.
func Reindex(path string) Mutation {
	return Mutation{Kind: MutationReindex, Path: path, EnqueuedAt: time.Now()}
}

// Remove builds a removal mutation for a document key.
func Remove(key string) Mutation {
	return Mutation{Kind: MutationRemove, Key: key, EnqueuedAt: time.Now()}
}

// Rescan builds a full re-scan mutation.
func Rescan() Mutation {
	return Mutation{Kind: MutationRescan, EnqueuedAt: time.Now()}
}

// Clear builds a clear-index mutation.
func Clear() Mutation {
	return Mutation{Kind: MutationClear, EnqueuedAt: time.Now()}
}

// BatchOp is one entry of a grouped batch mutation: either a reindex
// of Key or, when Remove is set, its retraction.
type BatchOp struct {
	Remove bool
	Key    string
}

// ApplyBatch builds a grouped mutation from a debounced watcher batch.
func ApplyBatch(ops []BatchOp) Mutation {
	return Mutation{Kind: MutationApplyBatch, Ops: ops, EnqueuedAt: time.Now()}
}

func (m *Mutation) finish(err error) {
	if m.reply != nil {
		m.reply <- err
		m.reply = nil
	}
}
