package collab

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/refboard/refboard/internal/document"
	"github.com/refboard/refboard/internal/influence"
)

var ErrReferenceNotFound = errors.New("reference not found")

// DocumentState holds the authoritative board for a room
type DocumentState struct {
	mu        sync.RWMutex
	board     *document.Board
	serverSeq int64
	dirty     bool
}

// NewDocumentState creates a new document state from an initial board
func NewDocumentState(board *document.Board) *DocumentState {
	return &DocumentState{board: board}
}

// Snapshot returns a deep copy of the current board.
func (ds *DocumentState) Snapshot() *document.Board {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.snapshotLocked()
}

// Checkpoint returns a deep copy of the board together with the sequence
// number it reflects.
func (ds *DocumentState) Checkpoint() (*document.Board, int64) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.snapshotLocked(), ds.serverSeq
}

func (ds *DocumentState) snapshotLocked() *document.Board {
	data, err := json.Marshal(ds.board)
	if err != nil {
		return nil
	}
	var out document.Board
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return &out
}

// ServerSeq returns the sequence number of the last applied operation.
func (ds *DocumentState) ServerSeq() int64 {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.serverSeq
}

// Dirty reports whether operations were applied since the last MarkSaved.
func (ds *DocumentState) Dirty() bool {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.dirty
}

// MarkSaved clears the dirty flag if no operation landed after seq.
func (ds *DocumentState) MarkSaved(seq int64) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.serverSeq == seq {
		ds.dirty = false
	}
}

// ApplyOperation applies an operation to the board and returns the server sequence
func (ds *DocumentState) ApplyOperation(op Operation) (int64, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if err := ds.applyOperationLocked(op); err != nil {
		return 0, err
	}

	ds.serverSeq++
	ds.dirty = true
	ds.board.Version++
	ds.board.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	return ds.serverSeq, nil
}

// applyOperationLocked applies the operation without locking (caller must hold lock)
func (ds *DocumentState) applyOperationLocked(op Operation) error {
	switch op.Type {
	case OpReferenceAdd:
		return ds.applyReferenceAdd(op)
	case OpNodeMove:
		return ds.applyNodeMove(op)
	case OpNodeRemove:
		return ds.applyNodeRemove(op)
	case OpStrengthSet:
		return ds.applyStrengthSet(op)
	case OpStrengthClear:
		return ds.applyStrengthClear(op)
	case OpMainSet:
		return ds.applyMainSet(op)
	case OpBoardRename:
		return ds.applyBoardRename(op)
	default:
		return fmt.Errorf("unknown operation type: %s", op.Type)
	}
}

func (ds *DocumentState) reference(id string) (*document.Reference, error) {
	ref := ds.board.Reference(id)
	if ref == nil {
		return nil, fmt.Errorf("%w: %s", ErrReferenceNotFound, id)
	}
	return ref, nil
}

func (ds *DocumentState) applyReferenceAdd(op Operation) error {
	if op.Reference == nil || op.Reference.ID == "" {
		return errors.New("missing reference")
	}
	if ds.board.Index(op.Reference.ID) >= 0 {
		return fmt.Errorf("reference already exists: %s", op.Reference.ID)
	}

	ref := *op.Reference
	if ref.Strength.Source == "" {
		ref.Strength = influence.Derived()
	}
	ds.board.References = append(ds.board.References, ref)
	return nil
}

func (ds *DocumentState) applyNodeMove(op Operation) error {
	if op.Canvas == nil && op.Orbital == nil {
		return errors.New("node.move needs a canvas or orbital position")
	}
	ref, err := ds.reference(op.ReferenceID)
	if err != nil {
		return err
	}

	if op.Canvas != nil {
		p := *op.Canvas
		ref.Canvas = &p
	}
	if op.Orbital != nil {
		p := *op.Orbital
		ref.Orbital = &p
	}
	return nil
}

func (ds *DocumentState) applyNodeRemove(op Operation) error {
	if !ds.board.RemoveReference(op.ReferenceID) {
		return fmt.Errorf("%w: %s", ErrReferenceNotFound, op.ReferenceID)
	}
	return nil
}

func (ds *DocumentState) applyStrengthSet(op Operation) error {
	if op.Strength == nil {
		return errors.New("strength.set needs a strength")
	}
	ref, err := ds.reference(op.ReferenceID)
	if err != nil {
		return err
	}
	ref.Strength = influence.Manual(*op.Strength)
	return nil
}

func (ds *DocumentState) applyStrengthClear(op Operation) error {
	ref, err := ds.reference(op.ReferenceID)
	if err != nil {
		return err
	}
	ref.Strength = influence.Derived()
	return nil
}

// An empty reference id clears the main image.
func (ds *DocumentState) applyMainSet(op Operation) error {
	if op.ReferenceID == "" {
		ds.board.MainImage = nil
		return nil
	}
	id := op.ReferenceID
	ds.board.MainImage = &id
	return nil
}

func (ds *DocumentState) applyBoardRename(op Operation) error {
	if op.Name == "" {
		return errors.New("board name is empty")
	}
	ds.board.Name = op.Name
	return nil
}

// GetServerTimestamp returns the current server timestamp
func GetServerTimestamp() int64 {
	return time.Now().UnixMilli()
}
