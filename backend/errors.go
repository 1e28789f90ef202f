// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package backend

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/vechain/benchtop/muxdb"
	"github.com/vechain/benchtop/state"
	"github.com/vechain/benchtop/trie"
)

var (
	// ErrStoreIO is the kind of failures of the persistent store.
	ErrStoreIO = errors.New("store i/o failure")
	// ErrEncodingMismatch is the kind of failures to decode stored data.
	ErrEncodingMismatch = errors.New("encoding mismatch")
	// ErrProofGeneration is the kind of failures to prove committed state.
	ErrProofGeneration = errors.New("proof generation failure")
)

// Stage is a stage of the commit pipeline.
type Stage int

// The stages in the order a commit passes them.
const (
	StageOpen Stage = iota
	StageRootComputed
	StageHashedStateWritten
	StageCommitted
	StageProved
)

func (s Stage) String() string {
	switch s {
	case StageOpen:
		return "open"
	case StageRootComputed:
		return "root-computed"
	case StageHashedStateWritten:
		return "hashed-state-written"
	case StageCommitted:
		return "committed"
	case StageProved:
		return "proved"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// PipelineError is returned by DB.Execute. Stage is the last stage the commit reached.
// Both Kind and Err match errors.Is.
type PipelineError struct {
	Stage Stage
	Kind  error
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%v at stage %v: %v", e.Kind, e.Stage, e.Err)
}

// Unwrap returns the kind and the cause.
func (e *PipelineError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Cause returns the underlying error.
func (e *PipelineError) Cause() error {
	return e.Err
}

func newPipelineError(stage Stage, err error) *PipelineError {
	return &PipelineError{stage, classify(err), err}
}

func classify(err error) error {
	switch {
	case errors.Is(err, state.ErrInvalidEncoding),
		errors.Is(err, trie.ErrInvalidNode),
		errors.Is(err, muxdb.ErrNodeHashMismatch),
		errors.Is(err, muxdb.ErrSchemaMismatch):
		return ErrEncodingMismatch
	default:
		return ErrStoreIO
	}
}
