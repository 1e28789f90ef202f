// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package backend

import (
	"github.com/vechain/benchtop/commitment"
	"github.com/vechain/benchtop/common"
	"github.com/vechain/benchtop/state"
	"github.com/vechain/benchtop/timer"
)

// Span names recorded by Execute.
const (
	SpanWorkload       = "workload"
	SpanRead           = "read"
	SpanCommitAndProve = "commit_and_prove"
)

// Outcome describes a committed workload step.
type Outcome struct {
	Root        common.Bytes32
	Proof       *commitment.MultiProof // nil if proving failed
	TrieEntries int                    // trie node entries written or deleted
	Reads       int
	Writes      int
}

// Execute runs one step of w against a fresh transaction and commits it.
//
// Nothing is persisted unless the commit reaches StageCommitted. A failure after that
// leaves the committed state in place, and the outcome is returned along with the error.
// The timer t may be nil.
func (d *DB) Execute(t *timer.Timer, w Workload) (*Outcome, error) {
	d.lock.Lock()
	defer d.lock.Unlock()

	defer t.RecordSpan(SpanWorkload).End()

	snap := d.db.NewTx()
	defer snap.Release()

	tx := newReadTx(t, snap)
	defer tx.close()

	w.RunStep(tx)
	if tx.err != nil {
		metricCommits().AddWithLabel(1, map[string]string{"status": "failed"})
		return nil, newPipelineError(StageOpen, tx.err)
	}

	defer t.RecordSpan(SpanCommitAndProve).End()

	outcome := &Outcome{Reads: tx.nread, Writes: tx.nwrite}
	sorted := tx.overlay.IntoSorted()

	root, updates, err := commitment.OverlayRoot(snap, sorted)
	if err != nil {
		metricCommits().AddWithLabel(1, map[string]string{"status": "failed"})
		return nil, newPipelineError(StageOpen, err)
	}
	outcome.Root = root

	// a step without writes leaves the store as is
	if !tx.overlay.IsEmpty() {
		if stage, err := d.write(updates, sorted, outcome); err != nil {
			metricCommits().AddWithLabel(1, map[string]string{"status": "failed"})
			return nil, newPipelineError(stage, err)
		}
	}

	post := d.db.NewTx()
	defer post.Release()

	proof, err := d.prove(post, tx.targets())
	if err != nil {
		logger.Warn("failed to prove committed state", "root", root, "err", err)
		metricCommits().AddWithLabel(1, map[string]string{"status": "unproved"})
		return outcome, &PipelineError{StageCommitted, ErrProofGeneration, err}
	}
	outcome.Proof = proof
	metricCommits().AddWithLabel(1, map[string]string{"status": "proved"})

	logger.Debug("committed workload step",
		"root", root,
		"reads", outcome.Reads,
		"writes", outcome.Writes,
		"entries", outcome.TrieEntries,
		"proofNodes", proof.NodeCount(),
	)
	return outcome, nil
}

// write persists the trie updates and the hashed state atomically.
// It returns the last stage reached.
func (d *DB) write(updates *commitment.TrieUpdates, sorted *state.HashedPostStateSorted, outcome *Outcome) (Stage, error) {
	w := d.db.NewTxMut()

	n, err := d.writeTrie(w, updates)
	if err != nil {
		w.Rollback()
		return StageRootComputed, err
	}
	outcome.TrieEntries = n

	if err := d.writeState(w, sorted); err != nil {
		w.Rollback()
		return StageRootComputed, err
	}
	if err := d.commit(w); err != nil {
		w.Rollback()
		return StageHashedStateWritten, err
	}
	return StageCommitted, nil
}
