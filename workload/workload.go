// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package workload replays JSONL operation files as workload steps.
//
// Each line is one operation. A compute_root operation ends a step, and the
// operations after the last compute_root form a final step.
package workload

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"

	"github.com/vechain/benchtop/backend"
)

// Operation names.
const (
	OpCreateAccount = "create_account"
	OpDeleteAccount = "delete_account"
	OpSetCode       = "set_code"
	OpSetStorage    = "set_storage"
	OpWipeStorage   = "wipe_storage"
	OpRead          = "read"
	OpReadStorage   = "read_storage"
	OpComputeRoot   = "compute_root"
)

const maxLineSize = 1 << 20

// Operation represents a single state operation in the workload.
type Operation struct {
	Op      string `json:"op"`
	Address string `json:"address,omitempty"`
	Balance string `json:"balance,omitempty"`
	Nonce   uint64 `json:"nonce,omitempty"`
	Code    string `json:"code,omitempty"`
	Slot    string `json:"slot,omitempty"`
	Value   string `json:"value,omitempty"`
}

// Summary contains statistics about a loaded workload.
type Summary struct {
	Operations int `json:"operations"`
	Steps      int `json:"steps"`
	Accounts   int `json:"accounts"`
	Slots      int `json:"slots"`
	Reads      int `json:"reads"`
	Skipped    int `json:"skipped"`
}

// op is a decoded operation.
type op struct {
	kind    string
	address []byte
	slot    []byte
	value   []byte
}

// Replay is a loaded workload. It implements backend.Workload.
type Replay struct {
	steps   [][]op
	next    int
	summary Summary
}

var _ backend.Workload = (*Replay)(nil)

// Load reads all operations from r.
func Load(r io.Reader) (*Replay, error) {
	return LoadLimit(r, 0)
}

// LoadLimit reads at most maxOps operations from r. A non-positive maxOps reads all.
func LoadLimit(r io.Reader, maxOps int) (*Replay, error) {
	var (
		rp      Replay
		step    []op
		scanner = bufio.NewScanner(r)
		line    int
	)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		if maxOps > 0 && rp.summary.Operations >= maxOps {
			break
		}
		var o Operation
		if err := json.Unmarshal(scanner.Bytes(), &o); err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		decoded, err := decode(&o)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		rp.summary.Operations++

		switch decoded.kind {
		case OpComputeRoot:
			rp.steps = append(rp.steps, step)
			step = nil
			continue
		case OpSetCode:
			rp.summary.Skipped++
			continue
		case OpCreateAccount:
			rp.summary.Accounts++
		case OpSetStorage:
			rp.summary.Slots++
		case OpRead, OpReadStorage:
			rp.summary.Reads++
		}
		step = append(step, decoded)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read workload")
	}
	if len(step) > 0 {
		rp.steps = append(rp.steps, step)
	}
	rp.summary.Steps = len(rp.steps)
	return &rp, nil
}

func decode(o *Operation) (op, error) {
	d := op{kind: o.Op}

	var err error
	switch o.Op {
	case OpComputeRoot:
		return d, nil
	case OpCreateAccount, OpDeleteAccount, OpSetCode, OpWipeStorage, OpRead:
	case OpSetStorage, OpReadStorage:
		if d.slot, err = hexutil.Decode(o.Slot); err != nil {
			return d, errors.Wrap(err, "slot")
		}
	default:
		return d, errors.Errorf("unknown operation: %q", o.Op)
	}

	if d.address, err = hexutil.Decode(o.Address); err != nil {
		return d, errors.Wrap(err, "address")
	}
	switch o.Op {
	case OpCreateAccount:
		if d.value, err = decodeValue(o.Balance); err != nil {
			return d, errors.Wrap(err, "balance")
		}
	case OpSetStorage:
		if d.value, err = decodeValue(o.Value); err != nil {
			return d, errors.Wrap(err, "value")
		}
	}
	return d, nil
}

// decodeValue decodes a hex big-endian value of at most 32 bytes. An empty string is zero.
func decodeValue(s string) ([]byte, error) {
	if s == "" {
		return []byte{}, nil
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, err
	}
	if len(b) > 32 {
		return nil, errors.Errorf("value exceeds 32 bytes: %d", len(b))
	}
	return b, nil
}

// Summary returns statistics of the loaded operations.
func (rp *Replay) Summary() Summary {
	return rp.summary
}

// Steps returns the count of steps.
func (rp *Replay) Steps() int {
	return len(rp.steps)
}

// Done returns whether all steps have been run.
func (rp *Replay) Done() bool {
	return rp.next >= len(rp.steps)
}

// RunStep runs the next step against tx. It does nothing once all steps are done.
// Storage operations are skipped if tx has no storage access.
func (rp *Replay) RunStep(tx backend.Transaction) {
	if rp.Done() {
		return
	}
	ops := rp.steps[rp.next]
	rp.next++

	stx, _ := tx.(backend.StorageTransaction)
	for _, o := range ops {
		switch o.kind {
		case OpCreateAccount:
			tx.Write(o.address, o.value)
		case OpDeleteAccount:
			tx.Write(o.address, nil)
		case OpRead:
			v, _ := tx.Read(o.address)
			tx.NoteRead(o.address, v)
		case OpSetStorage:
			if stx != nil {
				stx.WriteStorage(o.address, o.slot, o.value)
			}
		case OpWipeStorage:
			if stx != nil {
				stx.WipeStorage(o.address)
			}
		case OpReadStorage:
			if stx != nil {
				stx.ReadStorage(o.address, o.slot)
				stx.NoteStorageRead(o.address, o.slot)
			}
		}
	}
}
