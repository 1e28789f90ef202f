// Copyright 2014 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package trie

import (
	"errors"
	"fmt"

	"github.com/vechain/benchtop/common"
)

// MissingNodeError is returned by the trie functions (Get, Update, Delete, Prove)
// in the case where a trie node is not present in the node reader. It contains
// information necessary for retrieving the missing node.
type MissingNodeError struct {
	Path []byte         // hex-encoded path to the missing node
	Hash common.Bytes32 // hash of the missing node
	Err  error          // concrete error for missing trie node
}

// Unwrap returns the concrete error for missing trie node which
// allows us for further analysis outside.
func (err *MissingNodeError) Unwrap() error {
	return err.Err
}

func (err *MissingNodeError) Error() string {
	return fmt.Sprintf("missing trie node %v (path %x) %v", err.Hash, err.Path, err.Err)
}

var (
	// ErrInvalidNode is wrapped by MissingNodeError when a loaded node can't be decoded.
	ErrInvalidNode = errors.New("invalid trie node")

	errNoReader = errors.New("no node reader")
)
