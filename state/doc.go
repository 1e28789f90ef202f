// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state holds the hashed account and storage model.
// It follows the flow as bellow:
//
//	[ application key ] -> HashKey -> [ hashed key ]
//	                                       |
//	                           [ overlay (HashedPostState) ]
//	                                       |
//	                              IntoSorted (hashed order)
//	                                       |
//	                     [ commitment: trie root + hashed-state writes ]
//
// Accounts are stored under their hashed key with a compact codec, while the
// account trie holds the Ethereum leaf encoding which also carries the storage root.
package state
