// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"encoding/binary"
	"io"
	"sort"

	"github.com/pkg/errors"

	"github.com/hayotensor/hypertensor/kv"
	"github.com/hayotensor/hypertensor/tensor"
)

type change struct {
	key   []byte
	value []byte
}

// Stage abstracts the pending changes of a state.
type Stage struct {
	changes []change
}

func newStage(m map[stateKey][]byte) *Stage {
	changes := make([]change, 0, len(m))
	for k, v := range m {
		changes = append(changes, change{k.encode(), v})
	}
	sort.Slice(changes, func(i, j int) bool {
		return bytes.Compare(changes[i].key, changes[j].key) < 0
	})
	return &Stage{changes}
}

// Len returns the number of changed keys.
func (s *Stage) Len() int {
	return len(s.changes)
}

// Hash computes a digest over the ordered changes.
func (s *Stage) Hash() tensor.Bytes32 {
	return tensor.Blake2bFn(func(w io.Writer) {
		for _, c := range s.changes {
			w.Write(c.key)
			var n [4]byte
			binary.BigEndian.PutUint32(n[:], uint32(len(c.value)))
			w.Write(n[:])
			w.Write(c.value)
		}
	})
}

// Commit writes the changes into the bulk and flushes it.
func (s *Stage) Commit(bulk kv.Bulk) error {
	for _, c := range s.changes {
		var err error
		if len(c.value) == 0 {
			err = bulk.Delete(c.key)
		} else {
			err = bulk.Put(c.key, c.value)
		}
		if err != nil {
			return errors.Wrap(err, "stage")
		}
	}
	return errors.Wrap(bulk.Write(), "commit stage")
}
