// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Batch is the list of calls included in one block.
type Batch struct {
	Block uint32  `yaml:"block"`
	Calls []*Call `yaml:"calls"`
}

// Schedule maps blocks to the calls they include.
type Schedule struct {
	batches map[uint32][]*Call
	last    uint32
}

// DecodeSchedule reads a YAML list of batches. Batches naming the same block are concatenated.
func DecodeSchedule(r io.Reader) (*Schedule, error) {
	var batches []Batch
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&batches); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decode schedule")
	}
	s := &Schedule{batches: make(map[uint32][]*Call)}
	for _, b := range batches {
		if b.Block == 0 {
			return nil, errors.New("schedule: block 0 is genesis")
		}
		for i, c := range b.Calls {
			if c == nil || c.Op == "" {
				return nil, errors.Errorf("schedule: block %d call %d has no op", b.Block, i)
			}
		}
		s.batches[b.Block] = append(s.batches[b.Block], b.Calls...)
		if b.Block > s.last {
			s.last = b.Block
		}
	}
	return s, nil
}

// LoadSchedule reads a schedule file.
func LoadSchedule(path string) (*Schedule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeSchedule(f)
}

// At returns the calls for block.
func (s *Schedule) At(block uint32) []*Call {
	if s == nil {
		return nil
	}
	return s.batches[block]
}

// Last returns the highest scheduled block.
func (s *Schedule) Last() uint32 {
	if s == nil {
		return 0
	}
	return s.last
}

// Blocks returns the scheduled blocks in ascending order.
func (s *Schedule) Blocks() []uint32 {
	if s == nil {
		return nil
	}
	blocks := make([]uint32, 0, len(s.batches))
	for b := range s.batches {
		blocks = append(blocks, b)
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i] < blocks[j] })
	return blocks
}
