// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"encoding/binary"
)

// Key is anything that can be hashed into a slot.
type Key interface {
	Bytes() []byte
}

// Uint32 is a numeric key such as an epoch.
type Uint32 uint32

func (u Uint32) Bytes() []byte {
	return binary.BigEndian.AppendUint32(nil, uint32(u))
}

// String is a text key such as a subnet path.
type String string

func (s String) Bytes() []byte {
	return []byte(s)
}

// Pair composes two keys. The first key is length prefixed so pairs never collide.
type Pair[A Key, B Key] struct {
	First  A
	Second B
}

func NewPair[A Key, B Key](a A, b B) Pair[A, B] {
	return Pair[A, B]{a, b}
}

func (p Pair[A, B]) Bytes() []byte {
	a := p.First.Bytes()
	out := binary.BigEndian.AppendUint16(make([]byte, 0, 2+len(a)+32), uint16(len(a)))
	out = append(out, a...)
	return append(out, p.Second.Bytes()...)
}
