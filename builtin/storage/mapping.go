// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/hayotensor/hypertensor/tensor"
)

// Mapping is a key/value storage abstraction for builtin modules, similar to the mapping in Solidity.
// Absent entries decode to the zero value; pointer values are allocated.
type Mapping[K Key, V any] struct {
	context *Context
	basePos tensor.Bytes32
}

func NewMapping[K Key, V any](context *Context, pos tensor.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

func (m *Mapping[K, V]) position(key K) tensor.Bytes32 {
	return tensor.Blake2b(key.Bytes(), m.basePos.Bytes())
}

func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	err = m.context.state.DecodeStorage(m.context.address, m.position(key), func(raw []byte) error {
		if t := reflect.TypeOf(value); t != nil && t.Kind() == reflect.Ptr {
			value = reflect.New(t.Elem()).Interface().(V)
		}
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

// Has reports whether a value was stored under key.
func (m *Mapping[K, V]) Has(key K) (bool, error) {
	raw, err := m.context.state.GetRawStorage(m.context.address, m.position(key))
	if err != nil {
		return false, err
	}
	return len(raw) > 0, nil
}

func (m *Mapping[K, V]) Set(key K, value V) error {
	return m.context.state.EncodeStorage(m.context.address, m.position(key), func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

// Delete clears the entry.
func (m *Mapping[K, V]) Delete(key K) {
	m.context.state.SetRawStorage(m.context.address, m.position(key), nil)
}

// Raw is a single storage slot holding one value.
type Raw[V any] struct {
	mapping *Mapping[String, V]
}

func NewRaw[V any](context *Context, pos tensor.Bytes32) *Raw[V] {
	return &Raw[V]{mapping: NewMapping[String, V](context, pos)}
}

func (r *Raw[V]) Get() (V, error) {
	return r.mapping.Get("")
}

func (r *Raw[V]) Set(value V) error {
	return r.mapping.Set("", value)
}
