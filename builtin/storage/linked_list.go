// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"github.com/pkg/errors"

	"github.com/hayotensor/hypertensor/tensor"
)

// ListKey is a list element. The zero value marks the end of the list and cannot be stored.
type ListKey interface {
	comparable
	Key
}

// LinkedList is a doubly linked list in storage, iterated in insertion order.
type LinkedList[K ListKey] struct {
	head  *Raw[K]
	tail  *Raw[K]
	count *Raw[uint64]
	next  *Mapping[K, K]
	prev  *Mapping[K, K]
}

// NewLinkedList creates a list rooted at pos.
func NewLinkedList[K ListKey](ctx *Context, pos tensor.Bytes32) *LinkedList[K] {
	return &LinkedList[K]{
		head:  NewRaw[K](ctx, tensor.Blake2b(pos[:], []byte("head"))),
		tail:  NewRaw[K](ctx, tensor.Blake2b(pos[:], []byte("tail"))),
		count: NewRaw[uint64](ctx, tensor.Blake2b(pos[:], []byte("count"))),
		next:  NewMapping[K, K](ctx, tensor.Blake2b(pos[:], []byte("next"))),
		prev:  NewMapping[K, K](ctx, tensor.Blake2b(pos[:], []byte("prev"))),
	}
}

// Add appends an element to the end of the list.
func (l *LinkedList[K]) Add(item K) error {
	var zero K
	if item == zero {
		return errors.New("cannot add zero key")
	}
	oldTail, err := l.tail.Get()
	if err != nil {
		return err
	}

	if oldTail == zero {
		// the list is currently empty, set this entry to head & tail
		if err := l.head.Set(item); err != nil {
			return err
		}
	} else {
		if err := l.next.Set(oldTail, item); err != nil {
			return err
		}
		if err := l.prev.Set(item, oldTail); err != nil {
			return err
		}
	}
	if err := l.tail.Set(item); err != nil {
		return err
	}
	return l.addCount(1)
}

func (l *LinkedList[K]) addCount(delta int) error {
	n, err := l.count.Get()
	if err != nil {
		return err
	}
	if delta < 0 {
		if n == 0 {
			return errors.New("list count underflow")
		}
		n--
	} else {
		n++
	}
	return l.count.Set(n)
}

// Contains reports whether item is in the list.
func (l *LinkedList[K]) Contains(item K) (bool, error) {
	var zero K
	if item == zero {
		return false, nil
	}
	prev, err := l.prev.Get(item)
	if err != nil {
		return false, err
	}
	if prev != zero {
		return true, nil
	}
	head, err := l.head.Get()
	if err != nil {
		return false, err
	}
	return head == item, nil
}

// Remove unlinks an element from anywhere in the list. Removing an absent element is a no-op.
func (l *LinkedList[K]) Remove(item K) error {
	var zero K
	ok, err := l.Contains(item)
	if err != nil || !ok {
		return err
	}

	prev, err := l.prev.Get(item)
	if err != nil {
		return err
	}
	next, err := l.next.Get(item)
	if err != nil {
		return err
	}

	if prev != zero {
		if err := l.setOrDelete(l.next, prev, next); err != nil {
			return err
		}
	} else if err := l.head.Set(next); err != nil {
		return err
	}

	if next != zero {
		if err := l.setOrDelete(l.prev, next, prev); err != nil {
			return err
		}
	} else if err := l.tail.Set(prev); err != nil {
		return err
	}

	l.next.Delete(item)
	l.prev.Delete(item)

	return l.addCount(-1)
}

func (l *LinkedList[K]) setOrDelete(m *Mapping[K, K], key, value K) error {
	var zero K
	if value == zero {
		m.Delete(key)
		return nil
	}
	return m.Set(key, value)
}

// Len returns the number of elements.
func (l *LinkedList[K]) Len() (uint64, error) {
	return l.count.Get()
}

// Head returns the first element, or zero when empty.
func (l *LinkedList[K]) Head() (K, error) {
	return l.head.Get()
}

// Next returns the successor element, or zero at the end.
func (l *LinkedList[K]) Next(item K) (K, error) {
	return l.next.Get(item)
}

// Iter traverses the list in insertion order until completion or error.
// The callback may remove the element it is visiting.
func (l *LinkedList[K]) Iter(callback func(K) error) error {
	var zero K
	ptr, err := l.head.Get()
	if err != nil {
		return err
	}

	for ptr != zero {
		next, err := l.next.Get(ptr)
		if err != nil {
			return err
		}
		if err := callback(ptr); err != nil {
			return err
		}
		ptr = next
	}
	return nil
}

// All returns every element in order.
func (l *LinkedList[K]) All() ([]K, error) {
	var items []K
	err := l.Iter(func(k K) error {
		items = append(items, k)
		return nil
	})
	return items, err
}
