// seehuhn.de/go/pdfsplit - split two-page scans into single PDF pages
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package pdf

import "container/list"

// objectCache keeps the most recently used objects read from a file.
// Streams are never cached, since their data reader can only be used once.
type objectCache struct {
	capacity int
	order    *list.List // front is most recently used
	entries  map[Reference]*list.Element
}

type cached struct {
	ref Reference
	obj Object
}

func newObjectCache(capacity int) *objectCache {
	return &objectCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[Reference]*list.Element, capacity),
	}
}

// Put stores obj under ref, evicting the least recently used entry if the
// cache is full.
func (c *objectCache) Put(ref Reference, obj Object) {
	if c.capacity <= 0 {
		return
	}
	if _, isStream := obj.(*Stream); isStream {
		return
	}

	if elem, ok := c.entries[ref]; ok {
		elem.Value.(*cached).obj = obj
		c.order.MoveToFront(elem)
		return
	}

	c.entries[ref] = c.order.PushFront(&cached{ref: ref, obj: obj})
	if c.order.Len() > c.capacity {
		last := c.order.Back()
		c.order.Remove(last)
		delete(c.entries, last.Value.(*cached).ref)
	}
}

// Get returns the object stored under ref and marks it as recently used.
func (c *objectCache) Get(ref Reference) (Object, bool) {
	elem, ok := c.entries[ref]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*cached).obj, true
}

// Len returns the number of cached objects.
func (c *objectCache) Len() int {
	return c.order.Len()
}
