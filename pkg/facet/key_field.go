package facet

import (
	"log"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
)

// KeyField links every distinct string value of a field to the items having it.
type KeyField struct {
	Name string
	Keys map[string]*roaring.Bitmap
}

func EmptyKeyField(name string) *KeyField {
	return &KeyField{
		Name: name,
		Keys: map[string]*roaring.Bitmap{},
	}
}

// AddValueLink links the item to the value. Values separated by ';' are
// indexed as separate keys.
func (f *KeyField) AddValueLink(value string, id uint32) bool {
	if value == "" {
		return false
	}
	if strings.Contains(value, "&lt;") || strings.Contains(value, "&gt;") {
		log.Printf("KeyField %s: skipping escaped value %q", f.Name, value)
		return false
	}
	added := false
	for _, partData := range strings.Split(value, ";") {
		part := strings.TrimSpace(partData)
		if part == "" {
			continue
		}
		if k, ok := f.Keys[part]; ok {
			k.Add(id)
		} else {
			f.Keys[part] = roaring.BitmapOf(id)
		}
		added = true
	}
	return added
}

func (f *KeyField) RemoveValueLink(value string, id uint32) {
	for _, partData := range strings.Split(value, ";") {
		part := strings.TrimSpace(partData)
		if k, ok := f.Keys[part]; ok {
			k.Remove(id)
			if k.IsEmpty() {
				delete(f.Keys, part)
			}
		}
	}
}

// Match returns the items having any of the values.
func (f *KeyField) Match(values ...string) *roaring.Bitmap {
	bms := make([]*roaring.Bitmap, 0, len(values))
	for _, v := range values {
		if ids, ok := f.Keys[v]; ok {
			bms = append(bms, ids)
		}
	}
	if len(bms) == 0 {
		return roaring.New()
	}
	return roaring.FastOr(bms...)
}

// MatchAll returns the items having every one of the values.
func (f *KeyField) MatchAll(values ...string) *roaring.Bitmap {
	var ret *roaring.Bitmap
	for _, v := range values {
		ids, ok := f.Keys[v]
		if !ok {
			return roaring.New()
		}
		if ret == nil {
			ret = ids.Clone()
		} else {
			ret.And(ids)
		}
	}
	if ret == nil {
		return roaring.New()
	}
	return ret
}

// Counts returns the number of items in filter per value, values without
// any item are left out. A nil filter counts every item.
func (f *KeyField) Counts(filter *roaring.Bitmap) map[string]int {
	ret := make(map[string]int)
	for value, ids := range f.Keys {
		var c uint64
		if filter == nil {
			c = ids.GetCardinality()
		} else {
			c = ids.AndCardinality(filter)
		}
		if c > 0 {
			ret[value] = int(c)
		}
	}
	return ret
}

func (f *KeyField) TotalCount() int {
	total := 0
	for _, ids := range f.Keys {
		total += int(ids.GetCardinality())
	}
	return total
}

func (f *KeyField) UniqueCount() int {
	return len(f.Keys)
}
