package model

import "slices"

// ZoneList holds the persisted zone ids in display order. The zero value is
// ready to use. Version increases on every change so views can skip redraws.
type ZoneList struct {
	ids     []string
	version uint64
}

func NewZoneList() *ZoneList { return &ZoneList{} }

// Add appends id if it is not already listed.
func (l *ZoneList) Add(id string) {
	if l == nil || id == "" || slices.Contains(l.ids, id) {
		return
	}
	l.ids = append(l.ids, id)
	l.version++
}

// Remove drops id if present.
func (l *ZoneList) Remove(id string) {
	if l == nil {
		return
	}
	i := slices.Index(l.ids, id)
	if i < 0 {
		return
	}
	l.ids = slices.Delete(l.ids, i, i+1)
	l.version++
}

// Replace sets the list to ids, as reported by a status poll.
func (l *ZoneList) Replace(ids []string) {
	if l == nil || slices.Equal(l.ids, ids) {
		return
	}
	l.ids = slices.Clone(ids)
	l.version++
}

// IDs returns a copy of the list (never nil for a non-nil list).
func (l *ZoneList) IDs() []string {
	if l == nil {
		return nil
	}
	return append([]string{}, l.ids...)
}

func (l *ZoneList) Version() uint64 {
	if l == nil {
		return 0
	}
	return l.version
}
