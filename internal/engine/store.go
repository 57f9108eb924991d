package engine

import "github.com/ds124wfegd/WB_L3/6/internal/entity"

// recordStore is the flat, de-duplicated buffer of comments fetched so far.
// Records keep their fetch order: the tree builder relies on it for stable
// sorting, so a record already present is never moved by a later page.
type recordStore struct {
	order []string
	byID  map[string]entity.Comment
}

func newRecordStore() *recordStore {
	return &recordStore{
		byID: make(map[string]entity.Comment),
	}
}

// Replace drops everything held and installs the given records (page 1 load).
func (s *recordStore) Replace(records []entity.Comment) {
	s.order = s.order[:0]
	s.byID = make(map[string]entity.Comment, len(records))
	s.Merge(records)
}

// Merge appends records that are not already held; records with a known id
// are skipped entirely, the first-fetched version stays authoritative until
// a mutation overwrites it.
func (s *recordStore) Merge(records []entity.Comment) {
	for _, rec := range records {
		if _, ok := s.byID[rec.ID]; ok {
			continue
		}
		rec.Children = nil
		rec.Depth = 0
		s.byID[rec.ID] = rec
		s.order = append(s.order, rec.ID)
	}
}

// Insert adds a single server-confirmed record.
func (s *recordStore) Insert(rec entity.Comment) {
	s.Merge([]entity.Comment{rec})
}

func (s *recordStore) Get(id string) (entity.Comment, bool) {
	rec, ok := s.byID[id]
	return rec, ok
}

// Update applies fn to the record in place. Unknown ids are a no-op, which is
// what makes late reconciliations against removed comments a safe discard.
func (s *recordStore) Update(id string, fn func(*entity.Comment)) bool {
	rec, ok := s.byID[id]
	if !ok {
		return false
	}
	fn(&rec)
	s.byID[id] = rec
	return true
}

// Remove drops exactly one record. Descendants stay in the store with a now
// dangling parent_id and surface as top-level until the next full reload,
// same as comments whose parent has not been paginated in yet.
func (s *recordStore) Remove(id string) bool {
	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)
	for i, held := range s.order {
		if held == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *recordStore) Len() int {
	return len(s.order)
}

// Snapshot returns the held records in fetch order.
func (s *recordStore) Snapshot() []entity.Comment {
	out := make([]entity.Comment, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}
