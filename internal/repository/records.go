package repository

import "github.com/google/uuid"

// records keeps entities keyed by id while remembering insertion order.
// Callers hold the owning repository's lock.
type records[T any] struct {
	order []string
	byID  map[string]T
}

func newRecords[T any]() records[T] {
	return records[T]{byID: make(map[string]T)}
}

func (r *records[T]) get(id string) (T, bool) {
	v, ok := r.byID[id]
	return v, ok
}

func (r *records[T]) put(id string, v T) {
	if _, exists := r.byID[id]; !exists {
		r.order = append(r.order, id)
	}
	r.byID[id] = v
}

func (r *records[T]) remove(id string) bool {
	if _, exists := r.byID[id]; !exists {
		return false
	}
	delete(r.byID, id)
	for i, candidate := range r.order {
		if candidate == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

func (r *records[T]) list() []T {
	out := make([]T, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// newID returns a uuid that is not yet used in r.
func (r *records[T]) newID() string {
	for {
		id := uuid.NewString()
		if _, taken := r.byID[id]; !taken {
			return id
		}
	}
}
