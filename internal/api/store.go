package api

import (
	"sync"
	"time"

	"github.com/samcharles93/mtnkit/internal/convert"
)

type conversionRecord struct {
	Result    *convert.Result
	Output    []byte
	Err       string
	CreatedAt time.Time
}

// ConversionStore keeps recent conversion outputs in memory so clients can
// fetch them again by ID. The oldest record is evicted once max is reached.
type ConversionStore struct {
	mu      sync.Mutex
	max     int
	order   []string
	records map[string]*conversionRecord
}

// DefaultStoreSize bounds the number of retained conversions.
const DefaultStoreSize = 64

func NewConversionStore(size int) *ConversionStore {
	if size <= 0 {
		size = DefaultStoreSize
	}
	return &ConversionStore{
		max:     size,
		records: make(map[string]*conversionRecord),
	}
}

func (s *ConversionStore) Put(id string, rec *conversionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		s.order = append(s.order, id)
	}
	s.records[id] = rec
	for len(s.order) > s.max {
		delete(s.records, s.order[0])
		s.order = s.order[1:]
	}
}

func (s *ConversionStore) Get(id string) (*conversionRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	return rec, ok
}

func (s *ConversionStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return false
	}
	delete(s.records, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *ConversionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
