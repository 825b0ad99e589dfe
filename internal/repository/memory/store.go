// Package memory хранилище в памяти с той же семантикой, что и Postgres-репозитории.
// Используется в тестах и при STORE_DRIVER=memory.
package memory

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/repository/base"
	"github.com/google/uuid"
)

// row хранит значение и порядковый номер вставки для стабильной сортировки
type row[T any] struct {
	v   T
	seq uint64
}

// Store общий на все коллекции мьютекс: условные обновления атомарны относительно друг друга
type Store struct {
	mu  sync.RWMutex
	seq uint64
	now func() time.Time

	users        map[uuid.UUID]*row[model.User]
	posts        map[uuid.UUID]*row[model.Post]
	applications map[uuid.UUID]*row[model.Application]
	bookings     map[uuid.UUID]*row[model.Booking]
	transactions map[uuid.UUID]*row[model.Transaction]
	ratings      map[uuid.UUID]*row[model.Rating]
}

func NewStore() *Store {
	return &Store{
		now:          func() time.Time { return time.Now().UTC() },
		users:        make(map[uuid.UUID]*row[model.User]),
		posts:        make(map[uuid.UUID]*row[model.Post]),
		applications: make(map[uuid.UUID]*row[model.Application]),
		bookings:     make(map[uuid.UUID]*row[model.Booking]),
		transactions: make(map[uuid.UUID]*row[model.Transaction]),
		ratings:      make(map[uuid.UUID]*row[model.Rating]),
	}
}

func (s *Store) Users() *UserRepository               { return &UserRepository{s: s} }
func (s *Store) Posts() *PostRepository               { return &PostRepository{s: s} }
func (s *Store) Applications() *ApplicationRepository { return &ApplicationRepository{s: s} }
func (s *Store) Bookings() *BookingRepository         { return &BookingRepository{s: s} }
func (s *Store) Transactions() *TransactionRepository { return &TransactionRepository{s: s} }
func (s *Store) Ratings() *RatingRepository           { return &RatingRepository{s: s} }

// nextSeq вызывается под s.mu
func (s *Store) nextSeq() uint64 {
	s.seq++
	return s.seq
}

func conditionFailed(what string) error {
	return fmt.Errorf("%s: %w", what, base.ErrConditionFailed)
}

// collect отбирает строки по условию, сортирует (новые первыми или по порядку вставки) и режет страницу
func collect[T any](rows map[uuid.UUID]*row[T], match func(*T) bool, newestFirst bool, page model.Page) []*row[T] {
	var out []*row[T]
	for _, r := range rows {
		if match == nil || match(&r.v) {
			out = append(out, r)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return out[i].seq > out[j].seq
		}
		return out[i].seq < out[j].seq
	})

	if page.Skip > 0 {
		if page.Skip >= len(out) {
			return nil
		}
		out = out[page.Skip:]
	}
	if page.Limit > 0 && page.Limit < len(out) {
		out = out[:page.Limit]
	}
	return out
}
