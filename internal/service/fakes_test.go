package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Freeeeeet/tutorbook/internal/model"
	"github.com/Freeeeeet/tutorbook/internal/repository"
)

// memDB хранилище в памяти с семантикой репозиториев на pgx.
// Транзакции сериализуются одним мьютексом и откатываются снимком при ошибке.
type memDB struct {
	mu       sync.Mutex
	nextID   int64
	slots    map[int64]model.AvailabilitySlot
	bookings map[int64]model.Booking
	sessions map[int64]model.Session
	rates    map[int64]int64
	names    map[int64]string

	// failNames имитирует недоступный справочник пользователей
	failNames bool
}

type txKey struct{}

func newMemDB() *memDB {
	return &memDB{
		slots:    make(map[int64]model.AvailabilitySlot),
		bookings: make(map[int64]model.Booking),
		sessions: make(map[int64]model.Session),
		rates:    make(map[int64]int64),
		names:    make(map[int64]string),
	}
}

func inTx(ctx context.Context) bool {
	return ctx.Value(txKey{}) != nil
}

func (db *memDB) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	slots, bookings, sessions := cloneMap(db.slots), cloneMap(db.bookings), cloneMap(db.sessions)

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		db.slots, db.bookings, db.sessions = slots, bookings, sessions
		return err
	}

	return nil
}

// run выполняет fn под мьютексом, если вызов не внутри транзакции
func (db *memDB) run(ctx context.Context, fn func()) {
	if inTx(ctx) {
		fn()
		return
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	fn()
}

func (db *memDB) id() int64 {
	db.nextID++
	return db.nextID
}

func cloneMap[T any](m map[int64]T) map[int64]T {
	out := make(map[int64]T, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func paginate[T any](items []T, f model.BookingFilter) ([]T, int) {
	total := len(items)
	from := f.Offset()
	if from > total {
		from = total
	}
	to := from + f.PageSize
	if to > total {
		to = total
	}
	return items[from:to], total
}

func inFilterWindow(f model.BookingFilter, start, end time.Time) bool {
	if f.StartDate != nil && end.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && start.After(*f.EndDate) {
		return false
	}
	return true
}

func statusMatches(f model.BookingFilter, status model.BookingStatus) bool {
	if f.Status == nil {
		return true
	}
	want, ok := model.ParseBookingStatus(*f.Status)
	return !ok || want == status
}

func skillMatches(f model.BookingFilter, skillID *int64) bool {
	return f.SkillID == nil || (skillID != nil && *skillID == *f.SkillID)
}

type memSlots struct{ db *memDB }

func (s memSlots) Create(ctx context.Context, slot *model.AvailabilitySlot) error {
	var err error
	s.db.run(ctx, func() {
		for _, existing := range s.db.slots {
			if existing.TutorID == slot.TutorID && existing.Window().Overlaps(slot.Window()) {
				err = model.ErrSlotOverlap
				return
			}
		}
		slot.ID = s.db.id()
		slot.CreatedAt = time.Now().UTC()
		s.db.slots[slot.ID] = *slot
	})
	return err
}

func (s memSlots) GetByID(ctx context.Context, id int64) (*model.AvailabilitySlot, error) {
	var out *model.AvailabilitySlot
	s.db.run(ctx, func() {
		if slot, ok := s.db.slots[id]; ok {
			out = &slot
		}
	})
	return out, nil
}

func (s memSlots) FindOverlapping(ctx context.Context, tutorID int64, w model.Window) (*model.AvailabilitySlot, error) {
	var out *model.AvailabilitySlot
	s.db.run(ctx, func() {
		for _, slot := range s.db.slots {
			if slot.TutorID == tutorID && slot.Window().Overlaps(w) {
				slot := slot
				out = &slot
				return
			}
		}
	})
	return out, nil
}

func (s memSlots) ListByTutor(ctx context.Context, tutorID int64, f model.BookingFilter) ([]*model.AvailabilitySlot, int, error) {
	return s.list(ctx, f, func(slot model.AvailabilitySlot) bool {
		if slot.TutorID != tutorID {
			return false
		}
		if f.Status != nil {
			if status, ok := model.ParseSlotStatus(*f.Status); ok && (status == model.SlotStatusBooked) != slot.IsBooked {
				return false
			}
		}
		return true
	})
}

func (s memSlots) ListAvailable(ctx context.Context, tutorID int64, now, from time.Time, to *time.Time, f model.BookingFilter) ([]*model.AvailabilitySlot, int, error) {
	return s.list(ctx, f, func(slot model.AvailabilitySlot) bool {
		return slot.TutorID == tutorID &&
			!slot.IsBooked &&
			!slot.StartTime.Before(now) &&
			slot.EndTime.After(from) &&
			(to == nil || slot.StartTime.Before(*to))
	})
}

func (s memSlots) list(ctx context.Context, f model.BookingFilter, match func(model.AvailabilitySlot) bool) ([]*model.AvailabilitySlot, int, error) {
	var out []*model.AvailabilitySlot
	s.db.run(ctx, func() {
		for _, slot := range s.db.slots {
			if match(slot) && inFilterWindow(f, slot.StartTime, slot.EndTime) {
				slot := slot
				out = append(out, &slot)
			}
		}
	})

	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.After(out[j].StartTime)
		}
		return out[i].ID > out[j].ID
	})

	page, total := paginate(out, f)
	return page, total, nil
}

func (s memSlots) setBooked(ctx context.Context, slotID int64, from, to bool) bool {
	var changed bool
	s.db.run(ctx, func() {
		slot, ok := s.db.slots[slotID]
		if !ok || slot.IsBooked != from {
			return
		}
		slot.IsBooked = to
		s.db.slots[slotID] = slot
		changed = true
	})
	return changed
}

func (s memSlots) MarkBooked(ctx context.Context, slotID int64) (bool, error) {
	return s.setBooked(ctx, slotID, false, true), nil
}

func (s memSlots) Release(ctx context.Context, slotID int64) (bool, error) {
	return s.setBooked(ctx, slotID, true, false), nil
}

func (s memSlots) DeleteFree(ctx context.Context, slotID int64) (bool, error) {
	var deleted bool
	s.db.run(ctx, func() {
		slot, ok := s.db.slots[slotID]
		if !ok || slot.IsBooked {
			return
		}
		delete(s.db.slots, slotID)
		deleted = true
	})
	return deleted, nil
}

// LockTutor транзакция уже держит общий мьютекс
func (s memSlots) LockTutor(ctx context.Context, tutorID int64) error {
	if !inTx(ctx) {
		return errors.New("lock tutor: transaction required")
	}
	return nil
}

type memBookings struct{ db *memDB }

func (b memBookings) Create(ctx context.Context, booking *model.Booking) error {
	b.db.run(ctx, func() {
		now := time.Now().UTC()
		booking.ID = b.db.id()
		booking.CreatedAt = now
		booking.UpdatedAt = now
		stored := *booking
		stored.StudentName, stored.TutorName = "", ""
		b.db.bookings[booking.ID] = stored
	})
	return nil
}

func (b memBookings) GetByID(ctx context.Context, id int64) (*model.Booking, error) {
	var out *model.Booking
	b.db.run(ctx, func() {
		if booking, ok := b.db.bookings[id]; ok {
			out = &booking
		}
	})
	return out, nil
}

func (b memBookings) GetByIDForUpdate(ctx context.Context, id int64) (*model.Booking, error) {
	if !inTx(ctx) {
		return nil, errors.New("get booking for update: transaction required")
	}
	return b.GetByID(ctx, id)
}

func (b memBookings) GetByOrderCode(ctx context.Context, orderCode string) (*model.Booking, error) {
	var out *model.Booking
	b.db.run(ctx, func() {
		for _, booking := range b.db.bookings {
			if booking.OrderCode == orderCode {
				booking := booking
				out = &booking
				return
			}
		}
	})
	return out, nil
}

func (b memBookings) HasOverlap(ctx context.Context, tutorID int64, w model.Window) (bool, error) {
	var busy bool
	b.db.run(ctx, func() {
		for _, booking := range b.db.bookings {
			if booking.TutorID == tutorID && booking.Status.HoldsSlot() && booking.Window().Overlaps(w) {
				busy = true
				return
			}
		}
	})
	return busy, nil
}

func (b memBookings) update(ctx context.Context, id int64, fn func(*model.Booking)) error {
	var err error
	b.db.run(ctx, func() {
		booking, ok := b.db.bookings[id]
		if !ok {
			err = model.ErrBookingNotFound
			return
		}
		fn(&booking)
		booking.UpdatedAt = time.Now().UTC()
		b.db.bookings[id] = booking
	})
	return err
}

func (b memBookings) UpdateStatus(ctx context.Context, id int64, status model.BookingStatus) error {
	return b.update(ctx, id, func(booking *model.Booking) { booking.Status = status })
}

func (b memBookings) UpdatePaymentStatus(ctx context.Context, id int64, status model.PaymentStatus) error {
	return b.update(ctx, id, func(booking *model.Booking) { booking.PaymentStatus = status })
}

func (b memBookings) SetPrice(ctx context.Context, id int64, basePrice, serviceFee int64) error {
	return b.update(ctx, id, func(booking *model.Booking) {
		booking.BasePrice = &basePrice
		booking.ServiceFee = &serviceFee
	})
}

func (b memBookings) List(ctx context.Context, q repository.BookingQuery) ([]*model.Booking, int, error) {
	var out []*model.Booking
	b.db.run(ctx, func() {
		for _, booking := range b.db.bookings {
			switch {
			case q.StudentID != nil && booking.StudentID != *q.StudentID:
				continue
			case q.TutorID != nil && booking.TutorID != *q.TutorID:
				continue
			case q.ParticipantID != nil && booking.StudentID != *q.ParticipantID && booking.TutorID != *q.ParticipantID:
				continue
			case q.StartsAfter != nil && booking.StartTime.Before(*q.StartsAfter):
				continue
			case q.ActiveOnly && booking.Status != model.BookingStatusPending && booking.Status != model.BookingStatusConfirmed:
				continue
			case !statusMatches(q.Filter, booking.Status), !skillMatches(q.Filter, booking.SkillID):
				continue
			case !inFilterWindow(q.Filter, booking.StartTime, booking.EndTime):
				continue
			}
			booking := booking
			out = append(out, &booking)
		}
	})

	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.After(out[j].StartTime)
		}
		return out[i].ID > out[j].ID
	})

	page, total := paginate(out, q.Filter)
	return page, total, nil
}

type memSessions struct{ db *memDB }

func (s memSessions) Create(ctx context.Context, session *model.Session) error {
	var err error
	s.db.run(ctx, func() {
		for _, existing := range s.db.sessions {
			if existing.BookingID == session.BookingID {
				err = model.ErrSessionExists
				return
			}
		}
		now := time.Now().UTC()
		session.ID = s.db.id()
		session.CreatedAt = now
		session.UpdatedAt = now
		s.db.sessions[session.ID] = *session
	})
	return err
}

func (s memSessions) GetByID(ctx context.Context, id int64) (*model.Session, error) {
	var out *model.Session
	s.db.run(ctx, func() {
		if session, ok := s.db.sessions[id]; ok {
			out = &session
		}
	})
	return out, nil
}

func (s memSessions) GetByIDForUpdate(ctx context.Context, id int64) (*model.Session, error) {
	if !inTx(ctx) {
		return nil, errors.New("get session for update: transaction required")
	}
	return s.GetByID(ctx, id)
}

func (s memSessions) GetByBookingID(ctx context.Context, bookingID int64) (*model.Session, error) {
	var out *model.Session
	s.db.run(ctx, func() {
		for _, session := range s.db.sessions {
			if session.BookingID == bookingID {
				session := session
				out = &session
				return
			}
		}
	})
	return out, nil
}

func (s memSessions) Update(ctx context.Context, session *model.Session) error {
	var err error
	s.db.run(ctx, func() {
		if _, ok := s.db.sessions[session.ID]; !ok {
			err = model.ErrSessionNotFound
			return
		}
		session.UpdatedAt = time.Now().UTC()
		s.db.sessions[session.ID] = *session
	})
	return err
}

func (s memSessions) ListByUser(ctx context.Context, userID int64, isTutor bool, f model.BookingFilter) ([]*model.Session, int, error) {
	var out []*model.Session
	s.db.run(ctx, func() {
		for _, session := range s.db.sessions {
			booking := s.db.bookings[session.BookingID]
			owner := booking.StudentID
			if isTutor {
				owner = booking.TutorID
			}
			if owner != userID ||
				!statusMatches(f, booking.Status) ||
				!skillMatches(f, booking.SkillID) ||
				!inFilterWindow(f, session.StartTime, session.EndTime) {
				continue
			}
			session := session
			out = append(out, &session)
		}
	})

	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.After(out[j].StartTime)
		}
		return out[i].ID > out[j].ID
	})

	page, total := paginate(out, f)
	return page, total, nil
}

type memUsers struct{ db *memDB }

func (u memUsers) DisplayName(ctx context.Context, userID int64) (string, error) {
	u.db.mu.Lock()
	defer u.db.mu.Unlock()

	if u.db.failNames {
		return "", errors.New("user directory unavailable")
	}
	name, ok := u.db.names[userID]
	if !ok {
		return "", fmt.Errorf("%w: id %d", model.ErrUserNotFound, userID)
	}
	return name, nil
}

func (u memUsers) HourlyRate(ctx context.Context, tutorID int64) (int64, error) {
	var (
		rate int64
		ok   bool
	)
	u.db.run(ctx, func() { rate, ok = u.db.rates[tutorID] })
	if !ok {
		return 0, fmt.Errorf("%w: tutor profile %d", model.ErrNotFound, tutorID)
	}
	return rate, nil
}

// fakeLock межпроцессная блокировка в памяти; held хранит токен владельца
type fakeLock struct {
	mu     sync.Mutex
	held   map[string]string
	err    error
	tokens int
}

func newFakeLock() *fakeLock {
	return &fakeLock{held: make(map[string]string)}
}

func (l *fakeLock) Lock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return "", false, l.err
	}
	if _, busy := l.held[key]; busy {
		return "", false, nil
	}
	l.tokens++
	token := fmt.Sprintf("token-%d", l.tokens)
	l.held[key] = token
	return token, true, nil
}

func (l *fakeLock) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] != token {
		return errors.New("lock is not held")
	}
	delete(l.held, key)
	return nil
}
