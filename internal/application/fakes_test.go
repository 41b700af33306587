package application

import (
	"context"
	"errors"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/petmily/service-reservation/internal/blobstore"
	"github.com/petmily/service-reservation/internal/domain/member"
	petDomain "github.com/petmily/service-reservation/internal/domain/pet"
	resDomain "github.com/petmily/service-reservation/internal/domain/reservation"
	"github.com/petmily/service-reservation/internal/platform/domain"
	"github.com/petmily/service-reservation/internal/platform/kafka"
)

var errBoom = errors.New("boom")

// --- members ---

type fakeDirectory struct {
	members map[uuid.UUID]*member.Member
}

func newFakeDirectory(ms ...*member.Member) *fakeDirectory {
	d := &fakeDirectory{members: make(map[uuid.UUID]*member.Member)}
	for _, m := range ms {
		d.members[m.ID] = m
	}
	return d
}

func (d *fakeDirectory) FindByID(_ context.Context, id uuid.UUID) (*member.Member, error) {
	m, ok := d.members[id]
	if !ok {
		return nil, domain.NewNotFoundError("Member", id.String())
	}
	return m, nil
}

func (d *fakeDirectory) ListPetsitters(_ context.Context) ([]*member.Member, error) {
	var out []*member.Member
	for _, m := range d.members {
		if m.IsPetsitter() {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func newMember(name string, role member.Role) *member.Member {
	return &member.Member{ID: uuid.New(), Name: name, Role: role, CreatedAt: time.Now().UTC()}
}

// --- pets ---

type fakePetRepo struct {
	pets      map[uuid.UUID]petDomain.Pet
	updateErr error
}

func newFakePetRepo() *fakePetRepo {
	return &fakePetRepo{pets: make(map[uuid.UUID]petDomain.Pet)}
}

func (r *fakePetRepo) Transaction(_ context.Context, fn func(repo petDomain.PetRepository) error) error {
	snapshot := maps.Clone(r.pets)
	if err := fn(r); err != nil {
		r.pets = snapshot
		return err
	}
	return nil
}

func (r *fakePetRepo) FindByID(_ context.Context, id uuid.UUID) (*petDomain.Pet, error) {
	p, ok := r.pets[id]
	if !ok {
		return nil, domain.NewNotFoundError("Pet", id.String())
	}
	return &p, nil
}

func (r *fakePetRepo) FindByOwnerID(_ context.Context, ownerID uuid.UUID) ([]*petDomain.Pet, error) {
	var out []*petDomain.Pet
	for _, p := range r.pets {
		if p.OwnerID() == ownerID {
			cp := p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakePetRepo) Save(_ context.Context, p *petDomain.Pet) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.pets[p.ID()] = *p
	return nil
}

func (r *fakePetRepo) Update(_ context.Context, p *petDomain.Pet) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	stored, ok := r.pets[p.ID()]
	if !ok || stored.Version() != p.Version()-1 {
		return domain.NewConflictError("pet was modified concurrently")
	}
	r.pets[p.ID()] = *p
	return nil
}

func (r *fakePetRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.pets, id)
	return nil
}

// stored returns the persisted copy of a pet.
func (r *fakePetRepo) stored(id uuid.UUID) *petDomain.Pet {
	p := r.pets[id]
	return &p
}

// --- reservations ---

type fakeReservationRepo struct {
	mu           sync.Mutex
	reservations map[uuid.UUID]resDomain.Reservation
	locked       []uuid.UUID
	updateErr    error
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{reservations: make(map[uuid.UUID]resDomain.Reservation)}
}

func (r *fakeReservationRepo) Transaction(_ context.Context, fn func(repo resDomain.ReservationRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot := maps.Clone(r.reservations)
	if err := fn(r); err != nil {
		r.reservations = snapshot
		return err
	}
	return nil
}

func (r *fakeReservationRepo) LockPetsitter(_ context.Context, petsitterID uuid.UUID) error {
	r.locked = append(r.locked, petsitterID)
	return nil
}

func (r *fakeReservationRepo) FindByID(_ context.Context, id uuid.UUID) (*resDomain.Reservation, error) {
	res, ok := r.reservations[id]
	if !ok {
		return nil, domain.NewNotFoundError("Reservation", id.String())
	}
	return &res, nil
}

func (r *fakeReservationRepo) FindByMemberID(_ context.Context, memberID uuid.UUID, filter resDomain.Filter, page, limit int) ([]*resDomain.Reservation, int64, error) {
	return r.page(func(res *resDomain.Reservation) bool {
		return res.MemberID() == memberID && filter.Matches(res)
	}, page, limit)
}

func (r *fakeReservationRepo) FindByPetsitterID(_ context.Context, petsitterID uuid.UUID, filter resDomain.Filter, page, limit int) ([]*resDomain.Reservation, int64, error) {
	return r.page(func(res *resDomain.Reservation) bool {
		return res.PetsitterID() == petsitterID && filter.Matches(res)
	}, page, limit)
}

func (r *fakeReservationRepo) FindActiveOverlapping(_ context.Context, petsitterID *uuid.UUID, window resDomain.TimeRange) ([]*resDomain.Reservation, error) {
	return r.all(func(res *resDomain.Reservation) bool {
		if petsitterID != nil && res.PetsitterID() != *petsitterID {
			return false
		}
		return res.IsActive() && res.Period().Overlaps(window)
	}), nil
}

func (r *fakeReservationRepo) FindSchedule(_ context.Context, petsitterID uuid.UUID, from time.Time) ([]*resDomain.Reservation, error) {
	out := r.all(func(res *resDomain.Reservation) bool {
		return res.PetsitterID() == petsitterID && res.IsActive() && res.Period().End.After(from)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Period().Start.Before(out[j].Period().Start) })
	return out, nil
}

func (r *fakeReservationRepo) ListAll(_ context.Context, page, limit int) ([]*resDomain.Reservation, int64, error) {
	return r.page(func(*resDomain.Reservation) bool { return true }, page, limit)
}

func (r *fakeReservationRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, res := range r.reservations {
		counts[res.Status().String()]++
	}
	return counts, nil
}

func (r *fakeReservationRepo) Save(_ context.Context, res *resDomain.Reservation) error {
	r.reservations[res.ID()] = *res
	return nil
}

func (r *fakeReservationRepo) Update(_ context.Context, res *resDomain.Reservation) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	stored, ok := r.reservations[res.ID()]
	if !ok || stored.Version() != res.Version()-1 {
		return domain.NewConflictError("reservation was modified concurrently")
	}
	r.reservations[res.ID()] = *res
	return nil
}

func (r *fakeReservationRepo) all(match func(*resDomain.Reservation) bool) []*resDomain.Reservation {
	var out []*resDomain.Reservation
	for _, res := range r.reservations {
		cp := res
		if match(&cp) {
			out = append(out, &cp)
		}
	}
	return out
}

func (r *fakeReservationRepo) page(match func(*resDomain.Reservation) bool, page, limit int) ([]*resDomain.Reservation, int64, error) {
	out := r.all(match)
	sort.Slice(out, func(i, j int) bool { return out[i].Period().Start.After(out[j].Period().Start) })
	total := int64(len(out))
	start := (page - 1) * limit
	if start >= len(out) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (r *fakeReservationRepo) stored(id uuid.UUID) *resDomain.Reservation {
	res := r.reservations[id]
	return &res
}

// --- blobs ---

type fakeBlobStore struct {
	ops       []string
	blobs     map[string][]byte
	putErr    error
	deleteErr error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: make(map[string][]byte)}
}

func (b *fakeBlobStore) Put(_ context.Context, u blobstore.Upload) (string, error) {
	if b.putErr != nil {
		b.ops = append(b.ops, "put-failed")
		return "", b.putErr
	}
	ref := "pets/" + uuid.NewString()
	b.blobs[ref] = u.Data
	b.ops = append(b.ops, "put:"+ref)
	return ref, nil
}

func (b *fakeBlobStore) Delete(_ context.Context, ref string) error {
	if b.deleteErr != nil {
		b.ops = append(b.ops, "delete-failed:"+ref)
		return b.deleteErr
	}
	delete(b.blobs, ref)
	b.ops = append(b.ops, "delete:"+ref)
	return nil
}

func (b *fakeBlobStore) URL(ref string) string {
	if ref == "" {
		return ""
	}
	return "https://cdn.test/" + ref
}

// --- events ---

type publishedEvent struct {
	topic string
	event kafka.CloudEvent
}

type fakePublisher struct {
	events []publishedEvent
	err    error
}

func (p *fakePublisher) PublishEvent(_ context.Context, topic string, event kafka.CloudEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{topic: topic, event: event})
	return nil
}

func (p *fakePublisher) types() []string {
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.event.Type
	}
	return out
}

var testLogger = zap.NewNop()
