package queue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"cutline/internal/domain"
)

type MockSalonGetter struct {
	mock.Mock
}

func (m *MockSalonGetter) GetByID(ctx context.Context, id string) (*domain.Salon, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Salon), args.Error(1)
}

type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserDirectory) OwnersBySalonID(ctx context.Context, salonID string) ([]domain.User, error) {
	args := m.Called(ctx, salonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserDirectory) BarbersByOwner(ctx context.Context, ownerID string) ([]domain.User, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func TestResolveOwners_ExplicitOwnerField(t *testing.T) {
	salons := new(MockSalonGetter)
	users := new(MockUserDirectory)
	r := NewResolver(salons, users)

	salons.On("GetByID", mock.Anything, "salon-1").Return(&domain.Salon{ID: "salon-1", OwnerID: "owner-1"}, nil)
	users.On("GetByID", mock.Anything, "owner-1").Return(&domain.User{ID: "owner-1", Role: domain.RoleOwner}, nil)

	owners, step, err := r.ResolveOwners(context.Background(), "salon-1")

	assert.NoError(t, err)
	assert.Equal(t, "salon_owner_field", step)
	assert.Len(t, owners, 1)
	assert.Equal(t, "owner-1", owners[0].ID)
	users.AssertNotCalled(t, "OwnersBySalonID", mock.Anything, mock.Anything)
}

func TestResolveOwners_SalonIDAsOwnerID(t *testing.T) {
	salons := new(MockSalonGetter)
	users := new(MockUserDirectory)
	r := NewResolver(salons, users)

	// legacy single-doc salon: no owner field, the salon id is the
	// owner's user id
	salons.On("GetByID", mock.Anything, "owner-7").Return(&domain.Salon{ID: "owner-7"}, nil)
	users.On("GetByID", mock.Anything, "owner-7").Return(&domain.User{ID: "owner-7", Role: domain.RoleOwner}, nil)

	owners, step, err := r.ResolveOwners(context.Background(), "owner-7")

	assert.NoError(t, err)
	assert.Equal(t, "salon_id_as_owner", step)
	assert.Len(t, owners, 1)
}

func TestResolveOwners_MissingSalonRowFallsThrough(t *testing.T) {
	salons := new(MockSalonGetter)
	users := new(MockUserDirectory)
	r := NewResolver(salons, users)

	// legacy single-doc salon with no salon row at all: the lookup
	// errors with record-not-found, but the salon id still resolves
	// as the owner's user id
	salons.On("GetByID", mock.Anything, "owner-9").Return(nil, gorm.ErrRecordNotFound)
	users.On("GetByID", mock.Anything, "owner-9").Return(&domain.User{ID: "owner-9", Role: domain.RoleOwner}, nil)

	owners, step, err := r.ResolveOwners(context.Background(), "owner-9")

	assert.NoError(t, err)
	assert.Equal(t, "salon_id_as_owner", step)
	assert.Len(t, owners, 1)
	assert.Equal(t, "owner-9", owners[0].ID)
}

func TestResolveOwners_LegacySalonQuery(t *testing.T) {
	salons := new(MockSalonGetter)
	users := new(MockUserDirectory)
	r := NewResolver(salons, users)

	salons.On("GetByID", mock.Anything, "salon-2").Return(&domain.Salon{ID: "salon-2"}, nil)
	users.On("GetByID", mock.Anything, "salon-2").Return(nil, nil)
	users.On("OwnersBySalonID", mock.Anything, "salon-2").Return([]domain.User{
		{ID: "owner-a", Role: domain.RoleOwner},
		{ID: "owner-b", Role: domain.RoleOwner},
	}, nil)

	owners, step, err := r.ResolveOwners(context.Background(), "salon-2")

	assert.NoError(t, err)
	assert.Equal(t, "legacy_salon_query", step)
	assert.Len(t, owners, 2)
}

func TestResolveOwners_WrongRoleFallsThrough(t *testing.T) {
	salons := new(MockSalonGetter)
	users := new(MockUserDirectory)
	r := NewResolver(salons, users)

	// owner field points at a customer account; the chain keeps going
	salons.On("GetByID", mock.Anything, "salon-3").Return(&domain.Salon{ID: "salon-3", OwnerID: "cust-1"}, nil)
	users.On("GetByID", mock.Anything, "cust-1").Return(&domain.User{ID: "cust-1", Role: domain.RoleCustomer}, nil)
	users.On("GetByID", mock.Anything, "salon-3").Return(nil, nil)
	users.On("OwnersBySalonID", mock.Anything, "salon-3").Return([]domain.User{}, nil)

	owners, step, err := r.ResolveOwners(context.Background(), "salon-3")

	assert.NoError(t, err)
	assert.Empty(t, step)
	assert.Empty(t, owners)
}

func TestResolveBarber_CaseInsensitiveMatch(t *testing.T) {
	salons := new(MockSalonGetter)
	users := new(MockUserDirectory)
	r := NewResolver(salons, users)

	salons.On("GetByID", mock.Anything, "salon-1").Return(&domain.Salon{ID: "salon-1", OwnerID: "owner-1"}, nil)
	users.On("BarbersByOwner", mock.Anything, "owner-1").Return([]domain.User{
		{ID: "barber-1", Name: "  Aidos  ", Role: domain.RoleBarber},
		{ID: "barber-2", Name: "Marat", Role: domain.RoleBarber},
	}, nil)

	b := &domain.Booking{SalonID: "salon-1", BarberName: "aidos"}
	barber, err := r.ResolveBarber(context.Background(), "salon-1", b)

	assert.NoError(t, err)
	assert.NotNil(t, barber)
	assert.Equal(t, "barber-1", barber.ID)
}

func TestResolveBarber_AnySentinelSkipsLookup(t *testing.T) {
	salons := new(MockSalonGetter)
	users := new(MockUserDirectory)
	r := NewResolver(salons, users)

	b := &domain.Booking{SalonID: "salon-1", BarberName: "Any"}
	barber, err := r.ResolveBarber(context.Background(), "salon-1", b)

	assert.NoError(t, err)
	assert.Nil(t, barber)
	salons.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	users.AssertNotCalled(t, "BarbersByOwner", mock.Anything, mock.Anything)
}

func TestResolveBarber_NoMatchReturnsNil(t *testing.T) {
	salons := new(MockSalonGetter)
	users := new(MockUserDirectory)
	r := NewResolver(salons, users)

	salons.On("GetByID", mock.Anything, "salon-1").Return(&domain.Salon{ID: "salon-1", OwnerID: "owner-1"}, nil)
	users.On("BarbersByOwner", mock.Anything, "owner-1").Return([]domain.User{
		{ID: "barber-2", Name: "Marat", Role: domain.RoleBarber},
	}, nil)

	b := &domain.Booking{SalonID: "salon-1", BarberName: "Aidos"}
	barber, err := r.ResolveBarber(context.Background(), "salon-1", b)

	assert.NoError(t, err)
	assert.Nil(t, barber)
}
