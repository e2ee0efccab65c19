package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStoreRepo struct {
	active   []Store
	banded   map[int][]Store
	managers map[string]*Manager

	bandCalls int
	allCalls  int
}

func (m *mockStoreRepo) GetByID(_ context.Context, id string) (*Store, error) {
	for i := range m.active {
		if m.active[i].ID == id {
			return &m.active[i], nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockStoreRepo) ListActive(_ context.Context) ([]Store, error) {
	m.allCalls++
	return m.active, nil
}

func (m *mockStoreRepo) ListActiveByPincodeBand(_ context.Context, pin, _ int) ([]Store, error) {
	m.bandCalls++
	return m.banded[pin], nil
}

func (m *mockStoreRepo) GetManager(_ context.Context, id string) (*Manager, error) {
	mgr, ok := m.managers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return mgr, nil
}

func (m *mockStoreRepo) Update(_ context.Context, _ string, _ UpdateParams) (*Store, error) {
	return nil, ErrNotFound
}

func ptrF(f float64) *float64 { return &f }
func ptrS(s string) *string   { return &s }

func testStore(id string, pin int, lat, lng float64, managerID string) Store {
	s := Store{
		ID:        id,
		Name:      "Store " + id,
		Pincode:   pin,
		Latitude:  ptrF(lat),
		Longitude: ptrF(lng),
		IsActive:  true,
	}
	if managerID != "" {
		s.ManagerID = ptrS(managerID)
	}
	return s
}

func TestResolve_BandHit(t *testing.T) {
	near := testStore("s1", 560001, 12.97, 77.59, "m1")
	far := testStore("s2", 560004, 13.08, 80.27, "m2")
	repo := &mockStoreRepo{
		banded:   map[int][]Store{560002: {near, far}},
		managers: map[string]*Manager{"m1": {ID: "m1", Name: "Asha"}},
	}
	r := NewResolver(repo)

	res, err := r.Resolve(context.Background(), "560002", 12.95, 77.60)
	require.NoError(t, err)
	assert.Equal(t, "s1", res.Store.ID)
	assert.Equal(t, "m1", res.Manager.ID)
	assert.Equal(t, 0, repo.allCalls, "band hit must not scan all stores")
}

func TestResolve_FallbackToAllActive(t *testing.T) {
	national := testStore("s9", 400001, 19.07, 72.87, "m9")
	repo := &mockStoreRepo{
		active:   []Store{national},
		banded:   map[int][]Store{},
		managers: map[string]*Manager{"m9": {ID: "m9"}},
	}
	r := NewResolver(repo)

	// Nothing within ±5 of the customer pincode: resolution still succeeds
	// off the full active set.
	res, err := r.Resolve(context.Background(), "560002", 19.00, 72.80)
	require.NoError(t, err)
	assert.Equal(t, "s9", res.Store.ID)
	assert.Equal(t, 1, repo.bandCalls)
	assert.Equal(t, 1, repo.allCalls)
}

func TestResolve_NoPincodeUsesAllActive(t *testing.T) {
	s := testStore("s1", 560001, 12.97, 77.59, "m1")
	repo := &mockStoreRepo{
		active:   []Store{s},
		managers: map[string]*Manager{"m1": {ID: "m1"}},
	}
	r := NewResolver(repo)

	_, err := r.Resolve(context.Background(), "", 12.95, 77.60)
	require.NoError(t, err)
	assert.Equal(t, 0, repo.bandCalls)
}

func TestResolve_NonNumericPincode(t *testing.T) {
	r := NewResolver(&mockStoreRepo{})

	_, err := r.Resolve(context.Background(), "56OOO2", 12.95, 77.60)

	var pinErr *InvalidPincodeError
	require.ErrorAs(t, err, &pinErr)
	assert.Equal(t, "56OOO2", pinErr.Pincode)
}

func TestResolve_NoStoreAvailable(t *testing.T) {
	r := NewResolver(&mockStoreRepo{})

	_, err := r.Resolve(context.Background(), "", 12.95, 77.60)
	require.ErrorIs(t, err, ErrNoStoreAvailable)
}

func TestResolve_AllCandidatesLackCoordinates(t *testing.T) {
	s := Store{ID: "s1", Pincode: 560001, IsActive: true, ManagerID: ptrS("m1")}
	r := NewResolver(&mockStoreRepo{active: []Store{s}})

	_, err := r.Resolve(context.Background(), "", 12.95, 77.60)
	require.ErrorIs(t, err, ErrNoStoreAvailable)
}

func TestResolve_NoManagerAssigned(t *testing.T) {
	s := testStore("s1", 560001, 12.97, 77.59, "")
	r := NewResolver(&mockStoreRepo{active: []Store{s}})

	_, err := r.Resolve(context.Background(), "", 12.95, 77.60)
	require.ErrorIs(t, err, ErrNoManagerAssigned)
}
