package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-faster/errors"

	"github.com/meatkart/meatkart/internal/domain/geo"
)

// pincodeBand is the half-width of the postal-code pre-filter. Pincode
// proximity is only a cheap candidate filter; the actual pick always goes by
// great-circle distance, since adjacent pincodes are not necessarily close.
const pincodeBand = 5

// InvalidPincodeError indicates a postal code that could not be parsed.
type InvalidPincodeError struct {
	Pincode string
}

func (e *InvalidPincodeError) Error() string {
	return fmt.Sprintf("invalid pincode %q", e.Pincode)
}

// Resolution is the outcome of resolving a fulfilling store.
type Resolution struct {
	Store   Store
	Manager Manager
}

// Resolver selects the store (and its manager) that fulfills an order for a
// customer at a given location.
type Resolver struct {
	stores Repository
}

// NewResolver creates a Resolver backed by the given store repository.
func NewResolver(stores Repository) *Resolver {
	return &Resolver{stores: stores}
}

// Resolve picks the nearest active store for the customer coordinates.
//
// When a pincode is supplied, candidates are first narrowed to active stores
// within ±5 of it, ordered by pincode difference so that equidistant stores
// tie-break toward the closer postal code. An empty band, or no pincode at
// all, falls back to the full active-store set. The winner must have a
// manager assigned.
func (r *Resolver) Resolve(ctx context.Context, pincode string, lat, lng float64) (*Resolution, error) {
	var (
		candidates []Store
		err        error
	)

	if pincode != "" {
		pin, convErr := strconv.Atoi(pincode)
		if convErr != nil {
			return nil, &InvalidPincodeError{Pincode: pincode}
		}
		candidates, err = r.stores.ListActiveByPincodeBand(ctx, pin, pincodeBand)
		if err != nil {
			return nil, errors.Wrap(err, "list stores by pincode band")
		}
	}

	if len(candidates) == 0 {
		candidates, err = r.stores.ListActive(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "list active stores")
		}
	}

	points := make([]geo.Point, len(candidates))
	for i, s := range candidates {
		points[i] = geo.Point{Lat: s.Latitude, Lng: s.Longitude}
	}

	idx := geo.NearestIndex(points, lat, lng)
	if idx < 0 {
		return nil, ErrNoStoreAvailable
	}

	selected := candidates[idx]
	if selected.ManagerID == nil {
		return nil, ErrNoManagerAssigned
	}

	mgr, err := r.stores.GetManager(ctx, *selected.ManagerID)
	if err != nil {
		return nil, errors.Wrapf(err, "get manager %s", *selected.ManagerID)
	}

	return &Resolution{Store: selected, Manager: *mgr}, nil
}
