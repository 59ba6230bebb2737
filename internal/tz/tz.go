// Package tz resolves the IANA timezone of a coordinate and converts UTC
// instants into that zone's wall-clock time.
package tz

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	_ "time/tzdata" // zone rules must not depend on the host's zoneinfo

	"github.com/ringsaturn/tzf"
)

// ErrUnresolved is returned when no timezone polygon contains a coordinate,
// typically a point in international waters.
var ErrUnresolved = errors.New("timezone unresolved")

// Locator is a point-in-polygon timezone index. An empty name means the
// coordinate is not covered.
type Locator interface {
	GetTimezoneName(lng, lat float64) string
}

// Resolver maps coordinates to timezone ids and caches loaded locations.
// It is safe for concurrent use.
type Resolver struct {
	locator Locator

	mu        sync.RWMutex
	locations map[string]*time.Location
}

// NewResolver wraps an existing locator.
func NewResolver(locator Locator) *Resolver {
	return &Resolver{
		locator:   locator,
		locations: make(map[string]*time.Location),
	}
}

// NewDefaultResolver builds a resolver backed by the embedded tzf polygons.
func NewDefaultResolver() (*Resolver, error) {
	finder, err := tzf.NewDefaultFinder()
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone index: %w", err)
	}
	return NewResolver(finder), nil
}

// nauticalPrefix marks the fixed-offset zones the index assigns to
// international waters.
const nauticalPrefix = "Etc/"

// Resolve returns the timezone id for the coordinate or ErrUnresolved.
// Nautical Etc/GMT±N zones count as unresolved.
func (r *Resolver) Resolve(lat, lon float64) (string, error) {
	name := r.locator.GetTimezoneName(lon, lat)
	if name == "" || strings.HasPrefix(name, nauticalPrefix) {
		return "", fmt.Errorf("%w: lat=%f lon=%f", ErrUnresolved, lat, lon)
	}
	return name, nil
}

// ToLocal treats ts as a UTC instant and returns it in the wall-clock time of
// the zone, DST rules included.
func (r *Resolver) ToLocal(ts time.Time, zoneID string) (time.Time, error) {
	loc, err := r.location(zoneID)
	if err != nil {
		return time.Time{}, err
	}
	return ts.UTC().In(loc), nil
}

func (r *Resolver) location(zoneID string) (*time.Location, error) {
	r.mu.RLock()
	loc, ok := r.locations[zoneID]
	r.mu.RUnlock()
	if ok {
		return loc, nil
	}

	loc, err := time.LoadLocation(zoneID)
	if err != nil {
		return nil, fmt.Errorf("failed to load location %q: %w", zoneID, err)
	}

	r.mu.Lock()
	r.locations[zoneID] = loc
	r.mu.Unlock()

	return loc, nil
}
