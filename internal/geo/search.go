package geo

import (
	"context"
	"fmt"
	"sort"

	"fieldtrack/internal/domain/entities"
)

// Candidate is a geo-tagged entity offered to the proximity engine by a
// CandidateSource. Meta carries caller-defined display data through the
// search untouched.
type Candidate struct {
	ID    string
	Owner string
	Point entities.GeoPoint
	Meta  any
}

// CandidateSource is the coarse range query behind the pre-filter. An
// implementation returns at least every candidate whose location lies inside
// the bounds; returning extra candidates outside the bounds is fine (they are
// discarded by the exact distance filter), dropping one inside is not.
// Entities with no location must not be offered at all.
type CandidateSource interface {
	InBounds(ctx context.Context, b Bounds) ([]Candidate, error)
}

// Query is the input to a proximity search. Center given as a point, radius
// in kilometres. Owner, when set, restricts results to candidates with that
// owner. Limit, when positive, truncates the result list.
type Query struct {
	Center   entities.GeoPoint
	RadiusKm float64
	Owner    string
	Limit    int
}

// Match is one proximity result: a candidate paired with its exact
// great-circle distance from the query center.
type Match struct {
	ID         string  `json:"id"`
	Meta       any     `json:"meta,omitempty"`
	DistanceKm float64 `json:"distance_km"`
}

// FindNearby returns the candidates within q.RadiusKm of q.Center, nearest
// first.
//
// Two-phase strategy, coarse filter → fine filter:
//  1. Coarse: compute the bounding box for the radius and ask the source for
//     candidates in it. The source may be backed by a range index; it only
//     has to avoid false negatives.
//  2. Fine: compute the exact haversine distance for every candidate and
//     drop those beyond the radius.
//  3. Sort ascending by distance, tie-break by id so equal distances order
//     deterministically, then apply the limit.
func FindNearby(ctx context.Context, source CandidateSource, q Query) ([]Match, error) {
	if err := q.Center.Validate(); err != nil {
		return nil, err
	}
	if q.RadiusKm <= 0 {
		return nil, fmt.Errorf("%w: radius must be positive, got %v", entities.ErrInvalidFormat, q.RadiusKm)
	}

	bounds := BoundingBox(q.Center, q.RadiusKm)

	candidates, err := source.InBounds(ctx, bounds)
	if err != nil {
		return nil, fmt.Errorf("%w: range query failed: %v", entities.ErrStoreUnavailable, err)
	}

	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		if q.Owner != "" && c.Owner != q.Owner {
			continue
		}
		d := DistanceKm(q.Center, c.Point)
		if d > q.RadiusKm {
			continue
		}
		matches = append(matches, Match{ID: c.ID, Meta: c.Meta, DistanceKm: d})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].DistanceKm != matches[j].DistanceKm {
			return matches[i].DistanceKm < matches[j].DistanceKm
		}
		return matches[i].ID < matches[j].ID
	})

	if q.Limit > 0 && len(matches) > q.Limit {
		matches = matches[:q.Limit]
	}

	return matches, nil
}
