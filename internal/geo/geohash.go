package geo

import (
	"strings"

	"fieldtrack/internal/domain/entities"
)

// Geohash coarse index.
//
// A geohash encodes a lat/lng pair into a short base32 string with the
// property that nearby locations share a common prefix. The presence store
// buckets records by geohash cell so a bounding-box query only touches the
// cells that overlap the box instead of scanning every record.
//
// Precision determines the cell size:
//
//	4 → ~39 km     5 → ~5 km      6 → ~1.2 km    7 → ~153 m
//
// The subsystem defaults to precision 5 (~5 km cells), sized for dispatch
// radii of a few kilometres to a few tens of kilometres.

// base32 is the geohash character set. 'a', 'i', 'l', and 'o' are excluded
// to avoid confusion with digits 0/1.
const base32 = "0123456789bcdefghjkmnpqrstuvwxyz"

// Lookup tables for neighbor calculation. The 'e'/'o' keys distinguish even
// and odd hash lengths — the geohash bit interleaving alternates between
// longitude and latitude, so adjacency tables differ by parity.
var (
	base32Map = map[byte]int{}
	neighbors = map[string]map[byte]string{
		"n": {'e': "p0r21436x8zb9dcf5h7kjnmqesgutwvy", 'o': "bc01fg45238967deuvhjyznpkmstqrwx"},
		"s": {'e': "14365h7k9dcfesgujnmqp0r2twvyx8zb", 'o': "238967debc01fg45kmstqrwxuvhjyznp"},
		"e": {'e': "bc01fg45238967deuvhjyznpkmstqrwx", 'o': "p0r21436x8zb9dcf5h7kjnmqesgutwvy"},
		"w": {'e': "238967debc01fg45kmstqrwxuvhjyznp", 'o': "14365h7k9dcfesgujnmqp0r2twvyx8zb"},
	}
	borders = map[string]map[byte]string{
		"n": {'e': "prxz", 'o': "bcfguvyz"},
		"s": {'e': "028b", 'o': "0145hjnp"},
		"e": {'e': "bcfguvyz", 'o': "prxz"},
		"w": {'e': "0145hjnp", 'o': "028b"},
	}
)

func init() {
	for i := 0; i < len(base32); i++ {
		base32Map[base32[i]] = i
	}
}

// Encode converts a point to a geohash string with the given precision.
// The algorithm interleaves longitude (even) and latitude (odd) bits,
// bisecting each range per bit and emitting one base32 character per 5 bits.
func Encode(p entities.GeoPoint, precision int) string {
	if precision <= 0 {
		precision = 5
	}
	if precision > 12 {
		precision = 12
	}

	minLat, maxLat := -90.0, 90.0
	minLng, maxLng := -180.0, 180.0

	var hash strings.Builder
	isEven := true
	bit := 0
	ch := 0

	for hash.Len() < precision {
		if isEven {
			mid := (minLng + maxLng) / 2
			if p.Lng >= mid {
				ch |= 1 << (4 - bit)
				minLng = mid
			} else {
				maxLng = mid
			}
		} else {
			mid := (minLat + maxLat) / 2
			if p.Lat >= mid {
				ch |= 1 << (4 - bit)
				minLat = mid
			} else {
				maxLat = mid
			}
		}
		isEven = !isEven
		bit++
		if bit == 5 {
			hash.WriteByte(base32[ch])
			bit = 0
			ch = 0
		}
	}

	return hash.String()
}

// DecodeBounds recovers the bounding rectangle of a geohash cell by replaying
// the binary subdivision.
func DecodeBounds(hash string) Bounds {
	minLat, maxLat := -90.0, 90.0
	minLng, maxLng := -180.0, 180.0
	isEven := true

	for i := 0; i < len(hash); i++ {
		cd, ok := base32Map[hash[i]]
		if !ok {
			continue
		}
		for j := 4; j >= 0; j-- {
			bit := (cd >> j) & 1
			if isEven {
				mid := (minLng + maxLng) / 2
				if bit == 1 {
					minLng = mid
				} else {
					maxLng = mid
				}
			} else {
				mid := (minLat + maxLat) / 2
				if bit == 1 {
					minLat = mid
				} else {
					maxLat = mid
				}
			}
			isEven = !isEven
		}
	}

	return Bounds{MinLat: minLat, MaxLat: maxLat, MinLng: minLng, MaxLng: maxLng}
}

// Decode returns the center point of a geohash cell.
func Decode(hash string) entities.GeoPoint {
	b := DecodeBounds(hash)
	return entities.GeoPoint{
		Lat: (b.MinLat + b.MaxLat) / 2,
		Lng: (b.MinLng + b.MaxLng) / 2,
	}
}

// Neighbor returns the geohash of the adjacent cell in the given direction
// ("n", "s", "e", "w"). When the last character sits on the border of its
// parent cell, the parent is advanced recursively first.
func Neighbor(hash string, direction string) string {
	if len(hash) == 0 {
		return ""
	}

	hash = strings.ToLower(hash)
	lastChar := hash[len(hash)-1]
	parent := hash[:len(hash)-1]

	// Even-length hashes end on a latitude-first character, odd-length on a
	// longitude-first one; the adjacency tables differ accordingly.
	var t byte = 'o'
	if len(hash)%2 == 0 {
		t = 'e'
	}

	if strings.ContainsRune(borders[direction][t], rune(lastChar)) && len(parent) > 0 {
		parent = Neighbor(parent, direction)
	}

	idx := strings.IndexByte(neighbors[direction][t], lastChar)
	if idx >= 0 {
		return parent + string(base32[idx])
	}

	return hash
}

// Cover returns the geohash cells at the given precision that overlap the
// bounding rectangle, walking the cell grid row by row from the southwest
// corner. The cover is over-inclusive (whole cells), which is exactly what
// the coarse pre-filter needs: false positives are fine, false negatives
// are not.
//
// If the cover would exceed maxCells the function returns nil, signalling the
// caller to fall back to a full scan rather than silently truncating the
// cover (truncation would drop true positives).
func Cover(b Bounds, precision, maxCells int) []string {
	var cells []string

	row := Encode(entities.GeoPoint{Lat: b.MinLat, Lng: b.MinLng}, precision)
	for {
		cell := row
		for {
			cells = append(cells, cell)
			if maxCells > 0 && len(cells) > maxCells {
				return nil
			}
			east := Neighbor(cell, "e")
			eb := DecodeBounds(east)
			// Stop once the next cell starts beyond the box. A wrap past the
			// antimeridian shows up as the longitude jumping backwards.
			if eb.MinLng > b.MaxLng || eb.MinLng < DecodeBounds(cell).MinLng {
				break
			}
			cell = east
		}
		north := Neighbor(row, "n")
		nb := DecodeBounds(north)
		if nb.MinLat > b.MaxLat || nb.MinLat < DecodeBounds(row).MinLat {
			break
		}
		row = north
	}

	return cells
}
