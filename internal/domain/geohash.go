package domain

import "strings"

const geohashBase32 = "0123456789bcdefghjkmnpqrstuvwxyz"

// EncodeGeohash encodes a coordinate as a base-32 geohash of the given
// length using the standard interleaved-bit bisection, longitude first,
// five bits per output character. Deterministic: the same inputs always
// produce the same string, and geohash(lat,lng,p) is a prefix of
// geohash(lat,lng,p+1).
func EncodeGeohash(lat, lng float64, precision int) string {
	if precision <= 0 {
		return ""
	}

	latLo, latHi := -90.0, 90.0
	lngLo, lngHi := -180.0, 180.0

	var sb strings.Builder
	sb.Grow(precision)

	ch := 0
	bit := 0
	even := true

	for sb.Len() < precision {
		if even {
			mid := (lngLo + lngHi) / 2
			if lng > mid {
				ch |= 1 << (4 - bit)
				lngLo = mid
			} else {
				lngHi = mid
			}
		} else {
			mid := (latLo + latHi) / 2
			if lat > mid {
				ch |= 1 << (4 - bit)
				latLo = mid
			} else {
				latHi = mid
			}
		}
		even = !even

		if bit < 4 {
			bit++
		} else {
			sb.WriteByte(geohashBase32[ch])
			bit = 0
			ch = 0
		}
	}

	return sb.String()
}
