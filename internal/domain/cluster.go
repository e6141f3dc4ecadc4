package domain

import "math"

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// DefaultClusterRadiusKm is the merge threshold used when no radius is
// configured. Five kilometers is intentionally generous: city-scale reports
// of one incident are rarely pinned to the same block.
const DefaultClusterRadiusKm = 5.0

// HaversineKm returns the great-circle distance between two coordinates in
// kilometers.
func HaversineKm(a, b Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// ClusterReports partitions reports into incident clusters with a single
// greedy pass. Each unconsumed report in input order seeds a new cluster and
// absorbs every other unconsumed report that merges with the seed. Membership
// is decided against the seed only, never pairwise across the growing
// cluster; the pass is deliberately not a transitive closure and that
// behavior is part of the output contract. Every input report lands in
// exactly one cluster; reports that merge with nothing become singletons.
func ClusterReports(reports []CategorizedReport, radiusKm float64) []Cluster {
	if radiusKm <= 0 {
		radiusKm = DefaultClusterRadiusKm
	}

	consumed := make([]bool, len(reports))
	var clusters []Cluster

	for i, seed := range reports {
		if consumed[i] {
			continue
		}
		cluster := Cluster{
			ID:      len(clusters),
			Reports: []CategorizedReport{seed},
		}
		consumed[i] = true

		for j, other := range reports {
			if consumed[j] {
				continue
			}
			if shouldMerge(seed, other, radiusKm) {
				cluster.Reports = append(cluster.Reports, other)
				consumed[j] = true
			}
		}

		clusters = append(clusters, cluster)
	}

	return clusters
}

// shouldMerge holds iff both reports are located, within radiusKm of each
// other, and share at least one category.
func shouldMerge(a, b CategorizedReport, radiusKm float64) bool {
	if a.Coordinates == nil || b.Coordinates == nil {
		return false
	}
	if HaversineKm(*a.Coordinates, *b.Coordinates) > radiusKm {
		return false
	}
	return categoriesOverlap(a.Categories, b.Categories)
}

func categoriesOverlap(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, c := range a {
		set[c] = true
	}
	for _, c := range b {
		if set[c] {
			return true
		}
	}
	return false
}
