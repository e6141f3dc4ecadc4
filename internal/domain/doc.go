// Package domain implements the incident fusion engine: it turns unvalidated
// situational reports about a city into categorized reports, groups reports
// that describe the same real-world incident, and produces one expiring
// incident summary per group.
//
// # Input Data
//
// Reports arrive as schema-less JSON objects from heterogeneous sources
// (social-feed items, user-submitted media reports). No field is guaranteed.
// Coordinates may appear in any of four shapes, tried in this order by
// [NormalizeCoordinates]:
//
//  1. "coordinates": [lat, lng]
//  2. "coordinates": {"lat"/"latitude": ..., "lng"/"longitude": ...}
//  3. top-level "latitude" + "longitude"
//  4. top-level "lat" + "lng"
//
// A report with no parseable coordinate pair has none; it is never defaulted
// to (0,0), which would falsely co-locate it with unrelated reports.
//
// Report text is assembled by [ExtractText] from the primary content fields
// (text, description, message, content) and secondary metadata fields
// (details, info, title, summary). Only when all of those are empty does it
// fall back to concatenating the remaining scalar fields, excluding
// identifiers, media URLs, and coordinate/timestamp fields.
//
// # Categories
//
// Eleven fixed categories, each with a keyword list matched case-insensitively
// as substrings, and a validity duration:
//
//	traffic           2h     public-transport  4h
//	water-logging     6h     civic-issues      2d
//	events            6h     security          2d
//	stampede          2d     utility           8h
//	emergency         2d
//	infrastructure    3d
//	weather           12h
//
// An incident's resolution time is now plus the longest duration among its
// categories, with a one-hour floor. The maximum (not the sum) keeps serious
// incidents live until the longest-lived concern plausibly resolves without
// letting many short-lived tags stack.
//
// # Clustering
//
// [ClusterReports] runs a single greedy pass: each unconsumed report seeds a
// cluster and absorbs every other unconsumed report within the configured
// haversine radius that shares at least one category with the seed.
// Membership is decided against the seed only, so the pass is not a
// transitive closure; that asymmetry is part of the output contract.
// Reports without coordinates or without any category overlap become
// singleton clusters.
//
// # Geohash
//
// Summaries carry a base-32 geohash of the representative coordinate
// (standard interleaved-bit encoding, longitude first) as a spatial index
// key for downstream storage and query. It is never an input to clustering.
package domain
