package domain

import (
	"sort"
	"strings"
)

// categoryOrder fixes the declaration order of the category table; ranked
// output uses it to break match-count ties stably.
var categoryOrder = []string{
	"traffic",
	"water-logging",
	"events",
	"stampede",
	"emergency",
	"infrastructure",
	"weather",
	"public-transport",
	"civic-issues",
	"security",
	"utility",
}

var categoryKeywords = map[string][]string{
	"traffic": {
		"traffic", "jam", "jams", "congestion", "vehicle", "vehicles", "car", "cars", "truck", "trucks",
		"road", "roads", "highway", "blocked", "blockage", "slow", "delayed", "delay", "gridlock",
		"commuter", "commuters", "accident", "pothole", "repair", "signal", "signals", "intersection",
		"parking", "no parking", "lane", "diversion", "detour", "bottleneck", "overbridge", "underbridge",
	},
	"water-logging": {
		"flood", "flooded", "water", "rain", "raining", "drainage", "waterlogged", "overflow", "inundated",
		"submerged", "sewage", "clogged drain", "drain", "flooding", "puddle", "puddles", "monsoon",
		"storm water", "underpass", "underpasses", "overflowing", "choked drain", "backflow", "manhole",
	},
	"events": {
		"event", "events", "festival", "festivals", "concert", "concerts", "gathering", "gatherings",
		"celebration", "celebrations", "parade", "parades", "rally", "rallies", "protest", "protests",
		"march", "marches", "jogging group", "marathon", "crowding", "crowd", "ceremony", "wedding",
		"marriage", "public meeting", "conference", "seminar", "cultural event", "exhibition",
		"hackathon", "hackathons",
	},
	"stampede": {
		"crowd", "stampede", "rush", "panic", "overcrowded", "pushing", "crush", "mob", "trampled",
		"chaos", "crowding", "people running", "mass gathering", "crowd collapse",
	},
	"emergency": {
		"emergency", "accident", "accidents", "fire", "medical", "ambulance", "injury", "injured",
		"police", "rescue", "disaster", "urgent", "crisis", "help", "call for help", "burning",
		"explosion", "evacuation", "emergency services", "first aid", "911", "helpline",
	},
	"infrastructure": {
		"pothole", "potholes", "repair", "maintenance", "construction", "road work", "digging", "sidewalk",
		"footpath", "bridge", "bridges", "tunnel", "tunnels", "street light", "street lights",
		"signage", "sign board", "barricade", "barrier", "broken road", "collapsed", "incomplete work",
	},
	"weather": {
		"weather", "storm", "storms", "wind", "winds", "hail", "fog", "foggy", "visibility", "low visibility",
		"thunder", "lightning", "cyclone", "heat wave", "cold wave", "cloudburst", "rainfall", "heavy rain",
		"drizzle", "temperature", "humid", "humidity",
	},
	"public-transport": {
		"bus", "buses", "metro", "train", "trains", "auto", "autos", "rickshaw", "rickshaws", "taxi",
		"taxis", "cab", "cabs", "transport", "route", "routes", "schedule", "delayed", "breakdown",
		"public transport", "overcrowded", "cancelled", "no service", "halted", "track fault",
	},
	"civic-issues": {
		"garbage", "trash", "litter", "waste", "cleanliness", "pollution", "air pollution", "noise",
		"noise pollution", "stray", "dogs", "cows", "animals", "monkey menace", "street vendor",
		"hawker", "encroachment", "open defecation", "urinating", "dirty", "smell", "stench", "sanitation",
	},
	"security": {
		"theft", "robbery", "crime", "suspicious", "suspicious activity", "security", "unsafe",
		"safety", "harassment", "assault", "violence", "fight", "quarrel", "snatching", "chain snatching",
		"stalking", "molestation", "sexual harassment", "breaking in", "vandalism",
	},
	"utility": {
		"power", "power cut", "electricity", "load shedding", "blackout", "no electricity", "water supply",
		"no water", "low pressure", "gas", "leak", "internet", "wifi", "disconnected", "outage",
		"cut", "disruption", "mobile signal", "cable", "telephone", "landline", "no network", "connectivity issue",
	},
}

// CategoryMatch pairs a category label with its keyword match count.
type CategoryMatch struct {
	Category string
	Matches  int
}

// Categorize returns every category with at least one keyword occurring in
// the text as a case-insensitive substring, ranked by match count descending
// with declaration-order tie-breaks. Each keyword counts once no matter how
// often it occurs. Empty text yields no matches.
func Categorize(text string) []CategoryMatch {
	text = strings.ToLower(text)
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var matches []CategoryMatch
	for _, category := range categoryOrder {
		count := 0
		for _, keyword := range categoryKeywords[category] {
			if strings.Contains(text, keyword) {
				count++
			}
		}
		if count > 0 {
			matches = append(matches, CategoryMatch{Category: category, Matches: count})
		}
	}

	// Stable sort keeps declaration order for equal counts.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Matches > matches[j].Matches
	})
	return matches
}

// CategoryLabels strips match counts, preserving rank order.
func CategoryLabels(matches []CategoryMatch) []string {
	if len(matches) == 0 {
		return nil
	}
	labels := make([]string, len(matches))
	for i, m := range matches {
		labels[i] = m.Category
	}
	return labels
}

// KeywordListSize reports the size of a category's keyword list; zero for
// unknown categories. Used to derive confidence scores.
func KeywordListSize(category string) int {
	return len(categoryKeywords[category])
}

// KnownCategory reports whether the label is part of the fixed enumeration.
func KnownCategory(label string) bool {
	_, ok := categoryKeywords[label]
	return ok
}
