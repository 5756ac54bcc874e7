package service

import (
	"sort"

	"github.com/vipul43/yatco-sync/internal/models"
)

// BuildFacets collects the distinct, sorted filter values across vessels
func BuildFacets(vessels []models.Vessel) models.Facets {
	builders := make(map[string]struct{})
	categories := make(map[string]struct{})
	types := make(map[string]struct{})
	conditions := make(map[string]struct{})

	for _, v := range vessels {
		add(builders, v.Builder)
		add(categories, v.Category)
		add(types, v.Type)
		add(conditions, v.Condition)
	}

	return models.Facets{
		Builders:   sortedKeys(builders),
		Categories: sortedKeys(categories),
		Types:      sortedKeys(types),
		Conditions: sortedKeys(conditions),
	}
}

func add(set map[string]struct{}, value string) {
	if value != "" {
		set[value] = struct{}{}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
