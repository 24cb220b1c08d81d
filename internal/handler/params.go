package handler

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/aryan0dhankhar/crm/internal/domain"
)

// listParams reads page, limit, search, sortBy and sortOrder. Values that do
// not parse fall back to the defaults; clamping happens in Normalize.
func listParams(q url.Values) domain.ListParams {
	p := domain.ListParams{
		Page:      intParam(q, "page", domain.DefaultPage),
		Limit:     intParam(q, "limit", domain.DefaultLimit),
		Search:    strings.TrimSpace(q.Get("search")),
		SortBy:    q.Get("sortBy"),
		SortOrder: strings.ToUpper(q.Get("sortOrder")),
	}
	return p.Normalize()
}

func intParam(q url.Values, key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(q.Get(key)))
	if err != nil {
		return fallback
	}
	return v
}

func boolParam(q url.Values, key string) bool {
	switch strings.ToLower(q.Get(key)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}
