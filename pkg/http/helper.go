package http

import (
	"math"
	"net/http"
	"strconv"

	"servicehub/pkg/config"
	apperrors "servicehub/pkg/errors"
)

// ExtractPageLimit reads 1-based page and limit query parameters. Missing
// values fall back to page 1 and the default limit; limit is capped.
func ExtractPageLimit(r *http.Request) (int, int, error) {
	query := r.URL.Query()

	page := 1
	if s := query.Get("page"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid page parameter: " + s)
		}
		page = v
	}

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	return config.NormalizePage(page), config.NormalizePaginationLimit(limit), nil
}

// PageOffset converts a 1-based page into a skip offset.
func PageOffset(page, limit int) int64 {
	return config.NormalizeOffset(int64(page-1) * int64(limit))
}

// OptionalFloat reads a finite float query parameter. A missing parameter
// yields nil.
func OptionalFloat(r *http.Request, key string) (*float64, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, apperrors.InvalidInput("invalid " + key + " parameter: " + s)
	}
	return &v, nil
}
