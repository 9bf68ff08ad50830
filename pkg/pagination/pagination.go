package pagination

import (
	"strconv"
)

// Params holds normalized pagination parameters. Zero values mean
// "unbounded": a PerPage of 0 applies no limit and an Offset of 0 skips
// nothing, so the zero Params returns the entire matching set.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Offset  int `json:"-"`
}

// Build normalizes page/per_page into Params. Page 0 is treated as page 1
// so the offset is never negative; per_page 0 disables limiting.
func Build(page, perPage int) Params {
	if page <= 0 {
		page = 1
	}
	if perPage < 0 {
		perPage = 0
	}
	return Params{
		Page:    page,
		PerPage: perPage,
		Offset:  perPage * (page - 1),
	}
}

// FromAny accepts page/per_page as they arrive on the wire, either ints or
// numeric strings. Anything non-parseable normalizes to (0, 0), meaning no
// pagination, rather than erroring.
func FromAny(page, perPage any) Params {
	return Build(toInt(page), toInt(perPage))
}

// toInt coerces wire values to int, returning 0 for anything unusable.
func toInt(v any) int {
	switch n := v.(type) {
	case nil:
		return 0
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}

// Envelope wraps a listing response: the page of entities plus the count of
// rows matching the filters before pagination was applied.
type Envelope[T any] struct {
	Result []T `json:"result"`
	Total  int `json:"total"`
}

// NewEnvelope builds an Envelope, guaranteeing a non-nil result slice so an
// empty page serializes as [] rather than null.
func NewEnvelope[T any](result []T, total int) Envelope[T] {
	if result == nil {
		result = []T{}
	}
	return Envelope[T]{Result: result, Total: total}
}
