package view

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/Brownie44l1/propvest/internal/models"
)

var errNotNumber = errors.New("must be a number")
var errNotBool = errors.New("must be true or false")

// FromQuery overlays URL query parameters on base. Recognised parameters:
// search, sort, view, one per schema category, min_<name>/max_<name> per
// numeric field and one per toggle. Unknown parameters are ignored.
func FromQuery[T any](q url.Values, s Schema[T], base Filters) (Filters, error) {
	f := base.Clone()

	if q.Has("search") {
		f.Search = strings.TrimSpace(q.Get("search"))
	}
	if q.Has("sort") {
		f.SortBy = SortKey(q.Get("sort"))
	}
	if v := q.Get("view"); v == string(ViewGrid) || v == string(ViewList) {
		f.ViewMode = ViewMode(v)
	}

	for name := range s.Categories {
		if !q.Has(name) {
			continue
		}
		if f.Categories == nil {
			f.Categories = map[string]string{}
		}
		f.Categories[name] = q.Get(name)
	}

	for name, num := range s.Numbers {
		lo, hasLo := q["min_"+name]
		hi, hasHi := q["max_"+name]
		if !hasLo && !hasHi {
			continue
		}

		r, ok := f.Ranges[name]
		if !ok {
			r = num.Domain
		}
		if hasLo {
			v, err := strconv.ParseFloat(lo[0], 64)
			if err != nil {
				return Filters{}, models.NewFieldError("min_"+name, errNotNumber)
			}
			r.Min = v
		}
		if hasHi {
			v, err := strconv.ParseFloat(hi[0], 64)
			if err != nil {
				return Filters{}, models.NewFieldError("max_"+name, errNotNumber)
			}
			r.Max = v
		}
		if f.Ranges == nil {
			f.Ranges = map[string]Range{}
		}
		f.Ranges[name] = r
	}

	for name := range s.Toggles {
		if !q.Has(name) {
			continue
		}
		on, err := strconv.ParseBool(q.Get(name))
		if err != nil {
			return Filters{}, models.NewFieldError(name, errNotBool)
		}
		if f.Toggles == nil {
			f.Toggles = map[string]bool{}
		}
		f.Toggles[name] = on
	}

	if err := f.Validate(); err != nil {
		return Filters{}, err
	}
	return f, nil
}
