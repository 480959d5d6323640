package view

import (
	"time"

	"github.com/Brownie44l1/propvest/internal/models"
)

// Full domains of the numeric filters. A range covering the whole domain is
// treated as "no filter".
var (
	PriceDomain      = Range{Min: 0, Max: 1_000_000_000}
	PercentageDomain = Range{Min: 0, Max: 100}
)

// ListingSchema describes marketplace listings.
func ListingSchema() Schema[models.Listing] {
	price := func(l models.Listing) (float64, bool) { return l.Price, true }
	ret := func(l models.Listing) (float64, bool) { return optional(l.ReturnRate) }
	funded := func(l models.Listing) (float64, bool) { return optional(l.FundedPercentage) }
	created := func(l models.Listing) time.Time { return l.CreatedAt }

	return Schema[models.Listing]{
		Text: func(l models.Listing) []string { return []string{l.Title, l.Location, l.Description} },
		Categories: map[string]Category[models.Listing]{
			"category": {Value: func(l models.Listing) string { return l.Category }},
			"type":     {Value: func(l models.Listing) string { return l.Type }},
			"status":   {Value: func(l models.Listing) string { return l.Status }},
			"location": {Value: func(l models.Listing) string { return l.Location }, Match: MatchContains},
		},
		Numbers: map[string]Numeric[models.Listing]{
			"price":  {Value: price, Domain: PriceDomain},
			"return": {Value: ret, Domain: PercentageDomain},
			"funded": {Value: funded, Domain: PercentageDomain},
		},
		Toggles: map[string]func(models.Listing) bool{
			"inStock": models.Listing.InStock,
		},
		Sorts: map[SortKey]func(a, b models.Listing) int{
			SortTrending:   ByFlag(func(l models.Listing) bool { return l.Trending }),
			SortFeatured:   ByFlag(func(l models.Listing) bool { return l.Featured }),
			SortPriceHigh:  ByNumber(price, true),
			SortPriceLow:   ByNumber(price, false),
			SortReturnHigh: ByNumber(ret, true),
			SortReturnLow:  ByNumber(ret, false),
			SortFundedHigh: ByNumber(funded, true),
			SortNewest:     ByTime(created, true),
			SortOldest:     ByTime(created, false),
		},
	}
}

// ListingDefaults hides sold out listings until the user opts in.
func ListingDefaults() Filters {
	return Filters{
		Categories: map[string]string{"category": All, "type": All, "status": All},
		Ranges:     map[string]Range{"price": PriceDomain},
		Toggles:    map[string]bool{"inStock": true},
		SortBy:     SortDefault,
		ViewMode:   ViewGrid,
	}
}

// PropertySchema describes properties managed by agents and companies.
func PropertySchema() Schema[models.Property] {
	price := func(p models.Property) (float64, bool) { return optional(p.Price) }
	created := func(p models.Property) time.Time { return p.CreatedAt }

	return Schema[models.Property]{
		Text: func(p models.Property) []string { return []string{p.Title, p.Location, p.Description} },
		Categories: map[string]Category[models.Property]{
			"category": {Value: func(p models.Property) string { return p.Category }},
			"type":     {Value: func(p models.Property) string { return p.Type }},
			"status":   {Value: func(p models.Property) string { return p.Status }},
			"location": {Value: func(p models.Property) string { return p.Location }, Match: MatchContains},
		},
		Numbers: map[string]Numeric[models.Property]{
			"price": {Value: price, Domain: PriceDomain},
		},
		Sorts: map[SortKey]func(a, b models.Property) int{
			SortTrending:  ByFlag(func(p models.Property) bool { return p.Trending }),
			SortFeatured:  ByFlag(func(p models.Property) bool { return p.Featured }),
			SortPriceHigh: ByNumber(price, true),
			SortPriceLow:  ByNumber(price, false),
			SortNewest:    ByTime(created, true),
			SortOldest:    ByTime(created, false),
		},
	}
}

// PropertyDefaults shows every property regardless of status.
func PropertyDefaults() Filters {
	return Filters{
		Categories: map[string]string{"category": All, "type": All, "status": All},
		SortBy:     SortDefault,
		ViewMode:   ViewGrid,
	}
}

// InvestmentSchema describes the user's investments.
func InvestmentSchema() Schema[models.Investment] {
	amount := func(i models.Investment) (float64, bool) { return i.Amount, true }
	ret := func(i models.Investment) (float64, bool) { return optional(i.ReturnRate) }
	funded := func(i models.Investment) (float64, bool) { return optional(i.FundedPercentage) }
	created := func(i models.Investment) time.Time { return i.CreatedAt }

	return Schema[models.Investment]{
		Text: func(i models.Investment) []string { return []string{i.Title, i.Location, i.Description} },
		Categories: map[string]Category[models.Investment]{
			"type":     {Value: func(i models.Investment) string { return i.Type }},
			"status":   {Value: func(i models.Investment) string { return i.Status }},
			"location": {Value: func(i models.Investment) string { return i.Location }, Match: MatchContains},
		},
		Numbers: map[string]Numeric[models.Investment]{
			"price":  {Value: amount, Domain: PriceDomain},
			"return": {Value: ret, Domain: PercentageDomain},
		},
		Sorts: map[SortKey]func(a, b models.Investment) int{
			SortPriceHigh:  ByNumber(amount, true),
			SortPriceLow:   ByNumber(amount, false),
			SortReturnHigh: ByNumber(ret, true),
			SortReturnLow:  ByNumber(ret, false),
			SortFundedHigh: ByNumber(funded, true),
			SortNewest:     ByTime(created, true),
			SortOldest:     ByTime(created, false),
		},
	}
}

// DocumentSchema describes uploaded documents.
func DocumentSchema() Schema[models.Document] {
	created := func(d models.Document) time.Time { return d.CreatedAt }
	return Schema[models.Document]{
		Text: func(d models.Document) []string { return []string{d.Title, d.Type} },
		Categories: map[string]Category[models.Document]{
			"type":   {Value: func(d models.Document) string { return d.Type }},
			"status": {Value: func(d models.Document) string { return d.Status }},
		},
		Sorts: map[SortKey]func(a, b models.Document) int{
			SortNewest: ByTime(created, true),
			SortOldest: ByTime(created, false),
		},
	}
}

// NotificationSchema describes in-app notifications.
func NotificationSchema() Schema[models.Notification] {
	created := func(n models.Notification) time.Time { return n.CreatedAt }
	return Schema[models.Notification]{
		Text: func(n models.Notification) []string { return []string{n.Title, n.Message} },
		Categories: map[string]Category[models.Notification]{
			"type": {Value: func(n models.Notification) string { return n.Type }},
		},
		Toggles: map[string]func(models.Notification) bool{
			"unread": func(n models.Notification) bool { return !n.Read },
		},
		Sorts: map[SortKey]func(a, b models.Notification) int{
			SortNewest: ByTime(created, true),
			SortOldest: ByTime(created, false),
		},
	}
}

// ReferralSchema describes referrals.
func ReferralSchema() Schema[models.Referral] {
	created := func(r models.Referral) time.Time { return r.CreatedAt }
	return Schema[models.Referral]{
		Text: func(r models.Referral) []string { return []string{r.ReferredName, r.ReferredMail} },
		Categories: map[string]Category[models.Referral]{
			"status": {Value: func(r models.Referral) string { return r.Status }},
		},
		Sorts: map[SortKey]func(a, b models.Referral) int{
			SortNewest: ByTime(created, true),
			SortOldest: ByTime(created, false),
		},
	}
}

// BasicDefaults is the descriptor for lists without special defaults.
func BasicDefaults() Filters {
	return Filters{SortBy: SortNewest, ViewMode: ViewList}
}
