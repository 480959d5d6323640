package store

import (
	"github.com/Brownie44l1/propvest/internal/models"
	"github.com/Brownie44l1/propvest/internal/view"
)

// ==============================================
// DOMAIN CONFIGURATION
// ==============================================

func Marketplace() Config[models.Listing] {
	return Config[models.Listing]{
		Name:     "listing",
		Path:     "/marketplace/listings",
		Schema:   view.ListingSchema(),
		Defaults: view.ListingDefaults,
		PageSize: 12,
		ID:       func(l models.Listing) string { return l.ID },
	}
}

func Properties() Config[models.Property] {
	return Config[models.Property]{
		Name:     "property",
		Path:     "/properties",
		Schema:   view.PropertySchema(),
		Defaults: view.PropertyDefaults,
		PageSize: 12,
		ID:       func(p models.Property) string { return p.ID },
	}
}

func Investments() Config[models.Investment] {
	return Config[models.Investment]{
		Name:     "investment",
		Path:     "/investments",
		Schema:   view.InvestmentSchema(),
		Defaults: view.BasicDefaults,
		PageSize: 10,
		ID:       func(i models.Investment) string { return i.ID },
	}
}

func Documents() Config[models.Document] {
	return Config[models.Document]{
		Name:     "document",
		Path:     "/documents",
		Schema:   view.DocumentSchema(),
		Defaults: view.BasicDefaults,
		PageSize: 20,
		ID:       func(d models.Document) string { return d.ID },
	}
}

func Notifications() Config[models.Notification] {
	return Config[models.Notification]{
		Name:     "notification",
		Path:     "/notifications",
		Schema:   view.NotificationSchema(),
		Defaults: view.BasicDefaults,
		PageSize: 20,
		ID:       func(n models.Notification) string { return n.ID },
	}
}

func Referrals() Config[models.Referral] {
	return Config[models.Referral]{
		Name:     "referral",
		Path:     "/referrals",
		Schema:   view.ReferralSchema(),
		Defaults: view.BasicDefaults,
		PageSize: 20,
		ID:       func(r models.Referral) string { return r.ID },
	}
}
