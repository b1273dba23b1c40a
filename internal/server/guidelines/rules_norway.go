package guidelines

import (
	"time"

	"github.com/dmitrijs2005/quotecore/internal/server/models"
)

// Underwriting limits for the Norwegian market.
const (
	norwayMinAge = 18

	norwayMaxCoinsured = 5
	norwayMinSpace     = 1
	norwayMaxSpace     = 250

	youthMaxAge       = 30
	youthMaxCoinsured = 0
)

// norwegianPersonalRules is the market-level personal rule set. Norway
// identifies applicants by birth date; an unusable birth date short-circuits
// since the age rule cannot run without it.
func norwegianPersonalRules(now func() time.Time) RuleSet {
	return RuleSet{
		Name: "norwegian-personal",
		Rules: []Rule{
			{
				Code:         BreachInvalidBirthDate,
				ShortCircuit: true,
				Applies: pure(func(d models.ProductData) bool {
					bd := d.BirthDate()
					return bd == nil || bd.IsZero() || bd.After(now())
				}),
			},
			{
				Code:         BreachUnderage,
				ShortCircuit: true,
				Applies: pure(func(d models.ProductData) bool {
					bd := d.BirthDate()
					return bd != nil && age(*bd, now()) < norwayMinAge
				}),
			},
		},
	}
}

func norwegianHomeContentsRules(now func() time.Time) RuleSet {
	hc := func(d models.ProductData) models.NorwegianHomeContentsData {
		return *d.NorwegianHomeContents
	}
	return RuleSet{
		Name: "norwegian-home-contents",
		Rules: []Rule{
			{
				Code: BreachNegativeCoinsured,
				Applies: pure(func(d models.ProductData) bool {
					return hc(d).Coinsured < 0
				}),
			},
			{
				Code: BreachTooManyCoinsured,
				Applies: pure(func(d models.ProductData) bool {
					return hc(d).Coinsured > norwayMaxCoinsured
				}),
			},
			{
				Code: BreachTooSmallSpace,
				Applies: pure(func(d models.ProductData) bool {
					return hc(d).LivingSpace < norwayMinSpace
				}),
			},
			{
				Code: BreachTooMuchSpace,
				Applies: pure(func(d models.ProductData) bool {
					return hc(d).LivingSpace > norwayMaxSpace
				}),
			},
			{
				Code: BreachYouthOverage,
				Applies: pure(func(d models.ProductData) bool {
					c := hc(d)
					bd := d.BirthDate()
					return c.IsYouth && bd != nil && age(*bd, now()) > youthMaxAge
				}),
			},
			{
				Code: BreachYouthTooManyCoinsured,
				Applies: pure(func(d models.ProductData) bool {
					c := hc(d)
					return c.IsYouth && c.Coinsured > youthMaxCoinsured
				}),
			},
		},
	}
}

func norwegianTravelRules(now func() time.Time) RuleSet {
	tr := func(d models.ProductData) models.NorwegianTravelData {
		return *d.NorwegianTravel
	}
	return RuleSet{
		Name: "norwegian-travel",
		Rules: []Rule{
			{
				Code: BreachNegativeCoinsured,
				Applies: pure(func(d models.ProductData) bool {
					return tr(d).Coinsured < 0
				}),
			},
			{
				Code: BreachTooManyCoinsured,
				Applies: pure(func(d models.ProductData) bool {
					return tr(d).Coinsured > norwayMaxCoinsured
				}),
			},
			{
				Code: BreachYouthOverage,
				Applies: pure(func(d models.ProductData) bool {
					t := tr(d)
					bd := d.BirthDate()
					return t.IsYouth && bd != nil && age(*bd, now()) > youthMaxAge
				}),
			},
			{
				Code: BreachYouthTooManyCoinsured,
				Applies: pure(func(d models.ProductData) bool {
					t := tr(d)
					return t.IsYouth && t.Coinsured > youthMaxCoinsured
				}),
			},
		},
	}
}
