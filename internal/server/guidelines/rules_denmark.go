package guidelines

import (
	"time"

	"github.com/dmitrijs2005/quotecore/internal/server/models"
)

// Underwriting limits for the Danish market.
const (
	denmarkMinAge = 18

	denmarkMaxCoinsured = 5
	denmarkMinSpace     = 1
	denmarkMaxSpace     = 250

	danishStudentMaxAge       = 30
	danishStudentMaxCoinsured = 0
)

func danishPersonalRules(now func() time.Time) RuleSet {
	return RuleSet{
		Name: "danish-personal",
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
					return bd != nil && age(*bd, now()) < denmarkMinAge
				}),
			},
		},
	}
}

// danishStudentRules returns the student-specific rules shared by all three
// Danish products.
func danishStudentRules(now func() time.Time, isStudent func(models.ProductData) bool, coinsured func(models.ProductData) int) []Rule {
	return []Rule{
		{
			Code: BreachStudentOverage,
			Applies: pure(func(d models.ProductData) bool {
				if !isStudent(d) {
					return false
				}
				bd := d.BirthDate()
				return bd != nil && age(*bd, now()) > danishStudentMaxAge
			}),
		},
		{
			Code: BreachStudentTooManyCoinsured,
			Applies: pure(func(d models.ProductData) bool {
				return isStudent(d) && coinsured(d) > danishStudentMaxCoinsured
			}),
		},
	}
}

func danishCoinsuredRules(coinsured func(models.ProductData) int) []Rule {
	return []Rule{
		{
			Code: BreachNegativeCoinsured,
			Applies: pure(func(d models.ProductData) bool {
				return coinsured(d) < 0
			}),
		},
		{
			Code: BreachTooManyCoinsured,
			Applies: pure(func(d models.ProductData) bool {
				return coinsured(d) > denmarkMaxCoinsured
			}),
		},
	}
}

func danishHomeContentsRules(now func() time.Time) RuleSet {
	coinsured := func(d models.ProductData) int { return d.DanishHomeContents.Coinsured }
	isStudent := func(d models.ProductData) bool { return d.DanishHomeContents.IsStudent }

	rules := danishCoinsuredRules(coinsured)
	rules = append(rules,
		Rule{
			Code: BreachTooSmallSpace,
			Applies: pure(func(d models.ProductData) bool {
				return d.DanishHomeContents.LivingSpace < denmarkMinSpace
			}),
		},
		Rule{
			Code: BreachTooMuchSpace,
			Applies: pure(func(d models.ProductData) bool {
				return d.DanishHomeContents.LivingSpace > denmarkMaxSpace
			}),
		},
	)
	rules = append(rules, danishStudentRules(now, isStudent, coinsured)...)

	return RuleSet{Name: "danish-home-contents", Rules: rules}
}

func danishAccidentRules(now func() time.Time) RuleSet {
	coinsured := func(d models.ProductData) int { return d.DanishAccident.Coinsured }
	isStudent := func(d models.ProductData) bool { return d.DanishAccident.IsStudent }

	rules := danishCoinsuredRules(coinsured)
	rules = append(rules, danishStudentRules(now, isStudent, coinsured)...)

	return RuleSet{Name: "danish-accident", Rules: rules}
}

func danishTravelRules(now func() time.Time) RuleSet {
	coinsured := func(d models.ProductData) int { return d.DanishTravel.Coinsured }
	isStudent := func(d models.ProductData) bool { return d.DanishTravel.IsStudent }

	rules := danishCoinsuredRules(coinsured)
	rules = append(rules, danishStudentRules(now, isStudent, coinsured)...)

	return RuleSet{Name: "danish-travel", Rules: rules}
}
