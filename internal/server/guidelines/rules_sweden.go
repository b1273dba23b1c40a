package guidelines

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/dmitrijs2005/quotecore/internal/server/collaborators"
	"github.com/dmitrijs2005/quotecore/internal/server/models"
)

// Underwriting limits for the Swedish market.
const (
	swedenMinAge = 18

	apartmentMinHousehold = 1
	apartmentMaxHousehold = 6
	apartmentMinSpace     = 1
	apartmentMaxSpace     = 250

	studentMaxAge       = 30
	studentMaxHousehold = 2
	studentMaxSpace     = 50

	houseMinHousehold         = 1
	houseMaxHousehold         = 6
	houseMinSpace             = 1
	houseMaxSpace             = 250
	houseMinConstructionYear  = 1925
	houseMaxBathrooms         = 2
	houseMaxExtraBuildingArea = 75
)

// Swedish personal numbers: century-qualified YYYYMMDDNNNN.
var swedishSSNPattern = regexp.MustCompile(`^(19|20)\d{10}$`)

// swedishSSNBirthDate parses the birth date encoded in a Swedish SSN.
func swedishSSNBirthDate(ssn string) (time.Time, bool) {
	if !swedishSSNPattern.MatchString(ssn) {
		return time.Time{}, false
	}
	t, err := time.Parse("20060102", ssn[:8])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// swedishAge resolves the applicant's age from the SSN, falling back to an
// explicit birth date when the SSN is absent.
func swedishAge(data models.ProductData, now time.Time) (int, bool) {
	if ssn := data.SSN(); ssn != nil {
		if bd, ok := swedishSSNBirthDate(*ssn); ok {
			return age(bd, now), true
		}
		return 0, false
	}
	if bd := data.BirthDate(); bd != nil {
		return age(*bd, now), true
	}
	return 0, false
}

// swedishPersonalRules is the market-level personal rule set shared by every
// Swedish product. The SSN-shape rule short-circuits: an unparseable SSN
// makes the age and debt rules meaningless.
func swedishPersonalRules(debt collaborators.DebtCheck, now func() time.Time) RuleSet {
	return RuleSet{
		Name: "swedish-personal",
		Rules: []Rule{
			{
				Code:         BreachInvalidSSN,
				ShortCircuit: true,
				Applies: pure(func(data models.ProductData) bool {
					ssn := data.SSN()
					if ssn == nil {
						return true
					}
					_, ok := swedishSSNBirthDate(*ssn)
					return !ok
				}),
			},
			{
				Code:         BreachUnderage,
				ShortCircuit: true,
				Applies: pure(func(data models.ProductData) bool {
					a, ok := swedishAge(data, now())
					return ok && a < swedenMinAge
				}),
			},
			{
				Code:    BreachDebtCheck,
				Applies: debtCheckPredicate(debt),
			},
		},
	}
}

// debtCheckPredicate adapts the external debt-check collaborator into a
// rule: a non-empty reason list is a breach. Collaborator failures propagate
// so the orchestrator can distinguish "in debt" from "register unreachable".
func debtCheckPredicate(debt collaborators.DebtCheck) Predicate {
	return func(ctx context.Context, data models.ProductData) (bool, error) {
		ssn := data.SSN()
		if ssn == nil {
			return false, nil
		}
		reasons, err := debt.Check(ctx, *ssn)
		if err != nil {
			return false, fmt.Errorf("debt check: %w", err)
		}
		return len(reasons) > 0, nil
	}
}

func swedishApartmentRules(now func() time.Time) RuleSet {
	ap := func(data models.ProductData) models.SwedishApartmentData {
		return *data.SwedishApartment
	}
	return RuleSet{
		Name: "swedish-apartment",
		Rules: []Rule{
			{
				Code: BreachTooSmallHousehold,
				Applies: pure(func(d models.ProductData) bool {
					return ap(d).HouseholdSize < apartmentMinHousehold
				}),
			},
			{
				Code: BreachTooBigHousehold,
				Applies: pure(func(d models.ProductData) bool {
					return ap(d).HouseholdSize > apartmentMaxHousehold
				}),
			},
			{
				Code: BreachTooSmallSpace,
				Applies: pure(func(d models.ProductData) bool {
					return ap(d).LivingSpace < apartmentMinSpace
				}),
			},
			{
				Code: BreachTooMuchSpace,
				Applies: pure(func(d models.ProductData) bool {
					return ap(d).LivingSpace > apartmentMaxSpace
				}),
			},
			{
				Code: BreachStudentTooBigHousehold,
				Applies: pure(func(d models.ProductData) bool {
					a := ap(d)
					return a.IsStudent() && a.HouseholdSize > studentMaxHousehold
				}),
			},
			{
				Code: BreachStudentTooMuchSpace,
				Applies: pure(func(d models.ProductData) bool {
					a := ap(d)
					return a.IsStudent() && a.LivingSpace > studentMaxSpace
				}),
			},
			{
				Code: BreachStudentOverage,
				Applies: pure(func(d models.ProductData) bool {
					if !ap(d).IsStudent() {
						return false
					}
					a, ok := swedishAge(d, now())
					return ok && a > studentMaxAge
				}),
			},
		},
	}
}

func swedishHouseRules() RuleSet {
	h := func(data models.ProductData) models.SwedishHouseData {
		return *data.SwedishHouse
	}
	return RuleSet{
		Name: "swedish-house",
		Rules: []Rule{
			{
				Code: BreachTooSmallHousehold,
				Applies: pure(func(d models.ProductData) bool {
					return h(d).HouseholdSize < houseMinHousehold
				}),
			},
			{
				Code: BreachTooBigHousehold,
				Applies: pure(func(d models.ProductData) bool {
					return h(d).HouseholdSize > houseMaxHousehold
				}),
			},
			{
				Code: BreachTooSmallSpace,
				Applies: pure(func(d models.ProductData) bool {
					return h(d).LivingSpace < houseMinSpace
				}),
			},
			{
				Code: BreachTooMuchSpace,
				Applies: pure(func(d models.ProductData) bool {
					return h(d).LivingSpace > houseMaxSpace
				}),
			},
			{
				Code: BreachTooEarlyYearOfConstruction,
				Applies: pure(func(d models.ProductData) bool {
					return h(d).YearOfConstruction < houseMinConstructionYear
				}),
			},
			{
				Code: BreachTooManyBathrooms,
				Applies: pure(func(d models.ProductData) bool {
					return h(d).NumberOfBathrooms > houseMaxBathrooms
				}),
			},
			{
				Code: BreachExtraBuildingTooBig,
				Applies: pure(func(d models.ProductData) bool {
					for _, b := range h(d).ExtraBuildings {
						if b.Area > houseMaxExtraBuildingArea {
							return true
						}
					}
					return false
				}),
			},
			{
				Code: BreachHouseSubleted,
				Applies: pure(func(d models.ProductData) bool {
					return h(d).IsSubleted
				}),
			},
		},
	}
}
