package guidelines

import "github.com/dmitrijs2005/quotecore/internal/server/models"

// Breach codes returned by the rule sets. The codes are part of the external
// contract: transport layers localize them for members and back-office tools
// filter on them, so they never change meaning once shipped.
const (
	BreachInvalidSSN       models.BreachCode = "INVALID_SSN"
	BreachInvalidBirthDate models.BreachCode = "INVALID_BIRTH_DATE"
	BreachUnderage         models.BreachCode = "UNDERAGE"
	BreachDebtCheck        models.BreachCode = "DEBT_CHECK"

	BreachTooSmallHousehold models.BreachCode = "TOO_SMALL_NUMBER_OF_HOUSEHOLD_SIZE"
	BreachTooBigHousehold   models.BreachCode = "TOO_HIGH_NUMBER_OF_HOUSEHOLD_SIZE"
	BreachTooSmallSpace     models.BreachCode = "TOO_SMALL_LIVING_SPACE"
	BreachTooMuchSpace      models.BreachCode = "TOO_MUCH_LIVING_SPACE"

	BreachStudentOverage         models.BreachCode = "STUDENT_OVERAGE"
	BreachStudentTooBigHousehold models.BreachCode = "STUDENT_TOO_BIG_HOUSEHOLD_SIZE"
	BreachStudentTooMuchSpace    models.BreachCode = "STUDENT_TOO_MUCH_LIVING_SPACE"

	BreachTooEarlyYearOfConstruction models.BreachCode = "TOO_EARLY_YEAR_OF_CONSTRUCTION"
	BreachTooManyBathrooms           models.BreachCode = "TOO_MANY_BATHROOMS"
	BreachExtraBuildingTooBig        models.BreachCode = "TOO_MUCH_EXTRA_BUILDING_AREA"
	BreachHouseSubleted              models.BreachCode = "HOUSE_IS_SUBLETED"

	BreachNegativeCoinsured models.BreachCode = "NEGATIVE_NUMBER_OF_COINSURED"
	BreachTooManyCoinsured  models.BreachCode = "TOO_MANY_COINSURED"

	BreachYouthOverage            models.BreachCode = "YOUTH_OVERAGE"
	BreachYouthTooManyCoinsured   models.BreachCode = "YOUTH_TOO_MANY_COINSURED"
	BreachStudentTooManyCoinsured models.BreachCode = "STUDENT_TOO_MANY_COINSURED"
)
