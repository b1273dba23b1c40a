// Package compare implements structural equality over quotes and their
// product-data payloads. Each variant has an explicit, statically declared
// list of field comparators instead of reflective field walking, so adding a
// payload field without deciding its comparison policy is visible in review
// and in the per-field tests.
//
// Three policies exist:
//   - exact: the default for numeric, enum and string fields;
//   - null-tolerant: for ssn and birthDate, where an absent value on either side
//     matches, so missing optional identity data never causes a false
//     fingerprint mismatch;
//   - unordered multiset: for extra-building lists, where order is
//     irrelevant but count and composition are not.
package compare

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/quotecore/internal/server/models"
)

// fieldComparator decides equality for one logical field of two payloads of
// the same variant.
type fieldComparator[T any] struct {
	name string
	eq   func(a, b T) bool
}

func exact[T any, V comparable](name string, get func(T) V) fieldComparator[T] {
	return fieldComparator[T]{name: name, eq: func(a, b T) bool {
		return get(a) == get(b)
	}}
}

// exactPtr treats two nils as equal and nil-vs-value as different.
func exactPtr[T any, V comparable](name string, get func(T) *V) fieldComparator[T] {
	return fieldComparator[T]{name: name, eq: func(a, b T) bool {
		pa, pb := get(a), get(b)
		if pa == nil || pb == nil {
			return pa == nil && pb == nil
		}
		return *pa == *pb
	}}
}

// nullTolerant matches when either side is absent.
func nullTolerant[T any, V comparable](name string, get func(T) *V) fieldComparator[T] {
	return fieldComparator[T]{name: name, eq: func(a, b T) bool {
		pa, pb := get(a), get(b)
		if pa == nil || pb == nil {
			return true
		}
		return *pa == *pb
	}}
}

// nullTolerantTime is nullTolerant for time values, using time.Time.Equal so
// locations and monotonic clocks do not affect the result.
func nullTolerantTime[T any](name string, get func(T) *time.Time) fieldComparator[T] {
	return fieldComparator[T]{name: name, eq: func(a, b T) bool {
		pa, pb := get(a), get(b)
		if pa == nil || pb == nil {
			return true
		}
		return pa.Equal(*pb)
	}}
}

// extraBuildingsMultiset compares outbuilding lists as unordered multisets.
func extraBuildingsMultiset[T any](name string, get func(T) []models.ExtraBuilding) fieldComparator[T] {
	return fieldComparator[T]{name: name, eq: func(a, b T) bool {
		return buildingsKey(get(a)) == buildingsKey(get(b))
	}}
}

func buildingsKey(bs []models.ExtraBuilding) string {
	keys := make([]string, 0, len(bs))
	for _, b := range bs {
		keys = append(keys, fmt.Sprintf("%s|%d|%t", b.Type, b.Area, b.HasWaterConnected))
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}

func allEqual[T any](fields []fieldComparator[T], a, b T) bool {
	for _, f := range fields {
		if !f.eq(a, b) {
			return false
		}
	}
	return true
}

// Names and email are contact fields; they carry no risk information and are
// deliberately absent from every table below.

var swedishApartmentFields = []fieldComparator[models.SwedishApartmentData]{
	nullTolerant("ssn", func(d models.SwedishApartmentData) *string { return d.SSN }),
	nullTolerantTime("birthDate", func(d models.SwedishApartmentData) *time.Time { return d.BirthDate }),
	exact("street", func(d models.SwedishApartmentData) string { return d.Street }),
	exact("zipCode", func(d models.SwedishApartmentData) string { return d.ZipCode }),
	exactPtr("city", func(d models.SwedishApartmentData) *string { return d.City }),
	exactPtr("floor", func(d models.SwedishApartmentData) *int { return d.Floor }),
	exact("livingSpace", func(d models.SwedishApartmentData) int { return d.LivingSpace }),
	exact("householdSize", func(d models.SwedishApartmentData) int { return d.HouseholdSize }),
	exact("subType", func(d models.SwedishApartmentData) models.ApartmentSubType { return d.SubType }),
}

var swedishHouseFields = []fieldComparator[models.SwedishHouseData]{
	nullTolerant("ssn", func(d models.SwedishHouseData) *string { return d.SSN }),
	nullTolerantTime("birthDate", func(d models.SwedishHouseData) *time.Time { return d.BirthDate }),
	exact("street", func(d models.SwedishHouseData) string { return d.Street }),
	exact("zipCode", func(d models.SwedishHouseData) string { return d.ZipCode }),
	exactPtr("city", func(d models.SwedishHouseData) *string { return d.City }),
	exact("livingSpace", func(d models.SwedishHouseData) int { return d.LivingSpace }),
	exact("householdSize", func(d models.SwedishHouseData) int { return d.HouseholdSize }),
	exact("ancillaryArea", func(d models.SwedishHouseData) int { return d.AncillaryArea }),
	exact("yearOfConstruction", func(d models.SwedishHouseData) int { return d.YearOfConstruction }),
	exact("numberOfBathrooms", func(d models.SwedishHouseData) int { return d.NumberOfBathrooms }),
	exact("isSubleted", func(d models.SwedishHouseData) bool { return d.IsSubleted }),
	extraBuildingsMultiset("extraBuildings", func(d models.SwedishHouseData) []models.ExtraBuilding { return d.ExtraBuildings }),
}

var norwegianHomeContentsFields = []fieldComparator[models.NorwegianHomeContentsData]{
	nullTolerant("ssn", func(d models.NorwegianHomeContentsData) *string { return d.SSN }),
	nullTolerantTime("birthDate", func(d models.NorwegianHomeContentsData) *time.Time { return d.BirthDate }),
	exact("street", func(d models.NorwegianHomeContentsData) string { return d.Street }),
	exact("zipCode", func(d models.NorwegianHomeContentsData) string { return d.ZipCode }),
	exactPtr("city", func(d models.NorwegianHomeContentsData) *string { return d.City }),
	exact("livingSpace", func(d models.NorwegianHomeContentsData) int { return d.LivingSpace }),
	exact("coinsured", func(d models.NorwegianHomeContentsData) int { return d.Coinsured }),
	exact("isYouth", func(d models.NorwegianHomeContentsData) bool { return d.IsYouth }),
	exact("subType", func(d models.NorwegianHomeContentsData) models.HomeContentsSubType { return d.SubType }),
}

var norwegianTravelFields = []fieldComparator[models.NorwegianTravelData]{
	nullTolerant("ssn", func(d models.NorwegianTravelData) *string { return d.SSN }),
	nullTolerantTime("birthDate", func(d models.NorwegianTravelData) *time.Time { return d.BirthDate }),
	exact("coinsured", func(d models.NorwegianTravelData) int { return d.Coinsured }),
	exact("isYouth", func(d models.NorwegianTravelData) bool { return d.IsYouth }),
}

var danishHomeContentsFields = []fieldComparator[models.DanishHomeContentsData]{
	nullTolerant("ssn", func(d models.DanishHomeContentsData) *string { return d.SSN }),
	nullTolerantTime("birthDate", func(d models.DanishHomeContentsData) *time.Time { return d.BirthDate }),
	exact("street", func(d models.DanishHomeContentsData) string { return d.Street }),
	exact("zipCode", func(d models.DanishHomeContentsData) string { return d.ZipCode }),
	exactPtr("apartment", func(d models.DanishHomeContentsData) *string { return d.Apartment }),
	exactPtr("floor", func(d models.DanishHomeContentsData) *string { return d.Floor }),
	exactPtr("city", func(d models.DanishHomeContentsData) *string { return d.City }),
	exact("livingSpace", func(d models.DanishHomeContentsData) int { return d.LivingSpace }),
	exact("coinsured", func(d models.DanishHomeContentsData) int { return d.Coinsured }),
	exact("isStudent", func(d models.DanishHomeContentsData) bool { return d.IsStudent }),
	exact("subType", func(d models.DanishHomeContentsData) models.HomeContentsSubType { return d.SubType }),
}

var danishAccidentFields = []fieldComparator[models.DanishAccidentData]{
	nullTolerant("ssn", func(d models.DanishAccidentData) *string { return d.SSN }),
	nullTolerantTime("birthDate", func(d models.DanishAccidentData) *time.Time { return d.BirthDate }),
	exact("street", func(d models.DanishAccidentData) string { return d.Street }),
	exact("zipCode", func(d models.DanishAccidentData) string { return d.ZipCode }),
	exactPtr("city", func(d models.DanishAccidentData) *string { return d.City }),
	exact("coinsured", func(d models.DanishAccidentData) int { return d.Coinsured }),
	exact("isStudent", func(d models.DanishAccidentData) bool { return d.IsStudent }),
}

var danishTravelFields = []fieldComparator[models.DanishTravelData]{
	nullTolerant("ssn", func(d models.DanishTravelData) *string { return d.SSN }),
	nullTolerantTime("birthDate", func(d models.DanishTravelData) *time.Time { return d.BirthDate }),
	exact("street", func(d models.DanishTravelData) string { return d.Street }),
	exact("zipCode", func(d models.DanishTravelData) string { return d.ZipCode }),
	exactPtr("city", func(d models.DanishTravelData) *string { return d.City }),
	exact("coinsured", func(d models.DanishTravelData) int { return d.Coinsured }),
	exact("isStudent", func(d models.DanishTravelData) bool { return d.IsStudent }),
}

// SameProductData reports whether two payloads describe the same insured
// risk. Payloads of different variants are never equal. The comparison is
// deterministic, total and side-effect free.
func SameProductData(a, b models.ProductData) bool {
	if a.Variant != b.Variant {
		return false
	}
	a.MustValidate()
	b.MustValidate()
	switch a.Variant {
	case models.VariantSwedishApartment:
		return allEqual(swedishApartmentFields, *a.SwedishApartment, *b.SwedishApartment)
	case models.VariantSwedishHouse:
		return allEqual(swedishHouseFields, *a.SwedishHouse, *b.SwedishHouse)
	case models.VariantNorwegianHomeContents:
		return allEqual(norwegianHomeContentsFields, *a.NorwegianHomeContents, *b.NorwegianHomeContents)
	case models.VariantNorwegianTravel:
		return allEqual(norwegianTravelFields, *a.NorwegianTravel, *b.NorwegianTravel)
	case models.VariantDanishHomeContents:
		return allEqual(danishHomeContentsFields, *a.DanishHomeContents, *b.DanishHomeContents)
	case models.VariantDanishAccident:
		return allEqual(danishAccidentFields, *a.DanishAccident, *b.DanishAccident)
	case models.VariantDanishTravel:
		return allEqual(danishTravelFields, *a.DanishTravel, *b.DanishTravel)
	default:
		panic(fmt.Sprintf("compare: unknown product variant %q", a.Variant))
	}
}

// SameQuote reports whether two revisions describe the same quote: same
// variant and structurally equal product data.
func SameQuote(a, b *models.QuoteRevision) bool {
	return SameProductData(a.Data, b.Data)
}

// SamePerson reports whether two payloads identify the same person,
// null-tolerantly on SSN and birth date. This is the person half of the
// requoting fingerprint; the address half is matched by the store's
// fingerprint lookup.
func SamePerson(a, b models.ProductData) bool {
	if sa, sb := a.SSN(), b.SSN(); sa != nil && sb != nil && *sa != *sb {
		return false
	}
	if ba, bb := a.BirthDate(), b.BirthDate(); ba != nil && bb != nil && !ba.Equal(*bb) {
		return false
	}
	return true
}
