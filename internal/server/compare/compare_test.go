package compare

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/quotecore/internal/server/models"
)

func strptr(s string) *string { return &s }
func intptr(i int) *int       { return &i }

func apartment(mut func(*models.SwedishApartmentData)) models.ProductData {
	d := &models.SwedishApartmentData{
		SSN:           strptr("199001011234"),
		Street:        "Kungsgatan 1",
		ZipCode:       "11122",
		City:          strptr("Stockholm"),
		Floor:         intptr(3),
		LivingSpace:   44,
		HouseholdSize: 2,
		SubType:       models.ApartmentBRF,
	}
	if mut != nil {
		mut(d)
	}
	return models.ProductData{Variant: models.VariantSwedishApartment, SwedishApartment: d}
}

func house(mut func(*models.SwedishHouseData)) models.ProductData {
	d := &models.SwedishHouseData{
		SSN:                strptr("198505054321"),
		Street:             "Villagatan 3",
		ZipCode:            "22233",
		LivingSpace:        120,
		HouseholdSize:      4,
		YearOfConstruction: 1972,
		NumberOfBathrooms:  2,
		ExtraBuildings: []models.ExtraBuilding{
			{Type: "GARAGE", Area: 20, HasWaterConnected: false},
			{Type: "SAUNA", Area: 10, HasWaterConnected: true},
		},
	}
	if mut != nil {
		mut(d)
	}
	return models.ProductData{Variant: models.VariantSwedishHouse, SwedishHouse: d}
}

func TestSameProductData_Reflexive(t *testing.T) {
	a := apartment(nil)
	assert.True(t, SameProductData(a, a))

	h := house(nil)
	assert.True(t, SameProductData(h, h))
}

func TestSameQuote_Reflexive(t *testing.T) {
	r := &models.QuoteRevision{Data: apartment(nil)}
	assert.True(t, SameQuote(r, r))
}

func TestSameProductData_DifferentVariantsNeverEqual(t *testing.T) {
	assert.False(t, SameProductData(apartment(nil), house(nil)))
}

func TestSameProductData_ExactFieldMismatch(t *testing.T) {
	a := apartment(nil)
	b := apartment(func(d *models.SwedishApartmentData) { d.ZipCode = "99999" })
	assert.False(t, SameProductData(a, b))

	c := apartment(func(d *models.SwedishApartmentData) { d.HouseholdSize = 5 })
	assert.False(t, SameProductData(a, c))
}

func TestSameProductData_NullTolerantSSN(t *testing.T) {
	withSSN := apartment(nil)
	noSSN := apartment(func(d *models.SwedishApartmentData) { d.SSN = nil })

	// absence on either side never creates a mismatch on its own
	assert.True(t, SameProductData(withSSN, noSSN))
	assert.True(t, SameProductData(noSSN, withSSN))
	assert.True(t, SameProductData(noSSN, noSSN))

	otherSSN := apartment(func(d *models.SwedishApartmentData) { d.SSN = strptr("197001011111") })
	assert.False(t, SameProductData(withSSN, otherSSN), "two present SSNs must still match exactly")
}

func TestSameProductData_NullTolerantBirthDate(t *testing.T) {
	bd := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	withBD := apartment(func(d *models.SwedishApartmentData) { d.BirthDate = &bd })
	without := apartment(nil)

	assert.True(t, SameProductData(withBD, without))

	// same instant in another location still matches
	oslo := bd.In(time.FixedZone("CET", 3600))
	inOslo := apartment(func(d *models.SwedishApartmentData) { d.BirthDate = &oslo })
	assert.True(t, SameProductData(withBD, inOslo))
}

func TestSameProductData_ExtraBuildingsOrderIrrelevant(t *testing.T) {
	a := house(nil)
	b := house(func(d *models.SwedishHouseData) {
		d.ExtraBuildings = []models.ExtraBuilding{
			{Type: "SAUNA", Area: 10, HasWaterConnected: true},
			{Type: "GARAGE", Area: 20, HasWaterConnected: false},
		}
	})
	assert.True(t, SameProductData(a, b))
}

func TestSameProductData_ExtraBuildingsCountMatters(t *testing.T) {
	a := house(nil)
	b := house(func(d *models.SwedishHouseData) {
		d.ExtraBuildings = append(d.ExtraBuildings, models.ExtraBuilding{Type: "GARAGE", Area: 20})
	})
	assert.False(t, SameProductData(a, b))

	c := house(func(d *models.SwedishHouseData) {
		d.ExtraBuildings[1].HasWaterConnected = false
	})
	assert.False(t, SameProductData(a, c), "composition matters")
}

func TestSameProductData_TotalOverAllVariants(t *testing.T) {
	// every variant must have a comparator table; a missing case panics
	for _, v := range models.AllVariants() {
		d := minimalPayload(v)
		assert.NotPanics(t, func() { SameProductData(d, d) }, "variant %s", v)
		assert.True(t, SameProductData(d, d), "variant %s", v)
	}
}

func minimalPayload(v models.ProductVariant) models.ProductData {
	bd := time.Date(1995, 3, 2, 0, 0, 0, 0, time.UTC)
	switch v {
	case models.VariantSwedishApartment:
		return apartment(nil)
	case models.VariantSwedishHouse:
		return house(nil)
	case models.VariantNorwegianHomeContents:
		return models.ProductData{Variant: v, NorwegianHomeContents: &models.NorwegianHomeContentsData{
			BirthDate: &bd, Street: "Storgata 5", ZipCode: "0155", LivingSpace: 50, SubType: models.HomeContentsRent,
		}}
	case models.VariantNorwegianTravel:
		return models.ProductData{Variant: v, NorwegianTravel: &models.NorwegianTravelData{BirthDate: &bd}}
	case models.VariantDanishHomeContents:
		return models.ProductData{Variant: v, DanishHomeContents: &models.DanishHomeContentsData{
			BirthDate: &bd, Street: "Nørrebrogade 20", ZipCode: "2200", LivingSpace: 60, SubType: models.HomeContentsOwn,
		}}
	case models.VariantDanishAccident:
		return models.ProductData{Variant: v, DanishAccident: &models.DanishAccidentData{
			BirthDate: &bd, Street: "Nørrebrogade 20", ZipCode: "2200",
		}}
	case models.VariantDanishTravel:
		return models.ProductData{Variant: v, DanishTravel: &models.DanishTravelData{
			BirthDate: &bd, Street: "Nørrebrogade 20", ZipCode: "2200",
		}}
	}
	panic("unknown variant " + string(v))
}
