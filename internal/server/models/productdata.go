package models

import (
	"fmt"
	"time"
)

// ProductVariant tags the mutually exclusive product-data payloads. Adding a
// variant requires touching the comparator tables, the guideline registry
// and the address-fingerprint mapper; each of those switches fails fast on
// an unknown tag and a totality test walks AllVariants.
type ProductVariant string

const (
	VariantSwedishApartment      ProductVariant = "SWEDISH_APARTMENT"
	VariantSwedishHouse          ProductVariant = "SWEDISH_HOUSE"
	VariantNorwegianHomeContents ProductVariant = "NORWEGIAN_HOME_CONTENT"
	VariantNorwegianTravel       ProductVariant = "NORWEGIAN_TRAVEL"
	VariantDanishHomeContents    ProductVariant = "DANISH_HOME_CONTENT"
	VariantDanishAccident        ProductVariant = "DANISH_ACCIDENT"
	VariantDanishTravel          ProductVariant = "DANISH_TRAVEL"
)

// AllVariants lists every known product variant, for exhaustiveness tests
// and registry construction.
func AllVariants() []ProductVariant {
	return []ProductVariant{
		VariantSwedishApartment,
		VariantSwedishHouse,
		VariantNorwegianHomeContents,
		VariantNorwegianTravel,
		VariantDanishHomeContents,
		VariantDanishAccident,
		VariantDanishTravel,
	}
}

// ApartmentSubType distinguishes ownership forms of Swedish apartments.
// Student subtypes carry stricter underwriting caps.
type ApartmentSubType string

const (
	ApartmentBRF         ApartmentSubType = "BRF"
	ApartmentRent        ApartmentSubType = "RENT"
	ApartmentStudentBRF  ApartmentSubType = "STUDENT_BRF"
	ApartmentStudentRent ApartmentSubType = "STUDENT_RENT"
)

// HomeContentsSubType distinguishes owned from rented homes in the Norwegian
// and Danish home-contents products.
type HomeContentsSubType string

const (
	HomeContentsOwn  HomeContentsSubType = "OWN"
	HomeContentsRent HomeContentsSubType = "RENT"
)

// ExtraBuilding is an outbuilding covered by a Swedish house policy.
type ExtraBuilding struct {
	Type              string `json:"type"`
	Area              int    `json:"area"`
	HasWaterConnected bool   `json:"hasWaterConnected"`
}

// SwedishApartmentData is the payload for apartment quotes on the Swedish
// market. SSN is the primary personal identifier; birth date is derivable
// from it but may also be supplied directly.
type SwedishApartmentData struct {
	SSN       *string    `json:"ssn,omitempty"`
	BirthDate *time.Time `json:"birthDate,omitempty"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     *string    `json:"email,omitempty"`

	Street  string  `json:"street"`
	ZipCode string  `json:"zipCode"`
	City    *string `json:"city,omitempty"`
	Floor   *int    `json:"floor,omitempty"`

	LivingSpace   int              `json:"livingSpace"`
	HouseholdSize int              `json:"householdSize"`
	SubType       ApartmentSubType `json:"subType"`
}

// IsStudent reports whether the apartment sub-type is one of the student
// forms.
func (d SwedishApartmentData) IsStudent() bool {
	return d.SubType == ApartmentStudentBRF || d.SubType == ApartmentStudentRent
}

// SwedishHouseData is the payload for house quotes on the Swedish market.
type SwedishHouseData struct {
	SSN       *string    `json:"ssn,omitempty"`
	BirthDate *time.Time `json:"birthDate,omitempty"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     *string    `json:"email,omitempty"`

	Street  string  `json:"street"`
	ZipCode string  `json:"zipCode"`
	City    *string `json:"city,omitempty"`

	LivingSpace        int  `json:"livingSpace"`
	HouseholdSize      int  `json:"householdSize"`
	AncillaryArea      int  `json:"ancillaryArea"`
	YearOfConstruction int  `json:"yearOfConstruction"`
	NumberOfBathrooms  int  `json:"numberOfBathrooms"`
	IsSubleted         bool `json:"isSubleted"`

	ExtraBuildings []ExtraBuilding `json:"extraBuildings,omitempty"`
}

// NorwegianHomeContentsData is the payload for home-contents quotes on the
// Norwegian market. Norwegian quotes identify people by birth date; the
// national identity number is optional.
type NorwegianHomeContentsData struct {
	SSN       *string    `json:"ssn,omitempty"`
	BirthDate *time.Time `json:"birthDate,omitempty"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     *string    `json:"email,omitempty"`

	Street  string  `json:"street"`
	ZipCode string  `json:"zipCode"`
	City    *string `json:"city,omitempty"`

	LivingSpace int                 `json:"livingSpace"`
	Coinsured   int                 `json:"coinsured"`
	IsYouth     bool                `json:"isYouth"`
	SubType     HomeContentsSubType `json:"subType"`
}

// NorwegianTravelData is the payload for travel quotes on the Norwegian
// market. Travel products carry no insured address.
type NorwegianTravelData struct {
	SSN       *string    `json:"ssn,omitempty"`
	BirthDate *time.Time `json:"birthDate,omitempty"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     *string    `json:"email,omitempty"`

	Coinsured int  `json:"coinsured"`
	IsYouth   bool `json:"isYouth"`
}

// DanishHomeContentsData is the payload for home-contents quotes on the
// Danish market.
type DanishHomeContentsData struct {
	SSN       *string    `json:"ssn,omitempty"`
	BirthDate *time.Time `json:"birthDate,omitempty"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     *string    `json:"email,omitempty"`

	Street    string  `json:"street"`
	ZipCode   string  `json:"zipCode"`
	Apartment *string `json:"apartment,omitempty"`
	Floor     *string `json:"floor,omitempty"`
	City      *string `json:"city,omitempty"`

	LivingSpace int                 `json:"livingSpace"`
	Coinsured   int                 `json:"coinsured"`
	IsStudent   bool                `json:"isStudent"`
	SubType     HomeContentsSubType `json:"subType"`
}

// DanishAccidentData is the payload for accident quotes on the Danish market.
type DanishAccidentData struct {
	SSN       *string    `json:"ssn,omitempty"`
	BirthDate *time.Time `json:"birthDate,omitempty"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     *string    `json:"email,omitempty"`

	Street  string  `json:"street"`
	ZipCode string  `json:"zipCode"`
	City    *string `json:"city,omitempty"`

	Coinsured int  `json:"coinsured"`
	IsStudent bool `json:"isStudent"`
}

// DanishTravelData is the payload for travel quotes on the Danish market.
// Unlike the Norwegian travel product it keeps a home address, which also
// serves as the requoting fingerprint.
type DanishTravelData struct {
	SSN       *string    `json:"ssn,omitempty"`
	BirthDate *time.Time `json:"birthDate,omitempty"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     *string    `json:"email,omitempty"`

	Street  string  `json:"street"`
	ZipCode string  `json:"zipCode"`
	City    *string `json:"city,omitempty"`

	Coinsured int  `json:"coinsured"`
	IsStudent bool `json:"isStudent"`
}

// ProductData is a tagged union: Variant names exactly one of the payload
// pointers, and that pointer must be non-nil. A tag pointing at a nil
// payload is a contract violation and panics (fail fast, not a breach).
// The struct serializes naturally as a tagged union, so revisions with old
// variants stay readable after new variants are added.
type ProductData struct {
	Variant ProductVariant `json:"variant"`

	SwedishApartment      *SwedishApartmentData      `json:"swedishApartment,omitempty"`
	SwedishHouse          *SwedishHouseData          `json:"swedishHouse,omitempty"`
	NorwegianHomeContents *NorwegianHomeContentsData `json:"norwegianHomeContents,omitempty"`
	NorwegianTravel       *NorwegianTravelData       `json:"norwegianTravel,omitempty"`
	DanishHomeContents    *DanishHomeContentsData    `json:"danishHomeContents,omitempty"`
	DanishAccident        *DanishAccidentData        `json:"danishAccident,omitempty"`
	DanishTravel          *DanishTravelData          `json:"danishTravel,omitempty"`
}

// MustValidate panics when the variant tag is unknown or points at a nil
// payload. Called on every read path so malformed data fails fast instead of
// surfacing as a nil dereference deeper down.
func (d ProductData) MustValidate() {
	var ok bool
	switch d.Variant {
	case VariantSwedishApartment:
		ok = d.SwedishApartment != nil
	case VariantSwedishHouse:
		ok = d.SwedishHouse != nil
	case VariantNorwegianHomeContents:
		ok = d.NorwegianHomeContents != nil
	case VariantNorwegianTravel:
		ok = d.NorwegianTravel != nil
	case VariantDanishHomeContents:
		ok = d.DanishHomeContents != nil
	case VariantDanishAccident:
		ok = d.DanishAccident != nil
	case VariantDanishTravel:
		ok = d.DanishTravel != nil
	default:
		panic(fmt.Sprintf("models: unknown product variant %q", d.Variant))
	}
	if !ok {
		panic(fmt.Sprintf("models: product data tagged %q has no payload", d.Variant))
	}
}

// SSN returns the national identity number of the policy holder, if present.
func (d ProductData) SSN() *string {
	d.MustValidate()
	switch d.Variant {
	case VariantSwedishApartment:
		return d.SwedishApartment.SSN
	case VariantSwedishHouse:
		return d.SwedishHouse.SSN
	case VariantNorwegianHomeContents:
		return d.NorwegianHomeContents.SSN
	case VariantNorwegianTravel:
		return d.NorwegianTravel.SSN
	case VariantDanishHomeContents:
		return d.DanishHomeContents.SSN
	case VariantDanishAccident:
		return d.DanishAccident.SSN
	default:
		return d.DanishTravel.SSN
	}
}

// BirthDate returns the policy holder's birth date, if present.
func (d ProductData) BirthDate() *time.Time {
	d.MustValidate()
	switch d.Variant {
	case VariantSwedishApartment:
		return d.SwedishApartment.BirthDate
	case VariantSwedishHouse:
		return d.SwedishHouse.BirthDate
	case VariantNorwegianHomeContents:
		return d.NorwegianHomeContents.BirthDate
	case VariantNorwegianTravel:
		return d.NorwegianTravel.BirthDate
	case VariantDanishHomeContents:
		return d.DanishHomeContents.BirthDate
	case VariantDanishAccident:
		return d.DanishAccident.BirthDate
	default:
		return d.DanishTravel.BirthDate
	}
}

// Address returns the insured address used as the requoting fingerprint.
// ok is false for products without an insured address (Norwegian travel).
func (d ProductData) Address() (street, zipCode string, ok bool) {
	d.MustValidate()
	switch d.Variant {
	case VariantSwedishApartment:
		return d.SwedishApartment.Street, d.SwedishApartment.ZipCode, true
	case VariantSwedishHouse:
		return d.SwedishHouse.Street, d.SwedishHouse.ZipCode, true
	case VariantNorwegianHomeContents:
		return d.NorwegianHomeContents.Street, d.NorwegianHomeContents.ZipCode, true
	case VariantNorwegianTravel:
		return "", "", false
	case VariantDanishHomeContents:
		return d.DanishHomeContents.Street, d.DanishHomeContents.ZipCode, true
	case VariantDanishAccident:
		return d.DanishAccident.Street, d.DanishAccident.ZipCode, true
	default:
		return d.DanishTravel.Street, d.DanishTravel.ZipCode, true
	}
}

// Clone returns a deep copy of the product data.
func (d ProductData) Clone() ProductData {
	c := d
	if d.SwedishApartment != nil {
		v := *d.SwedishApartment
		c.SwedishApartment = &v
	}
	if d.SwedishHouse != nil {
		v := *d.SwedishHouse
		v.ExtraBuildings = append([]ExtraBuilding(nil), d.SwedishHouse.ExtraBuildings...)
		c.SwedishHouse = &v
	}
	if d.NorwegianHomeContents != nil {
		v := *d.NorwegianHomeContents
		c.NorwegianHomeContents = &v
	}
	if d.NorwegianTravel != nil {
		v := *d.NorwegianTravel
		c.NorwegianTravel = &v
	}
	if d.DanishHomeContents != nil {
		v := *d.DanishHomeContents
		c.DanishHomeContents = &v
	}
	if d.DanishAccident != nil {
		v := *d.DanishAccident
		c.DanishAccident = &v
	}
	if d.DanishTravel != nil {
		v := *d.DanishTravel
		c.DanishTravel = &v
	}
	return c
}

// Anonymized returns a copy with all personal identifiers stripped, for the
// archival snapshot written before a purge. Address and coverage fields stay
// so aggregate retention reporting remains possible.
func (d ProductData) Anonymized() ProductData {
	c := d.Clone()
	c.MustValidate()
	scrub := func(ssn **string, bd **time.Time, first, last *string, email **string) {
		*ssn = nil
		*bd = nil
		*first = ""
		*last = ""
		*email = nil
	}
	switch c.Variant {
	case VariantSwedishApartment:
		p := c.SwedishApartment
		scrub(&p.SSN, &p.BirthDate, &p.FirstName, &p.LastName, &p.Email)
	case VariantSwedishHouse:
		p := c.SwedishHouse
		scrub(&p.SSN, &p.BirthDate, &p.FirstName, &p.LastName, &p.Email)
	case VariantNorwegianHomeContents:
		p := c.NorwegianHomeContents
		scrub(&p.SSN, &p.BirthDate, &p.FirstName, &p.LastName, &p.Email)
	case VariantNorwegianTravel:
		p := c.NorwegianTravel
		scrub(&p.SSN, &p.BirthDate, &p.FirstName, &p.LastName, &p.Email)
	case VariantDanishHomeContents:
		p := c.DanishHomeContents
		scrub(&p.SSN, &p.BirthDate, &p.FirstName, &p.LastName, &p.Email)
	case VariantDanishAccident:
		p := c.DanishAccident
		scrub(&p.SSN, &p.BirthDate, &p.FirstName, &p.LastName, &p.Email)
	default:
		p := c.DanishTravel
		scrub(&p.SSN, &p.BirthDate, &p.FirstName, &p.LastName, &p.Email)
	}
	return c
}
