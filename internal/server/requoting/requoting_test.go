package requoting

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/quotecore/internal/logging"
	"github.com/dmitrijs2005/quotecore/internal/server/collaborators"
	"github.com/dmitrijs2005/quotecore/internal/server/metrics"
	"github.com/dmitrijs2005/quotecore/internal/server/models"
	"github.com/dmitrijs2005/quotecore/internal/server/repositories/quotes"
)

type fakeAgreements struct {
	states map[string]collaborators.AgreementState
	err    error
}

func (f *fakeAgreements) Status(ctx context.Context, agreementID string) (collaborators.AgreementState, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.states[agreementID], nil
}

// failingRepo breaks the fingerprint lookup; only the methods the engine
// touches are implemented.
type failingRepo struct {
	quotes.Repository
}

func (f *failingRepo) FindByAddressFingerprint(ctx context.Context, street, zip string, v models.ProductVariant) ([]uuid.UUID, error) {
	return nil, errors.New("index unavailable")
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))
}

func testEngine(t *testing.T, repo quotes.Repository, agreements collaborators.AgreementStatus, denylist Denylist, now time.Time) *Engine {
	t.Helper()
	if agreements == nil {
		agreements = &fakeAgreements{}
	}
	e := NewEngine(repo, agreements, denylist, testLogger(), metrics.NewMetrics(prometheus.NewRegistry()), func() time.Time { return now })
	return e
}

func sek(amount int64) models.Price {
	return models.Price{AmountMinor: amount, Currency: "SEK"}
}

func apartment(ssn, street, zip string) models.ProductData {
	d := models.ProductData{
		Variant: models.VariantSwedishApartment,
		SwedishApartment: &models.SwedishApartmentData{
			FirstName:     "Sara",
			LastName:      "Lind",
			Street:        street,
			ZipCode:       zip,
			LivingSpace:   44,
			HouseholdSize: 2,
			SubType:       models.ApartmentBRF,
		},
	}
	if ssn != "" {
		d.SwedishApartment.SSN = &ssn
	}
	return d
}

func seedQuote(t *testing.T, repo *quotes.InMemoryRepository, data models.ProductData, price *models.Price, created time.Time) *models.QuoteRevision {
	t.Helper()
	ctx := context.Background()
	master := &models.MasterQuote{ID: uuid.New(), CreatedAt: created, InitiatedFrom: models.ChannelWeb}
	require.NoError(t, repo.InsertMaster(ctx, master))

	rev := &models.QuoteRevision{
		ID:        uuid.New(),
		MasterID:  master.ID,
		Sequence:  1,
		CreatedAt: created,
		State:     models.StateQuoted,
		MemberID:  "member-" + master.ID.String()[:8],
		Data:      data,
		Price:     price,
		ValidTo:   created.Add(30 * 24 * time.Hour),
	}
	if price != nil {
		rev.LineItems = []models.LineItem{{Type: "BASE", AmountMinor: price.AmountMinor}}
	}
	require.NoError(t, repo.AppendRevision(ctx, rev))
	return rev
}

func incoming(data models.ProductData) *models.QuoteRevision {
	return &models.QuoteRevision{
		ID:       uuid.New(),
		MasterID: uuid.New(),
		Data:     data,
	}
}

func TestFirstQuoteAdoptsFreshPrice(t *testing.T) {
	now := time.Now()
	repo := quotes.NewInMemoryRepository()
	e := testEngine(t, repo, nil, nil, now)

	items := []models.LineItem{{Type: "BASE", AmountMinor: 1200}}
	d := e.UseOldOrNewPrice(context.Background(), models.ChannelWeb, incoming(apartment("199001011234", "Storgatan 1", "11122")), sek(1200), items)

	assert.False(t, d.Reused)
	assert.Equal(t, sek(1200), d.Price)
	assert.Nil(t, d.PriceFrom)
	assert.Equal(t, items, d.LineItems)
}

func TestReusesRecentPrice(t *testing.T) {
	now := time.Now()
	repo := quotes.NewInMemoryRepository()
	prior := seedQuote(t, repo, apartment("199001011234", "Storgatan 1", "11122"), &models.Price{AmountMinor: 1200, Currency: "SEK"}, now.Add(-5*24*time.Hour))
	e := testEngine(t, repo, nil, nil, now)

	d := e.UseOldOrNewPrice(context.Background(), models.ChannelWeb, incoming(apartment("199001011234", "Storgatan 1", "11122")), sek(2000), nil)

	assert.True(t, d.Reused)
	assert.Equal(t, sek(1200), d.Price)
	require.NotNil(t, d.PriceFrom)
	assert.Equal(t, prior.ID, *d.PriceFrom)
	assert.Equal(t, prior.LineItems, d.LineItems)
}

func TestReuseCarriesOriginalPriceFrom(t *testing.T) {
	now := time.Now()
	repo := quotes.NewInMemoryRepository()
	origin := uuid.New()

	data := apartment("199001011234", "Storgatan 1", "11122")
	master := &models.MasterQuote{ID: uuid.New(), CreatedAt: now, InitiatedFrom: models.ChannelWeb}
	require.NoError(t, repo.InsertMaster(context.Background(), master))
	require.NoError(t, repo.AppendRevision(context.Background(), &models.QuoteRevision{
		ID: uuid.New(), MasterID: master.ID, Sequence: 1, CreatedAt: now.Add(-24 * time.Hour),
		State: models.StateQuoted, MemberID: "m", Data: data,
		Price: &models.Price{AmountMinor: 1200, Currency: "SEK"}, PriceFrom: &origin,
		LineItems: []models.LineItem{{Type: "BASE", AmountMinor: 1200}},
		ValidTo:   now.Add(29 * 24 * time.Hour),
	}))
	e := testEngine(t, repo, nil, nil, now)

	d := e.UseOldOrNewPrice(context.Background(), models.ChannelWeb, incoming(data), sek(2000), nil)

	assert.True(t, d.Reused)
	require.NotNil(t, d.PriceFrom)
	assert.Equal(t, origin, *d.PriceFrom)
}

func TestAdoptsAfterStablePeriod(t *testing.T) {
	now := time.Now()
	repo := quotes.NewInMemoryRepository()
	seedQuote(t, repo, apartment("199001011234", "Storgatan 1", "11122"), &models.Price{AmountMinor: 1200, Currency: "SEK"}, now.Add(-40*24*time.Hour))
	e := testEngine(t, repo, nil, nil, now)

	d := e.UseOldOrNewPrice(context.Background(), models.ChannelWeb, incoming(apartment("199001011234", "Storgatan 1", "11122")), sek(2000), nil)

	assert.False(t, d.Reused)
	assert.Equal(t, sek(2000), d.Price)
}

func TestDampensRecentChange(t *testing.T) {
	now := time.Now()
	repo := quotes.NewInMemoryRepository()
	// baseline before the window, then a changed amount inside it
	seedQuote(t, repo, apartment("199001011234", "Storgatan 1", "11122"), &models.Price{AmountMinor: 1200, Currency: "SEK"}, now.Add(-40*24*time.Hour))
	recent := seedQuote(t, repo, apartment("199001011234", "Storgatan 1", "11122"), &models.Price{AmountMinor: 2000, Currency: "SEK"}, now.Add(-5*24*time.Hour))
	e := testEngine(t, repo, nil, nil, now)

	d := e.UseOldOrNewPrice(context.Background(), models.ChannelWeb, incoming(apartment("199001011234", "Storgatan 1", "11122")), sek(2500), nil)

	assert.True(t, d.Reused)
	assert.Equal(t, sek(2000), d.Price)
	require.NotNil(t, d.PriceFrom)
	assert.Equal(t, recent.ID, *d.PriceFrom)
}

func TestFingerprintMismatchAlwaysFresh(t *testing.T) {
	now := time.Now()
	repo := quotes.NewInMemoryRepository()
	seedQuote(t, repo, apartment("199001011234", "Storgatan 1", "11122"), &models.Price{AmountMinor: 1200, Currency: "SEK"}, now.Add(-5*24*time.Hour))
	e := testEngine(t, repo, nil, nil, now)

	d := e.UseOldOrNewPrice(context.Background(), models.ChannelWeb, incoming(apartment("199001011234", "Storgatan 1", "99999")), sek(2000), nil)

	assert.False(t, d.Reused)
	assert.Equal(t, sek(2000), d.Price)
}

func TestSSNMismatchIsNotTheSamePerson(t *testing.T) {
	now := time.Now()
	repo := quotes.NewInMemoryRepository()
	seedQuote(t, repo, apartment("199001011234", "Storgatan 1", "11122"), &models.Price{AmountMinor: 1200, Currency: "SEK"}, now.Add(-5*24*time.Hour))
	e := testEngine(t, repo, nil, nil, now)

	d := e.UseOldOrNewPrice(context.Background(), models.ChannelWeb, incoming(apartment("198505055678", "Storgatan 1", "11122")), sek(2000), nil)

	assert.False(t, d.Reused)
}

func TestMissingSSNStillMatches(t *testing.T) {
	now := time.Now()
	repo := quotes.NewInMemoryRepository()
	seedQuote(t, repo, apartment("199001011234", "Storgatan 1", "11122"), &models.Price{AmountMinor: 1200, Currency: "SEK"}, now.Add(-5*24*time.Hour))
	e := testEngine(t, repo, nil, nil, now)

	d := e.UseOldOrNewPrice(context.Background(), models.ChannelWeb, incoming(apartment("", "Storgatan 1", "11122")), sek(2000), nil)

	assert.True(t, d.Reused)
	assert.Equal(t, sek(1200), d.Price)
}

func TestManualOverrideAlwaysFresh(t *testing.T) {
	now := time.Now()
	repo := quotes.NewInMemoryRepository()
	seedQuote(t, repo, apartment("199001011234", "Storgatan 1", "11122"), &models.Price{AmountMinor: 1200, Currency: "SEK"}, now.Add(-5*24*time.Hour))
	e := testEngine(t, repo, nil, nil, now)

	rev := incoming(apartment("199001011234", "Storgatan 1", "11122"))
	rev.PriceOverridden = true
	d := e.UseOldOrNewPrice(context.Background(), models.ChannelWeb, rev, sek(2000), nil)

	assert.False(t, d.Reused)
	assert.Equal(t, sek(2000), d.Price)
}

func TestBackOfficeChannelAlwaysFresh(t *testing.T) {
	now := time.Now()
	repo := quotes.NewInMemoryRepository()
	seedQuote(t, repo, apartment("199001011234", "Storgatan 1", "11122"), &models.Price{AmountMinor: 1200, Currency: "SEK"}, now.Add(-5*24*time.Hour))
	e := testEngine(t, repo, nil, nil, now)

	d := e.UseOldOrNewPrice(context.Background(), models.ChannelBackOffice, incoming(apartment("199001011234", "Storgatan 1", "11122")), sek(2000), nil)

	assert.False(t, d.Reused)
}

func TestDenylistedAddressAlwaysFresh(t *testing.T) {
	now := time.Now()
	repo := quotes.NewInMemoryRepository()
	seedQuote(t, repo, apartment("199001011234", "Storgatan 1", "11122"), &models.Price{AmountMinor: 1200, Currency: "SEK"}, now.Add(-5*24*time.Hour))
	deny := NewDenylist([]string{"storgatan 1|11122"})
	e := testEngine(t, repo, nil, deny, now)

	d := e.UseOldOrNewPrice(context.Background(), models.ChannelWeb, incoming(apartment("199001011234", "Storgatan 1", "11122")), sek(2000), nil)

	assert.False(t, d.Reused)
}

func TestEqualAmountRefreshesLineItems(t *testing.T) {
	now := time.Now()
	repo := quotes.NewInMemoryRepository()
	seedQuote(t, repo, apartment("199001011234", "Storgatan 1", "11122"), &models.Price{AmountMinor: 1200, Currency: "SEK"}, now.Add(-5*24*time.Hour))
	e := testEngine(t, repo, nil, nil, now)

	items := []models.LineItem{{Type: "BASE", AmountMinor: 1100}, {Type: "TRAVEL", AmountMinor: 100}}
	d := e.UseOldOrNewPrice(context.Background(), models.ChannelWeb, incoming(apartment("199001011234", "Storgatan 1", "11122")), sek(1200), items)

	assert.False(t, d.Reused)
	assert.Equal(t, sek(1200), d.Price)
	assert.Equal(t, items, d.LineItems)
}

func TestLineItemMigrationTakesFreshPrice(t *testing.T) {
	now := time.Now()
	repo := quotes.NewInMemoryRepository()
	master := &models.MasterQuote{ID: uuid.New(), CreatedAt: now, InitiatedFrom: models.ChannelWeb}
	require.NoError(t, repo.InsertMaster(context.Background(), master))
	require.NoError(t, repo.AppendRevision(context.Background(), &models.QuoteRevision{
		ID: uuid.New(), MasterID: master.ID, Sequence: 1, CreatedAt: now.Add(-5 * 24 * time.Hour),
		State: models.StateQuoted, MemberID: "m",
		Data:  apartment("199001011234", "Storgatan 1", "11122"),
		Price: &models.Price{AmountMinor: 1200, Currency: "SEK"},
	}))
	e := testEngine(t, repo, nil, nil, now)

	items := []models.LineItem{{Type: "BASE", AmountMinor: 2000}}
	d := e.UseOldOrNewPrice(context.Background(), models.ChannelWeb, incoming(apartment("199001011234", "Storgatan 1", "11122")), sek(2000), items)

	assert.False(t, d.Reused)
	assert.Equal(t, sek(2000), d.Price)
}

func TestGatheringFailureDefaultsToFreshPrice(t *testing.T) {
	now := time.Now()
	e := testEngine(t, &failingRepo{}, nil, nil, now)

	d := e.UseOldOrNewPrice(context.Background(), models.ChannelWeb, incoming(apartment("199001011234", "Storgatan 1", "11122")), sek(2000), nil)

	assert.False(t, d.Reused)
	assert.Equal(t, sek(2000), d.Price)
}

func TestBlocksWhenAgreementInForce(t *testing.T) {
	now := time.Now()
	repo := quotes.NewInMemoryRepository()
	prior := seedQuote(t, repo, apartment("199001011234", "Storgatan 1", "11122"), &models.Price{AmountMinor: 1200, Currency: "SEK"}, now.Add(-5*24*time.Hour))

	agreementID := "agr-1"
	signed := prior.Clone()
	signed.ID = uuid.New()
	signed.Sequence = 2
	signed.State = models.StateSigned
	signed.AgreementID = &agreementID
	require.NoError(t, repo.AppendRevision(context.Background(), signed))

	agreements := &fakeAgreements{states: map[string]collaborators.AgreementState{
		agreementID: collaborators.AgreementActive,
	}}
	e := testEngine(t, repo, agreements, nil, now)

	blocked := e.BlockDueToExistingAgreement(context.Background(), models.ChannelWeb, incoming(apartment("199001011234", "Storgatan 1", "11122")))
	assert.True(t, blocked)
}

func TestNoBlockForLapsedAgreement(t *testing.T) {
	now := time.Now()
	repo := quotes.NewInMemoryRepository()
	prior := seedQuote(t, repo, apartment("199001011234", "Storgatan 1", "11122"), &models.Price{AmountMinor: 1200, Currency: "SEK"}, now.Add(-5*24*time.Hour))

	agreementID := "agr-1"
	signed := prior.Clone()
	signed.ID = uuid.New()
	signed.Sequence = 2
	signed.State = models.StateSigned
	signed.AgreementID = &agreementID
	require.NoError(t, repo.AppendRevision(context.Background(), signed))

	agreements := &fakeAgreements{states: map[string]collaborators.AgreementState{
		agreementID: collaborators.AgreementExpired,
	}}
	e := testEngine(t, repo, agreements, nil, now)

	blocked := e.BlockDueToExistingAgreement(context.Background(), models.ChannelWeb, incoming(apartment("199001011234", "Storgatan 1", "11122")))
	assert.False(t, blocked)
}

func TestNoBlockForBackOfficeChannel(t *testing.T) {
	e := testEngine(t, &failingRepo{}, nil, nil, time.Now())
	blocked := e.BlockDueToExistingAgreement(context.Background(), models.ChannelBackOffice, incoming(apartment("199001011234", "Storgatan 1", "11122")))
	assert.False(t, blocked)
}

func TestStatusFailureMeansNoBlock(t *testing.T) {
	now := time.Now()
	repo := quotes.NewInMemoryRepository()
	prior := seedQuote(t, repo, apartment("199001011234", "Storgatan 1", "11122"), &models.Price{AmountMinor: 1200, Currency: "SEK"}, now.Add(-5*24*time.Hour))

	agreementID := "agr-1"
	signed := prior.Clone()
	signed.ID = uuid.New()
	signed.Sequence = 2
	signed.State = models.StateSigned
	signed.AgreementID = &agreementID
	require.NoError(t, repo.AppendRevision(context.Background(), signed))

	e := testEngine(t, repo, &fakeAgreements{err: errors.New("down")}, nil, now)

	blocked := e.BlockDueToExistingAgreement(context.Background(), models.ChannelWeb, incoming(apartment("199001011234", "Storgatan 1", "11122")))
	assert.False(t, blocked)
}

func TestNoFingerprintMatchesNothing(t *testing.T) {
	now := time.Now()
	repo := quotes.NewInMemoryRepository()
	e := testEngine(t, repo, nil, nil, now)

	// Norwegian travel carries no address; without a birth date there is no
	// fingerprint at all
	data := models.ProductData{
		Variant:         models.VariantNorwegianTravel,
		NorwegianTravel: &models.NorwegianTravelData{FirstName: "Ola", LastName: "Nordmann"},
	}
	d := e.UseOldOrNewPrice(context.Background(), models.ChannelWeb, incoming(data), sek(500), nil)
	assert.False(t, d.Reused)
}

func TestDenylistParsing(t *testing.T) {
	d := NewDenylist([]string{" Storgatan 1 |11122", "malformed-entry"})
	assert.True(t, d.Contains(apartment("", "STORGATAN 1", " 11122")))
	assert.False(t, d.Contains(apartment("", "Lillgatan 5", "33344")))
}

func TestWindowFollowsInjectedClock(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := quotes.NewInMemoryRepository()
	seedQuote(t, repo, apartment("199001011234", "Storgatan 1", "11122"), &models.Price{AmountMinor: 1200, Currency: "SEK"}, base.Add(-10*24*time.Hour))

	rev := incoming(apartment("199001011234", "Storgatan 1", "11122"))

	d := testEngine(t, repo, nil, nil, base).UseOldOrNewPrice(context.Background(), models.ChannelWeb, rev, sek(2000), nil)
	assert.True(t, d.Reused, "a ten-day-old match is inside the stability window at the injected time")

	d = testEngine(t, repo, nil, nil, base.Add(60*24*time.Hour)).UseOldOrNewPrice(context.Background(), models.ChannelWeb, rev, sek(2000), nil)
	assert.False(t, d.Reused, "the same match is old and stable once the injected clock moves on")
}
