package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/amarfts/ph-scheduler/internal/duty"
	domevents "github.com/amarfts/ph-scheduler/internal/events"
	"github.com/amarfts/ph-scheduler/internal/geocode"
	pharmrepo "github.com/amarfts/ph-scheduler/internal/pharmacies/repository"
	"github.com/amarfts/ph-scheduler/internal/posts/repository"
	"github.com/amarfts/ph-scheduler/internal/posts/transport"
	"github.com/amarfts/ph-scheduler/platform/apperr"
	"github.com/amarfts/ph-scheduler/platform/events"
	"github.com/amarfts/ph-scheduler/platform/httpkit"
	"github.com/amarfts/ph-scheduler/platform/logger"
)

type fakeRepo struct {
	message      string
	messageErr   error
	posts        map[uuid.UUID]repository.Post
	existsActive bool
	existsErr    error
	created      []repository.CreateParams
	createErr    error
	statuses     map[uuid.UUID]string
	statusErr    error
	deletedAll   bool
	inserted     bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		message:  "On duty this week",
		posts:    make(map[uuid.UUID]repository.Post),
		statuses: make(map[uuid.UUID]string),
	}
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Post, error) {
	post, ok := r.posts[id]
	if !ok {
		return repository.Post{}, apperr.NotFound("post not found")
	}
	return post, nil
}

func (r *fakeRepo) List(_ context.Context) ([]repository.Post, error) {
	out := make([]repository.Post, 0, len(r.posts))
	for _, post := range r.posts {
		out = append(out, post)
	}
	return out, nil
}

func (r *fakeRepo) ExistsActiveOn(_ context.Context, _ uuid.UUID, _ time.Time) (bool, error) {
	return r.existsActive, r.existsErr
}

func (r *fakeRepo) Create(_ context.Context, params repository.CreateParams) (repository.Post, error) {
	if r.createErr != nil {
		return repository.Post{}, r.createErr
	}
	r.created = append(r.created, params)
	post := repository.Post{
		ID:             uuid.New(),
		PharmacyID:     params.PharmacyID,
		ImageKey:       params.ImageKey,
		ScheduledAt:    params.ScheduledAt,
		Status:         repository.StatusScheduled,
		FacebookPostID: params.FacebookPostID,
		RadiusKm:       params.RadiusKm,
	}
	r.posts[post.ID] = post
	return post, nil
}

func (r *fakeRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	if r.statusErr != nil {
		return r.statusErr
	}
	r.statuses[id] = status
	return nil
}

func (r *fakeRepo) DeleteAll(_ context.Context) error {
	r.deletedAll = true
	r.posts = make(map[uuid.UUID]repository.Post)
	return nil
}

func (r *fakeRepo) GetMessage(_ context.Context) (string, error) {
	return r.message, r.messageErr
}

func (r *fakeRepo) UpsertMessage(_ context.Context, content string) (bool, error) {
	inserted := r.message == ""
	r.message = content
	r.inserted = inserted
	return inserted, nil
}

type fakePharmacies struct {
	list         []pharmrepo.Pharmacy
	listErr      error
	coordUpdates map[uuid.UUID]geocode.Coordinates
	coordErr     error
}

func newFakePharmacies(list ...pharmrepo.Pharmacy) *fakePharmacies {
	return &fakePharmacies{list: list, coordUpdates: make(map[uuid.UUID]geocode.Coordinates)}
}

func (p *fakePharmacies) GetByID(_ context.Context, id uuid.UUID) (pharmrepo.Pharmacy, error) {
	for _, pharmacy := range p.list {
		if pharmacy.ID == id {
			return pharmacy, nil
		}
	}
	return pharmrepo.Pharmacy{}, apperr.NotFound("pharmacy not found")
}

func (p *fakePharmacies) List(_ context.Context) ([]pharmrepo.Pharmacy, error) {
	return p.list, p.listErr
}

func (p *fakePharmacies) Create(_ context.Context, _ pharmrepo.CreateParams) (pharmrepo.Pharmacy, error) {
	return pharmrepo.Pharmacy{}, nil
}

func (p *fakePharmacies) Update(_ context.Context, _ pharmrepo.UpdateParams) (pharmrepo.Pharmacy, error) {
	return pharmrepo.Pharmacy{}, nil
}

func (p *fakePharmacies) Delete(_ context.Context, _ uuid.UUID) error {
	return nil
}

func (p *fakePharmacies) UpdateCoordinates(_ context.Context, id uuid.UUID, lat, lon float64) error {
	if p.coordErr != nil {
		return p.coordErr
	}
	p.coordUpdates[id] = geocode.Coordinates{Latitude: lat, Longitude: lon}
	return nil
}

type fakeGeocoder struct {
	coords geocode.Coordinates
	err    error
	calls  int
}

func (g *fakeGeocoder) Lookup(_ context.Context, _ string) (geocode.Coordinates, error) {
	g.calls++
	return g.coords, g.err
}

type fakeResolver struct {
	report []byte
	radius int
	err    error
	params []duty.ResolveParams
}

func (r *fakeResolver) Resolve(_ context.Context, p duty.ResolveParams) ([]byte, int, error) {
	r.params = append(r.params, p)
	if r.err != nil {
		return nil, 0, r.err
	}
	return r.report, r.radius, nil
}

type fakeRaster struct {
	pages [][]byte
	err   error
}

func (r *fakeRaster) Convert(_ context.Context, _ []byte) ([][]byte, error) {
	return r.pages, r.err
}

type fakeImages struct {
	key     string
	putErr  error
	data    []byte
	getErr  error
	puts    [][]byte
	getKeys []string
}

func (s *fakeImages) Put(_ context.Context, image []byte) (string, error) {
	if s.putErr != nil {
		return "", s.putErr
	}
	s.puts = append(s.puts, image)
	return s.key, nil
}

func (s *fakeImages) Get(_ context.Context, key string) ([]byte, error) {
	s.getKeys = append(s.getKeys, key)
	return s.data, s.getErr
}

type createCall struct {
	pageToken   string
	pageID      string
	message     string
	mediaID     string
	scheduledAt time.Time
}

type fakePublisher struct {
	mediaID   string
	postID    string
	uploadErr error
	createErr error
	deleteErr error
	uploads   [][]byte
	creates   []createCall
	deletes   []string
}

func (p *fakePublisher) UploadPhoto(_ context.Context, _, _ string, image []byte) (string, error) {
	if p.uploadErr != nil {
		return "", p.uploadErr
	}
	p.uploads = append(p.uploads, image)
	return p.mediaID, nil
}

func (p *fakePublisher) CreatePost(_ context.Context, pageToken, pageID, message, mediaID string, scheduledAt time.Time) (string, error) {
	if p.createErr != nil {
		return "", p.createErr
	}
	p.creates = append(p.creates, createCall{
		pageToken:   pageToken,
		pageID:      pageID,
		message:     message,
		mediaID:     mediaID,
		scheduledAt: scheduledAt,
	})
	return p.postID, nil
}

func (p *fakePublisher) DeletePost(_ context.Context, _, postID string) error {
	if p.deleteErr != nil {
		return p.deleteErr
	}
	p.deletes = append(p.deletes, postID)
	return nil
}

type fakeTokens struct {
	token string
	err   error
}

func (t *fakeTokens) DutyToken(_ context.Context, _ uuid.UUID) (string, error) {
	return t.token, t.err
}

type fakeBus struct {
	mu        sync.Mutex
	published []events.Event
}

func (b *fakeBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, event)
}

func (b *fakeBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *fakeBus) Subscribe(_ string, _ events.Handler) {}

func (b *fakeBus) events() []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]events.Event(nil), b.published...)
}

type testEnv struct {
	svc        *Service
	repo       *fakeRepo
	pharmacies *fakePharmacies
	geocoder   *fakeGeocoder
	resolver   *fakeResolver
	images     *fakeImages
	publisher  *fakePublisher
	bus        *fakeBus
}

func newTestEnv(pharmacies ...pharmrepo.Pharmacy) *testEnv {
	env := &testEnv{
		repo:       newFakeRepo(),
		pharmacies: newFakePharmacies(pharmacies...),
		geocoder:   &fakeGeocoder{coords: geocode.Coordinates{Latitude: 52.37, Longitude: 4.89}},
		resolver:   &fakeResolver{report: []byte("pdf"), radius: 3},
		images:     &fakeImages{key: "2026/03/roster.png", data: []byte("png")},
		publisher:  &fakePublisher{mediaID: "media-1", postID: "remote-1"},
		bus:        &fakeBus{},
	}
	env.svc = New(Deps{
		Repo:       env.repo,
		Pharmacies: env.pharmacies,
		Geocoder:   env.geocoder,
		Resolver:   env.resolver,
		Raster:     &fakeRaster{pages: [][]byte{[]byte("png")}},
		Images:     env.images,
		Platform:   env.publisher,
		Tokens:     nil,
		Bus:        env.bus,
		Log:        logger.New("test"),
	})
	return env
}

func coord(v float64) *float64 { return &v }

// tomorrowStart returns a start date whose first slot is always in the
// future, and the matching weekday.
func tomorrowStart() (string, int) {
	tomorrow := time.Now().AddDate(0, 0, 1)
	return tomorrow.Format("2006-01-02"), int(tomorrow.Weekday())
}

func testPharmacy(weekday int) pharmrepo.Pharmacy {
	return pharmrepo.Pharmacy{
		ID:              uuid.New(),
		Name:            "Central Pharmacy",
		Address:         "Main Street 1, Springfield",
		Latitude:        coord(52.37),
		Longitude:       coord(4.89),
		FacebookPageID:  "page-1",
		PageAccessToken: "page-token",
		DutyAPIToken:    "duty-token",
		APIMode:         pharmrepo.ModePublic,
		Weekday:         weekday,
		Frequency:       pharmrepo.FrequencyWeekly,
		RadiusKm:        1,
	}
}

func TestGenerate_SchedulesPost(t *testing.T) {
	startDate, weekday := tomorrowStart()
	pharmacy := testPharmacy(weekday)
	env := newTestEnv(pharmacy)

	resp, err := env.svc.Generate(context.Background(), transport.GenerateRequest{StartDate: startDate})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(resp.Results))
	}

	outcome := resp.Results[0]
	if outcome.Status != domevents.OutcomeScheduled {
		t.Fatalf("expected scheduled, got %s (%s)", outcome.Status, outcome.Reason)
	}
	if outcome.PostID != "remote-1" {
		t.Fatalf("expected remote post id, got %q", outcome.PostID)
	}
	if outcome.RadiusKm != 3 {
		t.Fatalf("expected resolved radius 3, got %d", outcome.RadiusKm)
	}

	if len(env.publisher.creates) != 1 {
		t.Fatalf("expected 1 remote post, got %d", len(env.publisher.creates))
	}
	create := env.publisher.creates[0]
	if create.message != env.repo.message {
		t.Fatalf("expected shared message %q, got %q", env.repo.message, create.message)
	}
	if create.mediaID != "media-1" {
		t.Fatalf("expected uploaded media id, got %q", create.mediaID)
	}
	if create.scheduledAt.Hour() != PublicationHour {
		t.Fatalf("expected publication at hour %d, got %d", PublicationHour, create.scheduledAt.Hour())
	}

	if len(env.repo.created) != 1 {
		t.Fatalf("expected 1 persisted post, got %d", len(env.repo.created))
	}
	persisted := env.repo.created[0]
	if persisted.PharmacyID != pharmacy.ID {
		t.Fatal("persisted post references the wrong pharmacy")
	}
	if persisted.ImageKey != env.images.key {
		t.Fatalf("expected image key %q, got %q", env.images.key, persisted.ImageKey)
	}
	if persisted.FacebookPostID != "remote-1" {
		t.Fatalf("expected remote post id persisted, got %q", persisted.FacebookPostID)
	}

	published := env.bus.events()
	if len(published) != 1 {
		t.Fatalf("expected 1 event, got %d", len(published))
	}
	completed, ok := published[0].(domevents.GenerationRunCompleted)
	if !ok {
		t.Fatalf("expected run completed event, got %T", published[0])
	}
	if completed.StartDate != startDate {
		t.Fatalf("expected start date %s, got %s", startDate, completed.StartDate)
	}
}

func TestGenerate_MissingMessageFailsWholesale(t *testing.T) {
	startDate, weekday := tomorrowStart()
	env := newTestEnv(testPharmacy(weekday))
	env.repo.messageErr = apperr.NotFound("no message configured")

	_, err := env.svc.Generate(context.Background(), transport.GenerateRequest{StartDate: startDate})
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(env.resolver.params) != 0 {
		t.Fatal("expected no pharmacy processing without a message")
	}
}

func TestGenerate_MalformedStartDate(t *testing.T) {
	env := newTestEnv(testPharmacy(1))

	_, err := env.svc.Generate(context.Background(), transport.GenerateRequest{StartDate: "02-03-2026"})
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGenerate_NoPharmacies(t *testing.T) {
	startDate, _ := tomorrowStart()
	env := newTestEnv()

	_, err := env.svc.Generate(context.Background(), transport.GenerateRequest{StartDate: startDate})
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGenerate_SkipsAlreadyScheduled(t *testing.T) {
	startDate, weekday := tomorrowStart()
	env := newTestEnv(testPharmacy(weekday))
	env.repo.existsActive = true

	resp, err := env.svc.Generate(context.Background(), transport.GenerateRequest{StartDate: startDate})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Results[0].Status != domevents.OutcomeSkipped {
		t.Fatalf("expected skipped, got %s", resp.Results[0].Status)
	}
	if len(env.resolver.params) != 0 {
		t.Fatal("expected no resolution for a duplicate")
	}
	if len(env.publisher.creates) != 0 {
		t.Fatal("expected no remote post for a duplicate")
	}
}

func TestGenerate_SkipsBeyondAdvanceWindow(t *testing.T) {
	// A start 8 days back lands the next slot on start+7d, past the weekly
	// 6-day window but inside the biweekly 13-day one.
	start := time.Now().AddDate(0, 0, -8)
	weekly := testPharmacy(int(start.Weekday()))
	biweekly := testPharmacy(int(start.Weekday()))
	biweekly.Name = "Biweekly Pharmacy"
	biweekly.Frequency = pharmrepo.FrequencyBiweekly
	env := newTestEnv(weekly, biweekly)

	resp, err := env.svc.Generate(context.Background(),
		transport.GenerateRequest{StartDate: start.Format("2006-01-02")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Results[0].Status != domevents.OutcomeSkipped {
		t.Fatalf("expected weekly pharmacy skipped, got %s (%s)",
			resp.Results[0].Status, resp.Results[0].Reason)
	}
	if resp.Results[1].Status != domevents.OutcomeScheduled {
		t.Fatalf("expected biweekly pharmacy scheduled, got %s (%s)",
			resp.Results[1].Status, resp.Results[1].Reason)
	}
}

func TestGenerate_AcceptsSlotAtWindowBoundary(t *testing.T) {
	// Weekly: start tomorrow, target weekday six days later, so the slot
	// lands exactly on start+6d at 06:00 and the window closes at 08:00
	// that same day.
	t.Run("weekly slot on the last window day", func(t *testing.T) {
		start := time.Now().AddDate(0, 0, 1)
		pharmacy := testPharmacy((int(start.Weekday()) + 6) % 7)
		env := newTestEnv(pharmacy)

		resp, err := env.svc.Generate(context.Background(),
			transport.GenerateRequest{StartDate: start.Format("2006-01-02")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Results[0].Status != domevents.OutcomeScheduled {
			t.Fatalf("expected scheduled, got %s (%s)",
				resp.Results[0].Status, resp.Results[0].Reason)
		}
	})

	// Biweekly: start 7 days back with the target weekday six days after
	// it, so the base slot has already elapsed and bumps a week, landing
	// exactly on start+13d at 06:00.
	t.Run("biweekly slot on the last window day", func(t *testing.T) {
		start := time.Now().AddDate(0, 0, -7)
		pharmacy := testPharmacy((int(start.Weekday()) + 6) % 7)
		pharmacy.Frequency = pharmrepo.FrequencyBiweekly
		env := newTestEnv(pharmacy)

		resp, err := env.svc.Generate(context.Background(),
			transport.GenerateRequest{StartDate: start.Format("2006-01-02")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Results[0].Status != domevents.OutcomeScheduled {
			t.Fatalf("expected scheduled, got %s (%s)",
				resp.Results[0].Status, resp.Results[0].Reason)
		}
		scheduledOn := env.publisher.creates[0].scheduledAt
		wantDay := start.AddDate(0, 0, 13).Format("2006-01-02")
		if scheduledOn.Format("2006-01-02") != wantDay {
			t.Fatalf("expected slot on %s, got %s", wantDay, scheduledOn.Format("2006-01-02"))
		}
	})
}

func TestGenerate_FailureIsolatedPerPharmacy(t *testing.T) {
	startDate, weekday := tomorrowStart()
	broken := testPharmacy(weekday)
	broken.FacebookPageID = ""
	healthy := testPharmacy(weekday)
	healthy.Name = "Second Pharmacy"
	env := newTestEnv(broken, healthy)

	resp, err := env.svc.Generate(context.Background(), transport.GenerateRequest{StartDate: startDate})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp.Results))
	}
	if resp.Results[0].Status != domevents.OutcomeError {
		t.Fatalf("expected first pharmacy to error, got %s", resp.Results[0].Status)
	}
	if resp.Results[1].Status != domevents.OutcomeScheduled {
		t.Fatalf("expected second pharmacy scheduled, got %s (%s)",
			resp.Results[1].Status, resp.Results[1].Reason)
	}
}

func TestGenerate_MissingDutyToken(t *testing.T) {
	startDate, weekday := tomorrowStart()
	pharmacy := testPharmacy(weekday)
	pharmacy.DutyAPIToken = ""
	env := newTestEnv(pharmacy)

	resp, err := env.svc.Generate(context.Background(), transport.GenerateRequest{StartDate: startDate})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	outcome := resp.Results[0]
	if outcome.Status != domevents.OutcomeError {
		t.Fatalf("expected error outcome, got %s", outcome.Status)
	}
	if outcome.Reason != "missing duty api token" {
		t.Fatalf("unexpected reason: %q", outcome.Reason)
	}
}

func TestGenerate_FallsBackToStoredToken(t *testing.T) {
	startDate, weekday := tomorrowStart()
	pharmacy := testPharmacy(weekday)
	pharmacy.DutyAPIToken = ""
	env := newTestEnv(pharmacy)
	env.svc.tokens = &fakeTokens{token: "vault-token"}

	ctx := httpkit.WithIdentity(context.Background(),
		httpkit.NewIdentity(uuid.New(), httpkit.AdminRole))
	resp, err := env.svc.Generate(ctx, transport.GenerateRequest{StartDate: startDate})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Results[0].Status != domevents.OutcomeScheduled {
		t.Fatalf("expected scheduled, got %s (%s)",
			resp.Results[0].Status, resp.Results[0].Reason)
	}
	if env.resolver.params[0].Token != "vault-token" {
		t.Fatalf("expected stored token, got %q", env.resolver.params[0].Token)
	}
}

func TestGenerate_PrivateModeUsesThresholdPolicy(t *testing.T) {
	startDate, weekday := tomorrowStart()
	pharmacy := testPharmacy(weekday)
	pharmacy.APIMode = pharmrepo.ModePrivate
	env := newTestEnv(pharmacy)

	if _, err := env.svc.Generate(context.Background(),
		transport.GenerateRequest{StartDate: startDate}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.resolver.params[0].Policy != duty.PolicyThreshold {
		t.Fatalf("expected threshold policy, got %v", env.resolver.params[0].Policy)
	}
}

func TestGenerate_GeocodesAndBackfillsOnce(t *testing.T) {
	startDate, weekday := tomorrowStart()
	pharmacy := testPharmacy(weekday)
	pharmacy.Latitude = nil
	pharmacy.Longitude = nil
	env := newTestEnv(pharmacy)

	resp, err := env.svc.Generate(context.Background(), transport.GenerateRequest{StartDate: startDate})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Results[0].Status != domevents.OutcomeScheduled {
		t.Fatalf("expected scheduled, got %s (%s)",
			resp.Results[0].Status, resp.Results[0].Reason)
	}
	if env.geocoder.calls != 1 {
		t.Fatalf("expected 1 geocode lookup, got %d", env.geocoder.calls)
	}
	backfilled, ok := env.pharmacies.coordUpdates[pharmacy.ID]
	if !ok {
		t.Fatal("expected coordinates backfilled")
	}
	if backfilled != env.geocoder.coords {
		t.Fatalf("backfilled %v, expected %v", backfilled, env.geocoder.coords)
	}
	anchor := env.resolver.params[0].Anchor
	if anchor.Lat != env.geocoder.coords.Latitude || anchor.Lon != env.geocoder.coords.Longitude {
		t.Fatalf("resolver anchored at %v, expected geocoded coordinates", anchor)
	}
}

func TestGenerate_PopulatedCoordinatesNeverRegeocoded(t *testing.T) {
	startDate, weekday := tomorrowStart()
	env := newTestEnv(testPharmacy(weekday))

	if _, err := env.svc.Generate(context.Background(),
		transport.GenerateRequest{StartDate: startDate}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.geocoder.calls != 0 {
		t.Fatalf("expected no geocode lookup, got %d", env.geocoder.calls)
	}
}

func TestGenerate_CoverageExhaustedRecordedAsError(t *testing.T) {
	startDate, weekday := tomorrowStart()
	env := newTestEnv(testPharmacy(weekday))
	env.resolver.err = apperr.CoverageExhausted("no sufficient radius up to 35 km")

	resp, err := env.svc.Generate(context.Background(), transport.GenerateRequest{StartDate: startDate})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	outcome := resp.Results[0]
	if outcome.Status != domevents.OutcomeError {
		t.Fatalf("expected error outcome, got %s", outcome.Status)
	}
	if len(env.publisher.uploads) != 0 {
		t.Fatal("expected no upload after coverage exhaustion")
	}
}

func TestGenerate_PersistFailureAfterRemotePost(t *testing.T) {
	startDate, weekday := tomorrowStart()
	env := newTestEnv(testPharmacy(weekday))
	env.repo.createErr = apperr.Persistence("saving publication failed", errors.New("connection reset"))

	resp, err := env.svc.Generate(context.Background(), transport.GenerateRequest{StartDate: startDate})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Results[0].Status != domevents.OutcomeError {
		t.Fatalf("expected error outcome, got %s", resp.Results[0].Status)
	}
	// The remote post already went out; it is not rolled back.
	if len(env.publisher.creates) != 1 {
		t.Fatalf("expected the remote post to remain, got %d creates", len(env.publisher.creates))
	}
}

func TestGenerate_FirstPageOfReportIsPosted(t *testing.T) {
	startDate, weekday := tomorrowStart()
	env := newTestEnv(testPharmacy(weekday))
	first := []byte("page-one")
	env.svc.raster = &fakeRaster{pages: [][]byte{first, []byte("page-two")}}

	if _, err := env.svc.Generate(context.Background(),
		transport.GenerateRequest{StartDate: startDate}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(env.publisher.uploads[0]) != string(first) {
		t.Fatal("expected the first rendered page to be uploaded")
	}
	if string(env.images.puts[0]) != string(first) {
		t.Fatal("expected the first rendered page to be stored")
	}
}
