package service

import (
	"context"
	"time"

	"github.com/amarfts/ph-scheduler/internal/duty"
	domevents "github.com/amarfts/ph-scheduler/internal/events"
	pharmrepo "github.com/amarfts/ph-scheduler/internal/pharmacies/repository"
	"github.com/amarfts/ph-scheduler/internal/posts/repository"
	"github.com/amarfts/ph-scheduler/internal/posts/transport"
	"github.com/amarfts/ph-scheduler/platform/apperr"
	"github.com/amarfts/ph-scheduler/platform/events"
	"github.com/amarfts/ph-scheduler/platform/httpkit"
)

// referenceStartHour is the local hour the reference start is pinned to
// before date arithmetic.
const referenceStartHour = 8

// Generate runs the scheduling pipeline once over every pharmacy. Each
// pharmacy completes (or fails) fully before the next begins; a failure is
// recorded as that pharmacy's outcome and never aborts the batch. The run
// fails wholesale only when the shared message is missing or no pharmacies
// exist.
func (s *Service) Generate(ctx context.Context, req transport.GenerateRequest) (transport.GenerateResponse, error) {
	message, err := s.repo.GetMessage(ctx)
	if err != nil {
		return transport.GenerateResponse{}, err
	}

	startDay, err := time.ParseInLocation("2006-01-02", req.StartDate, time.Local)
	if err != nil {
		return transport.GenerateResponse{}, apperr.Validation("startDate must be formatted YYYY-MM-DD")
	}
	start := time.Date(startDay.Year(), startDay.Month(), startDay.Day(),
		referenceStartHour, 0, 0, 0, time.Local)

	pharmacies, err := s.pharmacies.List(ctx)
	if err != nil {
		return transport.GenerateResponse{}, err
	}
	if len(pharmacies) == 0 {
		return transport.GenerateResponse{}, apperr.NotFound("no pharmacies found")
	}

	now := time.Now()
	outcomes := make([]domevents.RunOutcome, 0, len(pharmacies))
	for _, pharmacy := range pharmacies {
		outcome := s.processPharmacy(ctx, pharmacy, start, now, message)
		s.log.Info("pharmacy processed",
			"pharmacy", outcome.Pharmacy, "status", outcome.Status, "reason", outcome.Reason)
		outcomes = append(outcomes, outcome)
	}

	s.bus.Publish(ctx, domevents.GenerationRunCompleted{
		BaseEvent: events.NewBaseEvent(),
		StartDate: req.StartDate,
		Outcomes:  outcomes,
	})

	return transport.GenerateResponse{Results: outcomes}, nil
}

// processPharmacy drives one pharmacy through validate → resolve-date →
// guard-check → geocode-if-needed → fetch-report → rasterize → upload →
// publish-or-schedule → persist.
func (s *Service) processPharmacy(ctx context.Context, pharmacy pharmrepo.Pharmacy, start, now time.Time, message string) domevents.RunOutcome {
	outcome := domevents.RunOutcome{Pharmacy: pharmacy.Name}

	fail := func(err error) domevents.RunOutcome {
		outcome.Status = domevents.OutcomeError
		outcome.Reason = err.Error()
		return outcome
	}
	skip := func(reason string) domevents.RunOutcome {
		outcome.Status = domevents.OutcomeSkipped
		outcome.Reason = reason
		return outcome
	}

	if pharmacy.FacebookPageID == "" {
		return fail(apperr.Validation("missing remote page id"))
	}
	if pharmacy.PageAccessToken == "" {
		return fail(apperr.Validation("missing page access token"))
	}

	postDate := NextOccurrence(start, time.Weekday(pharmacy.Weekday), now)

	exists, err := s.repo.ExistsActiveOn(ctx, pharmacy.ID, postDate)
	if err != nil {
		return fail(err)
	}
	if exists {
		return skip("already scheduled for this date")
	}

	windowEnd := start.AddDate(0, 0, MaxAdvanceDays(pharmacy.Frequency))
	if postDate.After(windowEnd) {
		return skip("next post date beyond allowed range")
	}

	anchor, err := s.resolveAnchor(ctx, pharmacy)
	if err != nil {
		return fail(err)
	}

	token := pharmacy.DutyAPIToken
	if token == "" && s.tokens != nil {
		if identity := httpkit.IdentityFrom(ctx); identity.IsAuthenticated() {
			token, _ = s.tokens.DutyToken(ctx, identity.UserID())
		}
	}
	if token == "" {
		return fail(apperr.Validation("missing duty api token"))
	}

	policy := duty.PolicyBoolean
	if pharmacy.APIMode == pharmrepo.ModePrivate {
		policy = duty.PolicyThreshold
	}

	report, radius, err := s.resolver.Resolve(ctx, duty.ResolveParams{
		InitialRadiusKm: pharmacy.RadiusKm,
		Anchor:          anchor,
		Address:         pharmacy.Address,
		Window:          duty.Window{From: start, To: windowEnd},
		Policy:          policy,
		Token:           token,
	})
	if err != nil {
		return fail(err)
	}
	outcome.RadiusKm = radius

	pages, err := s.raster.Convert(ctx, report)
	if err != nil {
		return fail(err)
	}
	image := pages[0]

	imageKey, err := s.images.Put(ctx, image)
	if err != nil {
		return fail(err)
	}

	mediaID, err := s.platform.UploadPhoto(ctx, pharmacy.PageAccessToken, pharmacy.FacebookPageID, image)
	if err != nil {
		return fail(err)
	}

	remotePostID, err := s.platform.CreatePost(ctx,
		pharmacy.PageAccessToken, pharmacy.FacebookPageID, message, mediaID, postDate)
	if err != nil {
		return fail(err)
	}

	// A persistence failure is recorded but the remote post is not rolled
	// back; it already exists on the platform.
	if _, err := s.repo.Create(ctx, repository.CreateParams{
		PharmacyID:     pharmacy.ID,
		ImageKey:       imageKey,
		ScheduledAt:    postDate,
		FacebookPostID: remotePostID,
		RadiusKm:       radius,
	}); err != nil {
		s.log.Error("saving publication failed after remote post creation",
			"pharmacy", pharmacy.Name, "remote_post_id", remotePostID, "error", err)
		return fail(err)
	}

	outcome.Status = domevents.OutcomeScheduled
	outcome.PostID = remotePostID
	return outcome
}

// resolveAnchor returns the pharmacy's coordinates, geocoding and backfilling
// them once when absent. A pharmacy with populated coordinates is never
// re-geocoded.
func (s *Service) resolveAnchor(ctx context.Context, pharmacy pharmrepo.Pharmacy) (duty.Point, error) {
	if pharmacy.HasCoordinates() {
		return duty.Point{Lat: *pharmacy.Latitude, Lon: *pharmacy.Longitude}, nil
	}

	coords, err := s.geocoder.Lookup(ctx, pharmacy.Address)
	if err != nil {
		return duty.Point{}, err
	}

	if err := s.pharmacies.UpdateCoordinates(ctx, pharmacy.ID, coords.Latitude, coords.Longitude); err != nil {
		s.log.Warn("coordinate backfill failed", "pharmacy", pharmacy.Name, "error", err)
	}

	return duty.Point{Lat: coords.Latitude, Lon: coords.Longitude}, nil
}
