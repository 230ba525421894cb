package duty

import (
	"context"
	"fmt"

	"github.com/amarfts/ph-scheduler/platform/apperr"
	"github.com/amarfts/ph-scheduler/platform/logger"
)

// MaxRadiusKm is the ceiling of the radius search.
const MaxRadiusKm = 35

// Feed returns every duty in the window regardless of distance. One call per
// resolution attempt; the radius probe filters the result locally.
type Feed interface {
	FetchDuties(ctx context.Context, window Window, token string) ([]Duty, error)
}

// ReportFetcher retrieves the formatted roster report (PDF) at a radius.
type ReportFetcher interface {
	FetchReport(ctx context.Context, params ReportParams) ([]byte, error)
}

// ReportParams identifies one report request.
type ReportParams struct {
	RadiusKm int
	Anchor   Point
	Address  string
	Window   Window
	Token    string
}

// ResolveParams are the inputs of one radius resolution.
type ResolveParams struct {
	InitialRadiusKm int
	Anchor          Point
	Address         string
	Window          Window
	Policy          CoveragePolicy
	Token           string
}

// Resolver finds the smallest radius with complete coverage and fetches the
// report at that radius.
type Resolver struct {
	feed    Feed
	reports ReportFetcher
	log     *logger.Logger
}

// NewResolver creates a Resolver over a duty feed and a report fetcher.
func NewResolver(feed Feed, reports ReportFetcher, log *logger.Logger) *Resolver {
	return &Resolver{feed: feed, reports: reports, log: log}
}

// Resolve fetches the duty dataset once, then probes radii from the initial
// radius up to MaxRadiusKm in 1 km steps against the cached dataset. The
// first covered radius is minimal because coverage is monotonic in radius.
// The report is fetched exactly once, at the winning radius. When no radius
// up to the ceiling is sufficient, a CoverageExhausted error is returned and
// no report is fetched.
func (r *Resolver) Resolve(ctx context.Context, p ResolveParams) ([]byte, int, error) {
	duties, err := r.feed.FetchDuties(ctx, p.Window, p.Token)
	if err != nil {
		return nil, 0, err
	}

	initial := p.InitialRadiusKm
	if initial < 1 {
		initial = 1
	}

	for radius := initial; radius <= MaxRadiusKm; radius++ {
		if !Covered(duties, p.Anchor, float64(radius), p.Window, p.Policy) {
			continue
		}

		r.log.Info("sufficient coverage radius found",
			"radius_km", radius, "policy", p.Policy.String())

		report, err := r.reports.FetchReport(ctx, ReportParams{
			RadiusKm: radius,
			Anchor:   p.Anchor,
			Address:  p.Address,
			Window:   p.Window,
			Token:    p.Token,
		})
		if err != nil {
			return nil, 0, err
		}
		return report, radius, nil
	}

	return nil, 0, apperr.CoverageExhausted(
		fmt.Sprintf("no sufficient radius up to %d km", MaxRadiusKm))
}
