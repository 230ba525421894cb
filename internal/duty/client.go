package duty

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/amarfts/ph-scheduler/platform/apperr"
	"github.com/amarfts/ph-scheduler/platform/config"
	"github.com/amarfts/ph-scheduler/platform/logger"
)

// Client talks to the duty-roster API. It implements both Feed (the duty
// assignment listing) and ReportFetcher (the formatted PDF report).
type Client struct {
	baseURL  string
	language string
	client   *http.Client
	log      *logger.Logger
}

// NewClient creates a duty-roster API client.
func NewClient(cfg config.DutyAPIConfig, log *logger.Logger) *Client {
	return &Client{
		baseURL:  cfg.GetDutyAPIBaseURL(),
		language: cfg.GetDutyAPILanguage(),
		client:   &http.Client{Timeout: 30 * time.Second},
		log:      log,
	}
}

// dutyAssignment is the feed's wire format.
type dutyAssignment struct {
	DutyDate struct {
		Date string `json:"date"`
	} `json:"dutyDate"`
	DutyType struct {
		Type string `json:"type"`
	} `json:"dutyType"`
	Pharmacy *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"pharmacy"`
}

// FetchDuties returns all duty assignments in the window, regardless of
// distance.
func (c *Client) FetchDuties(ctx context.Context, window Window, token string) ([]Duty, error) {
	params := url.Values{}
	params.Set("From", window.From.UTC().Format(time.RFC3339))
	params.Set("To", window.To.UTC().Format(time.RFC3339))

	reqURL := fmt.Sprintf("%s/dutyAssignment/public?%s", c.baseURL, params.Encode())

	body, err := c.get(ctx, reqURL, token, "application/json")
	if err != nil {
		return nil, err
	}

	var raw []dutyAssignment
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apperr.RemoteIntegration("malformed duty feed payload").WithOp("duty.FetchDuties")
	}

	duties := make([]Duty, 0, len(raw))
	for _, a := range raw {
		d := Duty{
			Shift: a.DutyType.Type,
		}
		if len(a.DutyDate.Date) >= 10 {
			d.Day = a.DutyDate.Date[:10]
		}
		if a.Pharmacy != nil && a.Pharmacy.Latitude != 0 && a.Pharmacy.Longitude != 0 {
			d.Location = Point{Lat: a.Pharmacy.Latitude, Lon: a.Pharmacy.Longitude}
			d.Located = true
		}
		duties = append(duties, d)
	}

	c.log.Debug("duty feed fetched", "count", len(duties))
	return duties, nil
}

// FetchReport retrieves the roster report PDF at the given radius.
func (c *Client) FetchReport(ctx context.Context, p ReportParams) ([]byte, error) {
	params := url.Values{}
	params.Set("Radius", strconv.Itoa(p.RadiusKm))
	params.Set("From", p.Window.From.UTC().Format(time.RFC3339))
	params.Set("To", p.Window.To.UTC().Format(time.RFC3339))
	params.Set("Location", p.Address)
	params.Set("Lat", strconv.FormatFloat(p.Anchor.Lat, 'f', -1, 64))
	params.Set("Long", strconv.FormatFloat(p.Anchor.Lon, 'f', -1, 64))
	params.Set("language", c.language)

	reqURL := fmt.Sprintf("%s/report/PublicDuty?%s", c.baseURL, params.Encode())

	return c.get(ctx, reqURL, p.Token, "application/octet-stream")
}

func (c *Client) get(ctx context.Context, reqURL, token, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", accept)

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Error("duty api request failed", "error", err)
		return nil, apperr.RemoteIntegration("duty roster api unreachable").WithOp("duty.get")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.RemoteIntegration("reading duty api response failed")
	}

	if resp.StatusCode != http.StatusOK {
		c.log.Error("duty api upstream error", "status", resp.StatusCode)
		return nil, apperr.RemoteIntegration(
			fmt.Sprintf("duty roster api returned status %d", resp.StatusCode))
	}

	return body, nil
}
