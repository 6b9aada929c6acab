package location

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// ErrInvalidReport is returned by ParseReport for a report that carries neither
// coordinates, an error code, nor the unsupported flag.
var ErrInvalidReport = errors.New("invalid location report")

// ReportedProvider replays the outcome the browser observed when it called the platform
// geolocation API with the options the page was rendered with.
type ReportedProvider struct {
	supported bool
	coords    Coordinates
	err       error
}

// Supported implements LocationProvider.
func (p *ReportedProvider) Supported() bool { return p.supported }

// CurrentPosition implements LocationProvider.
func (p *ReportedProvider) CurrentPosition(ctx context.Context, _ PositionOptions) (Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return Coordinates{}, err
	}
	if p.err != nil {
		return Coordinates{}, p.err
	}
	return p.coords, nil
}

// RejectedReport stands in for a report the server could not accept. The flow settles
// it as an unknown error so the page leaves the loading state.
func RejectedReport(err error) *ReportedProvider {
	return &ReportedProvider{supported: true, err: err}
}

// ParseReport reads a form report: unsupported=1, or lat/lon, or code (+ optional message).
func ParseReport(v url.Values) (*ReportedProvider, error) {
	if truthy(v.Get("unsupported")) {
		return &ReportedProvider{supported: false}, nil
	}

	if code := strings.TrimSpace(v.Get("code")); code != "" {
		n, err := strconv.Atoi(code)
		if err != nil {
			return nil, fmt.Errorf("%w: code %q", ErrInvalidReport, code)
		}
		return &ReportedProvider{
			supported: true,
			err:       &PositionError{Code: ErrorCode(n), Message: v.Get("message")},
		}, nil
	}

	latStr, lonStr := strings.TrimSpace(v.Get("lat")), strings.TrimSpace(v.Get("lon"))
	if latStr == "" || lonStr == "" {
		return nil, fmt.Errorf("%w: missing lat/lon", ErrInvalidReport)
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil || math.IsNaN(lat) || lat < -90 || lat > 90 {
		return nil, fmt.Errorf("%w: lat %q", ErrInvalidReport, latStr)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil || math.IsNaN(lon) || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("%w: lon %q", ErrInvalidReport, lonStr)
	}
	return &ReportedProvider{supported: true, coords: Coordinates{Lat: lat, Lon: lon}}, nil
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
