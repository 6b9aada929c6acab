package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kjstillabower/weather-outfit-service/internal/cities"
	"github.com/kjstillabower/weather-outfit-service/internal/client"
	"github.com/kjstillabower/weather-outfit-service/internal/location"
	"github.com/kjstillabower/weather-outfit-service/internal/models"
	"github.com/kjstillabower/weather-outfit-service/internal/observability"
	"github.com/kjstillabower/weather-outfit-service/internal/recommend"
	"github.com/kjstillabower/weather-outfit-service/internal/session"
	"github.com/kjstillabower/weather-outfit-service/internal/validation"
)

// WeatherService wires location, provider lookup and recommendation together and keeps
// each page's session state up to date. Lookups are one-shot: no retry and no caching.
type WeatherService struct {
	client         client.WeatherClient
	sessions       *session.Manager
	imagePrefix    string
	locationOpts   location.PositionOptions
	maxQueryLength int
}

// Options tunes a WeatherService. Zero values take defaults.
type Options struct {
	ImagePrefix     string
	LocationOptions *location.PositionOptions
	MaxQueryLength  int
}

func NewWeatherService(c client.WeatherClient, sessions *session.Manager, opts Options) *WeatherService {
	s := &WeatherService{
		client:         c,
		sessions:       sessions,
		imagePrefix:    opts.ImagePrefix,
		locationOpts:   location.DefaultOptions,
		maxQueryLength: opts.MaxQueryLength,
	}
	if s.imagePrefix == "" {
		s.imagePrefix = recommend.DefaultImagePrefix
	}
	if opts.LocationOptions != nil {
		s.locationOpts = *opts.LocationOptions
	}
	if s.maxQueryLength <= 0 {
		s.maxQueryLength = 100
	}
	return s
}

// LocationOptions are the options the page hands to the platform geolocation API.
func (s *WeatherService) LocationOptions() location.PositionOptions {
	return s.locationOpts
}

// ImagePrefix is the URL prefix illustrations are served under.
func (s *WeatherService) ImagePrefix() string {
	return s.imagePrefix
}

// MaxQueryLength bounds the search field, in characters.
func (s *WeatherService) MaxQueryLength() int {
	return s.maxQueryLength
}

// LookupCoordinates fetches weather at lat,lon and derives the view.
func (s *WeatherService) LookupCoordinates(ctx context.Context, lat, lon float64) (models.WeatherView, error) {
	rec, err := s.client.FetchByCoordinates(ctx, lat, lon)
	return s.finish(ctx, KindCoordinates, fmt.Sprintf("%g,%g", lat, lon), rec, err)
}

// LookupCity resolves a city name (Korean names are translated) and fetches its weather.
func (s *WeatherService) LookupCity(ctx context.Context, city string) (models.WeatherView, error) {
	query := cities.Resolve(city)
	observability.LoggerFromContext(ctx).Debug("city resolved",
		zap.String("input", city),
		zap.String("query", query),
		zap.Bool("translated", cities.Known(city)))
	rec, err := s.client.FetchByCity(ctx, query)
	return s.finish(ctx, KindCity, query, rec, err)
}

func (s *WeatherService) finish(ctx context.Context, kind LookupKind, q string, rec models.WeatherRecord, err error) (models.WeatherView, error) {
	logger := observability.LoggerFromContext(ctx)
	if err != nil {
		category := client.CategorizeError(err)
		observability.WeatherLookupsTotal.WithLabelValues(string(kind), "failed").Inc()
		observability.WeatherLookupErrorsTotal.WithLabelValues(string(category)).Inc()
		logger.Debug("weather lookup failed",
			zap.String("kind", string(kind)),
			zap.String("query", q),
			zap.String("category", string(category)),
			zap.Error(err))
		return models.WeatherView{}, fmt.Errorf("lookup %s %q: %w", kind, q, err)
	}

	view := recommend.View(rec, s.imagePrefix)
	band := recommend.BandFor(rec.Current.TempC)
	observability.WeatherLookupsTotal.WithLabelValues(string(kind), "success").Inc()
	observability.RecommendationsTotal.WithLabelValues(band.Label()).Inc()
	logger.Debug("weather served",
		zap.String("kind", string(kind)),
		zap.String("query", q),
		zap.Float64("temp_c", rec.Current.TempC),
		zap.String("band", band.Label()))
	return view, nil
}

// Locate runs the location flow against provider and, when it resolves, looks up the
// weather at the reported coordinates.
func (s *WeatherService) Locate(ctx context.Context, provider location.LocationProvider) (location.Result, models.WeatherView, error) {
	logger := observability.LoggerFromContext(ctx)
	flow := location.NewFlow(provider, s.locationOpts, func(from, to location.State) {
		logger.Debug("location state", zap.String("from", string(from)), zap.String("to", string(to)))
	})
	res := flow.Acquire(ctx)
	observability.LocationOutcomesTotal.WithLabelValues(string(res.State)).Inc()
	if res.Err != nil {
		return res, models.WeatherView{}, res.Err
	}
	view, err := s.LookupCoordinates(ctx, res.Coordinates.Lat, res.Coordinates.Lon)
	return res, view, err
}

// StartSession creates the state for a new page load.
func (s *WeatherService) StartSession(ctx context.Context, darkMode bool) (*session.State, error) {
	return s.sessions.Create(ctx, darkMode)
}

// EndSession drops a page's state before its TTL runs out.
func (s *WeatherService) EndSession(ctx context.Context, id string) error {
	return s.sessions.Delete(ctx, id)
}

// Session loads an existing page's state.
func (s *WeatherService) Session(ctx context.Context, id string) (*session.State, error) {
	return s.sessions.Load(ctx, id)
}

// ApplyLocation runs Locate for a session and stores either the weather or the message.
func (s *WeatherService) ApplyLocation(ctx context.Context, id string, provider location.LocationProvider) (*session.State, error) {
	if _, err := s.sessions.Load(ctx, id); err != nil {
		return nil, err
	}
	_, view, err := s.Locate(ctx, provider)
	return s.sessions.Update(ctx, id, func(st *session.State) error {
		if err != nil {
			st.SetError(UserMessage(err, KindCoordinates))
			return nil
		}
		st.SetWeather(view)
		return nil
	})
}

// Search looks up raw as typed in the search field. Whitespace-only input is ignored and
// the state is returned untouched. A successful search is recorded in the history.
func (s *WeatherService) Search(ctx context.Context, id, raw string) (*session.State, error) {
	st, err := s.sessions.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	city, verr := validation.ValidateCity(raw, s.maxQueryLength)
	if errors.Is(verr, validation.ErrCityEmpty) {
		return st, nil
	}

	var view models.WeatherView
	lookupErr := verr
	if verr == nil {
		view, lookupErr = s.LookupCity(ctx, city)
	}

	return s.sessions.Update(ctx, id, func(st *session.State) error {
		st.Query = raw
		if lookupErr != nil {
			st.SetError(UserMessage(lookupErr, KindCity))
			return nil
		}
		st.SetWeather(view)
		st.RecordSearch(city, s.sessions.Now())
		return nil
	})
}

// SelectHistory fills the search field with the i-th history entry.
func (s *WeatherService) SelectHistory(ctx context.Context, id string, i int) (*session.State, error) {
	return s.sessions.Update(ctx, id, func(st *session.State) error {
		st.SelectHistory(i)
		return nil
	})
}

// ToggleDarkMode flips the session's theme.
func (s *WeatherService) ToggleDarkMode(ctx context.Context, id string) (*session.State, error) {
	return s.sessions.Update(ctx, id, func(st *session.State) error {
		st.ToggleDarkMode()
		return nil
	})
}

// ToggleDetail opens or closes the clothing overlay.
func (s *WeatherService) ToggleDetail(ctx context.Context, id string) (*session.State, error) {
	return s.sessions.Update(ctx, id, func(st *session.State) error {
		st.ToggleDetail()
		return nil
	})
}
