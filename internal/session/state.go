// Package session holds the per-page-load application state: the current weather,
// the last error, the dark-mode flag and the bounded search history.
package session

import (
	"time"

	"github.com/kjstillabower/weather-outfit-service/internal/models"
)

// MaxHistory bounds the search history.
const MaxHistory = 5

// State is owned by exactly one session. Handlers never share a State value; they load
// it from the Store, mutate their copy and save it back.
type State struct {
	ID         string                      `json:"id"`
	Weather    *models.WeatherView         `json:"weather,omitempty"`
	Error      string                      `json:"error,omitempty"`
	Loading    bool                        `json:"loading"`
	DarkMode   bool                        `json:"darkMode"`
	DetailOpen bool                        `json:"detailOpen"`
	Query      string                      `json:"query"`
	History    []models.SearchHistoryEntry `json:"history"`
	CreatedAt  time.Time                   `json:"createdAt"`
}

// New returns the initial state of a fresh page: loading, empty history.
func New(id string, darkMode bool, now time.Time) *State {
	return &State{
		ID:        id,
		Loading:   true,
		DarkMode:  darkMode,
		History:   []models.SearchHistoryEntry{},
		CreatedAt: now,
	}
}

// SetWeather replaces the current weather wholesale and clears any error.
func (s *State) SetWeather(v models.WeatherView) {
	s.Weather = &v
	s.Error = ""
	s.Loading = false
}

// SetError records a user-facing failure. Previously shown weather is kept.
func (s *State) SetError(msg string) {
	s.Error = msg
	s.Loading = false
}

// RecordSearch puts city at the front of the history, dropping any older entry for the
// same city and anything past MaxHistory.
func (s *State) RecordSearch(city string, now time.Time) {
	s.History = AddToHistory(s.History, models.NewSearchHistoryEntry(city, now))
}

// SelectHistory copies the i-th history city into the search field. It does not search.
func (s *State) SelectHistory(i int) bool {
	if i < 0 || i >= len(s.History) {
		return false
	}
	s.Query = s.History[i].City
	return true
}

// ToggleDarkMode flips the theme and returns the new value.
func (s *State) ToggleDarkMode() bool {
	s.DarkMode = !s.DarkMode
	return s.DarkMode
}

// ToggleDetail flips the clothing overlay. It stays closed while there is no weather.
func (s *State) ToggleDetail() bool {
	if s.Weather == nil {
		s.DetailOpen = false
		return false
	}
	s.DetailOpen = !s.DetailOpen
	return s.DetailOpen
}

// AddToHistory returns a new slice with entry first, without duplicates by city,
// truncated to MaxHistory. The input slice is not modified.
func AddToHistory(history []models.SearchHistoryEntry, entry models.SearchHistoryEntry) []models.SearchHistoryEntry {
	out := make([]models.SearchHistoryEntry, 0, MaxHistory)
	out = append(out, entry)
	for _, h := range history {
		if len(out) == MaxHistory {
			break
		}
		if h.City == entry.City {
			continue
		}
		out = append(out, h)
	}
	return out
}
