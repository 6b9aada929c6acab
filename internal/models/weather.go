package models

import "time"

// WeatherRecord is one current-conditions response from the provider, decoded as-is.
type WeatherRecord struct {
	Location Location          `json:"location"`
	Current  CurrentConditions `json:"current"`
}

type Location struct {
	Name      string  `json:"name"`
	Region    string  `json:"region"`
	Country   string  `json:"country"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Localtime string  `json:"localtime"`
}

type CurrentConditions struct {
	TempC      float64   `json:"temp_c"`
	Condition  Condition `json:"condition"`
	Humidity   int       `json:"humidity"`
	WindKPH    float64   `json:"wind_kph"`
	FeelsLikeC float64   `json:"feelslike_c"`
}

type Condition struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
}

// ClothingRecommendation is derived from temperature only.
type ClothingRecommendation struct {
	Description string `json:"description"`
	Emoji       string `json:"emoji"`
}

// SearchHistoryEntry records one successful city search. Timestamp is unix millis.
type SearchHistoryEntry struct {
	City      string `json:"city"`
	Timestamp int64  `json:"timestamp"`
}

// NewSearchHistoryEntry stamps city with t in milliseconds.
func NewSearchHistoryEntry(city string, t time.Time) SearchHistoryEntry {
	return SearchHistoryEntry{City: city, Timestamp: t.UnixMilli()}
}

// WeatherView is what the page and the JSON API render for a successful lookup.
type WeatherView struct {
	Weather        WeatherRecord          `json:"weather"`
	Recommendation ClothingRecommendation `json:"recommendation"`
	Illustration   string                 `json:"illustration"`
	ConditionEmoji string                 `json:"conditionEmoji"`
	WindMS         float64                `json:"windMs"`
}
