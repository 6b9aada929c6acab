package recommend

import (
	"math"
	"testing"

	"github.com/kjstillabower/weather-outfit-service/internal/models"
)

func TestRecommend_BandBoundaries(t *testing.T) {
	tests := []struct {
		temp   float64
		suffix string
		emoji  string
	}{
		{45, "_30C", "🌞"},
		{30, "_30C", "🌞"},
		{29.9, "_24C", "🌤️"},
		{24, "_24C", "🌤️"},
		{23.99, "_15C", "☀️"},
		{15, "_15C", "☀️"},
		{14.5, "_9C", "🌥️"},
		{9, "_9C", "🌥️"},
		{8.99, "_0C", "❄️"},
		{0, "_0C", "❄️"},
		{-20, "_0C", "❄️"},
	}
	for _, tt := range tests {
		b := BandFor(tt.temp)
		if b.Suffix != tt.suffix {
			t.Errorf("BandFor(%v).Suffix = %q, want %q", tt.temp, b.Suffix, tt.suffix)
		}
		rec := Recommend(tt.temp)
		if rec.Emoji != tt.emoji {
			t.Errorf("Recommend(%v).Emoji = %q, want %q", tt.temp, rec.Emoji, tt.emoji)
		}
		if rec.Description != b.Description {
			t.Errorf("Recommend(%v).Description = %q, want %q", tt.temp, rec.Description, b.Description)
		}
		if got, want := CatImage(tt.temp), "/assets/illustrations/cat_male"+tt.suffix+".png"; got != want {
			t.Errorf("CatImage(%v) = %q, want %q", tt.temp, got, want)
		}
	}
}

func TestRecommend_Descriptions(t *testing.T) {
	if got := Recommend(30).Description; got != "민소매, 반팔, 반바지, 원피스" {
		t.Errorf("Recommend(30) = %q", got)
	}
	if got := Recommend(8.99).Description; got != "패딩, 두꺼운 코트, 목도리, 기모제품" {
		t.Errorf("Recommend(8.99) = %q", got)
	}
}

func TestBandFor_NaNFallsToColdest(t *testing.T) {
	if got := BandFor(math.NaN()).Suffix; got != "_0C" {
		t.Errorf("BandFor(NaN).Suffix = %q, want _0C", got)
	}
}

func TestBandFor_RecommendAndImageAgree(t *testing.T) {
	for temp := -10.0; temp <= 40; temp += 0.25 {
		b := BandFor(temp)
		if Recommend(temp).Emoji != b.Emoji {
			t.Fatalf("Recommend(%v) disagrees with BandFor", temp)
		}
		if CatImageAt("/x/", temp) != "/x/cat_male"+b.Suffix+".png" {
			t.Fatalf("CatImageAt(%v) disagrees with BandFor", temp)
		}
	}
}

func TestBand_ItemsAndLabel(t *testing.T) {
	b := BandFor(10)
	items := b.Items()
	if len(items) != 4 || items[0] != "얇은 패딩" || items[3] != "얇은 청바지" {
		t.Errorf("Items() = %q", items)
	}
	if b.Label() != "9C" {
		t.Errorf("Label() = %q, want 9C", b.Label())
	}
}

func TestConditionEmoji(t *testing.T) {
	tests := map[string]string{
		"Sunny":              "☀️",
		"Cloudy":             "☁️",
		"Patchy rain nearby": "🌧️",
		"Light snow":         "❄️",
		"맑음":                 "🌤️",
		"Partly cloudy":      "🌤️",
	}
	for in, want := range tests {
		if got := ConditionEmoji(in); got != want {
			t.Errorf("ConditionEmoji(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestView(t *testing.T) {
	rec := models.WeatherRecord{
		Location: models.Location{Name: "Seoul"},
		Current: models.CurrentConditions{
			TempC:     31,
			WindKPH:   18,
			Condition: models.Condition{Text: "Sunny"},
		},
	}
	v := View(rec, "/static/img")
	if v.Illustration != "/static/img/cat_male_30C.png" {
		t.Errorf("Illustration = %q", v.Illustration)
	}
	if v.Recommendation.Emoji != "🌞" {
		t.Errorf("Recommendation.Emoji = %q", v.Recommendation.Emoji)
	}
	if v.WindMS != 5 {
		t.Errorf("WindMS = %v, want 5", v.WindMS)
	}
	if v.ConditionEmoji != "☀️" {
		t.Errorf("ConditionEmoji = %q", v.ConditionEmoji)
	}
	if v.Weather.Location.Name != "Seoul" {
		t.Errorf("Weather not carried through")
	}
}
