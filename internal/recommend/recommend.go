// Package recommend maps a Celsius temperature to clothing advice and an illustration.
package recommend

import (
	"math"
	"strings"

	"github.com/kjstillabower/weather-outfit-service/internal/models"
)

// Band is one temperature interval. Min is inclusive; the upper bound is the Min of the
// band above it.
type Band struct {
	Min         float64
	Description string
	Emoji       string
	Suffix      string
}

// bands are evaluated top-down, first match wins. The last band has no lower bound.
var bands = []Band{
	{Min: 30, Description: "민소매, 반팔, 반바지, 원피스", Emoji: "🌞", Suffix: "_30C"},
	{Min: 24, Description: "반팔, 얇은 셔츠, 반바지, 면바지", Emoji: "🌤️", Suffix: "_24C"},
	{Min: 15, Description: "얇은 니트, 맨투맨, 얇은 가디건, 청바지", Emoji: "☀️", Suffix: "_15C"},
	{Min: 9, Description: "얇은 패딩, 얇은 니트, 맨투맨, 얇은 청바지", Emoji: "🌥️", Suffix: "_9C"},
	{Min: math.Inf(-1), Description: "패딩, 두꺼운 코트, 목도리, 기모제품", Emoji: "❄️", Suffix: "_0C"},
}

// DefaultImagePrefix is where the illustrations are served from.
const DefaultImagePrefix = "/assets/illustrations"

// BandFor returns the band containing tempC. NaN falls through to the coldest band,
// matching a chain of >= comparisons.
func BandFor(tempC float64) Band {
	for _, b := range bands {
		if tempC >= b.Min {
			return b
		}
	}
	return bands[len(bands)-1]
}

// Bands returns a copy of the band table, warmest first.
func Bands() []Band {
	out := make([]Band, len(bands))
	copy(out, bands)
	return out
}

// Label is a stable metric label for the band, e.g. "30C".
func (b Band) Label() string {
	return strings.TrimPrefix(b.Suffix, "_")
}

// Items splits the description into individual garments.
func (b Band) Items() []string {
	parts := strings.Split(b.Description, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// Recommend returns the clothing advice for tempC.
func Recommend(tempC float64) models.ClothingRecommendation {
	b := BandFor(tempC)
	return models.ClothingRecommendation{Description: b.Description, Emoji: b.Emoji}
}

// CatImage returns the illustration path for tempC under DefaultImagePrefix.
func CatImage(tempC float64) string {
	return CatImageAt(DefaultImagePrefix, tempC)
}

// CatImageAt returns the illustration path for tempC under prefix.
func CatImageAt(prefix string, tempC float64) string {
	return strings.TrimRight(prefix, "/") + "/cat_male" + BandFor(tempC).Suffix + ".png"
}

// ConditionEmoji picks the headline emoji from the provider's condition text.
func ConditionEmoji(text string) string {
	switch {
	case text == "Sunny":
		return "☀️"
	case text == "Cloudy":
		return "☁️"
	case strings.Contains(text, "rain"):
		return "🌧️"
	case strings.Contains(text, "snow"):
		return "❄️"
	default:
		return "🌤️"
	}
}

// WindMS converts km/h to m/s rounded to one decimal.
func WindMS(kph float64) float64 {
	return math.Round(kph/3.6*10) / 10
}

// View assembles everything the page shows for one record.
func View(rec models.WeatherRecord, imagePrefix string) models.WeatherView {
	t := rec.Current.TempC
	return models.WeatherView{
		Weather:        rec,
		Recommendation: Recommend(t),
		Illustration:   CatImageAt(imagePrefix, t),
		ConditionEmoji: ConditionEmoji(rec.Current.Condition.Text),
		WindMS:         WindMS(rec.Current.WindKPH),
	}
}
