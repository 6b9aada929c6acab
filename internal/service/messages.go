package service

import (
	"errors"

	"github.com/kjstillabower/weather-outfit-service/internal/location"
	"github.com/kjstillabower/weather-outfit-service/internal/validation"
)

// LookupKind says which path a weather lookup took.
type LookupKind string

const (
	KindCoordinates LookupKind = "coordinates"
	KindCity        LookupKind = "city"
)

const (
	MsgWeatherLookupFailed = "날씨 정보를 가져오는데 실패했습니다."
	MsgCityNotFound        = "도시를 찾을 수 없습니다."
)

// UserMessage returns the fixed Korean text shown for err. Location errors keep their
// own messages; any lookup failure after a location was resolved is the generic one.
func UserMessage(err error, kind LookupKind) string {
	if err == nil {
		return ""
	}
	if isLocationError(err) {
		return location.Message(err)
	}
	if kind == KindCity || errors.Is(err, validation.ErrCityTooLong) {
		return MsgCityNotFound
	}
	return MsgWeatherLookupFailed
}

func isLocationError(err error) bool {
	for _, target := range []error{
		location.ErrLocationUnsupported,
		location.ErrLocationPermissionDenied,
		location.ErrLocationUnavailable,
		location.ErrLocationTimeout,
		location.ErrLocationUnknown,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
