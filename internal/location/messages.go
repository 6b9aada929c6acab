package location

import "errors"

const (
	MsgUnsupported      = "이 브라우저는 위치 정보를 지원하지 않습니다."
	MsgPermissionDenied = "위치 정보 접근이 거부되었습니다. 브라우저 설정에서 위치 정보 접근을 허용해주세요."
	MsgUnavailable      = "위치 정보를 사용할 수 없습니다. 위치 서비스가 활성화되어 있는지 확인해주세요."
	MsgTimeout          = "위치 정보 요청 시간이 초과되었습니다. 다시 시도해주세요."
	MsgUnknown          = "알 수 없는 오류가 발생했습니다."
)

// Message returns the user-facing text for a location error, or "" for nil.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrLocationUnsupported):
		return MsgUnsupported
	case errors.Is(err, ErrLocationPermissionDenied):
		return MsgPermissionDenied
	case errors.Is(err, ErrLocationUnavailable):
		return MsgUnavailable
	case errors.Is(err, ErrLocationTimeout):
		return MsgTimeout
	}
	return MsgUnknown
}
