package control

import (
	"net/http"

	"github.com/mediaprocessors/core/status"
)

// httpStatus maps a core status code onto the HTTP status line the control
// surface responds with.
func httpStatus(code status.Code) int {
	switch code {
	case status.Success, status.NotModified:
		return http.StatusOK
	case status.NotFound:
		return http.StatusNotFound
	case status.Conflict:
		return http.StatusConflict
	case status.InvalidArgument, status.BadAudioVideoFormat, status.BadMultiplexFormat:
		return http.StatusBadRequest
	case status.TryAgain, status.NoMemory:
		return http.StatusServiceUnavailable
	case status.TimedOut:
		return http.StatusGatewayTimeout
	case status.EndOfFile:
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}
