package handlers

import (
	"net/http"

	"github.com/upb/voice-admin/services"
	"github.com/upb/voice-admin/utils"
	"go.uber.org/zap"
)

// MalformedRequestMessage is the error of every request that could not be parsed or validated
const MalformedRequestMessage = "Malformed request"

// HandleServiceError writes the failure envelope for a capability error.
// Every failure is a 500; failureMessage is the endpoint's static error and the
// error text goes to details.
func HandleServiceError(w http.ResponseWriter, err error, failureMessage string, logger *zap.Logger) {
	if err == nil {
		return
	}

	message := failureMessage
	if services.IsMalformedInputError(err) {
		message = MalformedRequestMessage
	}

	logger.Error("capability failed",
		zap.Error(err),
		zap.String("error_type", string(services.GetErrorType(err))),
		zap.Any("details", services.GetErrorDetails(err)),
	)

	if werr := utils.WriteInternalServerError(w, message, services.FailureMessage(err)); werr != nil {
		logger.Error("failed to write error response", zap.Error(werr))
	}
}
