package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/frontdesk/internal/core/error"
	logx "github.com/Chative-core-poc-v1/frontdesk/pkg/logger"
)

// chatHandler handles POST /chat
func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	start := s.now()
	requestID := uuid.NewString()

	var req model.TurnRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		logx.Warn().Err(err).Str("request_id", requestID).Msg("chat request invalid JSON")
		writeJSONResponse(w, http.StatusBadRequest, model.ErrorResponse{
			Error: "invalid JSON body",
			Debug: model.ErrorDebug{RequestID: requestID, ErrorType: errx.TypeValidation},
		})
		return
	}

	reply, err := s.engine.HandleTurn(r.Context(), &req)
	elapsed := s.now().Sub(start).Milliseconds()
	if err != nil {
		if errx.IsValidation(err) {
			logx.Warn().Err(err).Str("request_id", requestID).Msg("chat request rejected")
			writeJSONResponse(w, http.StatusBadRequest, model.ErrorResponse{
				Error: err.Error(),
				Debug: model.ErrorDebug{RequestID: requestID, ErrorType: errx.TypeValidation},
			})
			return
		}
		errorType := errx.ClassifyErrorType(err)
		logx.Error().Err(err).Str("request_id", requestID).Str("error_type", errorType).Int64("total_ms", elapsed).Msg("chat request failed")
		writeJSONResponse(w, http.StatusInternalServerError, model.ErrorResponse{
			Error: errx.UserMessage(err),
			Debug: model.ErrorDebug{
				RequestID:    requestID,
				ErrorType:    errorType,
				ErrorMessage: err.Error(),
				TotalTimeMs:  elapsed,
			},
		})
		return
	}

	result := reply.Result
	logx.Info().
		Str("request_id", requestID).
		Str("session_id", reply.SessionID).
		Str("response_type", string(result.ResponseType)).
		Int64("response_ms", elapsed).
		Msg("chat request served")
	writeJSONResponse(w, http.StatusOK, model.TurnResponse{
		Message: result.Message,
		Context: result.Context,
		Debug: model.DebugInfo{
			RequestID:          requestID,
			SessionID:          reply.SessionID,
			ResponseType:       result.ResponseType,
			ResponseTimeMs:     elapsed,
			AssistantTurnCount: reply.AssistantTurnCount,
			Trigger:            result.Trigger,
			FlowStep:           reply.FlowStep,
			Attempts:           result.Attempts,
			Usage:              result.Usage,
		},
	})
}

// healthHandler handles GET /healthz
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
