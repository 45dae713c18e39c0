package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mcoot/qrkiosk/internal/api/request"
	"github.com/mcoot/qrkiosk/internal/api/response"
	"github.com/mcoot/qrkiosk/internal/model"
	"github.com/mcoot/qrkiosk/internal/services/registry"
)

// RegistrationHandler handles kiosk registration
type RegistrationHandler struct {
	registry *registry.Service
}

// NewRegistrationHandler creates a new registration handler
func NewRegistrationHandler(registry *registry.Service) *RegistrationHandler {
	return &RegistrationHandler{
		registry: registry,
	}
}

// Register handles POST /api/adminui/regChallenge/auto.
// Refusals are answered with 200 and success false so kiosks can show the message.
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	room, err := h.registry.Register(r.Context(), model.Registration{
		GroupName:   req.GroupName,
		PlayerCount: req.PlayerCount,
		Difficulty:  req.Difficulty,
		QueueNumber: req.QueueNumber,
		DupCheck:    req.DupCheck,
	})
	if err != nil {
		WriteRefusal(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RegisterResponse{
		Success: true,
		Message: RegisteredMessage(room.RoomID),
		RoomID:  string(room.RoomID),
	})
}

// RegisteredMessage is the text shown to a group after registering
func RegisteredMessage(id model.RoomID) string {
	return fmt.Sprintf("Registration complete. Please proceed to room %s.", id)
}
