package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/qrkiosk/internal/api/request"
	"github.com/mcoot/qrkiosk/internal/api/response"
	"github.com/mcoot/qrkiosk/internal/model"
	"github.com/mcoot/qrkiosk/internal/services/registry"
)

// RoomsHandler handles the staff rooms table
type RoomsHandler struct {
	registry *registry.Service
}

// NewRoomsHandler creates a new rooms handler
func NewRoomsHandler(registry *registry.Service) *RoomsHandler {
	return &RoomsHandler{
		registry: registry,
	}
}

// List handles GET /api/adminui/rooms/list
func (h *RoomsHandler) List(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.registry.ListRooms(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomListResponse{
		Success: true,
		Data:    response.RoomsFromModel(rooms),
	})
}

// Update handles PUT /api/adminui/rooms/update/{challengeId}
func (h *RoomsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := model.ChallengeID(mux.Vars(r)["challengeId"])

	var req request.UpdateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.ChallengeID != "" && model.ChallengeID(req.ChallengeID) != id {
		WriteError(w, NewInvalidRequestError("ChallengeId does not match the path"))
		return
	}

	update := model.RoomUpdate{
		GroupName:   req.GroupName,
		Difficulty:  req.Difficulty,
		MemberCount: req.MemberCount,
	}
	if req.Status != nil {
		status := model.RoomStatus(*req.Status)
		update.Status = &status
	}
	if req.StartTime != nil && *req.StartTime != "" {
		start, err := model.ParseStartTime(*req.StartTime)
		if err != nil {
			WriteError(w, err)
			return
		}
		update.StartTime = &start
	}

	room, err := h.registry.UpdateRoom(r.Context(), id, update)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomResponse{
		Success: true,
		Data:    response.RoomFromModel(room),
	})
}

// Delete handles DELETE /api/adminui/rooms/delete/{challengeId}
func (h *RoomsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := model.ChallengeID(mux.Vars(r)["challengeId"])

	if err := h.registry.DeleteRoom(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MessageResponse{
		Success: true,
		Message: "Room deleted",
	})
}
