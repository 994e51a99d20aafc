package handler

import (
	"encoding/json"
	"net/http"

	"go-commerce-service/internal/http/response"
	"go-commerce-service/internal/service"
)

type ChatHandler struct {
	chatSvc service.ChatService
}

func NewChatHandler(chatSvc service.ChatService) *ChatHandler {
	return &ChatHandler{chatSvc: chatSvc}
}

func (h *ChatHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.FromError(w, r, errBadBody)
		return
	}
	reply, err := h.chatSvc.Complete(r.Context(), body.Prompt)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "chat completed", map[string]string{"reply": reply})
}
