package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/neochat/relay/internal/mailbox"
)

// send stores an encrypted envelope for an offline recipient
func (r *Router) send(w http.ResponseWriter, req *http.Request) {
	var body SendRequest
	if err := decodeJSON(req, &body); err != nil {
		r.respondAppError(w, req, err)
		return
	}

	messageID, err := r.mailbox.Send(req.Context(), mailbox.SendInput{
		From:      body.From,
		To:        body.To,
		Payload:   body.Payload,
		MessageID: body.MessageID,
	})
	if err != nil {
		r.respondAppError(w, req, err)
		return
	}

	respondJSON(w, http.StatusOK, SendResponse{OK: true, MessageID: messageID})
}

// poll returns the pending envelopes for a recipient without removing them
func (r *Router) poll(w http.ResponseWriter, req *http.Request) {
	messages, err := r.mailbox.Poll(req.Context(), mux.Vars(req)["recipient"])
	if err != nil {
		r.respondAppError(w, req, err)
		return
	}

	respondJSON(w, http.StatusOK, PollResponse{Messages: messages})
}

// ack deletes one envelope after the client has received it
func (r *Router) ack(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	if err := r.mailbox.Ack(req.Context(), vars["recipient"], vars["message_id"]); err != nil {
		r.respondAppError(w, req, err)
		return
	}

	respondJSON(w, http.StatusOK, AckResponse{OK: true})
}
