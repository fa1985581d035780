package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/neochat/relay/internal/directory"
	"github.com/skip2/go-qrcode"
)

const qrSize = 256

// upsertProfile replaces the caller's public profile
func (r *Router) upsertProfile(w http.ResponseWriter, req *http.Request) {
	var body UpsertProfileRequest
	if err := decodeJSON(req, &body); err != nil {
		r.respondAppError(w, req, err)
		return
	}

	profile, err := r.directory.UpsertProfile(req.Context(), directory.UpsertInput{
		ID:        body.ID,
		Username:  body.Username,
		Status:    body.Status,
		AvatarURL: body.AvatarURL,
	})
	if err != nil {
		r.respondAppError(w, req, err)
		return
	}

	respondJSON(w, http.StatusOK, UpsertProfileResponse{OK: true, Profile: profile})
}

// getProfile returns a stored profile by id
func (r *Router) getProfile(w http.ResponseWriter, req *http.Request) {
	profile, err := r.directory.GetProfile(req.Context(), mux.Vars(req)["id"])
	if err != nil {
		r.respondAppError(w, req, err)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// profileQR renders the profile id as a PNG QR code for contact sharing
func (r *Router) profileQR(w http.ResponseWriter, req *http.Request) {
	profile, err := r.directory.GetProfile(req.Context(), mux.Vars(req)["id"])
	if err != nil {
		r.respondAppError(w, req, err)
		return
	}

	png, err := qrcode.Encode(profile.ID, qrcode.Medium, qrSize)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate QR")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}
