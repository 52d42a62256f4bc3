package adminapi

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/obsidian-net/classicd/pkg/log"
)

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	if err := json.NewEncoder(rw).Encode(v); err != nil {
		log.Warnf("adminapi: encoding response: %v", err)
	}
}

func writeError(rw http.ResponseWriter, status int, message string) {
	writeJSON(rw, status, map[string]string{"error": message})
}

// @Summary List connected players
// @Tags players
// @Produce json
// @Success 200 {array} PlayerSummary
// @Security ApiKeyAuth
// @Router /api/v1/players [get]
func (a *API) handleListPlayers(rw http.ResponseWriter, r *http.Request) {
	writeJSON(rw, http.StatusOK, a.gw.PlayerSnapshot())
}

// @Summary List loaded worlds
// @Tags worlds
// @Produce json
// @Success 200 {array} WorldSummaryView
// @Security ApiKeyAuth
// @Router /api/v1/worlds [get]
func (a *API) handleListWorlds(rw http.ResponseWriter, r *http.Request) {
	writeJSON(rw, http.StatusOK, a.gw.WorldSummaries())
}

// @Summary Save every loaded world to disk
// @Tags worlds
// @Produce json
// @Success 200 {object} map[string]string
// @Security ApiKeyAuth
// @Router /api/v1/worlds/save [post]
func (a *API) handleSaveAll(rw http.ResponseWriter, r *http.Request) {
	if err := a.gw.SaveAll(); err != nil {
		writeError(rw, http.StatusInternalServerError, err.Error())
		return
	}
	a.recordAudit(r, "save", "", "")
	writeJSON(rw, http.StatusOK, map[string]string{"status": "saved"})
}

// @Summary Disconnect a player
// @Tags players
// @Produce json
// @Param username path string true "Username"
// @Param reason query string false "Kick reason"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security ApiKeyAuth
// @Router /api/v1/players/{username}/kick [post]
func (a *API) handleKick(rw http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	reason := r.URL.Query().Get("reason")
	if reason == "" {
		reason = "Kicked By An Operator"
	}
	if !a.gw.KickPlayer(username, reason) {
		writeError(rw, http.StatusNotFound, "player not connected")
		return
	}
	a.recordAudit(r, "kick", username, reason)
	writeJSON(rw, http.StatusOK, map[string]string{"status": "kicked"})
}

// @Summary Ban a player, kicking them if online
// @Tags players
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} map[string]string
// @Security ApiKeyAuth
// @Router /api/v1/players/{username}/ban [post]
func (a *API) handleBan(rw http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	if err := a.gw.BanPlayer(username); err != nil {
		writeError(rw, http.StatusInternalServerError, err.Error())
		return
	}
	a.recordAudit(r, "ban", username, "")
	writeJSON(rw, http.StatusOK, map[string]string{"status": "banned"})
}

// @Summary Lift a player's ban
// @Tags players
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} map[string]string
// @Security ApiKeyAuth
// @Router /api/v1/players/{username}/unban [post]
func (a *API) handleUnban(rw http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	if err := a.gw.UnbanPlayer(username); err != nil {
		writeError(rw, http.StatusInternalServerError, err.Error())
		return
	}
	a.recordAudit(r, "unban", username, "")
	writeJSON(rw, http.StatusOK, map[string]string{"status": "unbanned"})
}

// @Summary Grant operator status
// @Tags players
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} map[string]string
// @Security ApiKeyAuth
// @Router /api/v1/players/{username}/op [post]
func (a *API) handleOp(rw http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	if err := a.gw.OpPlayer(username); err != nil {
		writeError(rw, http.StatusInternalServerError, err.Error())
		return
	}
	a.recordAudit(r, "op", username, "")
	writeJSON(rw, http.StatusOK, map[string]string{"status": "opped"})
}

// @Summary Revoke operator status
// @Tags players
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} map[string]string
// @Security ApiKeyAuth
// @Router /api/v1/players/{username}/deop [post]
func (a *API) handleDeop(rw http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	if err := a.gw.DeopPlayer(username); err != nil {
		writeError(rw, http.StatusInternalServerError, err.Error())
		return
	}
	a.recordAudit(r, "deop", username, "")
	writeJSON(rw, http.StatusOK, map[string]string{"status": "deopped"})
}

// recordAudit is a best-effort log of the action to the repository;
// a nil repository (no database configured) or a write error does not
// fail the request, since the action itself already succeeded.
func (a *API) recordAudit(r *http.Request, action, target, detail string) {
	if a.audit == nil {
		return
	}
	actor := adminFromContext(r.Context())
	if err := a.audit.RecordAudit(actor, action, target, detail); err != nil {
		log.Warnf("adminapi: recording audit entry: %v", err)
	}
}
