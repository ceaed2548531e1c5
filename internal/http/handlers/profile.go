package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/careerbridge-backend/internal/http/response"
	"github.com/yungbote/careerbridge-backend/internal/services"
)

type ProfileHandler struct {
	profiles services.ProfileService
	prefs    services.PreferenceService
}

func NewProfileHandler(profiles services.ProfileService, prefs services.PreferenceService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, prefs: prefs}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	p, err := h.profiles.Get(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"profile": p})
}

func (h *ProfileHandler) PutProfile(c *gin.Context) {
	var req services.ProfileInput
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.profiles.Upsert(c.Request.Context(), req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"profile": p})
}

func (h *ProfileHandler) GetPreferences(c *gin.Context) {
	p, err := h.prefs.Get(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"preferences": p})
}

func (h *ProfileHandler) PutPreferences(c *gin.Context) {
	var req services.PreferenceInput
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.prefs.Update(c.Request.Context(), req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"preferences": p})
}
