package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/careerbridge-backend/internal/http/response"
	"github.com/yungbote/careerbridge-backend/internal/services"
)

type PlanHandler struct {
	plans services.PlanService
}

func NewPlanHandler(plans services.PlanService) *PlanHandler {
	return &PlanHandler{plans: plans}
}

// POST /api/plans/generate
func (h *PlanHandler) Generate(c *gin.Context) {
	var req struct {
		ConversationID string `json:"conversation_id"`
	}
	if !bindJSON(c, &req) {
		return
	}
	convID, err := uuid.Parse(req.ConversationID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_conversation_id", errors.New("conversation_id must be a uuid"))
		return
	}
	res, err := h.plans.Generate(c.Request.Context(), convID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{
		"plan":             res.Plan,
		"attempts":         res.Attempts,
		"archived_plan_id": res.ArchivedPlanID,
	})
}

// GET /api/plans/active
func (h *PlanHandler) Active(c *gin.Context) {
	p, err := h.plans.Active(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"plan": p})
}

// GET /api/plans/:id
func (h *PlanHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	p, err := h.plans.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"plan": p})
}

// GET /api/plans/:id/progress
func (h *PlanHandler) Progress(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	sum, err := h.plans.Progress(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, sum)
}

// GET /api/plans/:id/resources/featured?limit=5
func (h *PlanHandler) FeaturedResources(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.RespondError(c, http.StatusBadRequest, "invalid_limit", errors.New("limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	res, err := h.plans.FeaturedResources(c.Request.Context(), id, limit)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"resources": res})
}

// POST /api/plans/:id/archive
func (h *PlanHandler) Archive(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.plans.Archive(c.Request.Context(), id); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// PATCH /api/tasks/:id
func (h *PlanHandler) ToggleTask(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Completed *bool `json:"completed"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if req.Completed == nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("completed is required"))
		return
	}
	res, err := h.plans.ToggleTask(c.Request.Context(), id, *req.Completed)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/milestones/:id/complete
func (h *PlanHandler) CompleteMilestone(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	res, err := h.plans.CompleteMilestone(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/milestones/:id/skip
func (h *PlanHandler) SkipMilestone(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	res, err := h.plans.SkipMilestone(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, res)
}
