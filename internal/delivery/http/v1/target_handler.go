package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-bidtrack-backend/internal/delivery/http/response"
	"go-bidtrack-backend/internal/domain"
	"go-bidtrack-backend/pkg/apperror"
)

type TargetHandler struct {
	targetUC domain.TargetUsecase
}

// NewTargetHandler registers weekly target routes
func NewTargetHandler(r *gin.RouterGroup, targetUC domain.TargetUsecase) {
	handler := &TargetHandler{targetUC: targetUC}

	targets := r.Group("/targets")
	{
		targets.POST("", handler.SetTarget)
		targets.PUT("/achieved", handler.RecordAchieved)
	}
}

// SetTarget godoc
// @Summary      Set a weekly target
// @Description  Create the week's target on first call, update the amount thereafter
// @Tags         targets
// @Accept       json
// @Produce      json
// @Param        body  body      domain.SetTargetInput  true  "Target"
// @Success      200   {object}  response.Response{data=domain.WeeklyTarget}
// @Failure      400   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /targets [post]
// @Security     BearerAuth
func (h *TargetHandler) SetTarget(c *gin.Context) {
	var req domain.SetTargetInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	target, err := h.targetUC.SetTarget(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Target saved", target)
}

// RecordAchieved godoc
// @Summary      Record achieved amount
// @Description  Update the achieved amount for a week; fires target-achieved on the crossing
// @Tags         targets
// @Accept       json
// @Produce      json
// @Param        body  body      domain.RecordAchievedInput  true  "Achieved amount"
// @Success      200   {object}  response.Response{data=domain.WeeklyTarget}
// @Failure      404   {object}  response.Response
// @Router       /targets/achieved [put]
// @Security     BearerAuth
func (h *TargetHandler) RecordAchieved(c *gin.Context) {
	var req domain.RecordAchievedInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	target, err := h.targetUC.RecordAchieved(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Achieved amount recorded", target)
}
