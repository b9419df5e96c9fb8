package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"go-bidtrack-backend/internal/delivery/http/response"
	"go-bidtrack-backend/internal/domain"
	"go-bidtrack-backend/pkg/apperror"
)

type ApplicationHandler struct {
	applicationUC domain.ApplicationUsecase
}

// NewApplicationHandler registers application lifecycle routes
func NewApplicationHandler(r *gin.RouterGroup, applicationUC domain.ApplicationUsecase) {
	handler := &ApplicationHandler{applicationUC: applicationUC}

	applications := r.Group("/applications")
	{
		applications.POST("", handler.Apply)
		applications.POST("/hire", handler.MarkHired)
		applications.GET("/:id", handler.GetApplication)
		applications.PUT("/:id", handler.UpdateApplication)
		applications.PUT("/:id/stage", handler.UpdateStage)
		// The path parameter here is the owning user id: the trail spans all
		// of that user's applications.
		applications.GET("/:id/audit", handler.GetAuditTrail)
	}
}

// Apply godoc
// @Summary      Submit an application
// @Description  Record a new bid placed on a job
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        body  body      domain.ApplyInput  true  "Application data"
// @Success      201   {object}  response.Response{data=domain.Application}
// @Failure      400   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /applications [post]
// @Security     BearerAuth
func (h *ApplicationHandler) Apply(c *gin.Context) {
	var req domain.ApplyInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	app, err := h.applicationUC.Apply(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Application submitted successfully", app)
}

// UpdateStageRequest is the stage transition payload
type UpdateStageRequest struct {
	Stage string     `json:"stage" binding:"required"`
	Date  *time.Time `json:"date"`
	Notes *string    `json:"notes"`
}

// UpdateStage godoc
// @Summary      Move an application to another stage
// @Description  Apply a lifecycle transition; the change is audited and the owner notified
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        id    path      int                 true  "Application ID"
// @Param        body  body      UpdateStageRequest  true  "Target stage"
// @Success      200   {object}  response.Response{data=domain.Application}
// @Failure      400   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /applications/{id}/stage [put]
// @Security     BearerAuth
func (h *ApplicationHandler) UpdateStage(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("Invalid application ID"))
		return
	}

	var req UpdateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	app, err := h.applicationUC.Transition(c.Request.Context(), id, domain.TransitionInput{
		Stage:      req.Stage,
		OccurredAt: req.Date,
		Notes:      req.Notes,
	})
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Stage updated", app)
}

// MarkHired godoc
// @Summary      Record a hire
// @Description  Create the hire companion record for an application and stamp the hired stage
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        body  body      domain.HireInput  true  "Hire details"
// @Success      201   {object}  response.Response{data=domain.Application}
// @Failure      404   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /applications/hire [post]
// @Security     BearerAuth
func (h *ApplicationHandler) MarkHired(c *gin.Context) {
	var req domain.HireInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	app, err := h.applicationUC.MarkHired(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Hire recorded", app)
}

// UpdateApplicationRequest is the partial edit payload. Absent fields are
// left untouched; attachments are patched by add/remove lists.
type UpdateApplicationRequest struct {
	Title             *string    `json:"title"`
	Description       *string    `json:"description"`
	JobURL            *string    `json:"job_url"`
	ProposalLink      *string    `json:"proposal_link"`
	Technologies      *[]string  `json:"technologies"`
	Connects          *int       `json:"connects"`
	AppliedAt         *time.Time `json:"applied_at"`
	PlatformID        *int64     `json:"platform_id"`
	AddAttachments    []string   `json:"add_attachments"`
	RemoveAttachments []string   `json:"remove_attachments"`
}

// UpdateApplication godoc
// @Summary      Edit an application
// @Description  Partial update of non-lifecycle fields; every change is audited
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        id    path      int                       true  "Application ID"
// @Param        body  body      UpdateApplicationRequest  true  "Fields to change"
// @Success      200   {object}  response.Response{data=domain.Application}
// @Failure      404   {object}  response.Response
// @Router       /applications/{id} [put]
// @Security     BearerAuth
func (h *ApplicationHandler) UpdateApplication(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("Invalid application ID"))
		return
	}

	var req UpdateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	app, err := h.applicationUC.UpdateFields(c.Request.Context(), id, domain.FieldPatch{
		Title:             req.Title,
		Description:       req.Description,
		JobURL:            req.JobURL,
		ProposalLink:      req.ProposalLink,
		Technologies:      req.Technologies,
		Connects:          req.Connects,
		AppliedAt:         req.AppliedAt,
		PlatformID:        req.PlatformID,
		AddAttachments:    req.AddAttachments,
		RemoveAttachments: req.RemoveAttachments,
	})
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Application updated", app)
}

// GetApplication godoc
// @Summary      Get one application
// @Tags         applications
// @Produce      json
// @Param        id  path      int  true  "Application ID"
// @Success      200  {object}  response.Response{data=domain.Application}
// @Failure      404  {object}  response.Response
// @Router       /applications/{id} [get]
// @Security     BearerAuth
func (h *ApplicationHandler) GetApplication(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("Invalid application ID"))
		return
	}

	app, err := h.applicationUC.GetByID(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Application retrieved", app)
}

// GetAuditTrail godoc
// @Summary      Get a user's audit trail
// @Description  Field-level change history across all of the user's applications, most recent first
// @Tags         applications
// @Produce      json
// @Param        id     path      int  true   "User ID"
// @Param        limit  query     int  false  "Max entries (default 100)"
// @Success      200    {object}  response.Response{data=[]domain.AuditEntry}
// @Router       /applications/{id}/audit [get]
// @Security     BearerAuth
func (h *ApplicationHandler) GetAuditTrail(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("Invalid user ID"))
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	entries, err := h.applicationUC.AuditTrail(c.Request.Context(), userID, limit)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Audit trail retrieved", entries)
}
