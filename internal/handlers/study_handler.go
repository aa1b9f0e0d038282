package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/libreclinica/api-gateway/internal/models"
	"github.com/libreclinica/api-gateway/internal/service"
	"github.com/libreclinica/api-gateway/internal/utils"
)

// StudyHandler exposes study listing, metadata and lifecycle endpoints
type StudyHandler struct {
	studyService *service.StudyService
	logger       *logrus.Logger
}

// NewStudyHandler creates a new study handler
func NewStudyHandler(studyService *service.StudyService, logger *logrus.Logger) *StudyHandler {
	return &StudyHandler{studyService: studyService, logger: logger}
}

// GetStudies handles GET /api/v1/studies
func (h *StudyHandler) GetStudies(c *gin.Context) {
	var filters models.StudyFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	result, err := h.studyService.GetStudies(c.Request.Context(), &filters,
		utils.GetUserIDFromContext(c), utils.GetUsernameFromContext(c))
	if err != nil {
		h.logger.WithError(err).Error("Failed to get studies")
		utils.SendInternalServerError(c, "Failed to get studies", "")
		return
	}
	utils.SendServiceResult(c, result, http.StatusOK)
}

// GetStudyMetadata handles GET /api/v1/studies/:studyId/metadata
func (h *StudyHandler) GetStudyMetadata(c *gin.Context) {
	studyID, ok := utils.ParseIDParam(c, "studyId")
	if !ok {
		return
	}

	result, err := h.studyService.GetStudyMetadata(c.Request.Context(), studyID,
		utils.GetUserIDFromContext(c), utils.GetUsernameFromContext(c))
	if err != nil {
		h.logger.WithError(err).Error("Failed to get study metadata")
		utils.SendInternalServerError(c, "Failed to get study metadata", "")
		return
	}
	utils.SendServiceResult(c, result, http.StatusOK)
}

// CreateStudy handles POST /api/v1/studies
func (h *StudyHandler) CreateStudy(c *gin.Context) {
	var req models.StudyCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	result, err := h.studyService.CreateStudy(c.Request.Context(), &req,
		utils.GetUserIDFromContext(c), utils.GetUsernameFromContext(c))
	if err != nil {
		h.logger.WithError(err).Error("Failed to create study")
		utils.SendInternalServerError(c, "Failed to create study", "")
		return
	}
	utils.SendServiceResult(c, result, http.StatusCreated)
}

// UpdateStudy handles PUT /api/v1/studies/:studyId
func (h *StudyHandler) UpdateStudy(c *gin.Context) {
	studyID, ok := utils.ParseIDParam(c, "studyId")
	if !ok {
		return
	}

	var req models.StudyUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	result, err := h.studyService.UpdateStudy(c.Request.Context(), studyID, &req,
		utils.GetUserIDFromContext(c), utils.GetUsernameFromContext(c))
	if err != nil {
		h.logger.WithError(err).Error("Failed to update study")
		utils.SendInternalServerError(c, "Failed to update study", "")
		return
	}
	utils.SendServiceResult(c, result, http.StatusOK)
}

// DeleteStudy handles DELETE /api/v1/studies/:studyId
func (h *StudyHandler) DeleteStudy(c *gin.Context) {
	studyID, ok := utils.ParseIDParam(c, "studyId")
	if !ok {
		return
	}

	result, err := h.studyService.DeleteStudy(c.Request.Context(), studyID,
		utils.GetUserIDFromContext(c), utils.GetUsernameFromContext(c))
	if err != nil {
		h.logger.WithError(err).Error("Failed to delete study")
		utils.SendInternalServerError(c, "Failed to delete study", "")
		return
	}
	utils.SendServiceResult(c, result, http.StatusOK)
}
