package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/libreclinica/api-gateway/internal/models"
	"github.com/libreclinica/api-gateway/internal/service"
	"github.com/libreclinica/api-gateway/internal/utils"
	pkgutils "github.com/libreclinica/api-gateway/pkg/utils"
)

// SubjectHandler exposes study subject listing and enrollment endpoints
type SubjectHandler struct {
	subjectService *service.SubjectService
	logger         *logrus.Logger
}

// NewSubjectHandler creates a new subject handler
func NewSubjectHandler(subjectService *service.SubjectService, logger *logrus.Logger) *SubjectHandler {
	return &SubjectHandler{subjectService: subjectService, logger: logger}
}

// GetSubjects handles GET /api/v1/studies/:studyId/subjects
func (h *SubjectHandler) GetSubjects(c *gin.Context) {
	studyID, ok := utils.ParseIDParam(c, "studyId")
	if !ok {
		return
	}

	var filters models.SubjectFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	result, err := h.subjectService.GetSubjects(c.Request.Context(), studyID, &filters)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get subjects")
		utils.SendInternalServerError(c, "Failed to get subjects", "")
		return
	}
	utils.SendServiceResult(c, result, http.StatusOK)
}

// GetSubject handles GET /api/v1/studies/:studyId/subjects/:subjectId
func (h *SubjectHandler) GetSubject(c *gin.Context) {
	studyID, ok := utils.ParseIDParam(c, "studyId")
	if !ok {
		return
	}
	subjectID, ok := utils.ParseIDParam(c, "subjectId")
	if !ok {
		return
	}

	result, err := h.subjectService.GetSubject(c.Request.Context(), studyID, subjectID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get subject")
		utils.SendInternalServerError(c, "Failed to get subject", "")
		return
	}
	utils.SendServiceResult(c, result, http.StatusOK)
}

// EnrollSubject handles POST /api/v1/studies/:studyId/subjects
func (h *SubjectHandler) EnrollSubject(c *gin.Context) {
	studyID, ok := utils.ParseIDParam(c, "studyId")
	if !ok {
		return
	}

	var req models.SubjectEnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}
	if req.EnrollmentDate != "" && !validDate(req.EnrollmentDate) {
		utils.SendValidationError(c, "enrollmentDate must be a calendar date (YYYY-MM-DD)")
		return
	}
	if req.DateOfBirth != nil && *req.DateOfBirth != "" && !validDate(*req.DateOfBirth) {
		utils.SendValidationError(c, "dateOfBirth must be a calendar date (YYYY-MM-DD)")
		return
	}

	result, err := h.subjectService.EnrollSubject(c.Request.Context(), studyID, &req,
		utils.GetUserIDFromContext(c), utils.GetUsernameFromContext(c))
	if err != nil {
		h.logger.WithError(err).Error("Failed to enroll subject")
		utils.SendInternalServerError(c, "Failed to enroll subject", "")
		return
	}
	utils.SendServiceResult(c, result, http.StatusCreated)
}

func validDate(s string) bool {
	return pkgutils.IsValidDate(s)
}
