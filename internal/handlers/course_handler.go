package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/formacode/course-service/internal/auth"
	"github.com/formacode/course-service/internal/models"
	"github.com/formacode/course-service/internal/repositories"
	"github.com/formacode/course-service/internal/services"
	"github.com/formacode/course-service/internal/utils"
)

type CourseHandler struct {
	BaseHandler
	syncService    services.SyncService
	outlineService services.OutlineService
}

func NewCourseHandler(
	syncService services.SyncService,
	outlineService services.OutlineService,
	logger *slog.Logger,
) *CourseHandler {
	return &CourseHandler{
		BaseHandler:    NewBaseHandler(logger),
		syncService:    syncService,
		outlineService: outlineService,
	}
}

// ImportCourse creates a new course tree from a document.
func (h *CourseHandler) ImportCourse(c *gin.Context) {
	var doc models.CourseDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	principal, _ := auth.PrincipalFromContext(c)

	courseID, err := h.syncService.ImportCourse(c.Request.Context(), &doc, principal.ID, nil)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "Course imported",
		Data:    gin.H{"course_id": courseID},
	})
}

// ReimportCourse replaces an existing course's subtree from a document.
func (h *CourseHandler) ReimportCourse(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	var doc models.CourseDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	principal, _ := auth.PrincipalFromContext(c)

	if _, err := h.syncService.ImportCourse(c.Request.Context(), &doc, principal.ID, &courseID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Course replaced",
		Data:    gin.H{"course_id": courseID},
	})
}

// GetCourseDocument returns the course tree as a document, inline.
func (h *CourseHandler) GetCourseDocument(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	doc, err := h.syncService.ExportCourse(c.Request.Context(), courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

// ExportCourse returns the course document as a downloadable file named
// after the course title.
func (h *CourseHandler) ExportCourse(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	doc, err := h.syncService.ExportCourse(c.Request.Context(), courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := utils.Slugify(doc.Title) + ".json"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.JSON(http.StatusOK, doc)
}

// ExportOutline returns the course structure as an XLSX workbook.
func (h *CourseHandler) ExportOutline(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	data, err := h.outlineService.ExportOutlineToExcel(c.Request.Context(), courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="outline.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// DeleteCourse removes a course and its whole subtree.
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	principal, _ := auth.PrincipalFromContext(c)

	if err := h.syncService.DeleteCourse(c.Request.Context(), courseID, principal.ID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Course deleted"})
}

// ListCourses returns course roots matching the query filters.
func (h *CourseHandler) ListCourses(c *gin.Context) {
	page := h.parseIntQuery(c, "page", 1)
	if page < 1 {
		page = 1
	}
	size := h.parseIntQuery(c, "size", 20)

	filters := repositories.CourseFilters{
		Limit:     size,
		Offset:    (page - 1) * size,
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}
	if status := c.Query("status"); status != "" {
		courseStatus := models.CourseStatus(status)
		filters.Status = &courseStatus
	}
	if createdBy := c.Query("created_by"); createdBy != "" {
		filters.CreatedBy = &createdBy
	}

	courses, total, err := h.syncService.ListCourses(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"courses": courses,
		"total":   total,
		"page":    page,
		"size":    size,
	})
}
