package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tillnow2/hrms-lite-be/internal/domain/models"
	"github.com/tillnow2/hrms-lite-be/internal/service/attendance"
	"github.com/tillnow2/hrms-lite-be/internal/service/export"
)

// AttendanceHandler serves the attendance ledger.
type AttendanceHandler struct {
	svc    attendance.Ledger
	logger *zap.Logger
}

// NewAttendanceHandler constructs the HTTP handler adapter.
func NewAttendanceHandler(svc attendance.Ledger, logger *zap.Logger) *AttendanceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceHandler{svc: svc, logger: logger}
}

// Mark records attendance for one employee and day.
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var input models.AttendanceCreate
	if err := bindJSON(c, &input); err != nil {
		respondError(c, h.logger, err)
		return
	}

	view, err := h.svc.Mark(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// List returns the records matching the query string filters.
func (h *AttendanceHandler) List(c *gin.Context) {
	var query models.AttendanceQuery
	if err := bindQuery(c, &query); err != nil {
		respondError(c, h.logger, err)
		return
	}

	views, err := h.svc.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// Export streams the filtered records as an XLSX attachment.
func (h *AttendanceHandler) Export(c *gin.Context) {
	var query models.AttendanceQuery
	if err := bindQuery(c, &query); err != nil {
		respondError(c, h.logger, err)
		return
	}

	var buf bytes.Buffer
	if err := h.svc.Export(c.Request.Context(), query, &buf); err != nil {
		respondError(c, h.logger, err)
		return
	}

	filename := fmt.Sprintf("attendance-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, export.ContentTypeXLSX, buf.Bytes())
}

// Get returns one record.
func (h *AttendanceHandler) Get(c *gin.Context) {
	view, err := h.svc.Get(c.Request.Context(), c.Param("attendanceId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ListByEmployee returns the records of one employee.
func (h *AttendanceHandler) ListByEmployee(c *gin.Context) {
	views, err := h.svc.ListByEmployee(c.Request.Context(), c.Param("employeeId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// Update patches status and/or remarks.
func (h *AttendanceHandler) Update(c *gin.Context) {
	var input models.AttendanceUpdate
	if err := bindJSON(c, &input); err != nil {
		respondError(c, h.logger, err)
		return
	}

	view, err := h.svc.Update(c.Request.Context(), c.Param("attendanceId"), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Delete removes one record.
func (h *AttendanceHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("attendanceId")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, "Attendance record deleted successfully")
}

// Summary returns the attendance tally of one employee.
func (h *AttendanceHandler) Summary(c *gin.Context) {
	summary, err := h.svc.Summary(c.Request.Context(), c.Param("employeeId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
