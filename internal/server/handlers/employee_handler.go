package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tillnow2/hrms-lite-be/internal/domain/models"
	"github.com/tillnow2/hrms-lite-be/internal/service/employees"
)

// EmployeeHandler serves the employee directory.
type EmployeeHandler struct {
	svc    employees.Directory
	logger *zap.Logger
}

// NewEmployeeHandler constructs the HTTP handler adapter.
func NewEmployeeHandler(svc employees.Directory, logger *zap.Logger) *EmployeeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeHandler{svc: svc, logger: logger}
}

// List returns every employee.
func (h *EmployeeHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Create registers an employee.
func (h *EmployeeHandler) Create(c *gin.Context) {
	var input models.EmployeeCreate
	if err := bindJSON(c, &input); err != nil {
		respondError(c, h.logger, err)
		return
	}

	employee, err := h.svc.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, employee)
}

// Get returns one employee.
func (h *EmployeeHandler) Get(c *gin.Context) {
	employee, err := h.svc.Get(c.Request.Context(), c.Param("employeeId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, employee)
}

// Update patches an employee.
func (h *EmployeeHandler) Update(c *gin.Context) {
	var input models.EmployeeUpdate
	if err := bindJSON(c, &input); err != nil {
		respondError(c, h.logger, err)
		return
	}

	employee, err := h.svc.Update(c.Request.Context(), c.Param("employeeId"), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, employee)
}

// Delete removes an employee and its attendance.
func (h *EmployeeHandler) Delete(c *gin.Context) {
	employeeID := models.NormalizeEmployeeID(c.Param("employeeId"))
	if err := h.svc.Delete(c.Request.Context(), employeeID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, fmt.Sprintf("Employee '%s' and associated records deleted successfully", employeeID))
}
