package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/carelink/clinic-scheduler/internal/httperr"
	"github.com/carelink/clinic-scheduler/internal/httpresp"
	"github.com/carelink/clinic-scheduler/internal/middleware"
	ucAppointment "github.com/carelink/clinic-scheduler/internal/usecase/appointment"
)

type PatientHandler struct {
	search *ucAppointment.SearchPatients
}

func NewPatientHandler(search *ucAppointment.SearchPatients) *PatientHandler {
	return &PatientHandler{search: search}
}

// Search backs the new-appointment typeahead. The client debounces;
// superseded in-flight searches are cancelled through the request
// context.
func (h *PatientHandler) Search(c *gin.Context) {
	facilityID := c.MustGet(middleware.ContextFacilityID).(uint)

	patients, err := h.search.Execute(c.Request.Context(), facilityID, c.Query("q"))
	if err != nil {
		httperr.Internal(c, "failed_to_search_patients", "Could not search patients.")
		return
	}

	httpresp.List(c, patients)
}
