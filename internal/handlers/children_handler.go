package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/carelink/clinic-scheduler/internal/httperr"
	"github.com/carelink/clinic-scheduler/internal/httpresp"
	"github.com/carelink/clinic-scheduler/internal/middleware"
	ucAppointment "github.com/carelink/clinic-scheduler/internal/usecase/appointment"
)

// ChildrenHandler serves the parent-role views: the granted children
// and their appointment feeds. Everything is scoped by ChildAccessGrant.
type ChildrenHandler struct {
	children  *ucAppointment.ListChildren
	directory *ucAppointment.QueryDirectory
}

func NewChildrenHandler(
	children *ucAppointment.ListChildren,
	directory *ucAppointment.QueryDirectory,
) *ChildrenHandler {
	return &ChildrenHandler{
		children:  children,
		directory: directory,
	}
}

func (h *ChildrenHandler) List(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	grants, err := h.children.Execute(c.Request.Context(), userID)
	if err != nil {
		httperr.Internal(c, "failed_to_list_children", "Could not load children.")
		return
	}

	httpresp.List(c, grants)
}

// Appointments lists the parent's feed, optionally narrowed to one
// child via ?patient_id.
func (h *ChildrenHandler) Appointments(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	facilityID := c.MustGet(middleware.ContextFacilityID).(uint)

	var onlyPatientID uint
	if raw := c.Query("patient_id"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httperr.BadRequest(c, "invalid_patient_id", "Invalid patient id.")
			return
		}
		onlyPatientID = uint(n)
	}

	patientIDs, err := h.children.GrantedPatientIDs(c.Request.Context(), userID, onlyPatientID)
	if err != nil {
		if httperr.IsBusiness(err, "child_not_granted") {
			httperr.Forbidden(c, "child_not_granted", "No access grant for that patient.")
			return
		}
		httperr.Internal(c, "failed_to_list_children", "Could not load children.")
		return
	}

	out, err := h.directory.Execute(c.Request.Context(), ucAppointment.DirectoryQuery{
		FacilityID:   facilityID,
		PatientIDs:   patientIDs,
		Status:       c.Query("status"),
		Search:       c.Query("q"),
		UpcomingOnly: c.Query("view") == "upcoming",
	})
	if err != nil {
		httperr.Internal(c, "failed_to_list_appointments", "Could not load appointments.")
		return
	}

	httpresp.List(c, out)
}
