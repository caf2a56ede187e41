package appointment

import (
	"context"

	domain "github.com/carelink/clinic-scheduler/internal/domain/appointment"
	"github.com/carelink/clinic-scheduler/internal/httperr"
	"github.com/carelink/clinic-scheduler/internal/models"
)

// ListChildren returns the patients a parent account has been granted
// access to. The grants are the authorization boundary: every parent
// feed is scoped to this set and nothing else.
type ListChildren struct {
	repo domain.Repository
}

func NewListChildren(repo domain.Repository) *ListChildren {
	return &ListChildren{repo: repo}
}

func (uc *ListChildren) Execute(
	ctx context.Context,
	parentUserID uint,
) ([]models.ChildAccessGrant, error) {
	return uc.repo.ListChildrenForParent(ctx, parentUserID)
}

// GrantedPatientIDs resolves the id set for directory scoping. A child
// id outside the grant set is a forbidden request, not an empty feed.
func (uc *ListChildren) GrantedPatientIDs(
	ctx context.Context,
	parentUserID uint,
	onlyPatientID uint,
) ([]uint, error) {

	grants, err := uc.repo.ListChildrenForParent(ctx, parentUserID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(grants))
	for _, g := range grants {
		if onlyPatientID != 0 && g.PatientID != onlyPatientID {
			continue
		}
		ids = append(ids, g.PatientID)
	}

	if onlyPatientID != 0 && len(ids) == 0 {
		return nil, httperr.ErrBusiness("child_not_granted")
	}

	return ids, nil
}
