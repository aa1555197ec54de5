package authz

import (
	"context"

	"github.com/docsentry/docsentry/internal/models"
	"github.com/docsentry/docsentry/internal/permissions"
)

// DocumentStrategy implements the per-document access policy:
//
//	EDIT, PUBLISH, MANAGE_COMMENTS  require an editor assignment
//	APPROVE                         requires an approver assignment
//	VIEW, VIEW_LOGGED, DOWNLOAD     public document or any assignment
//
// Any other code on a document denies. The policy never consults roles; the
// evaluator has already established coarse authority before this runs.
type DocumentStrategy struct {
	cache *PermissionCache
}

// NewDocumentStrategy builds the document policy over the permission cache.
func NewDocumentStrategy(cache *PermissionCache) *DocumentStrategy {
	return &DocumentStrategy{cache: cache}
}

func (s *DocumentStrategy) ResourceType() string {
	return ResourceTypeDocument
}

func (s *DocumentStrategy) Check(ctx context.Context, userID, resourceID, code string) (bool, error) {
	switch code {
	case permissions.DocEdit, permissions.DocPublish, permissions.DocManageComments:
		return s.hasAssignment(ctx, userID, resourceID, models.AssignmentEditor)

	case permissions.DocApprove:
		return s.hasAssignment(ctx, userID, resourceID, models.AssignmentApprover)

	case permissions.DocView, permissions.DocViewLogged, permissions.DocDownload:
		public, err := s.cache.IsResourcePublic(ctx, resourceID)
		if err != nil {
			return false, err
		}
		if public {
			return true, nil
		}
		assignments, err := s.cache.GetAssignments(ctx, userID, resourceID)
		if err != nil {
			return false, err
		}
		return len(assignments) > 0, nil
	}

	return false, nil
}

func (s *DocumentStrategy) hasAssignment(ctx context.Context, userID, resourceID string, assignmentType models.AssignmentType) (bool, error) {
	assignments, err := s.cache.GetAssignments(ctx, userID, resourceID)
	if err != nil {
		return false, err
	}
	for _, assignment := range assignments {
		if assignment.AssignmentType == assignmentType {
			return true, nil
		}
	}
	return false, nil
}
