package authz

// Cache keys are built here and nowhere else, one builder per namespace, so
// the eviction contract stays auditable in a single place.
const (
	permissionsKeyPrefix = "authz:perms:"
	assignmentsKeyPrefix = "authz:assign:"
	visibilityKeyPrefix  = "authz:vis:"
)

func userPermissionsKey(username string) string {
	return permissionsKeyPrefix + username
}

func assignmentKey(userID, documentID string) string {
	return assignmentsKeyPrefix + userID + ":" + documentID
}

// userAssignmentsPrefix covers every assignment entry of one user, used when
// an eviction is not scoped to a single document.
func userAssignmentsPrefix(userID string) string {
	return assignmentsKeyPrefix + userID + ":"
}

func visibilityKey(resourceID string) string {
	return visibilityKeyPrefix + resourceID
}
