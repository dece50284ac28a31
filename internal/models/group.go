package models

// Group is a set of users who share expenses.
// The group directory answers existence, membership and admin queries from it.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Work Lunch").
	Name string

	// Description is optional free text.
	Description string

	// AdminUserID is the member allowed to add other members.
	// The creator of a group is its admin and first member.
	AdminUserID string

	// Members is the list of member user IDs.
	Members []string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}
