package groups

import (
	"strconv"

	"github.com/znyiri100/snake-rivals-arena/internal/models"
	"gorm.io/gorm"
)

// Scope is the set of usernames a leaderboard query is restricted to: either
// everyone, or the members of one group.
type Scope struct {
	All     bool
	GroupID uint
}

func AllUsers() Scope {
	return Scope{All: true}
}

func ForGroup(id uint) Scope {
	return Scope{GroupID: id}
}

type GroupRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// ResolveScope picks the effective group scope for a request. An explicit
// group_id always wins ("all" forces the unscoped view); otherwise an
// authenticated caller defaults to their earliest-joined group. Anything that
// fails to resolve degrades to AllUsers rather than erroring.
func ResolveScope(db *gorm.DB, explicitGroupID string, userID uint) Scope {
	if explicitGroupID == "all" {
		return AllUsers()
	}

	if explicitGroupID != "" {
		id, err := strconv.ParseUint(explicitGroupID, 10, 32)
		if err != nil {
			return AllUsers()
		}
		return ForGroup(uint(id))
	}

	if userID != 0 {
		var membership models.GroupMembership

		err := db.Where("user_id = ?", userID).Order("id ASC").First(&membership).Error
		if err == nil {
			return ForGroup(membership.GroupID)
		}
	}

	return AllUsers()
}

// UsernamesInScope returns the username snapshots of the scoped group. For
// AllUsers it returns nil and callers skip username filtering entirely.
func UsernamesInScope(db *gorm.DB, scope Scope) ([]string, error) {
	if scope.All {
		return nil, nil
	}

	var usernames []string

	err := db.Model(&models.GroupMembership{}).
		Where("group_id = ?", scope.GroupID).
		Pluck("username", &usernames).Error

	if err != nil {
		return nil, err
	}

	return usernames, nil
}

// MembershipExists reports whether any of the candidate groups already has a
// member with the given username or email. Signup calls this inside its
// transaction before writing membership rows; the composite unique indexes on
// group_memberships remain the final authority under concurrency.
func MembershipExists(tx *gorm.DB, groupIDs []uint, username string, email string) (bool, error) {
	if len(groupIDs) == 0 {
		return false, nil
	}

	var count int64

	err := tx.Model(&models.GroupMembership{}).
		Where("group_id IN ?", groupIDs).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// ForUser returns the user's groups ordered by join time (earliest first). The
// first element is the user's default scope.
func ForUser(db *gorm.DB, userID uint) ([]GroupRef, error) {
	var memberships []models.GroupMembership

	err := db.Where("user_id = ?", userID).Order("id ASC").Find(&memberships).Error
	if err != nil {
		return nil, err
	}

	groupsByID, err := groupsForMemberships(db, memberships)
	if err != nil {
		return nil, err
	}

	refs := make([]GroupRef, 0, len(memberships))

	for _, m := range memberships {
		if ref, ok := groupsByID[m.GroupID]; ok {
			refs = append(refs, ref)
		}
	}

	return refs, nil
}

// Attribution maps result rows back to the groups of their owners. Built with
// one batched lookup, never per row.
type Attribution struct {
	byUser map[uint][]GroupRef
	byName map[string][]GroupRef
}

// For resolves a row's groups, preferring the user link and falling back to
// the username snapshot for legacy rows with no linked user.
func (a Attribution) For(userID *uint, username string) []GroupRef {
	if userID != nil {
		if refs, ok := a.byUser[*userID]; ok {
			return refs
		}
	}
	if refs, ok := a.byName[username]; ok {
		return refs
	}
	return []GroupRef{}
}

// LookupGroups batch-loads group attributions for a set of result rows.
func LookupGroups(db *gorm.DB, userIDs []uint, usernames []string) (Attribution, error) {
	attribution := Attribution{
		byUser: make(map[uint][]GroupRef),
		byName: make(map[string][]GroupRef),
	}

	if len(userIDs) == 0 && len(usernames) == 0 {
		return attribution, nil
	}

	var memberships []models.GroupMembership

	query := db.Model(&models.GroupMembership{})

	switch {
	case len(userIDs) > 0 && len(usernames) > 0:
		query = query.Where("user_id IN ? OR username IN ?", userIDs, usernames)
	case len(userIDs) > 0:
		query = query.Where("user_id IN ?", userIDs)
	default:
		query = query.Where("username IN ?", usernames)
	}

	if err := query.Order("id ASC").Find(&memberships).Error; err != nil {
		return attribution, err
	}

	groupsByID, err := groupsForMemberships(db, memberships)
	if err != nil {
		return attribution, err
	}

	for _, m := range memberships {
		ref, ok := groupsByID[m.GroupID]
		if !ok {
			continue
		}
		attribution.byUser[m.UserID] = append(attribution.byUser[m.UserID], ref)
		attribution.byName[m.Username] = append(attribution.byName[m.Username], ref)
	}

	return attribution, nil
}

func groupsForMemberships(db *gorm.DB, memberships []models.GroupMembership) (map[uint]GroupRef, error) {
	ids := make([]uint, 0, len(memberships))
	seen := make(map[uint]bool)

	for _, m := range memberships {
		if !seen[m.GroupID] {
			seen[m.GroupID] = true
			ids = append(ids, m.GroupID)
		}
	}

	result := make(map[uint]GroupRef)

	if len(ids) == 0 {
		return result, nil
	}

	var groups []models.Group

	if err := db.Where("id IN ?", ids).Find(&groups).Error; err != nil {
		return nil, err
	}

	for _, g := range groups {
		result[g.ID] = GroupRef{ID: g.ID, Name: g.Name}
	}

	return result, nil
}
