package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/belovebe/taskmatch/internal/db"
)

// CandidateFilter is the pre-filter candidate query: exclusion set,
// gender preference, optional country, and pre-filter pagination. Age
// and distance are applied in memory afterwards.
type CandidateFilter struct {
	ExcludeIDs []uint64
	Genders    []string
	Country    *string
	Offset     int
	Limit      int
}

// DiscoverRepository provides data access for the swipe feed: like and
// block edges plus the candidate profile query.
type DiscoverRepository struct {
	db *gorm.DB
}

func NewDiscoverRepository(database *gorm.DB) *DiscoverRepository {
	return &DiscoverRepository{db: database}
}

// PutDecision inserts or updates a swipe edge from one user to another.
//
// Behavior:
//   - If the (from_user_id, to_user_id) pair exists, the row is updated
//     with the new decision type.
//   - Otherwise a new row is inserted.
//   - Composite PK ensures the overwrite guarantee.
func (r *DiscoverRepository) PutDecision(ctx context.Context, fromUserID, toUserID uint64, decision db.DecisionType) error {
	edge := db.Like{
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Type:       decision,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "from_user_id"}, {Name: "to_user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"type", "updated_at"}),
		}).
		Create(&edge).Error
}

// HasLiked reports whether from has an active LIKE edge towards to.
// Used for mutual-like detection after a swipe.
func (r *DiscoverRepository) HasLiked(ctx context.Context, fromUserID, toUserID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.Like{}).
		Where("from_user_id = ? AND to_user_id = ? AND type = ?", fromUserID, toUserID, db.DecisionLike).
		Count(&count).Error
	return count > 0, err
}

// ExcludedUserIDs computes the exclusion set for a requester: everyone
// blocked in either direction, everyone the requester already swiped
// on, and everyone who already liked the requester (so nobody surfaces
// twice from either side).
func (r *DiscoverRepository) ExcludedUserIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	seen := map[uint64]struct{}{}

	var blocks []db.Block
	err := r.db.WithContext(ctx).
		Where("blocker_id = ? OR blocked_id = ?", userID, userID).
		Find(&blocks).Error
	if err != nil {
		return nil, err
	}
	for _, b := range blocks {
		if b.BlockerID == userID {
			seen[b.BlockedID] = struct{}{}
		} else {
			seen[b.BlockerID] = struct{}{}
		}
	}

	var swiped []uint64
	if err := r.db.WithContext(ctx).Model(&db.Like{}).
		Where("from_user_id = ?", userID).
		Pluck("to_user_id", &swiped).Error; err != nil {
		return nil, err
	}
	for _, id := range swiped {
		seen[id] = struct{}{}
	}

	var incoming []uint64
	if err := r.db.WithContext(ctx).Model(&db.Like{}).
		Where("to_user_id = ? AND type = ?", userID, db.DecisionLike).
		Pluck("from_user_id", &incoming).Error; err != nil {
		return nil, err
	}
	for _, id := range incoming {
		seen[id] = struct{}{}
	}

	ids := make([]uint64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	return ids, nil
}

// FindCandidates runs the pre-filter profile query. Approved photos are
// preloaded; age and distance filtering happen in the service.
func (r *DiscoverRepository) FindCandidates(ctx context.Context, f CandidateFilter) ([]db.Profile, error) {
	query := r.db.WithContext(ctx).Model(&db.Profile{}).
		Preload("Photos", "moderated_status = ?", db.PhotoApproved)

	if len(f.ExcludeIDs) > 0 {
		query = query.Where("user_id NOT IN ?", f.ExcludeIDs)
	}
	if len(f.Genders) > 0 {
		query = query.Where("gender IN ?", f.Genders)
	}
	if f.Country != nil {
		query = query.Where("country = ?", *f.Country)
	}

	var candidates []db.Profile
	err := query.
		Order("user_id ASC").
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&candidates).Error
	return candidates, err
}

// Block inserts a directed block edge. Re-blocking is a no-op.
func (r *DiscoverRepository) Block(ctx context.Context, blockerID, blockedID uint64) error {
	edge := db.Block{BlockerID: blockerID, BlockedID: blockedID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&edge).Error
}
