// Package discover implements the swipe feed: candidate selection with
// exclusion sets, gender and country pre-filtering in SQL, then age and
// distance filtering in memory.
package discover

import (
	"context"
	"fmt"
	"time"

	"github.com/belovebe/taskmatch/internal/app"
	"github.com/belovebe/taskmatch/internal/db"
	"github.com/belovebe/taskmatch/internal/domain"
	"github.com/belovebe/taskmatch/internal/geo"
	"github.com/belovebe/taskmatch/internal/repository"
)

type Service struct {
	appCtx   *app.AppContext
	discover *repository.DiscoverRepository
	profiles *repository.ProfileRepository
	users    *repository.UserRepository
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		discover: repository.NewDiscoverRepository(appCtx.DB),
		profiles: repository.NewProfileRepository(appCtx.DB),
		users:    repository.NewUserRepository(appCtx.DB),
	}
}

// Query holds the client-supplied candidate constraints.
type Query struct {
	Skip          int
	Limit         int
	AgeMin        *int
	AgeMax        *int
	MaxDistanceKm *float64
}

// Candidate is one discover card.
type Candidate struct {
	db.Profile
	Username   *string  `json:"username"`
	Age        *int     `json:"age"`
	DistanceKm *float64 `json:"distanceKm"`
}

// Page is the discover feed response. Count is the post-filter size of
// the whole overfetched window, not the page size; the client uses it
// to decide whether more cards are worth asking for.
type Page struct {
	Count int         `json:"count"`
	Users []Candidate `json:"users"`
}

// DecisionResult reports a swipe outcome.
type DecisionResult struct {
	Mutual bool `json:"mutual"`
}

// Candidates returns the next page of swipe cards for the requester.
//
// The SQL pre-filter handles the exclusion set, gender preferences and
// country; the overfetched rows are then narrowed by age and distance
// in memory. Distance applies only when both sides have coordinates.
func (s *Service) Candidates(ctx context.Context, requesterID uint64, q Query) (*Page, error) {
	me, err := s.profiles.GetByUserID(ctx, requesterID)
	if err != nil {
		return nil, domain.ErrProfileNotFound
	}

	if q.Limit < 1 {
		q.Limit = s.appCtx.Config.Discover.DefaultLimit
	}
	if q.Skip < 0 {
		q.Skip = 0
	}

	excluded, err := s.discover.ExcludedUserIDs(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("compute exclusions: %w", err)
	}
	excluded = append(excluded, requesterID)

	filter := repository.CandidateFilter{
		ExcludeIDs: excluded,
		Genders:    me.GenderPreferences,
		Offset:     q.Skip,
		Limit:      q.Limit * s.appCtx.Config.Discover.OverfetchFactor,
	}
	if me.PreferredCountry != nil && *me.PreferredCountry != "" {
		filter.Country = me.PreferredCountry
	} else if me.Country != nil && *me.Country != "" {
		filter.Country = me.Country
	}

	rows, err := s.discover.FindCandidates(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}

	// Age and distance run over the whole overfetched window; missing
	// data (no birthdate, no coordinates) never excludes a candidate.
	now := time.Now()
	filtered := make([]Candidate, 0, len(rows))
	for _, p := range rows {
		c := Candidate{Profile: p}
		if p.Birthdate != nil {
			age := yearsBetween(*p.Birthdate, now)
			c.Age = &age

			if q.AgeMin != nil && age < *q.AgeMin {
				continue
			}
			if q.AgeMax != nil && age > *q.AgeMax {
				continue
			}
		}

		if bothLocated(me, &p) {
			d := geo.Distance(*me.Lat, *me.Lng, *p.Lat, *p.Lng)
			c.DistanceKm = &d
			maxKm := s.appCtx.Config.Discover.MaxDistanceKm
			if q.MaxDistanceKm != nil {
				maxKm = *q.MaxDistanceKm
			}
			if d > maxKm {
				continue
			}
		}

		filtered = append(filtered, c)
	}

	users := filtered
	if len(users) > q.Limit {
		users = users[:q.Limit]
	}
	if err := s.attachUsernames(ctx, users); err != nil {
		return nil, fmt.Errorf("load candidate users: %w", err)
	}

	return &Page{Count: len(filtered), Users: users}, nil
}

// attachUsernames batch-loads the account rows behind the surviving
// cards and copies the Telegram username onto each.
func (s *Service) attachUsernames(ctx context.Context, cards []Candidate) error {
	if len(cards) == 0 {
		return nil
	}

	ids := make([]uint64, len(cards))
	for i, c := range cards {
		ids[i] = c.UserID
	}
	accounts, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}

	byID := make(map[uint64]*string, len(accounts))
	for i := range accounts {
		byID[accounts[i].ID] = accounts[i].Username
	}
	for i := range cards {
		cards[i].Username = byID[cards[i].UserID]
	}
	return nil
}

// Decide records a swipe and reports whether it completed a mutual
// like. Swiping on yourself is invalid.
func (s *Service) Decide(ctx context.Context, fromUserID, toUserID uint64, decision db.DecisionType) (*DecisionResult, error) {
	if decision != db.DecisionLike && decision != db.DecisionPass {
		return nil, fmt.Errorf("%w: decision must be LIKE or PASS", domain.ErrInvalidInput)
	}
	if fromUserID == toUserID {
		return nil, fmt.Errorf("%w: cannot swipe on yourself", domain.ErrInvalidInput)
	}
	if _, err := s.users.GetByID(ctx, toUserID); err != nil {
		return nil, domain.ErrUserNotFound
	}

	if err := s.discover.PutDecision(ctx, fromUserID, toUserID, decision); err != nil {
		return nil, fmt.Errorf("store decision: %w", err)
	}

	result := &DecisionResult{}
	if decision == db.DecisionLike {
		mutual, err := s.discover.HasLiked(ctx, toUserID, fromUserID)
		if err != nil {
			return nil, fmt.Errorf("check mutual like: %w", err)
		}
		result.Mutual = mutual
		if mutual {
			s.appCtx.Logger.Info("mutual like", "user_a", fromUserID, "user_b", toUserID)
		}
	}
	return result, nil
}

// Block hides a user from the caller's feed in both directions.
func (s *Service) Block(ctx context.Context, blockerID, blockedID uint64) error {
	if blockerID == blockedID {
		return fmt.Errorf("%w: cannot block yourself", domain.ErrInvalidInput)
	}
	if _, err := s.users.GetByID(ctx, blockedID); err != nil {
		return domain.ErrUserNotFound
	}
	if err := s.discover.Block(ctx, blockerID, blockedID); err != nil {
		return fmt.Errorf("store block: %w", err)
	}
	return nil
}

// yearsBetween is calendar age: the year difference, minus one when the
// birthday has not happened yet this year.
func yearsBetween(birthdate, now time.Time) int {
	years := now.Year() - birthdate.Year()
	anniversary := birthdate.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}

func bothLocated(a, b *db.Profile) bool {
	return a.Lat != nil && a.Lng != nil && b.Lat != nil && b.Lng != nil
}
