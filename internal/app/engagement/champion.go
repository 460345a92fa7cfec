package engagement

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/habit-king/habitking/internal/domain"
	"github.com/habit-king/habitking/internal/infra/metrics"
	"github.com/habit-king/habitking/internal/logger"
)

// ChampionService determines and records monthly champions.
// A closed month is decided once and stored immutably; the open month is
// always computed live and never stored.
type ChampionService struct {
	*core
	summaries *SummaryService
}

// GetChampion returns the group's champion for m, or nil when nobody
// qualified. For a closed month the stored record wins.
func (s *ChampionService) GetChampion(ctx context.Context, groupID string, m domain.Month) (*domain.ChampionRecord, error) {
	rec, _, err := s.Finalize(ctx, groupID, m)
	return rec, err
}

// Finalize decides the champion for m. When m has closed for every member
// the result is stored insert-if-absent; created reports whether this call
// wrote the record.
func (s *ChampionService) Finalize(ctx context.Context, groupID string, m domain.Month) (rec *domain.ChampionRecord, created bool, err error) {
	if !m.IsZero() {
		stored, err := s.store.GetChampion(ctx, groupID, m)
		if err == nil {
			return stored, false, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, false, err
		}
	}

	board, closed, err := s.summaries.memberSummaries(ctx, groupID, m)
	if err != nil {
		return nil, false, err
	}
	winner, ok := s.policy().Win.DetermineWinner(board)
	if !ok {
		return nil, false, nil
	}
	if !closed {
		return &winner, false, nil
	}

	winner.CrownedAt = s.clock().Instant()
	inserted, err := s.store.InsertChampion(ctx, winner)
	if err != nil {
		return nil, false, err
	}
	if !inserted {
		// Another replica or run crowned it first; its record is final.
		stored, err := s.store.GetChampion(ctx, groupID, winner.Month)
		return stored, false, err
	}

	metrics.ChampionsCrowned.WithLabelValues(string(winner.WinPath)).Inc()
	logger.Info("champion crowned", "group", groupID, "month", winner.Month,
		"user", winner.UserID, "path", winner.WinPath, "points", winner.TotalPoints)
	if acct, err := s.store.GetAccount(ctx, winner.UserID); err == nil {
		s.notify.Send(ctx, *acct, domain.Notification{
			Type:  domain.NotifyChampion,
			Title: "You are the champion!",
			Body:  fmt.Sprintf("You won %s with %.1f points.", winner.Month, winner.TotalPoints),
		})
	}
	return &winner, true, nil
}

// GetHallOfFame returns the group's champions (newest first), its all-time
// records and the caller's own championship stats.
func (s *ChampionService) GetHallOfFame(ctx context.Context, groupID, userID string) (domain.HallOfFame, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return domain.HallOfFame{}, err
	}
	champions, err := s.store.ListChampions(ctx, groupID)
	if err != nil {
		return domain.HallOfFame{}, err
	}
	return BuildHallOfFame(groupID, userID, champions), nil
}

// BuildHallOfFame reduces champion records into the hall of fame. Ties on a
// record go to the earlier month.
func BuildHallOfFame(groupID, userID string, champions []domain.ChampionRecord) domain.HallOfFame {
	list := append(make([]domain.ChampionRecord, 0, len(champions)), champions...)
	sort.SliceStable(list, func(i, j int) bool { return list[j].Month.Before(list[i].Month) })

	hof := domain.HallOfFame{GroupID: groupID, Champions: list}
	if len(list) == 0 {
		return hof
	}

	// oldest first, so strict comparisons keep the earliest holder on ties
	chrono := make([]domain.ChampionRecord, len(list))
	for i, c := range list {
		chrono[len(list)-1-i] = c
	}

	wins := make(map[string]int)
	names := make(map[string]string)
	var most domain.RecordHolder
	for _, c := range chrono {
		wins[c.UserID]++
		if c.DisplayName != "" {
			names[c.UserID] = c.DisplayName
		}
		if n := float64(wins[c.UserID]); n > most.Value {
			most = domain.RecordHolder{UserID: c.UserID, Value: n, Month: c.Month}
		}

		if c.TotalPoints > hof.Records.HighestPoints.Value || hof.Records.HighestPoints.UserID == "" {
			hof.Records.HighestPoints = holder(c, c.TotalPoints)
		}
		if c.TodoProductivity > hof.Records.BestProductivity.Value || hof.Records.BestProductivity.UserID == "" {
			hof.Records.BestProductivity = holder(c, c.TodoProductivity)
		}
		if a := float64(c.TotalActivities); a > hof.Records.MostActivities.Value || hof.Records.MostActivities.UserID == "" {
			hof.Records.MostActivities = holder(c, a)
		}

		if c.UserID == userID {
			hof.UserStats.TotalChampionships++
			if best := hof.UserStats.BestMonth; best == nil || c.TotalPoints > best.TotalPoints {
				rec := c
				hof.UserStats.BestMonth = &rec
			}
		}
	}
	most.Name = names[most.UserID]
	hof.Records.MostChampionships = most
	return hof
}

func holder(c domain.ChampionRecord, v float64) domain.RecordHolder {
	return domain.RecordHolder{UserID: c.UserID, Name: c.DisplayName, Value: v, Month: c.Month}
}
