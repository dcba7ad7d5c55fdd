package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"creature-training-system/logger"
	"creature-training-system/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const (
	DefaultTeamCreatureName = "Team Buddy"
	maxTeamNameLen          = 50
	maxCodeSlugLen          = 24
)

type TeamService struct {
	store  Store
	locker UserLocker
	log    *logger.Logger

	Now func() time.Time
}

func NewTeamService(store Store, locker UserLocker, log *logger.Logger) *TeamService {
	return &TeamService{
		store:  store,
		locker: locker,
		log:    log.With("service", "TeamService"),
		Now:    time.Now,
	}
}

// joinCode is slug(name) plus six random hex characters, e.g. "north-store-3fa9c1".
func joinCode(name string) string {
	base := slug.Make(name)
	if len(base) > maxCodeSlugLen {
		base = strings.Trim(base[:maxCodeSlugLen], "-")
	}
	if base == "" {
		base = "team"
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return base + "-" + suffix
}

func (s *TeamService) withUser(ctx context.Context, userID string, fn func(tx Store) error) error {
	unlock, err := s.locker.Lock(ctx, userID)
	if err != nil {
		return err
	}
	defer unlock()
	return s.store.Tx(ctx, fn)
}

func (s *TeamService) CreateTeam(ctx context.Context, userID, name, creatureName string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n < 1 || n > maxTeamNameLen {
		return nil, invalid("invalid_team_name", "Team name must be 1-50 characters")
	}
	if strings.TrimSpace(creatureName) == "" {
		creatureName = DefaultTeamCreatureName
	}
	creatureName, err := NormalizeCreatureName(creatureName)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	team := &models.Team{
		Name:      name,
		Code:      joinCode(name),
		CreatorID: userID,
	}
	err = s.withUser(ctx, userID, func(tx Store) error {
		if _, err := tx.GetUser(ctx, userID); err != nil {
			return err
		}
		if err := tx.CreateTeam(ctx, team); err != nil {
			return err
		}
		if err := tx.AddTeamMember(ctx, &models.TeamMember{
			TeamID: team.ID,
			UserID: userID,
			Role:   models.TeamRoleCreator,
		}); err != nil {
			return err
		}
		team.Creature = newCreature(nil, &team.ID, creatureName, now)
		return tx.CreateCreature(ctx, team.Creature)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("[TEAM] created", "team_id", team.ID, "code", team.Code, "creator", userID)
	return team, nil
}

func (s *TeamService) JoinTeam(ctx context.Context, userID, code string) (*models.Team, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil, invalid("missing_code", "Join code is required")
	}
	var team *models.Team
	err := s.withUser(ctx, userID, func(tx Store) error {
		var err error
		team, err = tx.GetTeamByCode(ctx, code)
		if err != nil {
			return err
		}
		member, err := tx.IsTeamMember(ctx, team.ID, userID)
		if err != nil {
			return err
		}
		if member {
			return conflict("already_member", "You are already a member of this team")
		}
		return tx.AddTeamMember(ctx, &models.TeamMember{
			TeamID: team.ID,
			UserID: userID,
			Role:   models.TeamRoleMember,
		})
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("[TEAM] joined", "team_id", team.ID, "user_id", userID)
	return team, nil
}

// LeaveTeam keeps the team and its creature even when the last member leaves.
func (s *TeamService) LeaveTeam(ctx context.Context, userID, teamID string) error {
	return s.withUser(ctx, userID, func(tx Store) error {
		removed, err := tx.RemoveTeamMember(ctx, teamID, userID)
		if err != nil {
			return err
		}
		if !removed {
			return notFound("not_member", "You are not a member of this team")
		}
		return nil
	})
}

// ListTeams returns the user's teams with their creatures, charging any idle
// decay a team creature has pending.
func (s *TeamService) ListTeams(ctx context.Context, userID string) ([]models.Team, error) {
	now := s.Now()
	var teams []models.Team
	err := s.withUser(ctx, userID, func(tx Store) error {
		var err error
		teams, err = tx.ListUserTeams(ctx, userID)
		if err != nil {
			return err
		}
		order := make([]int, len(teams))
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(a, b int) bool { return teams[order[a]].ID < teams[order[b]].ID })

		for _, i := range order {
			if teams[i].Creature == nil {
				continue
			}
			if _, err := tx.GetTeam(ctx, teams[i].ID); err != nil {
				return err
			}
			c, err := s.teamCreature(ctx, tx, teams[i].ID, now)
			if err != nil {
				return err
			}
			teams[i].Creature = c
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return teams, nil
}

// teamCreature reads a team's creature and persists pending decay. The team
// row must already be locked by the caller.
func (s *TeamService) teamCreature(ctx context.Context, tx Store, teamID string, now time.Time) (*models.Creature, error) {
	c, err := tx.GetTeamCreature(ctx, teamID)
	if err != nil {
		return nil, err
	}
	changed, err := applyDecay(ctx, tx, c, now)
	if err != nil {
		return nil, err
	}
	if changed {
		s.log.Debug("[TEAM] creature decayed", "team_id", teamID, "tier", c.DecayTier, "happiness", c.Happiness)
	}
	return c, nil
}

func (s *TeamService) requireMember(ctx context.Context, userID, teamID string) error {
	member, err := s.store.IsTeamMember(ctx, teamID, userID)
	if err != nil {
		return err
	}
	if !member {
		return notFound("team_not_found", "Team not found")
	}
	return nil
}

func (s *TeamService) Members(ctx context.Context, userID, teamID string) ([]models.TeamMember, error) {
	if err := s.requireMember(ctx, userID, teamID); err != nil {
		return nil, err
	}
	return s.store.ListTeamMembers(ctx, teamID)
}

func (s *TeamService) Leaderboard(ctx context.Context, userID, teamID string) ([]TeamLeaderboardEntry, error) {
	if err := s.requireMember(ctx, userID, teamID); err != nil {
		return nil, err
	}
	rows, err := s.store.TeamLeaderboard(ctx, teamID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows, nil
}

// Contribute credits a member's reward to every team they belong to. It runs
// inside the caller's transaction; team rows are locked in id order.
func (s *TeamService) Contribute(ctx context.Context, tx Store, userID string, r Reward, now time.Time) error {
	if r.XP == 0 && r.FactsMastered == 0 && !r.Interaction {
		return nil
	}
	teams, err := tx.ListUserTeams(ctx, userID)
	if err != nil {
		return err
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })

	for _, t := range teams {
		team, err := tx.GetTeam(ctx, t.ID)
		if err != nil {
			return err
		}
		team.TotalXP += r.XP
		team.TotalFactsMastered += r.FactsMastered
		if err := tx.UpdateTeam(ctx, team); err != nil {
			return err
		}

		c, err := s.teamCreature(ctx, tx, team.ID, now)
		switch {
		case errors.Is(err, ErrNotFound):
			s.log.Warn("[TEAM] team has no creature", "team_id", team.ID)
		case err != nil:
			return err
		default:
			cs := creatureStateOf(c)
			if r.Interaction {
				cs.Cheer(r.Cheer, now)
			}
			if cs.Evolve(team.TotalFactsMastered) {
				s.log.Info("[TEAM] creature evolved", "team_id", team.ID, "stage", cs.Stage)
			}
			setCreatureState(c, cs)
			if err := tx.UpdateCreature(ctx, c); err != nil {
				return err
			}
		}

		if r.XP > 0 {
			if err := tx.AddTeamContribution(ctx, &models.TeamContribution{
				TeamID:        team.ID,
				UserID:        userID,
				XPContributed: r.XP,
				Source:        r.Source,
				ContributedAt: now,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}
