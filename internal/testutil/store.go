package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"nflcache/ingestion/internal/apperr"
	"nflcache/ingestion/internal/models"
)

// MemoryStore is an in-memory cache store enforcing the same uniqueness rules
// as the PostgreSQL repositories: one player per external id and one season
// row per (player, season).
type MemoryStore struct {
	mu      sync.RWMutex
	nextID  int
	players map[int]*models.Player
	byExt   map[string]int
	stats   map[int]map[int]*models.SeasonStat
	statID  int

	// Failure injection
	CreateErrs  map[string]error
	SearchErr   error
	CountErr    error
	StatsErr    error
	GetErr      error
	createCalls int
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		players:    make(map[int]*models.Player),
		byExt:      make(map[string]int),
		stats:      make(map[int]map[int]*models.SeasonStat),
		CreateErrs: make(map[string]error),
	}
}

// Seed inserts a player directly and returns the stored copy
func (s *MemoryStore) Seed(p *models.Player) *models.Player {
	_, _ = s.Create(context.Background(), p)
	return p
}

// SeedStat inserts a season row directly
func (s *MemoryStore) SeedStat(stat *models.SeasonStat) {
	_, _ = s.CreateIfAbsent(context.Background(), stat)
}

func (s *MemoryStore) GetByExternalID(ctx context.Context, externalID string) (*models.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.GetErr != nil {
		return nil, apperr.Store("get player by external id", s.GetErr)
	}

	id, ok := s.byExt[externalID]
	if !ok {
		return nil, apperr.NotFound("player", externalID)
	}
	return s.copyPlayer(s.players[id], 0), nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id int) (*models.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.GetErr != nil {
		return nil, apperr.Store("get player", s.GetErr)
	}

	p, ok := s.players[id]
	if !ok {
		return nil, apperr.NotFound("player", id)
	}
	return s.copyPlayer(p, -1), nil
}

func (s *MemoryStore) Create(ctx context.Context, p *models.Player) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.createCalls++
	if err := s.CreateErrs[p.ExternalID]; err != nil {
		return false, apperr.Store("create player", err)
	}

	if id, ok := s.byExt[p.ExternalID]; ok {
		*p = *s.copyPlayer(s.players[id], 0)
		return false, nil
	}

	s.nextID++
	now := time.Now().UTC()
	stored := *p
	stored.ID = s.nextID
	stored.CreatedAt = now
	stored.UpdatedAt = now
	stored.Stats = nil

	s.players[stored.ID] = &stored
	s.byExt[stored.ExternalID] = stored.ID

	p.ID = stored.ID
	p.CreatedAt = now
	p.UpdatedAt = now
	return true, nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.CountErr != nil {
		return 0, apperr.Store("count players", s.CountErr)
	}
	return len(s.players), nil
}

// SearchByName matches case-insensitively and attaches at most the latest season
func (s *MemoryStore) SearchByName(ctx context.Context, term string) ([]*models.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.SearchErr != nil {
		return nil, apperr.Store("search players", s.SearchErr)
	}

	needle := strings.ToLower(term)
	var out []*models.Player
	for _, p := range s.players {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			out = append(out, s.copyPlayer(p, 1))
		}
	}

	sort.Slice(out, func(a, b int) bool {
		if out[a].Name == out[b].Name {
			return out[a].ID < out[b].ID
		}
		return out[a].Name < out[b].Name
	})
	return out, nil
}

func (s *MemoryStore) CreateIfAbsent(ctx context.Context, stat *models.SeasonStat) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.StatsErr != nil {
		return false, apperr.Store("create season stat", s.StatsErr)
	}

	if _, ok := s.players[stat.PlayerID]; !ok {
		return false, apperr.Store("create season stat", apperr.NotFound("player", stat.PlayerID))
	}

	seasons, ok := s.stats[stat.PlayerID]
	if !ok {
		seasons = make(map[int]*models.SeasonStat)
		s.stats[stat.PlayerID] = seasons
	}
	if _, exists := seasons[stat.Season]; exists {
		return false, nil
	}

	s.statID++
	stored := *stat
	stored.ID = s.statID
	stored.CreatedAt = time.Now().UTC()
	seasons[stat.Season] = &stored

	stat.ID = stored.ID
	stat.CreatedAt = stored.CreatedAt
	return true, nil
}

func (s *MemoryStore) ListByPlayer(ctx context.Context, playerID int) ([]*models.SeasonStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statsFor(playerID, -1), nil
}

// StatCount returns the number of season rows stored for a player
func (s *MemoryStore) StatCount(playerID int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.stats[playerID])
}

// CreateCalls returns how many times Create was invoked
func (s *MemoryStore) CreateCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.createCalls
}

// copyPlayer clones p with up to limit stats attached (-1 for all). Callers hold the lock.
func (s *MemoryStore) copyPlayer(p *models.Player, limit int) *models.Player {
	out := *p
	out.Stats = nil
	if limit != 0 {
		out.Stats = s.statsFor(p.ID, limit)
	}
	return &out
}

func (s *MemoryStore) statsFor(playerID, limit int) []*models.SeasonStat {
	var rows []*models.SeasonStat
	for _, stat := range s.stats[playerID] {
		c := *stat
		rows = append(rows, &c)
	}

	sort.Slice(rows, func(a, b int) bool { return rows[a].Season > rows[b].Season })
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}
