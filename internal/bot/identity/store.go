// Package identity decides who may talk to the bot.
//
// The Store merges the administrator-supplied allow-list with the records
// persisted by earlier runs, and binds numeric ids to handle-only records the
// first time such a caller shows up. Records are never removed by the running
// process.
package identity

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gembot/internal/bot/models"
	"github.com/dmitrijs2005/gembot/internal/bot/repositories/allowlist"
	"github.com/dmitrijs2005/gembot/internal/logging"
)

type Store struct {
	mu     sync.Mutex
	users  []models.AuthorizedUser
	repo   allowlist.Repository
	logger logging.Logger
}

// NewStore loads the persisted allow-list, merges the comma-separated
// allowed tokens into it and saves the result. Load and save failures are
// returned; the bot must not start without a durable allow-list.
func NewStore(ctx context.Context, repo allowlist.Repository, allowed string, logger logging.Logger) (*Store, error) {
	s := &Store{repo: repo, logger: logger.With("module", "identity")}

	users, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load allow-list: %w", err)
	}
	s.users = dedup(users)
	s.logger.Info(ctx, "allow-list loaded", "records", len(s.users))

	for _, tok := range splitTokens(allowed) {
		s.merge(ctx, tok)
	}

	if err := s.repo.Save(ctx, s.users); err != nil {
		return nil, fmt.Errorf("failed to save allow-list: %w", err)
	}
	return s, nil
}

// merge appends the record for a configured token unless one already exists.
func (s *Store) merge(ctx context.Context, tok string) {
	id, isID := parseNumeric(tok)
	if isID {
		if id == 0 {
			s.logger.Warn(ctx, "skipping malformed allow-list token", "token", tok)
			return
		}
		if s.indexByID(id) >= 0 {
			return
		}
		s.users = append(s.users, models.AuthorizedUser{ID: models.Int64Ptr(id)})
		s.logger.Info(ctx, "allow-list record added", "user_id", id)
		return
	}

	handle := models.NormalizeHandle(tok)
	if handle == "" {
		s.logger.Warn(ctx, "skipping malformed allow-list token", "token", tok)
		return
	}
	if s.indexByName(handle) >= 0 {
		return
	}
	s.users = append(s.users, models.AuthorizedUser{Username: handle})
	s.logger.Info(ctx, "allow-list record added", "username", handle)
}

// IsAuthorized reports whether the caller is on the allow-list. A matching
// handle-only record is bound to callerID (when non-zero) and persisted
// before returning. A failed promotion save is logged; the caller stays
// authorized and the binding is retried on the next save.
func (s *Store) IsAuthorized(ctx context.Context, callerID int64, handle string) bool {
	handle = models.NormalizeHandle(handle)

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		u := &s.users[i]
		if !u.Matches(callerID, handle) {
			continue
		}
		if !u.HasID() && callerID != 0 && s.indexByID(callerID) < 0 {
			u.ID = models.Int64Ptr(callerID)
			if err := s.repo.Save(ctx, s.users); err != nil {
				s.logger.Error(ctx, "failed to persist promoted record", "user_id", callerID, "username", handle, "error", err)
			} else {
				s.logger.Info(ctx, "bound id to allow-list handle", "user_id", callerID, "username", handle)
			}
		}
		return true
	}

	s.logger.Warn(ctx, "authorization denied", "user_id", callerID, "username", handle)
	return false
}

// Users returns a copy of the current records in insertion order.
func (s *Store) Users() []models.AuthorizedUser {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.AuthorizedUser, len(s.users))
	for i, u := range s.users {
		out[i] = u.Clone()
	}
	return out
}

func (s *Store) indexByID(id int64) int {
	for i, u := range s.users {
		if u.ID != nil && *u.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) indexByName(name string) int {
	for i, u := range s.users {
		if u.Username != "" && u.Username == name {
			return i
		}
	}
	return -1
}

func splitTokens(allowed string) []string {
	var out []string
	for _, part := range strings.Split(allowed, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseNumeric treats a token as an id when it parses as an integer and is
// not written as a handle.
func parseNumeric(tok string) (int64, bool) {
	if strings.HasPrefix(tok, "@") {
		return 0, false
	}
	id, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// dedup normalizes usernames and keeps the first record per id and per
// username. Records left with neither are dropped.
func dedup(users []models.AuthorizedUser) []models.AuthorizedUser {
	seenID := map[int64]bool{}
	seenName := map[string]bool{}
	out := make([]models.AuthorizedUser, 0, len(users))

	for _, u := range users {
		u = u.Clone()
		u.Username = models.NormalizeHandle(u.Username)
		if u.ID != nil {
			if seenID[*u.ID] {
				u.ID = nil
			} else {
				seenID[*u.ID] = true
			}
		}
		if u.Username != "" {
			if seenName[u.Username] {
				u.Username = ""
			} else {
				seenName[u.Username] = true
			}
		}
		if u.ID == nil && u.Username == "" {
			continue
		}
		out = append(out, u)
	}
	return out
}
