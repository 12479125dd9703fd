package session

import (
	"fmt"
	"testing"

	"github.com/dmitrijs2005/gembot/internal/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_AppendTrimsOldest(t *testing.T) {
	s := NewStore(4)
	for i := 0; i < 3; i++ {
		s.Append(1,
			Turn{Role: models.RoleUser, Text: fmt.Sprintf("q%d", i)},
			Turn{Role: models.RoleModel, Text: fmt.Sprintf("a%d", i)},
		)
	}

	h := s.History(1)
	require.Len(t, h, 4)
	assert.Equal(t, "q1", h[0].Text)
	assert.Equal(t, "a2", h[3].Text)
}

func TestStore_PerUserAndReset(t *testing.T) {
	s := NewStore(0)
	s.Append(1, Turn{Role: models.RoleUser, Text: "x"})
	s.Append(2, Turn{Role: models.RoleUser, Text: "y"})

	s.Reset(1)
	assert.Empty(t, s.History(1))
	assert.Len(t, s.History(2), 1)
	assert.Equal(t, DefaultLimit, s.limit)
}

func TestStore_HistoryIsCopy(t *testing.T) {
	s := NewStore(2)
	s.Append(1, Turn{Role: models.RoleUser, Text: "x"})

	h := s.History(1)
	h[0].Text = "changed"
	assert.Equal(t, "x", s.History(1)[0].Text)
}
