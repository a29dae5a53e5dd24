package domain

import (
	"github.com/mundotea/mundotea-backend/internal/domain/auth"
	"github.com/mundotea/mundotea-backend/internal/domain/learning"
	"github.com/mundotea/mundotea-backend/internal/domain/user"
)

type Account = auth.Account

type ChildProfile = user.ChildProfile
type Preference = user.Preference

type Activity = learning.Activity
type PracticeSession = learning.PracticeSession
type SessionStatus = learning.SessionStatus
type Achievement = learning.Achievement
type Recommendation = learning.Recommendation

const (
	SessionOpen      = learning.SessionOpen
	SessionCompleted = learning.SessionCompleted
)

// AllModels lists every persisted model in migration order.
func AllModels() []any {
	return []any{
		&Account{},
		&ChildProfile{},
		&Activity{},
		&PracticeSession{},
		&Achievement{},
		&Preference{},
		&Recommendation{},
	}
}
