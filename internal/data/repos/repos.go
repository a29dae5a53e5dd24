package repos

import (
	"gorm.io/gorm"

	"github.com/mundotea/mundotea-backend/internal/data/repos/auth"
	"github.com/mundotea/mundotea-backend/internal/data/repos/learning"
	"github.com/mundotea/mundotea-backend/internal/data/repos/user"
	"github.com/mundotea/mundotea-backend/internal/platform/logger"
)

type AccountRepo = auth.AccountRepo
type ChildProfileRepo = user.ChildProfileRepo
type PreferenceRepo = user.PreferenceRepo
type ActivityRepo = learning.ActivityRepo
type PracticeSessionRepo = learning.PracticeSessionRepo
type AchievementRepo = learning.AchievementRepo
type RecommendationRepo = learning.RecommendationRepo

type SessionOutcome = learning.SessionOutcome

type Set struct {
	Account         AccountRepo
	ChildProfile    ChildProfileRepo
	Preference      PreferenceRepo
	Activity        ActivityRepo
	PracticeSession PracticeSessionRepo
	Achievement     AchievementRepo
	Recommendation  RecommendationRepo
}

func New(db *gorm.DB, log *logger.Logger) Set {
	return Set{
		Account:         auth.NewAccountRepo(db, log),
		ChildProfile:    user.NewChildProfileRepo(db, log),
		Preference:      user.NewPreferenceRepo(db, log),
		Activity:        learning.NewActivityRepo(db, log),
		PracticeSession: learning.NewPracticeSessionRepo(db, log),
		Achievement:     learning.NewAchievementRepo(db, log),
		Recommendation:  learning.NewRecommendationRepo(db, log),
	}
}
