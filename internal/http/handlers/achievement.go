package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mundotea/mundotea-backend/internal/http/response"
	"github.com/mundotea/mundotea-backend/internal/services"
)

type AchievementHandler struct {
	achievementService services.AchievementService
}

func NewAchievementHandler(achievementService services.AchievementService) *AchievementHandler {
	return &AchievementHandler{achievementService: achievementService}
}

// GET /conquistas
// Unlocked achievements only; ?todas=1 includes locked ones.
func (ah *AchievementHandler) List(c *gin.Context) {
	all, _ := strconv.ParseBool(c.Query("todas"))
	list, err := ah.achievementService.ListForAccount(c.Request.Context(), all)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, list)
}
