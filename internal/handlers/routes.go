package handlers

import (
	"github.com/gofiber/fiber/v2"

	"fitzty/internal/services"
	"fitzty/pkg/logger"
)

// Services bundles what the API needs.
type Services struct {
	Auth            *services.AuthService
	Feed            *services.FeedService
	Activity        *services.ActivityService
	Recommendations *services.RecommendationService
	Avatar          *services.AvatarService
	Posts           *services.PostService
	Social          *services.SocialService
	Challenges      *services.ChallengeService
	Closet          *services.ClosetService
}

// RegisterRoutes mounts the API on router. Auth routes are public; everything
// else runs behind guard.
func RegisterRoutes(router fiber.Router, s Services, guard fiber.Handler, log *logger.Logger) {
	NewAuthHandler(s.Auth, log).RegisterRoutes(router)

	protected := router.Group("", guard)
	NewFeedHandler(s.Feed, log).RegisterRoutes(protected)
	NewActivityHandler(s.Activity, log).RegisterRoutes(protected)
	NewRecommendationHandler(s.Recommendations, log).RegisterRoutes(protected)
	NewAvatarHandler(s.Avatar, log).RegisterRoutes(protected)
	NewPostHandler(s.Posts, log).RegisterRoutes(protected)
	NewSocialHandler(s.Social, log).RegisterRoutes(protected)
	NewChallengeHandler(s.Challenges, log).RegisterRoutes(protected)
	NewClosetHandler(s.Closet, s.Recommendations, log).RegisterRoutes(protected)
}
