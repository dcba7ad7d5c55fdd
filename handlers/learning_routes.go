// handlers/learning_routes.go
package handlers

import (
	"creature-training-system/logger"
	"creature-training-system/services"

	"github.com/gofiber/fiber/v2"
)

type reviewRequest struct {
	FlashcardID string `json:"flashcardId" validate:"required"`
	Correct     *bool  `json:"correct" validate:"required"`
}

type quizSubmitRequest struct {
	Score          *int   `json:"score" validate:"required,gte=0"`
	TotalQuestions int    `json:"totalQuestions" validate:"required,gte=1"`
	SubmissionID   string `json:"submissionId" validate:"omitempty,max=64"`
}

type minigameRequest struct {
	Score *int `json:"score"`
}

func SetupLearningRoutes(api fiber.Router, learning *services.LearningService, log *logger.Logger) {
	api.Get("/flashcards", func(c *fiber.Ctx) error {
		u, err := currentUser(c, learning)
		if err != nil {
			return respondError(c, log, err)
		}
		cards, err := learning.ListFlashcards(c.UserContext(), u.ID)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(cards)
	})

	api.Get("/flashcards/due", func(c *fiber.Ctx) error {
		u, err := currentUser(c, learning)
		if err != nil {
			return respondError(c, log, err)
		}
		cards, err := learning.DueFlashcards(c.UserContext(), u.ID, learning.Now())
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(cards)
	})

	api.Post("/flashcards/review", func(c *fiber.Ctx) error {
		u, err := currentUser(c, learning)
		if err != nil {
			return respondError(c, log, err)
		}
		var req reviewRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, log, err)
		}
		res, err := learning.ReviewFlashcard(c.UserContext(), u.ID, req.FlashcardID, *req.Correct)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(res)
	})

	api.Get("/quiz/questions", func(c *fiber.Ctx) error {
		qs, err := learning.QuizQuestions(c.UserContext(), c.QueryInt("count", 0))
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(qs)
	})

	api.Post("/quiz/submit", func(c *fiber.Ctx) error {
		u, err := currentUser(c, learning)
		if err != nil {
			return respondError(c, log, err)
		}
		var req quizSubmitRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, log, err)
		}
		res, err := learning.SubmitQuiz(c.UserContext(), u.ID, services.QuizSubmission{
			Score:          *req.Score,
			TotalQuestions: req.TotalQuestions,
			SubmissionID:   req.SubmissionID,
		})
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(res)
	})

	api.Post("/minigame/complete", func(c *fiber.Ctx) error {
		u, err := currentUser(c, learning)
		if err != nil {
			return respondError(c, log, err)
		}
		var req minigameRequest
		if len(c.Body()) > 0 {
			if err := parseBody(c, &req); err != nil {
				return respondError(c, log, err)
			}
		}
		res, err := learning.CompleteMinigame(c.UserContext(), u.ID, req.Score)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(res)
	})
}
