package api

import (
	"errors"

	_ "bi-admin/docs"
	"bi-admin/internal/api/handlers"
	"bi-admin/pkg/auth"
	"bi-admin/pkg/config"
	"bi-admin/pkg/middleware"
	"bi-admin/pkg/response"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

type Handlers struct {
	Knowledge *handlers.KnowledgeHandler
	Triage    *handlers.TriageHandler
	Feedback  *handlers.FeedbackHandler
	Health    *handlers.HealthHandler
}

func NewApp(server config.ServerConfig) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      "bi-admin",
		ReadTimeout:  server.ReadTimeout,
		WriteTimeout: server.WriteTimeout,
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return response.Fail(c, code, err.Error())
		},
	})
}

func SetupRouter(
	h Handlers,
	jwtManager *auth.JWTManager,
	server config.ServerConfig,
	appLogger *zap.Logger,
) *fiber.App {
	app := NewApp(server)

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/health", h.Health.Health)

	protected := app.Group("/api/v1", middleware.AuthMiddleware(jwtManager, appLogger))
	Register(protected, h)

	return app
}

// Register mounts the authenticated API routes on r.
func Register(r fiber.Router, h Handlers) {
	questions := r.Group("/questions")
	questions.Get("", h.Triage.ListQuestions)
	questions.Get("/stats", h.Triage.QuestionStats)
	questions.Post("/:id/action", h.Triage.QuestionAction)

	knowledge := r.Group("/knowledge")
	knowledge.Post("/parse", h.Knowledge.ParseContext)
	knowledge.Post("/parse/preview", h.Knowledge.PreviewParse)
	knowledge.Get("/contexts/:id", h.Knowledge.GetContext)

	feedback := r.Group("/feedback")
	feedback.Post("", h.Feedback.SubmitFeedback)
	feedback.Get("/stats", h.Feedback.FeedbackStats)
}
