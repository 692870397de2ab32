package server

import (
	"context"
	"errors"
	"log/slog"

	"studymate/app/config"
	"studymate/app/service/assistant"

	_ "embed"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	recoverer "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/samber/do"
)

//go:embed web/index.html
var indexHTML []byte

// Assistant is the orchestration surface the HTTP layer depends on.
type Assistant interface {
	Ask(ctx context.Context, req assistant.AskRequest) (*assistant.StructuredResponse, error)
	ResetSession(sessionID string)
}

var _ do.Shutdownable = (*Server)(nil)

type Server struct {
	app          *fiber.App
	assistantSvc Assistant
	validate     *validator.Validate
	addr         string
}

type chatRequest struct {
	Message   string `json:"message" validate:"required"`
	SessionID string `json:"session_id"`
	Style     string `json:"style" validate:"omitempty,oneof=short detailed"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

type resetResponse struct {
	OK bool `json:"ok"`
}

func New(di *do.Injector) (*Server, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return NewServer(do.MustInvoke[*assistant.Service](di), cfg.Server.Addr), nil
}

func NewServer(assistantSvc Assistant, addr string) *Server {
	s := &Server{
		assistantSvc: assistantSvc,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		addr:         addr,
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(recoverer.New())
	app.Use(cors.New())

	app.Get("/", s.handleIndex)
	app.Get("/health", s.handleHealth)
	app.Post("/chat", s.handleChat)
	app.Delete("/session/:id", s.handleReset)

	s.app = app

	return s
}

// Run serves HTTP until the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()

		if err := s.app.Shutdown(); err != nil {
			slog.Warn("Server shutdown error", "error", err)
		}
	}()

	slog.Info("HTTP server listening", "addr", s.addr)

	return s.app.Listen(s.addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) handleIndex(c *fiber.Ctx) error {
	c.Type("html")

	return c.Send(indexHTML)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleChat(c *fiber.Ctx) error {
	var req chatRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	if err := s.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: err.Error()})
	}

	response, err := s.assistantSvc.Ask(c.Context(), assistant.AskRequest{
		Message:   req.Message,
		SessionID: req.SessionID,
		Style:     req.Style,
	})
	if err != nil {
		if errors.Is(err, assistant.ErrEmptyMessage) {
			return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: err.Error()})
		}

		slog.Error("Chat request failed",
			"session_id", req.SessionID,
			"error", err,
		)

		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{
			Error:     "generation failed, please retry",
			Retryable: true,
		})
	}

	return c.JSON(response)
}

// handleReset clears a session's history. Deleting an unknown session
// succeeds, the operation is idempotent.
func (s *Server) handleReset(c *fiber.Ctx) error {
	s.assistantSvc.ResetSession(c.Params("id"))

	return c.JSON(resetResponse{OK: true})
}
