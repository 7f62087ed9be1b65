package http

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"aichess/internal/server/core"
	"aichess/internal/server/game"
	"aichess/internal/server/processor"
	"aichess/internal/server/service"
)

const rateLimitRate = 10 // req/sec

// HTTPHandler handles HTTP requests and routes them to the processor
type HTTPHandler struct {
	proc *processor.Processor
	svc  *service.Service
}

func NewHTTPHandler(proc *processor.Processor, svc *service.Service) *HTTPHandler {
	return &HTTPHandler{proc: proc, svc: svc}
}

func NewFiberApp(proc *processor.Processor, svc *service.Service, devMode bool) *fiber.App {
	h := NewHTTPHandler(proc, svc)

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: service.WaitTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Health check (no rate limit)
	app.Get("/health", h.Health)

	api := app.Group("/api/v1")

	maxReq := rateLimitRate
	if devMode {
		maxReq = rateLimitRate * 2
	}
	api.Use(limiter.New(limiter.Config{
		Max:        maxReq,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			if xff := c.Get("X-Forwarded-For"); xff != "" {
				if idx := strings.Index(xff, ","); idx != -1 {
					return strings.TrimSpace(xff[:idx])
				}
				return xff
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: fmt.Sprintf("%d requests per second allowed", maxReq),
			})
		},
	}))

	api.Use(contentTypeValidator)
	api.Use(validationMiddleware)

	api.Post("/games", h.CreateGame)
	api.Put("/games/:gameId/players", h.ConfigurePlayers)
	api.Get("/games/:gameId", h.GetGame)
	api.Delete("/games/:gameId", h.DeleteGame)
	api.Post("/games/:gameId/moves", h.MakeMove)
	api.Get("/games/:gameId/moves", h.LegalMoves)
	api.Post("/games/:gameId/undo", h.UndoMove)
	api.Get("/games/:gameId/board", h.GetBoard)
	api.Post("/games/:gameId/suggest", h.SuggestMove)
	api.Get("/games/:gameId/export", h.ExportGame)

	api.Post("/saves", h.SaveGame)
	api.Get("/saves", h.ListSaves)
	api.Delete("/saves/:saveId", h.DeleteSave)

	return app
}

// contentTypeValidator ensures POST and PUT requests have application/json
func contentTypeValidator(c *fiber.Ctx) error {
	method := c.Method()
	if method == fiber.MethodPost || method == fiber.MethodPut {
		contentType := c.Get("Content-Type")
		if contentType != "" && !strings.HasPrefix(contentType, fiber.MIMEApplicationJSON) {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(core.ErrorResponse{
				Error:   "unsupported media type",
				Code:    core.ErrInvalidContent,
				Details: "Content-Type must be application/json",
			})
		}
	}
	return c.Next()
}

// customErrorHandler provides consistent error responses
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	response := core.ErrorResponse{
		Error: "internal server error",
		Code:  core.ErrInternalError,
	}

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		response.Error = e.Message

		switch code {
		case fiber.StatusNotFound:
			response.Code = core.ErrGameNotFound
		case fiber.StatusBadRequest:
			response.Code = core.ErrInvalidRequest
		case fiber.StatusTooManyRequests:
			response.Code = core.ErrRateLimitExceeded
		}
	}

	return c.Status(code).JSON(response)
}

// statusFor maps processor error codes to HTTP status
func statusFor(code string) int {
	switch code {
	case core.ErrGameNotFound, core.ErrSaveNotFound:
		return fiber.StatusNotFound
	case core.ErrGameOver:
		return fiber.StatusConflict
	case core.ErrStorageDisabled:
		return fiber.StatusServiceUnavailable
	case core.ErrInternalError:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusBadRequest
	}
}

// respond writes a processor response with the given success status
func respond(c *fiber.Ctx, resp processor.ProcessorResponse, okStatus int) error {
	if !resp.Success {
		return c.Status(statusFor(resp.Error.Code)).JSON(resp.Error)
	}
	if resp.Data == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.Status(okStatus).JSON(resp.Data)
}

func invalidID(c *fiber.Ctx, what string) error {
	return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
		Error:   fmt.Sprintf("invalid %s format", what),
		Code:    core.ErrInvalidRequest,
		Details: fmt.Sprintf("%s must be a valid UUID", what),
	})
}

// gameID returns the validated :gameId path parameter
func gameID(c *fiber.Ctx) (string, bool) {
	id := c.Params("gameId")
	return id, isValidUUID(id)
}

// Health check endpoint with storage status
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"time":    time.Now().Unix(),
		"storage": h.svc.GetStorageHealth(),
		"games":   h.svc.GameCount(),
	})
}

// CreateGame creates a new game from the start position, a FEN, or a save
func (h *HTTPHandler) CreateGame(c *fiber.Ctx) error {
	req, err := validatedBody[core.CreateGameRequest](c)
	if err != nil {
		return err
	}

	resp := h.proc.Execute(processor.NewCreateGameCommand(*req))
	return respond(c, resp, fiber.StatusCreated)
}

// ConfigurePlayers updates player configuration mid-game
func (h *HTTPHandler) ConfigurePlayers(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidID(c, "game ID")
	}

	req, err := validatedBody[core.ConfigurePlayersRequest](c)
	if err != nil {
		return err
	}

	resp := h.proc.Execute(processor.NewConfigurePlayersCommand(id, *req))
	return respond(c, resp, fiber.StatusOK)
}

// GetGame retrieves the current game, optionally long-polling until the move count changes
func (h *HTTPHandler) GetGame(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidID(c, "game ID")
	}

	if c.Query("wait", "false") != "true" {
		return respond(c, h.proc.Execute(processor.NewGetGameCommand(id)), fiber.StatusOK)
	}

	moveCount, err := strconv.Atoi(c.Query("moveCount", "-1"))
	if err != nil {
		moveCount = -1
	}

	ctx, cancel := context.WithCancel(c.Context())
	defer cancel()

	// Register before reading the count so a move in between still wakes us
	notify := h.svc.RegisterWait(ctx, id, moveCount)

	current := -1
	if err := h.svc.View(id, func(g *game.Game) { current = len(g.Moves()) }); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(core.ErrorResponse{
			Error: "game not found",
			Code:  core.ErrGameNotFound,
		})
	}

	if moveCount == current {
		select {
		case <-notify:
		case <-ctx.Done():
			return nil
		}
	}

	// Game might have been deleted while waiting
	return respond(c, h.proc.Execute(processor.NewGetGameCommand(id)), fiber.StatusOK)
}

// MakeMove submits a coordinate move, or "cccc" to let the computer move
func (h *HTTPHandler) MakeMove(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidID(c, "game ID")
	}

	req, err := validatedBody[core.MoveRequest](c)
	if err != nil {
		return err
	}

	resp := h.proc.Execute(processor.NewMakeMoveCommand(id, *req))
	if resp.Success && resp.Pending {
		return c.Status(fiber.StatusAccepted).JSON(resp.Data)
	}
	return respond(c, resp, fiber.StatusOK)
}

// LegalMoves lists legal moves, restricted to ?from=<square> when given
func (h *HTTPHandler) LegalMoves(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidID(c, "game ID")
	}

	resp := h.proc.Execute(processor.NewLegalMovesCommand(id, c.Query("from")))
	return respond(c, resp, fiber.StatusOK)
}

// UndoMove undoes one or more moves
func (h *HTTPHandler) UndoMove(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidID(c, "game ID")
	}

	req, err := validatedBody[core.UndoRequest](c)
	if err != nil {
		return err
	}

	resp := h.proc.Execute(processor.NewUndoMoveCommand(id, *req))
	return respond(c, resp, fiber.StatusOK)
}

// DeleteGame ends and cleans up a game
func (h *HTTPHandler) DeleteGame(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidID(c, "game ID")
	}

	return respond(c, h.proc.Execute(processor.NewDeleteGameCommand(id)), fiber.StatusOK)
}

// GetBoard returns ASCII representation of the board
func (h *HTTPHandler) GetBoard(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidID(c, "game ID")
	}

	return respond(c, h.proc.Execute(processor.NewGetBoardCommand(id)), fiber.StatusOK)
}

// SuggestMove asks the engine for a move without playing it
func (h *HTTPHandler) SuggestMove(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidID(c, "game ID")
	}

	return respond(c, h.proc.Execute(processor.NewSuggestMoveCommand(id)), fiber.StatusOK)
}

// ExportGame returns the persisted JSON form of the current position
func (h *HTTPHandler) ExportGame(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidID(c, "game ID")
	}

	return respond(c, h.proc.Execute(processor.NewExportGameCommand(id)), fiber.StatusOK)
}

func (h *HTTPHandler) SaveGame(c *fiber.Ctx) error {
	req, err := validatedBody[core.SaveRequest](c)
	if err != nil {
		return err
	}

	return respond(c, h.proc.Execute(processor.NewSaveGameCommand(*req)), fiber.StatusCreated)
}

func (h *HTTPHandler) ListSaves(c *fiber.Ctx) error {
	return respond(c, h.proc.Execute(processor.NewListSavesCommand()), fiber.StatusOK)
}

func (h *HTTPHandler) DeleteSave(c *fiber.Ctx) error {
	saveID := c.Params("saveId")
	if !isValidUUID(saveID) {
		return invalidID(c, "save ID")
	}

	return respond(c, h.proc.Execute(processor.NewDeleteSaveCommand(saveID)), fiber.StatusOK)
}
