package controller

import (
	"errors"
	"io"
	"strconv"

	"yorkie-bakery-be/internal/dto"
	"yorkie-bakery-be/internal/pkg/serverutils"
	"yorkie-bakery-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const maxImageBytes = 8 * 1024 * 1024

type IRecommendationController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	Retrieve(ctx *fiber.Ctx) error
	Vision(ctx *fiber.Ctx) error
	GetMessages(ctx *fiber.Ctx) error
}

type recommendationController struct {
	service   service.IRecommendationService
	jwtSecret string
}

func NewRecommendationController(service service.IRecommendationService, jwtSecret string) IRecommendationController {
	return &recommendationController{service: service, jwtSecret: jwtSecret}
}

func (c *recommendationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/ai/v1")
	h.Use(serverutils.OptionalJwtMiddleware(c.jwtSecret))
	h.Post("chat", c.Chat)
	h.Post("retrieve", c.Retrieve)
	h.Post("vision", c.Vision)
	h.Get("sessions/:id/messages", c.GetMessages)
}

func (c *recommendationController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatTurnRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.HandleTurn(ctx.UserContext(), serverutils.UserIdFromCtx(ctx), &req)
	if err != nil {
		return mapRecommendationError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success handle chat turn", res))
}

func (c *recommendationController) Retrieve(ctx *fiber.Ctx) error {
	var req dto.RetrieveRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.RetrieveAndRank(ctx.UserContext(), &req)
	if err != nil {
		return mapRecommendationError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success retrieve items", res))
}

func (c *recommendationController) Vision(ctx *fiber.Ctx) error {
	file, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Image file is required")
	}
	if file.Size > maxImageBytes {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "Image is too large")
	}
	f, err := file.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	image, err := io.ReadAll(io.LimitReader(f, maxImageBytes))
	if err != nil {
		return err
	}

	topK, _ := strconv.Atoi(ctx.FormValue("top_k"))
	res, err := c.service.MatchImage(ctx.UserContext(), image, topK)
	if err != nil {
		return mapRecommendationError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success match image", res))
}

func (c *recommendationController) GetMessages(ctx *fiber.Ctx) error {
	limit := ctx.QueryInt("limit", 20)
	res := c.service.GetRecentMessages(ctx.UserContext(), ctx.Params("id"), limit)
	return ctx.JSON(serverutils.SuccessResponse("Success get messages", res))
}

func mapRecommendationError(err error) error {
	switch {
	case errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, service.ErrEmptyImage),
		errors.Is(err, service.ErrUnsupportedImage):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrCompletionFailed):
		return fiber.NewError(fiber.StatusBadGateway, "Assistant is unavailable, please try again")
	}
	return err
}
