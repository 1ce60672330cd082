package server

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"bulletin/internal/models"
	"bulletin/internal/service"
)

func (s *Server) handleContext(c *fiber.Ctx) error {
	bctx, err := s.contexts.GetContext(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(bctx)
}

func (s *Server) handleCategories(c *fiber.Ctx) error {
	categories, err := s.taxonomy.ActiveCategories(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"categories": categories})
}

func (s *Server) handleStatuses(c *fiber.Ctx) error {
	requestType, ok := parseRequestType(c.Query("type"))
	if !ok {
		return respondError(c, models.NewValidationError("Unknown record type"))
	}
	statuses, err := s.taxonomy.ActiveStatuses(c.UserContext(), requestType)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"statuses": statuses})
}

func (s *Server) handleOwners(c *fiber.Ctx) error {
	owners, err := s.contexts.SupportOwnerOptions(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"owners": owners})
}

func listInputFromQuery(c *fiber.Ctx) service.ListInput {
	return service.ListInput{
		Search:       c.Query("search"),
		Status:       c.Query("status"),
		CategoryName: c.Query("category_name"),
		OwnerScope:   c.Query("owner_scope"),
		PageSize:     c.QueryInt("page_size"),
	}
}

func (s *Server) handleListSuggestions(c *fiber.Ctx) error {
	requests, err := s.requests.ListSuggestions(c.UserContext(), currentUserID(c), listInputFromQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"requests": requests})
}

func (s *Server) handleListSupport(c *fiber.Ctx) error {
	requests, err := s.requests.ListSupportTickets(c.UserContext(), currentUserID(c), listInputFromQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"requests": requests})
}

type createRequestBody struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	BodyHTML    string `json:"body_html"`
	CategoryIDs []uint `json:"category_ids"`
}

func (s *Server) handleCreateRequest(c *fiber.Ctx) error {
	var body createRequestBody
	if err := c.BodyParser(&body); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	requestType, _ := parseRequestType(body.Type)
	request, err := s.requests.Create(c.UserContext(), service.CreateRequestInput{
		UserID:      currentUserID(c),
		Type:        requestType,
		Title:       body.Title,
		BodyHTML:    body.BodyHTML,
		CategoryIDs: body.CategoryIDs,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(request)
}

func (s *Server) handleGetRequest(c *fiber.Ctx) error {
	id, err := requestIDParam(c)
	if err != nil {
		return respondError(c, err)
	}
	request, err := s.requests.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(request)
}

func (s *Server) handleUpdateStatus(c *fiber.Ctx) error {
	id, err := requestIDParam(c)
	if err != nil {
		return respondError(c, err)
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	request, err := s.requests.UpdateStatus(c.UserContext(), currentUserID(c), id, body.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(request)
}

func (s *Server) handleUpdateDescription(c *fiber.Ctx) error {
	id, err := requestIDParam(c)
	if err != nil {
		return respondError(c, err)
	}

	var body struct {
		BodyHTML string `json:"body_html"`
	}
	if err := c.BodyParser(&body); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	request, err := s.requests.UpdateDescription(c.UserContext(), currentUserID(c), id, body.BodyHTML)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(request)
}

func (s *Server) handleUpdateOwner(c *fiber.Ctx) error {
	id, err := requestIDParam(c)
	if err != nil {
		return respondError(c, err)
	}

	var body struct {
		OwnerID *uint `json:"owner_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	request, err := s.requests.UpdateOwner(c.UserContext(), currentUserID(c), id, body.OwnerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(request)
}

func (s *Server) handleListComments(c *fiber.Ctx) error {
	id, err := requestIDParam(c)
	if err != nil {
		return respondError(c, err)
	}
	comments, err := s.comments.ListByRequest(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"comments": comments})
}

func (s *Server) handleCreateComment(c *fiber.Ctx) error {
	id, err := requestIDParam(c)
	if err != nil {
		return respondError(c, err)
	}

	var body struct {
		Body string `json:"body"`
	}
	if err := c.BodyParser(&body); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	comment, err := s.comments.Create(c.UserContext(), service.CreateCommentInput{
		UserID:    currentUserID(c),
		RequestID: id,
		Body:      body.Body,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

func requestIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewValidationError("Invalid record id")
	}
	return uint(id), nil
}

// parseRequestType accepts both the stored type names and their short
// lowercase aliases used in query strings.
func parseRequestType(raw string) (models.RequestType, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "suggestion":
		return models.TypeSuggestion, true
	case "support", "support request", "support_request":
		return models.TypeSupport, true
	}
	return models.RequestType(raw), false
}
