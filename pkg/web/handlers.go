package web

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/flowfn/flowfn/pkg/models"
	"github.com/flowfn/flowfn/pkg/persistence"
	"github.com/flowfn/flowfn/pkg/registry"
	"github.com/flowfn/flowfn/pkg/runner"
	"github.com/flowfn/flowfn/pkg/schema"
)

type APIHandlers struct {
	registry  *registry.Registry
	runner    *runner.Runner
	flows     persistence.FlowRepository
	validator *validator.Validate
	logger    *slog.Logger
}

func NewAPIHandlers(
	logger *slog.Logger,
	reg *registry.Registry,
	run *runner.Runner,
	flows persistence.FlowRepository,
	validate *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		registry:  reg,
		runner:    run,
		flows:     flows,
		validator: validate,
		logger:    logger,
	}
}

// Register mounts every editor-facing route on the app.
func (h *APIHandlers) Register(app *fiber.App) {
	app.Get("/config", h.GetConfig)
	app.Get("/nodes/:type", h.GetNodeType)
	app.Post("/run", h.RunGraph)

	flows := app.Group("/flows")
	flows.Get("/", h.ListFlows)
	flows.Post("/", h.CreateFlow)
	flows.Get("/:id", h.GetFlow)
	flows.Put("/:id", h.UpdateFlow)
	flows.Delete("/:id", h.DeleteFlow)
	flows.Post("/:id/run", h.RunFlow)
}

// GetConfig returns the editor catalog.
func (h *APIHandlers) GetConfig(c fiber.Ctx) error {
	return c.JSON(h.registry.EditorConfig())
}

// GetNodeType returns one node type with its full description, for the
// editor's help panel.
func (h *APIHandlers) GetNodeType(c fiber.Ctx) error {
	name := c.Params("type")
	if name == "" {
		return badRequest(c, "Node type is required")
	}

	nodeType, err := h.registry.GetNode(name)
	if err != nil {
		var unknown *registry.UnknownTypeError
		if errors.As(err, &unknown) {
			return notFound(c, "Unknown node type")
		}

		return internalError(c, err)
	}

	return c.JSON(nodeType)
}

// RunGraph executes a raw graph document and returns per-node results.
func (h *APIHandlers) RunGraph(c fiber.Ctx) error {
	graph, err := h.decodeGraph(c.Body())
	if err != nil {
		return badRequest(c, err.Error())
	}

	results := h.runner.Run(c.Context(), graph)

	return c.JSON(results)
}

func (h *APIHandlers) decodeGraph(body []byte) (models.Graph, error) {
	if err := schema.ValidateGraph(body); err != nil {
		return nil, err
	}

	var graph models.Graph
	if err := json.Unmarshal(body, &graph); err != nil {
		return nil, err
	}

	return graph, nil
}

// ListFlows returns summaries of every stored flow.
func (h *APIHandlers) ListFlows(c fiber.Ctx) error {
	flows, err := h.flows.List(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	summaries := make([]FlowSummary, 0, len(flows))
	for _, flow := range flows {
		summaries = append(summaries, SummarizeFlow(flow))
	}

	return c.JSON(summaries)
}

// CreateFlow stores a new flow.
func (h *APIHandlers) CreateFlow(c fiber.Ctx) error {
	flow, err := h.decodeFlow(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	flow.ID = uuid.New().String()

	if err := h.flows.Save(c.Context(), flow); err != nil {
		return internalError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(flow)
}

func (h *APIHandlers) decodeFlow(c fiber.Ctx) (*models.Flow, error) {
	if err := schema.ValidateFlow(c.Body()); err != nil {
		return nil, err
	}

	var req SaveFlowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return nil, err
	}

	if err := h.validator.Struct(req); err != nil {
		return nil, err
	}

	return &models.Flow{
		Name:        req.Name,
		Description: req.Description,
		Graph:       req.Graph,
	}, nil
}

// GetFlow returns a stored flow with its graph.
func (h *APIHandlers) GetFlow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Flow ID is required")
	}

	flow, err := h.flows.GetByID(c.Context(), id)
	if err != nil {
		return handleRepositoryError(c, err)
	}

	return c.JSON(flow)
}

// UpdateFlow replaces a stored flow's name, description and graph.
func (h *APIHandlers) UpdateFlow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Flow ID is required")
	}

	existing, err := h.flows.GetByID(c.Context(), id)
	if err != nil {
		return handleRepositoryError(c, err)
	}

	flow, err := h.decodeFlow(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	flow.ID = existing.ID
	flow.CreatedAt = existing.CreatedAt

	if err := h.flows.Save(c.Context(), flow); err != nil {
		return internalError(c, err)
	}

	return c.JSON(flow)
}

// DeleteFlow removes a stored flow.
func (h *APIHandlers) DeleteFlow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Flow ID is required")
	}

	if err := h.flows.Delete(c.Context(), id); err != nil {
		return handleRepositoryError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// RunFlow executes a stored flow and returns per-node results.
func (h *APIHandlers) RunFlow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Flow ID is required")
	}

	flow, err := h.flows.GetByID(c.Context(), id)
	if err != nil {
		return handleRepositoryError(c, err)
	}

	h.logger.Info("Running stored flow", "flow_id", flow.ID, "nodes", len(flow.Graph))

	results := h.runner.Run(c.Context(), flow.Graph)

	return c.JSON(results)
}
