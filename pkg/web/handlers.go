// Package web provides HTTP handlers and REST API endpoints for the editor
// backend.
package web

import (
	"bytes"

	"github.com/gofiber/fiber/v3"

	"github.com/tabflow/tabflow/pkg/models"
	"github.com/tabflow/tabflow/pkg/services"
)

// APIHandlers bundles the services behind the REST surface.
type APIHandlers struct {
	tables   *services.Tables
	flows    *services.Flows
	transfer *services.Transfer
}

// NewAPIHandlers creates the handler set.
func NewAPIHandlers(tables *services.Tables, flows *services.Flows, transfer *services.Transfer) *APIHandlers {
	return &APIHandlers{
		tables:   tables,
		flows:    flows,
		transfer: transfer,
	}
}

// Tables

func (h *APIHandlers) GetTables(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"tables": h.tables.ListTables(),
		"schema": h.tables.Schema(),
	})
}

func (h *APIHandlers) GetTable(c fiber.Ctx) error {
	table, err := h.tables.GetTable(c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(table)
}

func (h *APIHandlers) CreateTable(c fiber.Ctx) error {
	var req CreateTableRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	schema := &models.TableSchema{
		Name:     req.Name,
		Columns:  req.Columns,
		Position: req.Position,
	}

	created, err := h.tables.CreateTable(c.Context(), schema)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateTable(c fiber.Ctx) error {
	var patch models.TableSchemaPatch
	if err := c.Bind().JSON(&patch); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.tables.UpdateTable(c.Context(), c.Params("id"), &patch); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) DeleteTable(c fiber.Ctx) error {
	if err := h.tables.DeleteTable(c.Context(), c.Params("id")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Rows

func (h *APIHandlers) AddRow(c fiber.Ctx) error {
	var req RowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	row, err := h.tables.AddRow(c.Context(), c.Params("id"), req.Values)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(row)
}

func (h *APIHandlers) UpdateRow(c fiber.Ctx) error {
	var req RowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	err := h.tables.UpdateRow(c.Context(), c.Params("id"), c.Params("rowId"), req.Values)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) DeleteRow(c fiber.Ctx) error {
	err := h.tables.DeleteRow(c.Context(), c.Params("id"), c.Params("rowId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Relationships

func (h *APIHandlers) GetRelationships(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"relationships": h.tables.Relationships()})
}

func (h *APIHandlers) CreateRelationship(c fiber.Ctx) error {
	var req CreateRelationshipRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	created, err := h.tables.AddRelationship(c.Context(), &models.Relationship{
		FromTableID:  req.FromTableID,
		FromColumnID: req.FromColumnID,
		ToTableID:    req.ToTableID,
		ToColumnID:   req.ToColumnID,
		Type:         req.Type,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) DeleteRelationship(c fiber.Ctx) error {
	if err := h.tables.DeleteRelationship(c.Context(), c.Params("id")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Tabs

func (h *APIHandlers) GetTabs(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"tabs":        h.flows.Tabs(),
		"activeTabId": h.flows.ActiveTabID(),
	})
}

func (h *APIHandlers) CreateTab(c fiber.Ctx) error {
	var req TabRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	tab, err := h.flows.CreateTab(req.Name)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(tab)
}

func (h *APIHandlers) RenameTab(c fiber.Ctx) error {
	var req TabRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.flows.RenameTab(c.Params("id"), req.Name); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) DeleteTab(c fiber.Ctx) error {
	if err := h.flows.DeleteTab(c.Context(), c.Params("id")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ActivateTab(c fiber.Ctx) error {
	if err := h.flows.SetActiveTab(c.Params("id")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Nodes and edges

func (h *APIHandlers) AddNode(c fiber.Ctx) error {
	var req AddNodeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	node, err := h.flows.AddNode(c.Context(), c.Params("id"), &models.FlowNode{
		Type:     req.Type,
		Position: req.Position,
		Data:     req.Data,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(node)
}

func (h *APIHandlers) UpdateNode(c fiber.Ctx) error {
	var patch models.NodeDataPatch
	if err := c.Bind().JSON(&patch); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	err := h.flows.UpdateNode(c.Context(), c.Params("id"), c.Params("nodeId"), &patch)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) MoveNode(c fiber.Ctx) error {
	var req MoveNodeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	err := h.flows.MoveNode(c.Context(), c.Params("id"), c.Params("nodeId"), req.Position)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) DeleteNode(c fiber.Ctx) error {
	err := h.flows.DeleteNode(c.Context(), c.Params("id"), c.Params("nodeId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) Connect(c fiber.Ctx) error {
	var req ConnectRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	edge, err := h.flows.Connect(c.Context(), c.Params("id"), &models.FlowEdge{
		Source:       req.Source,
		Target:       req.Target,
		SourceHandle: req.SourceHandle,
		TargetHandle: req.TargetHandle,
		Animated:     req.Animated,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(edge)
}

func (h *APIHandlers) DeleteEdge(c fiber.Ctx) error {
	err := h.flows.DeleteEdge(c.Context(), c.Params("id"), c.Params("edgeId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// History

func (h *APIHandlers) Undo(c fiber.Ctx) error {
	applied, err := h.flows.Undo(c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(HistoryStepResponse{Applied: applied})
}

func (h *APIHandlers) Redo(c fiber.Ctx) error {
	applied, err := h.flows.Redo(c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(HistoryStepResponse{Applied: applied})
}

// Script generation

func (h *APIHandlers) GenerateScript(c fiber.Ctx) error {
	rendered, err := h.flows.GenerateScript(c.Context(), c.Params("id"), c.Params("nodeId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"script": rendered})
}

// Import/export

func (h *APIHandlers) Export(c fiber.Ctx) error {
	data, err := h.transfer.Export()
	if err != nil {
		return internalError(c, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	return c.Send(data)
}

func (h *APIHandlers) Import(c fiber.Ctx) error {
	if err := h.transfer.Import(c.Context(), c.Body()); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ExportCSV(c fiber.Ctx) error {
	data, err := h.tables.ExportCSV(c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv")

	return c.Send(data)
}

func (h *APIHandlers) ImportCSV(c fiber.Ctx) error {
	count, err := h.tables.ImportCSV(c.Context(), c.Params("id"), bytes.NewReader(c.Body()))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"imported": count})
}

// HealthCheck reports persistence health.
func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	detail, ok := h.tables.HealthCheck(c.Context())

	status := fiber.StatusOK
	if !ok {
		status = fiber.StatusInternalServerError
	}

	return c.Status(status).JSON(fiber.Map{
		"status": map[bool]string{true: "healthy", false: "unhealthy"}[ok],
		"detail": detail,
	})
}
