package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/tabflow/tabflow/pkg/exchange"
	"github.com/tabflow/tabflow/pkg/flow"
	"github.com/tabflow/tabflow/pkg/persistence"
	"github.com/tabflow/tabflow/pkg/services"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func conflict(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(409).
		WithInstance(c.Path()).
		WithType("conflict").
		WithDetail(detail)

	return c.Status(fiber.StatusConflict).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleServiceError maps typed service and domain errors to problem+json
// responses.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case services.IsValidationError(err):
		return badRequest(c, err.Error())

	case errors.Is(err, exchange.ErrInvalidDocument):
		return badRequest(c, err.Error())

	case flow.IsInvalidConnection(err):
		return badRequest(c, err.Error())

	case flow.IsReservedTab(err):
		return conflict(c, "reserved tabs cannot be modified")

	case persistence.IsTableNotFound(err):
		return notFound(c, "table not found")

	case persistence.IsRowNotFound(err):
		return notFound(c, "row not found")

	case persistence.IsRelationshipNotFound(err):
		return notFound(c, "relationship not found")

	case flow.IsTabNotFound(err):
		return notFound(c, "tab not found")

	case flow.IsNodeNotFound(err):
		return notFound(c, "node not found")

	case errors.Is(err, flow.ErrEdgeNotFound):
		return notFound(c, "edge not found")

	default:
		return internalError(c, err)
	}
}
