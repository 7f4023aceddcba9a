package report

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, guards ...fiber.Handler) {
	route := func(path string, h fiber.Handler) {
		r.Get(path, append(append([]fiber.Handler{}, guards...), h)...)
	}

	route("/totals", func(c *fiber.Ctx) error {
		totals, err := svc.Totals(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(totals)
	})

	route("/daily", func(c *fiber.Ctx) error {
		rep, err := svc.Daily(c.Context(), c.Query("date"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(rep)
	})

	route("/range", func(c *fiber.Ctx) error {
		rep, err := svc.Range(c.Context(), c.Query("from"), c.Query("to"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(rep)
	})

	route("/categories/:collection", func(c *fiber.Ctx) error {
		counts, err := svc.CategoryCounts(c.Context(), c.Params("collection"), c.Query("field"))
		if errors.Is(err, ErrFieldNotAllowed) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(counts)
	})
}
