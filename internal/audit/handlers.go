package audit

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(r fiber.Router, svc *Service, guards ...fiber.Handler) {
	handlers := append(append([]fiber.Handler{}, guards...), func(c *fiber.Ctx) error {
		entries, err := svc.Recent(c.Context(), c.QueryInt("limit", 50))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(entries)
	})
	r.Get("/", handlers...)
}
