package users

import (
	"errors"

	"github.com/Davis-J7/SocialMedia-Page/internal/auth"
	"github.com/Davis-J7/SocialMedia-Page/internal/pipeline"
	"github.com/Davis-J7/SocialMedia-Page/internal/store"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the user endpoints. read guards lookups; write is
// added in front of every mutating route. Sign-up stays public.
func RegisterRoutes(r fiber.Router, svc *Service, read fiber.Handler, write fiber.Handler) {
	r.Post("/register", func(c *fiber.Ctx) error {
		var in Input
		if err := c.BodyParser(&in); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		user, err := svc.Register(c.Context(), in)
		if err != nil {
			return toFiberError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(user)
	})

	r.Get("/", read, func(c *fiber.Ctx) error {
		users, err := svc.List(c.Context())
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(users)
	})

	r.Get("/search", read, func(c *fiber.Ctx) error {
		res, err := svc.Search(c.Context(), c.Query("q"), c.Query("sort", pipeline.SortNameAsc), c.Query("group", pipeline.GroupNone))
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(res)
	})

	r.Get("/:id", read, func(c *fiber.Ctx) error {
		id, err := ParseID(c.Params("id"))
		if err != nil {
			return toFiberError(err)
		}
		user, err := svc.Get(c.Context(), id)
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(user)
	})

	r.Get("/:id/profile", read, func(c *fiber.Ctx) error {
		id, err := ParseID(c.Params("id"))
		if err != nil {
			return toFiberError(err)
		}
		profile, err := svc.Profile(c.Context(), id)
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(profile)
	})

	r.Post("/", read, write, func(c *fiber.Ctx) error {
		var in Input
		if err := c.BodyParser(&in); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		user, err := svc.Create(c.Context(), auth.IdentityFrom(c), in)
		if err != nil {
			return toFiberError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(user)
	})

	r.Put("/:id", read, write, func(c *fiber.Ctx) error {
		id, err := ParseID(c.Params("id"))
		if err != nil {
			return toFiberError(err)
		}
		var in Input
		if err := c.BodyParser(&in); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		user, err := svc.Update(c.Context(), auth.IdentityFrom(c), id, in)
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(user)
	})

	r.Delete("/:id", read, write, func(c *fiber.Ctx) error {
		id, err := ParseID(c.Params("id"))
		if err != nil {
			return toFiberError(err)
		}
		res, err := svc.Delete(c.Context(), auth.IdentityFrom(c), id)
		if err != nil {
			if res.Failed != "" {
				return c.Status(fiber.StatusInternalServerError).JSON(res)
			}
			return toFiberError(err)
		}
		return c.JSON(res)
	})
}

func toFiberError(err error) error {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return fiber.NewError(fiber.StatusBadRequest, verr.Error())
	case errors.Is(err, ErrInvalidID), errors.Is(err, pipeline.ErrUnknownGroupField):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "user not found")
	case errors.Is(err, store.ErrDuplicate):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
