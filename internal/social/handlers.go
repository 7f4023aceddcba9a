package social

import (
	"errors"

	"github.com/Davis-J7/SocialMedia-Page/internal/auth"
	"github.com/Davis-J7/SocialMedia-Page/internal/moderation"
	"github.com/Davis-J7/SocialMedia-Page/internal/store"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts /posts, /messages and /stories on r. read guards every
// route; write is added in front of create and delete.
func RegisterRoutes(r fiber.Router, svc *Service, read fiber.Handler, write fiber.Handler) {
	r.Get("/posts", read, func(c *fiber.Ctx) error {
		posts, err := svc.ListPosts(c.Context())
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(posts)
	})

	r.Post("/posts", read, write, func(c *fiber.Ctx) error {
		var req PostInput
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.UserID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_id required")
		}
		post, err := svc.CreatePost(c.Context(), auth.IdentityFrom(c), req)
		if err != nil {
			return toFiberError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(post)
	})

	r.Delete("/posts/:id", read, write, func(c *fiber.Ctx) error {
		if err := svc.DeletePost(c.Context(), auth.IdentityFrom(c), c.Params("id")); err != nil {
			return toFiberError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/messages", read, func(c *fiber.Ctx) error {
		messages, err := svc.ListMessages(c.Context())
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(messages)
	})

	r.Post("/messages", read, write, func(c *fiber.Ctx) error {
		var req MessageInput
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.SenderID == "" || req.ReceiverID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "sender_id and receiver_id required")
		}
		msg, err := svc.CreateMessage(c.Context(), auth.IdentityFrom(c), req)
		if err != nil {
			return toFiberError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(msg)
	})

	r.Delete("/messages/:id", read, write, func(c *fiber.Ctx) error {
		if err := svc.DeleteMessage(c.Context(), auth.IdentityFrom(c), c.Params("id")); err != nil {
			return toFiberError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/stories", read, func(c *fiber.Ctx) error {
		stories, err := svc.ListStories(c.Context())
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(stories)
	})

	r.Post("/stories", read, write, func(c *fiber.Ctx) error {
		var req StoryInput
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.UserID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_id required")
		}
		story, err := svc.CreateStory(c.Context(), auth.IdentityFrom(c), req)
		if err != nil {
			return toFiberError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(story)
	})

	r.Delete("/stories/:id", read, write, func(c *fiber.Ctx) error {
		if err := svc.DeleteStory(c.Context(), auth.IdentityFrom(c), c.Params("id")); err != nil {
			return toFiberError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func toFiberError(err error) error {
	var rej *moderation.Rejection
	switch {
	case errors.As(err, &rej):
		return fiber.NewError(fiber.StatusUnprocessableEntity, rej.Reason)
	case errors.Is(err, ErrInvalidID), errors.Is(err, ErrUnknownUser), errors.Is(err, ErrInvalidEnum):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
