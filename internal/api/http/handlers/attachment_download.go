package handlers

import (
	"mime"
	"path/filepath"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func sendAttachment(c *fiber.Ctx, att domain.Attachment) error {
	contentType := mime.TypeByExtension(filepath.Ext(att.FileName))
	if contentType == "" {
		contentType = fiber.MIMEOctetStream
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, "attachment; filename="+strconv.Quote(att.FileName))
	return c.Status(fiber.StatusOK).Send(att.Content)
}
