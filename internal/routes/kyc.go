package routes

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/identra/identra/internal/kyc"
	"github.com/identra/identra/internal/session"
)

// RegisterKYCRoutes wires the verification status page and document
// submission. Both sit behind the gate, which exempts this path for
// signed-in unverified users.
func RegisterKYCRoutes(r fiber.Router, intake *kyc.Intake, gate fiber.Handler, log *slog.Logger) {
	r.Get("/kyc-verify", gate, func(c *fiber.Ctx) error {
		user, ok := session.Principal(c)
		if !ok {
			return c.Redirect("/login", fiber.StatusFound)
		}
		return c.JSON(fiber.Map{
			"kyc_status": user.KYCStatus,
			"submit":     "/kyc-verify",
			"fields":     []string{"id_document", "face_photo"},
		})
	})

	r.Post("/kyc-verify", gate, func(c *fiber.Ctx) error {
		user, ok := session.Principal(c)
		if !ok {
			return c.Redirect("/login", fiber.StatusFound)
		}

		idDoc, err := formUpload(c, "id_document")
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, kyc.ErrMissingDocument.Error())
		}
		facePhoto, err := formUpload(c, "face_photo")
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, kyc.ErrMissingDocument.Error())
		}

		if err := intake.Submit(c.UserContext(), user.ID, idDoc, facePhoto); err != nil {
			if errors.Is(err, kyc.ErrMissingDocument) {
				return fiber.NewError(http.StatusBadRequest, err.Error())
			}
			log.Error("kyc submission failed", slog.String("user_id", user.ID), "error", err)
			return fiber.NewError(http.StatusInternalServerError, "could not record submission")
		}

		log.Info("kyc documents submitted", slog.String("user_id", user.ID))
		return c.Redirect("/kyc-verify", fiber.StatusFound)
	})
}

func formUpload(c *fiber.Ctx, field string) (kyc.Upload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return kyc.Upload{}, err
	}
	f, err := fh.Open()
	if err != nil {
		return kyc.Upload{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return kyc.Upload{}, err
	}
	return kyc.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Data:        data,
	}, nil
}
