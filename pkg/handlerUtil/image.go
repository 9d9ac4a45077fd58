package handlerUtil

import (
	"errors"
	"fmt"

	"FaceVerify/internal/api/face"
	"FaceVerify/pkg/response"
	"FaceVerify/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

// ReadImage returns the raw bytes of the multipart field, falling back to an
// image_base64 value in a JSON or form body.
func ReadImage(c *fiber.Ctx, u utils.IUtils, field string) ([]byte, error) {
	if file, err := c.FormFile(field); err == nil {
		data, err := u.ReadImageFile(file)
		if err != nil {
			if errors.Is(err, utils.ErrNoFile) {
				return nil, face.ErrImageRequired
			}
			return nil, fmt.Errorf("%w: %v", face.ErrInvalidImage, err)
		}
		if len(data) == 0 {
			return nil, face.ErrImageRequired
		}
		return data, nil
	}

	var body face.ImageRequest
	if err := c.BodyParser(&body); err != nil || body.ImageBase64 == "" {
		return nil, face.ErrImageRequired
	}

	data, err := u.DecodeBase64Image(body.ImageBase64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", face.ErrInvalidImage, err)
	}
	return data, nil
}

// Slug returns the machine readable code carried by err, if any.
func Slug(err error) string {
	var respErr *response.Error
	if errors.As(err, &respErr) {
		return respErr.Slug
	}
	return "INTERNAL_ERROR"
}
