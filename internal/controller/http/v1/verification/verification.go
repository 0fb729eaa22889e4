package verification

import (
	"fmt"
	"net/http"
	"reflect"

	"timeclock/backend/foundation/web"

	"github.com/pkg/errors"
	qrcode "github.com/skip2/go-qrcode"
)

type Controller struct {
	verifier Verifier
	baseURL  string
}

func NewController(verifier Verifier, baseURL string) *Controller {
	return &Controller{verifier: verifier, baseURL: baseURL}
}

type VerifyRequest struct {
	Latitude  *float64 `json:"latitude" form:"latitude" validate:"required"`
	Longitude *float64 `json:"longitude" form:"longitude" validate:"required"`
}

// Verify consumes the browser geolocation posted from the verification page.
func (uc Controller) Verify(c *web.Context) error {
	token := c.GetParam(reflect.String, "token").(string)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	var request VerifyRequest
	if err := c.BindFunc(&request, "Latitude", "Longitude"); err != nil {
		return c.RespondError(err)
	}

	result, err := uc.verifier.Verify(c.Ctx, token, *request.Latitude, *request.Longitude)
	if err != nil {
		return c.RespondError(err)
	}

	data := map[string]interface{}{
		"success":     result.Success,
		"message":     result.Message,
		"return_link": result.ReturnLink,
	}
	if result.OverageMeters != nil {
		data["overage_meters"] = *result.OverageMeters
	}

	return c.Respond(map[string]interface{}{
		"data":   data,
		"status": true,
	}, http.StatusOK)
}

// Qr renders the verification link as a QR code for workers reading the
// message on a desktop client.
func (uc Controller) Qr(c *web.Context) error {
	token := c.GetParam(reflect.String, "token").(string)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	png, err := qrcode.Encode(fmt.Sprintf("%s/verify/%s", uc.baseURL, token), qrcode.Medium, 256)
	if err != nil {
		return c.RespondError(web.NewRequestError(errors.Wrap(err, "encoding qr"), http.StatusInternalServerError))
	}

	c.Data(http.StatusOK, "image/png", png)
	return nil
}
