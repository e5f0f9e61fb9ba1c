package maps

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"

	"github.com/GriffinCanCode/placechat/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/placechat/internal/shared/types"
)

const (
	defaultPhotoWidth = 400
	maxPhotoWidth     = 1600
)

// Photo is a proxied place photo
type Photo struct {
	Data        []byte
	ContentType string
}

// Photo downloads a place photo so the API key never reaches the browser.
// The provider answers with a redirect to the image; the client follows it.
func (g *Gateway) Photo(ctx context.Context, ref string, maxWidth int) (*Photo, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty photo reference", ErrInvalidArgument)
	}
	if g.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	switch {
	case maxWidth <= 0:
		maxWidth = defaultPhotoWidth
	case maxWidth > maxPhotoWidth:
		maxWidth = maxPhotoWidth
	}

	timer := monitoring.NewTimer(g.metrics, "google", "photo")
	resp, err := g.http.Execute(ctx, http.MethodGet, photoPath, func(r *resty.Request) {
		r.SetQueryParams(map[string]string{
			"photoreference": ref,
			"maxwidth":       strconv.Itoa(maxWidth),
			"key":            g.apiKey,
		})
	})
	if err != nil {
		timer.Stop(types.OutcomeFatal.String())
		return nil, fmt.Errorf("google maps photo: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		timer.Stop(types.OutcomeFatal.String())
		return nil, &ProviderError{Operation: "photo", HTTPStatus: resp.StatusCode()}
	}

	data := resp.Body()
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		timer.Stop(types.OutcomeFatal.String())
		return nil, &ProviderError{
			Operation:  "photo",
			HTTPStatus: resp.StatusCode(),
			Message:    "unexpected content type " + mtype.String(),
		}
	}
	timer.Stop(types.OutcomeOK.String())

	return &Photo{Data: data, ContentType: mtype.String()}, nil
}
