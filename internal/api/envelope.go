package api

import (
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/bookshelf-server/internal/http/response"
)

// EnvelopeVersion is the envelope format version, sent as "v".
const EnvelopeVersion = response.Version

// APIEnvelope wraps every successful response and plain error responses.
type APIEnvelope = response.Envelope

// APIErrorEnvelope wraps error responses that carry a code.
type APIErrorEnvelope = response.ErrorEnvelope

// EnvelopeTransformer wraps huma response bodies in the standard envelope.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	switch body := v.(type) {
	case *APIError:
		return response.NewErrorEnvelope(body.Code, body.Message, body.Details), nil
	case error:
		return APIEnvelope{
			Version: EnvelopeVersion,
			Success: false,
			Error:   body.Error(),
		}, nil
	}

	code, err := strconv.Atoi(status)
	if err == nil && code >= 400 {
		return APIEnvelope{Version: EnvelopeVersion, Success: false, Data: v}, nil
	}

	return response.NewEnvelope(v), nil
}
