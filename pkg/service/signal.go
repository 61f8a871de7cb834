package service

import (
	"errors"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/api"
	clierrors "github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/errors"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/impressions"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/logger"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/output"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/sink"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ConfirmFunc asks the user a yes/no question.
type ConfirmFunc func(label string) (bool, error)

// SignalService sends one-off signals
type SignalService struct {
	// Confirm is asked before sending to production. Nil sends without asking.
	Confirm ConfirmFunc
}

// NewSignalService creates a new signal service
func NewSignalService(confirm ConfirmFunc) *SignalService {
	return &SignalService{Confirm: confirm}
}

// LoadPayload reads a signal payload file and checks it is complete.
func LoadPayload(path string) (*impressions.Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, clierrors.FileNotFoundError(path)
		}
		return nil, err
	}

	var p impressions.Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, clierrors.InvalidFormatError(path, err)
	}
	if err := sink.Validate(&p); err != nil {
		return nil, clierrors.ValidationError("payload", err.Error())
	}
	return &p, nil
}

// Send posts the payload in path and waits for the endpoint's answer.
func (s *SignalService) Send(path, env, url string) error {
	payload, err := LoadPayload(path)
	if err != nil {
		return err
	}

	endpoint, err := ResolveEndpoint(env, url)
	if err != nil {
		return err
	}

	if s.Confirm != nil && strings.HasPrefix(endpoint, api.ProductionHost) {
		ok, err := s.Confirm("Send this signal to production?")
		if err != nil {
			return err
		}
		if !ok {
			output.PrintWarning("Cancelled")
			return nil
		}
	}

	logger.Debug("Sending signal", "endpoint", endpoint, "containers", len(payload.Containers), "tiles", payload.Tiles())
	if err := api.PostSignal(endpoint, payload); err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 && apiErr.StatusCode != 429 {
			return clierrors.RejectedError(apiErr.StatusCode, apiErr.Message)
		}
		return clierrors.CategorizeError(err)
	}

	output.PrintSuccess("Sent %d tile%s to %s", payload.Tiles(), pluralize(payload.Tiles()), endpoint)
	return nil
}

func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
