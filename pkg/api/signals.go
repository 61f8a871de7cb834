package api

import (
	"fmt"
	"strings"

	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/client"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/logger"
)

// SingleEventPath is the ingestion path for batched user signals.
const SingleEventPath = "/user-signals/v1/single-event"

// Ingestion hosts.
const (
	ProductionHost = "https://analytics-ingestion.production-public.tubi.io"
	StagingHost    = "https://analytics-ingestion.staging-public.tubi.io"
)

// Environments.
const (
	EnvProduction = "production"
	EnvStaging    = "staging"
)

// SignalsURL resolves the single-event endpoint. A non-empty override wins;
// a bare host override gets the single-event path appended.
func SignalsURL(env, override string) (string, error) {
	if override != "" {
		override = strings.TrimRight(override, "/")
		if !strings.HasSuffix(override, SingleEventPath) {
			override += SingleEventPath
		}
		return override, nil
	}

	switch strings.ToLower(env) {
	case "", EnvProduction:
		return ProductionHost + SingleEventPath, nil
	case EnvStaging:
		return StagingHost + SingleEventPath, nil
	default:
		return "", fmt.Errorf("unknown signals environment %q", env)
	}
}

// PostSignal sends one payload synchronously and reports the outcome.
func PostSignal(url string, payload interface{}) error {
	logger.Debug("Posting signal", "url", url)

	resp, err := client.GetClient().
		R().
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(url)

	return CheckResponse(resp, err)
}
