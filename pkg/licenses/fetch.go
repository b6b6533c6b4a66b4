package licenses

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("model-store/licenses")

// Fetch downloads the license list tables of contents from baseURL, which is
// expected to serve licenses.json and exceptions.json the way
// https://spdx.org/licenses/ does, and builds a registry from them.
func Fetch(ctx context.Context, baseURL string) (*Registry, error) {
	var err error
	ctx, span := tracer.Start(ctx, "fetch-license-list")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	log := logging.GetFromContext(ctx)

	baseURL = strings.TrimSuffix(baseURL, "/")

	licenseTocJSON, err := fetchTOC(ctx, baseURL+"/licenses.json")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch license table of contents: %w", err)
	}

	exceptionTocJSON, err := fetchTOC(ctx, baseURL+"/exceptions.json")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch exception table of contents: %w", err)
	}

	registry, err := Parse(licenseTocJSON, exceptionTocJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to parse license list: %w", err)
	}

	log.Info("fetched license list",
		"version", registry.Version(),
		"licenses", len(registry.licenses),
		"exceptions", len(registry.exceptions),
	)

	return registry, nil
}

func fetchTOC(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create http request: %w", err)
	}

	req.Header.Add("Accept", "application/json")

	httpClient := http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to request %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request to %s failed with status code %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}
