package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/go-chi/chi/v5"

	"github.com/sbomkit/model-store/internal/pkg/application/stores"
	"github.com/sbomkit/model-store/internal/pkg/infrastructure/router"
	modelstore "github.com/sbomkit/model-store/internal/pkg/presentation/api/model-store"
)

const appName string = "model-store"

func main() {
	appVersion := buildinfo.SourceVersion()

	ctx, log, cleanup := o11y.Init(context.Background(), appName, appVersion, "json")
	defer cleanup()

	policyFile := env.GetVariableOrDefault(ctx, "MODEL_STORE_POLICIES_FILE", "/opt/modelstore/config/authz.rego")
	policies, err := os.Open(policyFile)
	if err != nil {
		log.Error("unable to open opa policy file", "file", policyFile, "err", err.Error())
		os.Exit(1)
	}
	defer policies.Close()

	configFile := env.GetVariableOrDefault(ctx, "MODEL_STORE_CONFIG_FILE", "/opt/modelstore/config/default.yaml")
	storeConfig := openConfigFile(ctx, configFile)
	defer storeConfig.Close()

	r, err := initialize(ctx, policies, storeConfig)
	if err != nil {
		log.Error("failed to initialize service", "err", err.Error())
		os.Exit(1)
	}

	port := env.GetVariableOrDefault(ctx, "SERVICE_PORT", "8080")
	log.Info("starting to listen for connections", "port", port)

	err = http.ListenAndServe(":"+port, r)
	if err != nil {
		log.Error("failed to listen for connections", "err", err.Error())
		os.Exit(1)
	}
}

func initialize(ctx context.Context, policies, storeConfig io.Reader) (*chi.Mux, error) {
	cfg, err := stores.LoadConfiguration(storeConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant configuration: %w", err)
	}

	app, err := stores.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to set up tenant stores: %w", err)
	}

	r := router.New(appName)

	err = modelstore.RegisterHandlers(ctx, r, policies, app)
	if err != nil {
		return nil, fmt.Errorf("failed to register handlers: %w", err)
	}

	return r, nil
}

// openConfigFile falls back to an empty configuration when no file exists at
// the given path, so that the service can start with a single in-memory
// default tenant.
func openConfigFile(ctx context.Context, path string) io.ReadCloser {
	file, err := os.Open(path)
	if err != nil {
		log := logging.GetFromContext(ctx)
		log.Info("no configuration file found, starting with default settings", "file", path)

		return io.NopCloser(strings.NewReader(""))
	}

	return file
}
