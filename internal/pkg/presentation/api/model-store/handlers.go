package modelstore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sbomkit/model-store/internal/pkg/application/stores"
	"github.com/sbomkit/model-store/internal/pkg/presentation/api/model-store/auth"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	TraceAttributeTenant      string = "modelstore-tenant"
	TraceAttributeDocumentURI string = "modelstore-document"
	TraceAttributeObjectID    string = "modelstore-object-id"
)

var tracer = otel.Tracer("model-store/api")

func RegisterHandlers(ctx context.Context, r *chi.Mux, policies io.Reader, app stores.StoreManager) error {

	authenticator, err := auth.NewAuthenticator(ctx, policies)
	if err != nil {
		return fmt.Errorf("failed to create api authenticator: %w", err)
	}

	middleware := []func(http.Handler) http.Handler{
		Logger(logging.GetFromContext(ctx)),
		TenantMiddleware(),
		RequiredContentTypes([]string{"application/json"}),
	}

	r.Route("/api/v0", func(r chi.Router) {
		r.Use(middleware...)

		r.Post("/documents", NewMintDocumentURIHandler(authenticator))

		r.Route("/objects", func(r chi.Router) {
			r.Post("/", NewCreateObjectHandler(app, authenticator))

			r.Route("/{objectId}", func(r chi.Router) {
				r.Head("/", NewObjectExistsHandler(app, authenticator))
				r.Get("/", NewRetrieveObjectHandler(app, authenticator))
				r.Post("/copyfrom", NewCopyObjectHandler(app, authenticator))

				r.Route("/properties/{propertyName}", func(r chi.Router) {
					r.Get("/", NewRetrieveValueHandler(app, authenticator))
					r.Put("/", NewStoreValueHandler(app, authenticator))
					r.Delete("/", NewRemovePropertyHandler(app, authenticator))
				})

				r.Route("/lists/{propertyName}", func(r chi.Router) {
					r.Get("/", NewRetrieveValueListHandler(app, authenticator))
					r.Put("/", NewReplaceValueListHandler(app, authenticator))
					r.Post("/", NewAppendToValueListHandler(app, authenticator))
					r.Delete("/", NewClearValueListHandler(app, authenticator))

					r.Post("/removals", NewRemoveFromValueListHandler(app, authenticator))
				})
			})
		})

		r.Post("/ids", NewMintIdentifierHandler(app, authenticator))
	})

	return nil
}

type tenantContextKey struct {
	name string
}

var tenantCtxKey = &tenantContextKey{"model-store-tenant"}

func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			_, ctx, _ = o11y.AddTraceIDToLoggerAndStoreInContext(
				trace.SpanFromContext(ctx),
				logger,
				ctx)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequiredContentTypes(validTypes []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			contentType := r.Header.Get("Content-Type")
			isValidContentType := true

			if len(contentType) > 0 {
				isValidContentType = false

				for _, t := range validTypes {
					if strings.HasPrefix(contentType, t) {
						isValidContentType = true
						break
					}
				}
			}

			if isValidContentType {
				next.ServeHTTP(w, r)
			} else {
				http.Error(w, "unsupported media type", http.StatusUnsupportedMediaType)
			}
		})
	}
}

// TenantMiddleware packs any tenant id into the context
func TenantMiddleware() func(http.Handler) http.Handler {
	tenantHeaderName := http.CanonicalHeaderKey("Model-Store-Tenant")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenant := "default"

			tenantHeader := r.Header[tenantHeaderName]
			if len(tenantHeader) > 0 {
				tenant = tenantHeader[0]
			}

			if labeler, found := otelhttp.LabelerFromContext(r.Context()); found {
				labeler.Add(attribute.String(TraceAttributeTenant, tenant))
			}

			ctx := context.WithValue(r.Context(), tenantCtxKey, tenant)

			ctx = logging.NewContextWithLogger(
				ctx,
				logging.GetFromContext(r.Context()),
				"tenant",
				tenant,
			)

			if tenant != "default" {
				w.Header().Add(tenantHeaderName, tenant)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetTenantFromContext extracts the tenant name, if any, from the provided context
func GetTenantFromContext(ctx context.Context) string {
	tenant, ok := ctx.Value(tenantCtxKey).(string)

	if !ok {
		return ""
	}

	return tenant
}

func traceID(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)

	if spanCtx.HasTraceID() {
		return spanCtx.TraceID().String()
	}

	return ""
}

func addLabelIfError(err error, labeler *otelhttp.Labeler) {
	if err != nil {
		labeler.Add(attribute.Bool("error", true))
	}
}
