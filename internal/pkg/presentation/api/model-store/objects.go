package modelstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/sbomkit/model-store/internal/pkg/application/stores"
	"github.com/sbomkit/model-store/internal/pkg/presentation/api/model-store/auth"
	"github.com/sbomkit/model-store/pkg/problems"
	"github.com/sbomkit/model-store/pkg/spdx"
	"github.com/sbomkit/model-store/pkg/storage"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func NewCreateObjectHandler(app stores.StoreManager, authenticator auth.Enticator) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx := r.Context()
		tenant := GetTenantFromContext(ctx)

		labeler, _ := otelhttp.LabelerFromContext(ctx)
		defer func() { addLabelIfError(err, labeler) }()

		documentURI, err := documentFromRequest(r)
		if err != nil {
			problems.ReportNewBadRequestData(w, err.Error(), traceID(ctx))
			return
		}

		createReq := struct {
			ID     string `json:"id"`
			Type   string `json:"type"`
			IDType string `json:"idType"`
		}{}

		err = json.NewDecoder(r.Body).Decode(&createReq)
		if err != nil {
			problems.ReportNewInvalidRequest(w, fmt.Sprintf("unable to decode request payload: %s", err.Error()), traceID(ctx))
			return
		}

		if createReq.Type == "" || (createReq.ID == "" && createReq.IDType == "") {
			err = errors.New("a type name and an object id, or an id type to mint one from, are required")
			problems.ReportNewBadRequestData(w, err.Error(), traceID(ctx))
			return
		}

		mintID := storage.IDTypeAnonymous
		if createReq.ID == "" {
			mintID, err = storage.ParseIDType(createReq.IDType)
			if err != nil {
				problems.ReportFromError(w, err, traceID(ctx))
				return
			}
		}

		ctx, span := tracer.Start(ctx, "create-object",
			trace.WithAttributes(
				attribute.String(TraceAttributeTenant, tenant),
				attribute.String(TraceAttributeDocumentURI, documentURI),
				attribute.String(TraceAttributeObjectID, createReq.ID),
			),
		)
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		log := logging.GetFromContext(ctx)

		err = authenticator.CheckAccess(ctx, r, tenant, []string{createReq.Type})
		if err != nil {
			log.Warn("access not granted", "err", err.Error())
			problems.ReportNotFoundError(w, "not found", traceID(ctx))
			return
		}

		store, err := app.Store(ctx, tenant)
		if err != nil {
			log.Error("no store found for tenant", "err", err.Error())
			problems.ReportFromError(w, err, traceID(ctx))
			return
		}

		if createReq.ID == "" {
			createReq.ID, err = store.GetNextID(ctx, mintID, documentURI)
			if err != nil {
				log.Error("failed to mint object id", "err", err.Error())
				problems.ReportFromError(w, err, traceID(ctx))
				return
			}

			span.SetAttributes(attribute.String(TraceAttributeObjectID, createReq.ID))
		}

		err = store.Create(ctx, documentURI, createReq.ID, createReq.Type)
		if err != nil {
			log.Error("failed to create object", "err", err.Error())
			problems.ReportFromError(w, err, traceID(ctx))
			return
		}

		response := struct {
			ID string `json:"id"`
		}{ID: createReq.ID}

		responseBody, err := json.Marshal(response)
		if err != nil {
			log.Error("failed to marshal object id to json", "err", err.Error())
			problems.ReportFromError(w, err, traceID(ctx))
			return
		}

		w.Header().Add("Content-Type", "application/json")
		w.Header().Add("Location", objectLocation(documentURI, createReq.ID))
		w.WriteHeader(http.StatusCreated)
		w.Write(responseBody)
	})
}

func NewRetrieveObjectHandler(app stores.StoreManager, authenticator auth.Enticator) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx := r.Context()
		tenant := GetTenantFromContext(ctx)

		labeler, _ := otelhttp.LabelerFromContext(ctx)
		defer func() { addLabelIfError(err, labeler) }()

		objectID, err := urlParam(r, "objectId")
		if err != nil {
			problems.ReportNewBadRequestData(w, err.Error(), traceID(ctx))
			return
		}

		documentURI, err := documentFromRequest(r)
		if err != nil {
			problems.ReportNewBadRequestData(w, err.Error(), traceID(ctx))
			return
		}

		ctx, span := tracer.Start(ctx, "retrieve-object",
			trace.WithAttributes(
				attribute.String(TraceAttributeTenant, tenant),
				attribute.String(TraceAttributeObjectID, objectID),
			),
		)
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		log := logging.GetFromContext(ctx)

		err = authenticator.CheckAccess(ctx, r, tenant, []string{})
		if err != nil {
			log.Warn("access not granted", "err", err.Error())
			problems.ReportNotFoundError(w, "not found", traceID(ctx))
			return
		}

		store, err := app.Store(ctx, tenant)
		if err != nil {
			log.Error("no store found for tenant", "err", err.Error())
			problems.ReportFromError(w, err, traceID(ctx))
			return
		}

		found, err := store.Exists(ctx, documentURI, objectID)
		if err != nil {
			log.Error("failed to check object existence", "err", err.Error())
			problems.ReportFromError(w, err, traceID(ctx))
			return
		}

		if !found {
			problems.ReportNotFoundError(w,
				fmt.Sprintf("%s does not exist in document %s", objectID, documentURI),
				traceID(ctx),
			)
			return
		}

		properties, err := store.GetPropertyValueNames(ctx, documentURI, objectID)
		if err != nil {
			log.Error("failed to enumerate properties", "err", err.Error())
			problems.ReportFromError(w, err, traceID(ctx))
			return
		}

		listProperties, err := store.GetPropertyValueListNames(ctx, documentURI, objectID)
		if err != nil {
			log.Error("failed to enumerate list properties", "err", err.Error())
			problems.ReportFromError(w, err, traceID(ctx))
			return
		}

		if properties == nil {
			properties = []string{}
		}

		if listProperties == nil {
			listProperties = []string{}
		}

		response := struct {
			DocumentURI    string   `json:"documentUri"`
			ID             string   `json:"id"`
			Properties     []string `json:"properties"`
			ListProperties []string `json:"listProperties"`
		}{
			DocumentURI:    documentURI,
			ID:             objectID,
			Properties:     properties,
			ListProperties: listProperties,
		}

		responseBody, err := json.Marshal(response)
		if err != nil {
			log.Error("failed to marshal object to json", "err", err.Error())
			problems.ReportFromError(w, err, traceID(ctx))
			return
		}

		w.Header().Add("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(responseBody)
	})
}

func NewObjectExistsHandler(app stores.StoreManager, authenticator auth.Enticator) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx := r.Context()
		tenant := GetTenantFromContext(ctx)

		labeler, _ := otelhttp.LabelerFromContext(ctx)
		defer func() { addLabelIfError(err, labeler) }()

		objectID, err := urlParam(r, "objectId")
		if err != nil {
			problems.ReportNewBadRequestData(w, err.Error(), traceID(ctx))
			return
		}

		documentURI, err := documentFromRequest(r)
		if err != nil {
			problems.ReportNewBadRequestData(w, err.Error(), traceID(ctx))
			return
		}

		ctx, span := tracer.Start(ctx, "object-exists",
			trace.WithAttributes(
				attribute.String(TraceAttributeTenant, tenant),
				attribute.String(TraceAttributeObjectID, objectID),
			),
		)
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		log := logging.GetFromContext(ctx)

		err = authenticator.CheckAccess(ctx, r, tenant, []string{})
		if err != nil {
			log.Warn("access not granted", "err", err.Error())
			problems.ReportNotFoundError(w, "not found", traceID(ctx))
			return
		}

		store, err := app.Store(ctx, tenant)
		if err != nil {
			log.Error("no store found for tenant", "err", err.Error())
			problems.ReportFromError(w, err, traceID(ctx))
			return
		}

		found, err := store.Exists(ctx, documentURI, objectID)
		if err != nil {
			log.Error("failed to check object existence", "err", err.Error())
			problems.ReportFromError(w, err, traceID(ctx))
			return
		}

		if !found {
			problems.ReportNotFoundError(w,
				fmt.Sprintf("%s does not exist in document %s", objectID, documentURI),
				traceID(ctx),
			)
			return
		}

		w.WriteHeader(http.StatusOK)
	})
}

func NewCopyObjectHandler(app stores.StoreManager, authenticator auth.Enticator) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx := r.Context()
		tenant := GetTenantFromContext(ctx)

		labeler, _ := otelhttp.LabelerFromContext(ctx)
		defer func() { addLabelIfError(err, labeler) }()

		objectID, err := urlParam(r, "objectId")
		if err != nil {
			problems.ReportNewBadRequestData(w, err.Error(), traceID(ctx))
			return
		}

		documentURI, err := documentFromRequest(r)
		if err != nil {
			problems.ReportNewBadRequestData(w, err.Error(), traceID(ctx))
			return
		}

		copyReq := struct {
			Tenant string `json:"tenant"`
			Type   string `json:"type"`
		}{}

		err = json.NewDecoder(r.Body).Decode(&copyReq)
		if err != nil {
			problems.ReportNewInvalidRequest(w, fmt.Sprintf("unable to decode request payload: %s", err.Error()), traceID(ctx))
			return
		}

		if copyReq.Tenant == "" || copyReq.Type == "" {
			err = errors.New("a source tenant and the object's type name are required")
			problems.ReportNewBadRequestData(w, err.Error(), traceID(ctx))
			return
		}

		ctx, span := tracer.Start(ctx, "copy-object",
			trace.WithAttributes(
				attribute.String(TraceAttributeTenant, tenant),
				attribute.String(TraceAttributeDocumentURI, documentURI),
				attribute.String(TraceAttributeObjectID, objectID),
			),
		)
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		log := logging.GetFromContext(ctx)

		err = authenticator.CheckAccess(ctx, r, tenant, []string{copyReq.Type})
		if err != nil {
			log.Warn("access not granted", "err", err.Error())
			problems.ReportNotFoundError(w, "not found", traceID(ctx))
			return
		}

		store, err := app.Store(ctx, tenant)
		if err != nil {
			log.Error("no store found for tenant", "err", err.Error())
			problems.ReportFromError(w, err, traceID(ctx))
			return
		}

		source, err := app.Store(ctx, copyReq.Tenant)
		if err != nil {
			log.Error("no store found for source tenant", "err", err.Error())
			problems.ReportFromError(w, err, traceID(ctx))
			return
		}

		found, err := source.Exists(ctx, documentURI, objectID)
		if err != nil {
			log.Error("failed to check object existence", "err", err.Error())
			problems.ReportFromError(w, err, traceID(ctx))
			return
		}

		if !found {
			problems.ReportNotFoundError(w,
				fmt.Sprintf("%s does not exist in document %s", objectID, documentURI),
				traceID(ctx),
			)
			return
		}

		err = storage.CopyObject(ctx, store, documentURI, objectID, copyReq.Type, source)
		if err != nil {
			log.Error("failed to copy object", "err", err.Error())
			problems.ReportFromError(w, err, traceID(ctx))
			return
		}

		w.Header().Add("Location", objectLocation(documentURI, objectID))
		w.WriteHeader(http.StatusCreated)
	})
}

func NewRetrieveValueHandler(app stores.StoreManager, authenticator auth.Enticator) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx := r.Context()
		tenant := GetTenantFromContext(ctx)

		labeler, _ := otelhttp.LabelerFromContext(ctx)
		defer func() { addLabelIfError(err, labeler) }()

		objectID, propertyName, documentURI, err := propertyParams(r)
		if err != nil {
			problems.ReportNewBadRequestData(w, err.Error(), traceID(ctx))
			return
		}

		ctx, span := tracer.Start(ctx, "retrieve-value",
			trace.WithAttributes(
				attribute.String(TraceAttributeTenant, tenant),
				attribute.String(TraceAttributeObjectID, objectID),
			),
		)
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		log := logging.GetFromContext(ctx)

		err = authenticator.CheckAccess(ctx, r, tenant, []string{})
		if err != nil {
			log.Warn("access not granted", "err", err.Error())
			problems.ReportNotFoundError(w, "not found", traceID(ctx))
			return
		}

		store, err := app.Store(ctx, tenant)
		if err != nil {
			log.Error("no store found for tenant", "err", err.Error())
			problems.ReportFromError(w, err, traceID(ctx))
			return
		}

		value, found, err := store.GetValue(ctx, documentURI, objectID, propertyName)
		if err != nil {
			log.Error("failed to retrieve value", "err", err.Error())
			problems.ReportFromError(w, err, traceID(ctx))
			return
		}

		if !found {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		responseBody, err := json.Marshal(value)
		if err != nil {
			log.Error("failed to marshal value to json", "err", err.Error())
			problems.ReportFromError(w, err, traceID(ctx))
			return
		}

		w.Header().Add("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(responseBody)
	})
}

func NewStoreValueHandler(app stores.StoreManager, authenticator auth.Enticator) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx := r.Context()
		tenant := GetTenantFromContext(ctx)

		labeler, _ := otelhttp.LabelerFromContext(ctx)
		defer func() { addLabelIfError(err, labeler) }()

		objectID, propertyName, documentURI, err := propertyParams(r)
		if err != nil {
			problems.ReportNewBadRequestData(w, err.Error(), traceID(ctx))
			return
		}

		value, err := valueFromRequestBody(r)
		if err != nil {
			problems.ReportNewInvalidRequest(w, err.Error(), traceID(ctx))
			return
		}

		if _, isList := value.(storage.List); isList {
			err = errors.New("a value list can not be stored in a single value slot")
			problems.ReportNewBadRequestData(w, err.Error(), traceID(ctx))
			return
		}

		ctx, span := tracer.Start(ctx, "store-value",
			trace.WithAttributes(
				attribute.String(TraceAttributeTenant, tenant),
				attribute.String(TraceAttributeObjectID, objectID),
			),
		)
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		log := logging.GetFromContext(ctx)

		err = authenticator.CheckAccess(ctx, r, tenant, []string{})
		if err != nil {
			log.Warn("access not granted", "err", err.Error())
			problems.ReportNotFoundError(w, "not found", traceID(ctx))
			return
		}

		store, err := app.Store(ctx, tenant)
		if err != nil {
			log.Error("no store found for tenant", "err", err.Error())
			problems.ReportFromError(w, err, traceID(ctx))
			return
		}

		err = store.SetValue(ctx, documentURI, objectID, propertyName, value)
		if err != nil {
			log.Error("failed to store value", "err", err.Error())
			problems.ReportFromError(w, err, traceID(ctx))
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}

func NewRemovePropertyHandler(app stores.StoreManager, authenticator auth.Enticator) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx := r.Context()
		tenant := GetTenantFromContext(ctx)

		labeler, _ := otelhttp.LabelerFromContext(ctx)
		defer func() { addLabelIfError(err, labeler) }()

		objectID, propertyName, documentURI, err := propertyParams(r)
		if err != nil {
			problems.ReportNewBadRequestData(w, err.Error(), traceID(ctx))
			return
		}

		ctx, span := tracer.Start(ctx, "remove-property",
			trace.WithAttributes(
				attribute.String(TraceAttributeTenant, tenant),
				attribute.String(TraceAttributeObjectID, objectID),
			),
		)
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		log := logging.GetFromContext(ctx)

		err = authenticator.CheckAccess(ctx, r, tenant, []string{})
		if err != nil {
			log.Warn("access not granted", "err", err.Error())
			problems.ReportNotFoundError(w, "not found", traceID(ctx))
			return
		}

		store, err := app.Store(ctx, tenant)
		if err != nil {
			log.Error("no store found for tenant", "err", err.Error())
			problems.ReportFromError(w, err, traceID(ctx))
			return
		}

		err = store.RemoveProperty(ctx, documentURI, objectID, propertyName)
		if err != nil {
			log.Error("failed to remove property", "err", err.Error())
			problems.ReportFromError(w, err, traceID(ctx))
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}

func NewRetrieveValueListHandler(app stores.StoreManager, authenticator auth.Enticator) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx := r.Context()
		tenant := GetTenantFromContext(ctx)

		labeler, _ := otelhttp.LabelerFromContext(ctx)
		defer func() { addLabelIfError(err, labeler) }()

		objectID, propertyName, documentURI, err := propertyParams(r)
		if err != nil {
			problems.ReportNewBadRequestData(w, err.Error(), traceID(ctx))
			return
		}

		ctx, span := tracer.Start(ctx, "retrieve-value-list",
			trace.WithAttributes(
				attribute.String(TraceAttributeTenant, tenant),
				attribute.String(TraceAttributeObjectID, objectID),
			),
		)
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		log := logging.GetFromContext(ctx)

		err = authenticator.CheckAccess(ctx, r, tenant, []string{})
		if err != nil {
			log.Warn("access not granted", "err", err.Error())
			problems.ReportNotFoundError(w, "not found", traceID(ctx))
			return
		}

		store, err := app.Store(ctx, tenant)
		if err != nil {
			log.Error("no store found for tenant", "err", err.Error())
			problems.ReportFromError(w, err, traceID(ctx))
			return
		}

		values, err := store.GetValueList(ctx, documentURI, objectID, propertyName)
		if err != nil {
			log.Error("failed to retrieve value list", "err", err.Error())
			problems.ReportFromError(w, err, traceID(ctx))
			return
		}

		responseBody, err := json.Marshal(storage.List(values))
		if err != nil {
			log.Error("failed to marshal value list to json", "err", err.Error())
			problems.ReportFromError(w, err, traceID(ctx))
			return
		}

		w.Header().Add("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(responseBody)
	})
}

func NewReplaceValueListHandler(app stores.StoreManager, authenticator auth.Enticator) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx := r.Context()
		tenant := GetTenantFromContext(ctx)

		labeler, _ := otelhttp.LabelerFromContext(ctx)
		defer func() { addLabelIfError(err, labeler) }()

		objectID, propertyName, documentURI, err := propertyParams(r)
		if err != nil {
			problems.ReportNewBadRequestData(w, err.Error(), traceID(ctx))
			return
		}

		value, err := valueFromRequestBody(r)
		if err != nil {
			problems.ReportNewInvalidRequest(w, err.Error(), traceID(ctx))
			return
		}

		list, isList := value.(storage.List)
		if !isList {
			err = errors.New("the request body must be a value list")
			problems.ReportNewBadRequestData(w, err.Error(), traceID(ctx))
			return
		}

		ctx, span := tracer.Start(ctx, "replace-value-list",
			trace.WithAttributes(
				attribute.String(TraceAttributeTenant, tenant),
				attribute.String(TraceAttributeObjectID, objectID),
			),
		)
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		log := logging.GetFromContext(ctx)

		err = authenticator.CheckAccess(ctx, r, tenant, []string{})
		if err != nil {
			log.Warn("access not granted", "err", err.Error())
			problems.ReportNotFoundError(w, "not found", traceID(ctx))
			return
		}

		store, err := app.Store(ctx, tenant)
		if err != nil {
			log.Error("no store found for tenant", "err", err.Error())
			problems.ReportFromError(w, err, traceID(ctx))
			return
		}

		err = store.ReplaceValueList(ctx, documentURI, objectID, propertyName, []storage.Value(list))
		if err != nil {
			log.Error("failed to replace value list", "err", err.Error())
			problems.ReportFromError(w, err, traceID(ctx))
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}

func NewAppendToValueListHandler(app stores.StoreManager, authenticator auth.Enticator) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx := r.Context()
		tenant := GetTenantFromContext(ctx)

		labeler, _ := otelhttp.LabelerFromContext(ctx)
		defer func() { addLabelIfError(err, labeler) }()

		objectID, propertyName, documentURI, err := propertyParams(r)
		if err != nil {
			problems.ReportNewBadRequestData(w, err.Error(), traceID(ctx))
			return
		}

		value, err := valueFromRequestBody(r)
		if err != nil {
			problems.ReportNewInvalidRequest(w, err.Error(), traceID(ctx))
			return
		}

		if _, isList := value.(storage.List); isList {
			err = errors.New("a value list can not be added to a list slot")
			problems.ReportNewBadRequestData(w, err.Error(), traceID(ctx))
			return
		}

		ctx, span := tracer.Start(ctx, "append-to-value-list",
			trace.WithAttributes(
				attribute.String(TraceAttributeTenant, tenant),
				attribute.String(TraceAttributeObjectID, objectID),
			),
		)
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		log := logging.GetFromContext(ctx)

		err = authenticator.CheckAccess(ctx, r, tenant, []string{})
		if err != nil {
			log.Warn("access not granted", "err", err.Error())
			problems.ReportNotFoundError(w, "not found", traceID(ctx))
			return
		}

		store, err := app.Store(ctx, tenant)
		if err != nil {
			log.Error("no store found for tenant", "err", err.Error())
			problems.ReportFromError(w, err, traceID(ctx))
			return
		}

		err = store.AddValueToList(ctx, documentURI, objectID, propertyName, value)
		if err != nil {
			log.Error("failed to add value to list", "err", err.Error())
			problems.ReportFromError(w, err, traceID(ctx))
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}

func NewClearValueListHandler(app stores.StoreManager, authenticator auth.Enticator) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx := r.Context()
		tenant := GetTenantFromContext(ctx)

		labeler, _ := otelhttp.LabelerFromContext(ctx)
		defer func() { addLabelIfError(err, labeler) }()

		objectID, propertyName, documentURI, err := propertyParams(r)
		if err != nil {
			problems.ReportNewBadRequestData(w, err.Error(), traceID(ctx))
			return
		}

		ctx, span := tracer.Start(ctx, "clear-value-list",
			trace.WithAttributes(
				attribute.String(TraceAttributeTenant, tenant),
				attribute.String(TraceAttributeObjectID, objectID),
			),
		)
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		log := logging.GetFromContext(ctx)

		err = authenticator.CheckAccess(ctx, r, tenant, []string{})
		if err != nil {
			log.Warn("access not granted", "err", err.Error())
			problems.ReportNotFoundError(w, "not found", traceID(ctx))
			return
		}

		store, err := app.Store(ctx, tenant)
		if err != nil {
			log.Error("no store found for tenant", "err", err.Error())
			problems.ReportFromError(w, err, traceID(ctx))
			return
		}

		err = store.ClearValueList(ctx, documentURI, objectID, propertyName)
		if err != nil {
			log.Error("failed to clear value list", "err", err.Error())
			problems.ReportFromError(w, err, traceID(ctx))
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}

func NewRemoveFromValueListHandler(app stores.StoreManager, authenticator auth.Enticator) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx := r.Context()
		tenant := GetTenantFromContext(ctx)

		labeler, _ := otelhttp.LabelerFromContext(ctx)
		defer func() { addLabelIfError(err, labeler) }()

		objectID, propertyName, documentURI, err := propertyParams(r)
		if err != nil {
			problems.ReportNewBadRequestData(w, err.Error(), traceID(ctx))
			return
		}

		value, err := valueFromRequestBody(r)
		if err != nil {
			problems.ReportNewInvalidRequest(w, err.Error(), traceID(ctx))
			return
		}

		ctx, span := tracer.Start(ctx, "remove-from-value-list",
			trace.WithAttributes(
				attribute.String(TraceAttributeTenant, tenant),
				attribute.String(TraceAttributeObjectID, objectID),
			),
		)
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		log := logging.GetFromContext(ctx)

		err = authenticator.CheckAccess(ctx, r, tenant, []string{})
		if err != nil {
			log.Warn("access not granted", "err", err.Error())
			problems.ReportNotFoundError(w, "not found", traceID(ctx))
			return
		}

		store, err := app.Store(ctx, tenant)
		if err != nil {
			log.Error("no store found for tenant", "err", err.Error())
			problems.ReportFromError(w, err, traceID(ctx))
			return
		}

		err = store.RemoveValueFromList(ctx, documentURI, objectID, propertyName, value)
		if err != nil {
			log.Error("failed to remove value from list", "err", err.Error())
			problems.ReportFromError(w, err, traceID(ctx))
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}

func NewMintIdentifierHandler(app stores.StoreManager, authenticator auth.Enticator) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx := r.Context()
		tenant := GetTenantFromContext(ctx)

		labeler, _ := otelhttp.LabelerFromContext(ctx)
		defer func() { addLabelIfError(err, labeler) }()

		documentURI, err := documentFromRequest(r)
		if err != nil {
			problems.ReportNewBadRequestData(w, err.Error(), traceID(ctx))
			return
		}

		mintReq := struct {
			IDType string `json:"idType"`
		}{}

		err = json.NewDecoder(r.Body).Decode(&mintReq)
		if err != nil {
			problems.ReportNewInvalidRequest(w, fmt.Sprintf("unable to decode request payload: %s", err.Error()), traceID(ctx))
			return
		}

		idType, err := storage.ParseIDType(mintReq.IDType)
		if err != nil {
			problems.ReportFromError(w, err, traceID(ctx))
			return
		}

		ctx, span := tracer.Start(ctx, "mint-identifier",
			trace.WithAttributes(
				attribute.String(TraceAttributeTenant, tenant),
				attribute.String(TraceAttributeDocumentURI, documentURI),
			),
		)
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		log := logging.GetFromContext(ctx)

		err = authenticator.CheckAccess(ctx, r, tenant, []string{})
		if err != nil {
			log.Warn("access not granted", "err", err.Error())
			problems.ReportNotFoundError(w, "not found", traceID(ctx))
			return
		}

		store, err := app.Store(ctx, tenant)
		if err != nil {
			log.Error("no store found for tenant", "err", err.Error())
			problems.ReportFromError(w, err, traceID(ctx))
			return
		}

		id, err := store.GetNextID(ctx, idType, documentURI)
		if err != nil {
			log.Error("failed to mint identifier", "err", err.Error())
			problems.ReportFromError(w, err, traceID(ctx))
			return
		}

		response := struct {
			ID string `json:"id"`
		}{ID: id}

		responseBody, err := json.Marshal(response)
		if err != nil {
			log.Error("failed to marshal identifier to json", "err", err.Error())
			problems.ReportFromError(w, err, traceID(ctx))
			return
		}

		w.Header().Add("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(responseBody)
	})
}

func NewMintDocumentURIHandler(authenticator auth.Enticator) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx := r.Context()
		tenant := GetTenantFromContext(ctx)

		labeler, _ := otelhttp.LabelerFromContext(ctx)
		defer func() { addLabelIfError(err, labeler) }()

		ctx, span := tracer.Start(ctx, "mint-document-uri",
			trace.WithAttributes(attribute.String(TraceAttributeTenant, tenant)),
		)
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		log := logging.GetFromContext(ctx)

		err = authenticator.CheckAccess(ctx, r, tenant, []string{})
		if err != nil {
			log.Warn("access not granted", "err", err.Error())
			problems.ReportNotFoundError(w, "not found", traceID(ctx))
			return
		}

		response := struct {
			DocumentURI string `json:"documentUri"`
		}{DocumentURI: spdx.NewDocumentURI()}

		responseBody, err := json.Marshal(response)
		if err != nil {
			log.Error("failed to marshal document uri to json", "err", err.Error())
			problems.ReportFromError(w, err, traceID(ctx))
			return
		}

		w.Header().Add("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(responseBody)
	})
}

func documentFromRequest(r *http.Request) (string, error) {
	documentURI := r.URL.Query().Get("document")

	if documentURI == "" {
		return "", errors.New("the document query parameter is required")
	}

	return documentURI, nil
}

func urlParam(r *http.Request, name string) (string, error) {
	param, err := url.PathUnescape(chi.URLParam(r, name))

	if err != nil || param == "" {
		return "", fmt.Errorf("missing or malformed %s in request path", name)
	}

	return param, nil
}

func propertyParams(r *http.Request) (objectID, propertyName, documentURI string, err error) {
	objectID, err = urlParam(r, "objectId")
	if err != nil {
		return
	}

	propertyName, err = urlParam(r, "propertyName")
	if err != nil {
		return
	}

	documentURI, err = documentFromRequest(r)
	return
}

func valueFromRequestBody(r *http.Request) (storage.Value, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to read request payload: %s", err.Error())
	}

	value, err := storage.UnmarshalValue(body)
	if err != nil {
		return nil, fmt.Errorf("unable to decode request payload: %s", err.Error())
	}

	return value, nil
}

func objectLocation(documentURI, id string) string {
	return fmt.Sprintf("/api/v0/objects/%s?document=%s",
		url.PathEscape(id), url.QueryEscape(documentURI),
	)
}
