// Package remote implements a storage.Store that proxies every operation to
// a model store service over its HTTP API. Model objects bound to a remote
// store behave exactly like objects bound to a local one, which lets a
// document builder run against a shared store without knowing it.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/sbomkit/model-store/pkg/problems"
	"github.com/sbomkit/model-store/pkg/storage"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	TraceAttributeDocumentURI string = "modelstore-document"
	TraceAttributeObjectID    string = "modelstore-object-id"
	TraceAttributeTenant      string = "modelstore-tenant"
)

var tracer = otel.Tracer("model-store-client")

type Option func(*remoteStore)

func Debug(enabled string) Option {
	return func(s *remoteStore) {
		s.debug = (enabled == "true")
	}
}

func Tenant(tenant string) Option {
	return func(s *remoteStore) {
		s.tenant = tenant
	}
}

func New(serviceURL string, options ...Option) storage.Store {
	s := &remoteStore{
		baseURL: serviceURL,
		tenant:  "default",
		debug:   false,
	}

	for _, option := range options {
		option(s)
	}

	return s
}

type remoteStore struct {
	baseURL string
	tenant  string
	debug   bool
}

func (s remoteStore) Exists(ctx context.Context, documentURI, id string) (bool, error) {
	var err error

	ctx, span := tracer.Start(ctx, "object-exists",
		trace.WithAttributes(attribute.String(TraceAttributeTenant, s.tenant)),
		trace.WithAttributes(attribute.String(TraceAttributeObjectID, id)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	response, responseBody, err := s.callStoreService(
		ctx, http.MethodGet, s.objectURL(documentURI, id), nil,
	)

	if err != nil {
		return false, err
	}

	if response.StatusCode == http.StatusOK {
		return true, nil
	}

	problem := errorFromResponse(response, responseBody, http.StatusOK)
	if errors.Is(problem, storage.ErrNotFound) {
		return false, nil
	}

	err = problem
	return false, err
}

func (s remoteStore) Create(ctx context.Context, documentURI, id, typeName string) error {
	var err error

	ctx, span := tracer.Start(ctx, "create-object",
		trace.WithAttributes(attribute.String(TraceAttributeTenant, s.tenant)),
		trace.WithAttributes(attribute.String(TraceAttributeObjectID, id)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	createReq := struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	}{ID: id, Type: typeName}

	body, err := json.Marshal(createReq)
	if err != nil {
		return err
	}

	response, responseBody, err := s.callStoreService(
		ctx, http.MethodPost, s.objectsURL(documentURI), body,
	)

	if err != nil {
		return err
	}

	err = errorFromResponse(response, responseBody, http.StatusCreated)
	return err
}

func (s remoteStore) GetValue(ctx context.Context, documentURI, id, propertyName string) (storage.Value, bool, error) {
	var err error

	ctx, span := tracer.Start(ctx, "retrieve-value",
		trace.WithAttributes(attribute.String(TraceAttributeTenant, s.tenant)),
		trace.WithAttributes(attribute.String(TraceAttributeObjectID, id)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	response, responseBody, err := s.callStoreService(
		ctx, http.MethodGet, s.propertyURL(documentURI, id, propertyName), nil,
	)

	if err != nil {
		return nil, false, err
	}

	if response.StatusCode == http.StatusNoContent {
		return nil, false, nil
	}

	err = errorFromResponse(response, responseBody, http.StatusOK)
	if err != nil {
		return nil, false, err
	}

	value, err := storage.UnmarshalValue(responseBody)
	if err != nil {
		err = fmt.Errorf("failed to unmarshal value: %s (%w)", err.Error(), storage.ErrBadResponse)
		return nil, false, err
	}

	return value, true, nil
}

func (s remoteStore) SetValue(ctx context.Context, documentURI, id, propertyName string, value storage.Value) error {
	var err error

	ctx, span := tracer.Start(ctx, "store-value",
		trace.WithAttributes(attribute.String(TraceAttributeTenant, s.tenant)),
		trace.WithAttributes(attribute.String(TraceAttributeObjectID, id)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	if err = storage.ValidateStorable(value); err != nil {
		return err
	}

	body, err := json.Marshal(value)
	if err != nil {
		return err
	}

	response, responseBody, err := s.callStoreService(
		ctx, http.MethodPut, s.propertyURL(documentURI, id, propertyName), body,
	)

	if err != nil {
		return err
	}

	err = errorFromResponse(response, responseBody, http.StatusNoContent)
	return err
}

func (s remoteStore) RemoveProperty(ctx context.Context, documentURI, id, propertyName string) error {
	var err error

	ctx, span := tracer.Start(ctx, "remove-property",
		trace.WithAttributes(attribute.String(TraceAttributeTenant, s.tenant)),
		trace.WithAttributes(attribute.String(TraceAttributeObjectID, id)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	response, responseBody, err := s.callStoreService(
		ctx, http.MethodDelete, s.propertyURL(documentURI, id, propertyName), nil,
	)

	if err != nil {
		return err
	}

	err = errorFromResponse(response, responseBody, http.StatusNoContent)
	return err
}

func (s remoteStore) GetValueList(ctx context.Context, documentURI, id, propertyName string) ([]storage.Value, error) {
	var err error

	ctx, span := tracer.Start(ctx, "retrieve-value-list",
		trace.WithAttributes(attribute.String(TraceAttributeTenant, s.tenant)),
		trace.WithAttributes(attribute.String(TraceAttributeObjectID, id)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	response, responseBody, err := s.callStoreService(
		ctx, http.MethodGet, s.listURL(documentURI, id, propertyName), nil,
	)

	if err != nil {
		return nil, err
	}

	err = errorFromResponse(response, responseBody, http.StatusOK)
	if err != nil {
		return nil, err
	}

	value, err := storage.UnmarshalValue(responseBody)
	if err != nil {
		err = fmt.Errorf("failed to unmarshal value list: %s (%w)", err.Error(), storage.ErrBadResponse)
		return nil, err
	}

	list, isList := value.(storage.List)
	if !isList {
		err = fmt.Errorf("expected a value list in response body (%w)", storage.ErrBadResponse)
		return nil, err
	}

	return []storage.Value(list), nil
}

func (s remoteStore) ClearValueList(ctx context.Context, documentURI, id, propertyName string) error {
	var err error

	ctx, span := tracer.Start(ctx, "clear-value-list",
		trace.WithAttributes(attribute.String(TraceAttributeTenant, s.tenant)),
		trace.WithAttributes(attribute.String(TraceAttributeObjectID, id)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	response, responseBody, err := s.callStoreService(
		ctx, http.MethodDelete, s.listURL(documentURI, id, propertyName), nil,
	)

	if err != nil {
		return err
	}

	err = errorFromResponse(response, responseBody, http.StatusNoContent)
	return err
}

func (s remoteStore) AddValueToList(ctx context.Context, documentURI, id, propertyName string, value storage.Value) error {
	var err error

	ctx, span := tracer.Start(ctx, "append-to-value-list",
		trace.WithAttributes(attribute.String(TraceAttributeTenant, s.tenant)),
		trace.WithAttributes(attribute.String(TraceAttributeObjectID, id)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	if err = storage.ValidateStorable(value); err != nil {
		return err
	}

	body, err := json.Marshal(value)
	if err != nil {
		return err
	}

	response, responseBody, err := s.callStoreService(
		ctx, http.MethodPost, s.listURL(documentURI, id, propertyName), body,
	)

	if err != nil {
		return err
	}

	err = errorFromResponse(response, responseBody, http.StatusNoContent)
	return err
}

func (s remoteStore) RemoveValueFromList(ctx context.Context, documentURI, id, propertyName string, value storage.Value) error {
	var err error

	ctx, span := tracer.Start(ctx, "remove-from-value-list",
		trace.WithAttributes(attribute.String(TraceAttributeTenant, s.tenant)),
		trace.WithAttributes(attribute.String(TraceAttributeObjectID, id)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	if err = storage.ValidateStorable(value); err != nil {
		return err
	}

	body, err := json.Marshal(value)
	if err != nil {
		return err
	}

	response, responseBody, err := s.callStoreService(
		ctx, http.MethodPost, s.removalsURL(documentURI, id, propertyName), body,
	)

	if err != nil {
		return err
	}

	err = errorFromResponse(response, responseBody, http.StatusNoContent)
	return err
}

func (s remoteStore) ReplaceValueList(ctx context.Context, documentURI, id, propertyName string, values []storage.Value) error {
	var err error

	ctx, span := tracer.Start(ctx, "replace-value-list",
		trace.WithAttributes(attribute.String(TraceAttributeTenant, s.tenant)),
		trace.WithAttributes(attribute.String(TraceAttributeObjectID, id)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	for _, value := range values {
		if err = storage.ValidateStorable(value); err != nil {
			return err
		}
	}

	body, err := json.Marshal(storage.List(values))
	if err != nil {
		return err
	}

	response, responseBody, err := s.callStoreService(
		ctx, http.MethodPut, s.listURL(documentURI, id, propertyName), body,
	)

	if err != nil {
		return err
	}

	err = errorFromResponse(response, responseBody, http.StatusNoContent)
	return err
}

func (s remoteStore) GetNextID(ctx context.Context, idType storage.IDType, documentURI string) (string, error) {
	var err error

	ctx, span := tracer.Start(ctx, "mint-identifier",
		trace.WithAttributes(attribute.String(TraceAttributeTenant, s.tenant)),
		trace.WithAttributes(attribute.String(TraceAttributeDocumentURI, documentURI)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	mintReq := struct {
		IDType string `json:"idType"`
	}{IDType: idType.String()}

	body, err := json.Marshal(mintReq)
	if err != nil {
		return "", err
	}

	response, responseBody, err := s.callStoreService(
		ctx, http.MethodPost, s.idsURL(documentURI), body,
	)

	if err != nil {
		return "", err
	}

	err = errorFromResponse(response, responseBody, http.StatusOK)
	if err != nil {
		return "", err
	}

	mintResp := struct {
		ID string `json:"id"`
	}{}

	err = json.Unmarshal(responseBody, &mintResp)
	if err != nil {
		err = fmt.Errorf("failed to unmarshal minted id: %s (%w)", err.Error(), storage.ErrBadResponse)
		return "", err
	}

	return mintResp.ID, nil
}

func (s remoteStore) CopyFrom(ctx context.Context, documentURI, id, typeName string, source storage.Store) error {
	return storage.CopyObject(ctx, s, documentURI, id, typeName, source)
}

func (s remoteStore) GetPropertyValueNames(ctx context.Context, documentURI, id string) ([]string, error) {
	properties, _, err := s.retrieveObject(ctx, documentURI, id)
	return properties, err
}

func (s remoteStore) GetPropertyValueListNames(ctx context.Context, documentURI, id string) ([]string, error) {
	_, listProperties, err := s.retrieveObject(ctx, documentURI, id)
	return listProperties, err
}

func (s remoteStore) retrieveObject(ctx context.Context, documentURI, id string) ([]string, []string, error) {
	var err error

	ctx, span := tracer.Start(ctx, "retrieve-object",
		trace.WithAttributes(attribute.String(TraceAttributeTenant, s.tenant)),
		trace.WithAttributes(attribute.String(TraceAttributeObjectID, id)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	response, responseBody, err := s.callStoreService(
		ctx, http.MethodGet, s.objectURL(documentURI, id), nil,
	)

	if err != nil {
		return nil, nil, err
	}

	err = errorFromResponse(response, responseBody, http.StatusOK)
	if err != nil {
		return nil, nil, err
	}

	object := struct {
		Properties     []string `json:"properties"`
		ListProperties []string `json:"listProperties"`
	}{}

	err = json.Unmarshal(responseBody, &object)
	if err != nil {
		err = fmt.Errorf("failed to unmarshal object: %s (%w)", err.Error(), storage.ErrBadResponse)
		return nil, nil, err
	}

	return object.Properties, object.ListProperties, nil
}

func (s remoteStore) callStoreService(ctx context.Context, method, endpoint string, body []byte) (*http.Response, []byte, error) {
	httpClient := http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %s (%w)", err.Error(), storage.ErrInternal)
	}

	if body != nil {
		req.Header.Add("Content-Type", "application/json")
	}

	if s.tenant != "default" {
		req.Header.Add("Model-Store-Tenant", s.tenant)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to send request: %s (%w)", err.Error(), storage.ErrRequest)
	}

	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response body: %s (%w)", err.Error(), storage.ErrBadResponse)
	}

	if s.debug && resp.StatusCode >= http.StatusBadRequest {
		if resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusNotFound {
			reqbytes, _ := httputil.DumpRequest(req, false)
			respbytes, _ := httputil.DumpResponse(resp, false)

			log := logging.GetFromContext(ctx)
			log.Error("request failed", "request", string(reqbytes), "response", string(respbytes))
		}
	}

	return resp, respBody, nil
}

// errorFromResponse turns any response other than the expected one into an
// error, preferring the storage error reconstructed from a problem report
// when the service sent one.
func errorFromResponse(response *http.Response, responseBody []byte, expected int) error {
	if response.StatusCode == expected {
		return nil
	}

	contentType := response.Header.Get("Content-Type")

	if response.StatusCode >= http.StatusBadRequest && response.StatusCode <= http.StatusInternalServerError {
		return problems.NewErrorFromProblemReport(response.StatusCode, contentType, responseBody)
	}

	return fmt.Errorf("model store service returned status code %d (content-type: %s, body: %s)",
		response.StatusCode, contentType, string(responseBody))
}

func (s remoteStore) objectsURL(documentURI string) string {
	return fmt.Sprintf("%s/api/v0/objects?document=%s", s.baseURL, url.QueryEscape(documentURI))
}

func (s remoteStore) objectURL(documentURI, id string) string {
	return fmt.Sprintf("%s/api/v0/objects/%s?document=%s",
		s.baseURL, url.PathEscape(id), url.QueryEscape(documentURI))
}

func (s remoteStore) propertyURL(documentURI, id, propertyName string) string {
	return fmt.Sprintf("%s/api/v0/objects/%s/properties/%s?document=%s",
		s.baseURL, url.PathEscape(id), url.PathEscape(propertyName), url.QueryEscape(documentURI))
}

func (s remoteStore) listURL(documentURI, id, propertyName string) string {
	return fmt.Sprintf("%s/api/v0/objects/%s/lists/%s?document=%s",
		s.baseURL, url.PathEscape(id), url.PathEscape(propertyName), url.QueryEscape(documentURI))
}

func (s remoteStore) removalsURL(documentURI, id, propertyName string) string {
	return fmt.Sprintf("%s/api/v0/objects/%s/lists/%s/removals?document=%s",
		s.baseURL, url.PathEscape(id), url.PathEscape(propertyName), url.QueryEscape(documentURI))
}

func (s remoteStore) idsURL(documentURI string) string {
	return fmt.Sprintf("%s/api/v0/ids?document=%s", s.baseURL, url.QueryEscape(documentURI))
}
