package mgmt

import (
	"io"
	"net/http"
	"strings"
	"time"

	bosherr "github.com/cloudfoundry/bosh-utils/errors"
	boshlog "github.com/cloudfoundry/bosh-utils/logger"
	boshretry "github.com/cloudfoundry/bosh-utils/retrystrategy"
)

const (
	httpInvokerLogTag = "HTTPInvoker"
	soapContentType   = "application/soap+xml; charset=utf-8"
)

type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// HTTPInvoker posts SOAP envelopes to a WS-Management endpoint. Transport
// errors and 503 responses are retried; faults are returned as documents.
type HTTPInvoker struct {
	endpoint    string
	client      HTTPClient
	maxAttempts int
	retryDelay  time.Duration
	logger      boshlog.Logger
}

func NewHTTPInvoker(
	endpoint string,
	client HTTPClient,
	maxAttempts int,
	retryDelay time.Duration,
	logger boshlog.Logger,
) HTTPInvoker {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	return HTTPInvoker{
		endpoint:    endpoint,
		client:      client,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
		logger:      logger,
	}
}

func (i HTTPInvoker) Invoke(request Request) (Response, error) {
	retryable := &invokeRetryable{
		endpoint: i.endpoint,
		client:   i.client,
		request:  request,
		logger:   i.logger,
	}

	err := boshretry.NewAttemptRetryStrategy(i.maxAttempts, i.retryDelay, retryable, i.logger).Try()
	if err != nil {
		return Response{}, bosherr.WrapErrorf(err, "Posting management request %s", request.MessageID)
	}

	if len(strings.TrimSpace(string(retryable.body))) == 0 {
		return Response{}, UnexpectedResponseError{
			Request:    request.Text,
			StatusCode: retryable.statusCode,
			Reason:     "empty response body",
		}
	}

	doc, err := ParseDocument(retryable.body)
	if err != nil {
		return Response{}, UnexpectedResponseError{
			Request:    request.Text,
			StatusCode: retryable.statusCode,
			Reason:     err.Error(),
		}
	}

	return Response{StatusCode: retryable.statusCode, Document: doc}, nil
}

type invokeRetryable struct {
	endpoint string
	client   HTTPClient
	request  Request
	logger   boshlog.Logger

	statusCode int
	body       []byte
}

func (r *invokeRetryable) Attempt() (bool, error) {
	httpRequest, err := http.NewRequest("POST", r.endpoint, strings.NewReader(r.request.Text))
	if err != nil {
		return false, bosherr.WrapError(err, "Building http request")
	}
	httpRequest.Header.Set("Content-Type", soapContentType)

	response, err := r.client.Do(httpRequest)
	if err != nil {
		r.logger.Debug(httpInvokerLogTag, "Request %s failed: %s", r.request.MessageID, err.Error())
		return true, err
	}

	defer func() {
		if err := response.Body.Close(); err != nil {
			r.logger.Warn(httpInvokerLogTag, "Failed to close response body: %s", err.Error())
		}
	}()

	if response.StatusCode == http.StatusServiceUnavailable {
		return true, bosherr.Errorf("Management endpoint unavailable: %s", response.Status)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return true, bosherr.WrapError(err, "Reading response body")
	}

	r.logger.Debug(httpInvokerLogTag, "Request %s answered with %s", r.request.MessageID, response.Status)

	r.statusCode = response.StatusCode
	r.body = body

	return false, nil
}
