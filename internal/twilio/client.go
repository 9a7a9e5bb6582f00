package twilio

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/teemow/smsbridge/internal/config"
	"github.com/teemow/smsbridge/internal/instrumentation"
	"github.com/teemow/smsbridge/internal/jsoncodec"
	"github.com/teemow/smsbridge/internal/logging"
)

const apiVersion = "2010-04-01"

// Client is a resty-backed Sender. It holds no per-request state and is
// safe for concurrent use.
type Client struct {
	http       *resty.Client
	accountSID string
	metrics    *instrumentation.Metrics
}

var _ Sender = (*Client)(nil)

// NewClient builds a client for the account in cfg. A nil metrics recorder
// disables metric recording.
func NewClient(cfg *config.Config, metrics *instrumentation.Metrics) *Client {
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}

	r := resty.New().
		SetBaseURL(cfg.APIBaseURL).
		SetBasicAuth(cfg.AccountSID, cfg.AuthToken).
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(jsoncodec.Marshal).
		SetJSONUnmarshaler(jsoncodec.Unmarshal).
		SetLogger(logging.NewSlogAdapter(slog.Default().With(slog.String("component", "twilio")))).
		SetRetryCount(0)
	if cfg.VendorTimeout > 0 {
		r.SetTimeout(cfg.VendorTimeout)
	}

	return &Client{http: r, accountSID: cfg.AccountSID, metrics: metrics}
}

// SendMessage creates a message resource. It never retries.
func (c *Client) SendMessage(ctx context.Context, from, to, body string) (*SendResult, error) {
	ctx, span := instrumentation.StartProviderSpan(ctx, instrumentation.ProviderTwilio, instrumentation.OperationSend)
	defer span.End()

	start := time.Now()
	result, err := c.send(ctx, from, to, body)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	c.metrics.RecordProviderOperation(ctx, instrumentation.ProviderTwilio, instrumentation.OperationSend, status, to, time.Since(start))

	return result, err
}

func (c *Client) send(ctx context.Context, from, to, body string) (*SendResult, error) {
	result := new(SendResult)
	apiErr := new(apiError)

	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"From": from,
			"To":   to,
			"Body": body,
		}).
		SetResult(result).
		SetError(apiErr).
		Post(fmt.Sprintf("/%s/Accounts/%s/Messages.json", apiVersion, c.accountSID))
	if err != nil {
		return nil, &Error{Op: instrumentation.OperationSend, Err: err}
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, &Error{
			Op:         instrumentation.OperationSend,
			StatusCode: resp.StatusCode(),
			Code:       apiErr.Code,
			Message:    apiErr.Message,
			MoreInfo:   apiErr.MoreInfo,
		}
	}

	if result.SID == "" {
		return nil, &Error{
			Op:         instrumentation.OperationSend,
			StatusCode: resp.StatusCode(),
			Message:    "response did not include a message SID",
		}
	}

	return result, nil
}
