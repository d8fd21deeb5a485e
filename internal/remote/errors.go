package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	apperrors "github.com/openshelf/storefront/pkg/errors"
)

// backendError mirrors the structured error body the backend returns.
// Unstructured bodies fall back to the generic remote error message.
type backendError struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

// transportError converts a transport-level failure into the taxonomy. An
// expired wait is a NetworkError, not a hang and not a distinct timeout kind:
// callers only need to know "try again".
func (c *Client) transportError(ctx context.Context, method, path string, err error) error {
	if errors.Is(err, context.Canceled) && ctx.Err() == nil {
		// Caller-initiated cancellation, pass through untranslated.
		return err
	}

	c.logger.WarnContext(ctx, "backend request failed",
		slog.String("method", method),
		slog.String("path", path),
		slog.String("error", err.Error()),
	)
	return apperrors.Network(err)
}

// statusError converts a non-2xx response into the taxonomy. A 401 tears the
// session down before the error propagates, so every caller that merely
// re-throws still observes consistent global state.
func (c *Client) statusError(ctx context.Context, method, path string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode == http.StatusUnauthorized {
		c.logger.WarnContext(ctx, "backend rejected credential, clearing session",
			slog.String("method", method),
			slog.String("path", path),
		)
		c.creds.Invalidate()
		return apperrors.Unauthorized("your session has expired, please sign in again")
	}

	message := ""
	var parsed backendError
	if json.Unmarshal(body, &parsed) == nil {
		if parsed.Error != nil && parsed.Error.Message != "" {
			message = parsed.Error.Message
		} else if parsed.Message != "" {
			message = parsed.Message
		}
	}

	c.logger.WarnContext(ctx, "backend rejected request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.String("message", message),
	)
	return apperrors.Remote(resp.StatusCode, message)
}
