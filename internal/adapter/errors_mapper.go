package adapter

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/avoronov/kinsync/internal/store"
	"github.com/go-resty/resty/v2"
)

// mapHTTPError translates a document store HTTP response into the store
// package's sentinel errors, so the orchestrator can classify failures
// without knowing about HTTP. 5xx and unknown statuses map to
// [store.ErrStoreUnavailable], which marks the operation retryable.
func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(resp.StatusCode())
	}

	switch resp.StatusCode() {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, body)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", store.ErrDocumentNotFound, body)
	default:
		return fmt.Errorf("%w: http %d: %s", store.ErrStoreUnavailable, resp.StatusCode(), body)
	}
}
