package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rfp-backend/internal/ingestion"
	"rfp-backend/pkg/apperr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	got    ingestion.Options
	report *ingestion.Report
	err    error
}

func (f *fakeRunner) Run(ctx context.Context, opts ingestion.Options) (*ingestion.Report, error) {
	f.got = opts
	return f.report, f.err
}

func serve(runner Runner, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewIngestionHandler(runner).RegisterRoutes(r.Group("/api/rfp"))

	req := httptest.NewRequest(http.MethodPost, "/api/rfp/ingestion/run", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRunIngestion(t *testing.T) {
	runner := &fakeRunner{report: &ingestion.Report{RunID: "abc", Processed: 2, Created: 1}}

	w := serve(runner, `{"create_proposals": true, "limit": 5}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, ingestion.Options{CreateProposals: true, Limit: 5}, runner.got)
	assert.Contains(t, w.Body.String(), `"run_id":"abc"`)
	assert.Contains(t, w.Body.String(), `"created":1`)
}

func TestRunIngestionEmptyBody(t *testing.T) {
	runner := &fakeRunner{report: &ingestion.Report{}}

	w := serve(runner, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ingestion.Options{}, runner.got)
}

func TestRunIngestionErrors(t *testing.T) {
	w := serve(&fakeRunner{}, `{"limit": -1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(&fakeRunner{}, `{"limit": "ten"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	runner := &fakeRunner{report: &ingestion.Report{}}
	w = serve(runner, `{"create_proposals": true, "keep_unseen": true}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, runner.got, "runner must not be called")

	w = serve(&fakeRunner{err: apperr.Upstream("open mailbox", errors.New("auth failed"))}, `{}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestRunIngestionInterruptedKeepsReport(t *testing.T) {
	runner := &fakeRunner{
		report: &ingestion.Report{RunID: "abc", Processed: 3, Created: 2},
		err:    fmt.Errorf("ingestion interrupted after 3 messages: %w", context.Canceled),
	}

	w := serve(runner, `{"create_proposals": true}`)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body struct {
		Error  string           `json:"error"`
		Report ingestion.Report `json:"report"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Ingestion interrupted", body.Error)
	assert.Equal(t, "abc", body.Report.RunID)
	assert.Equal(t, 2, body.Report.Created)
}
