package errors_test

import (
	stderrors "errors"
	"net/http"
	"testing"

	uierrors "github.com/dalemusser/regdash/internal/app/features/errors"
	"github.com/dalemusser/regdash/internal/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestErrorLogger_LogServerError(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	el := uierrors.NewErrorLogger(zap.New(core))

	r := testutil.NewRequest(http.MethodGet, "/admin/dashboard")
	rec := testutil.Serve(func(w http.ResponseWriter, r *http.Request) {
		el.LogServerError(w, r, "list failed", stderrors.New("boom"), "xatolik", "")
	}, r)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	entries := logs.FilterMessage("list failed").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, zap.ErrorLevel, entries[0].Level)
		assert.Equal(t, "/admin/dashboard", entries[0].ContextMap()["path"])
	}
}

func TestErrorLogger_LogBadRequest(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	el := uierrors.NewErrorLogger(zap.New(core))

	r := testutil.NewRequest(http.MethodPost, "/")
	rec := testutil.Serve(func(w http.ResponseWriter, r *http.Request) {
		el.LogBadRequest(w, r, "bad form", nil, "Noto'g'ri", "")
	}, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1, logs.FilterLevelExact(zap.WarnLevel).Len())
}

func TestHandler_StatusCodes(t *testing.T) {
	h := uierrors.NewHandler()

	rec := testutil.Serve(h.Forbidden, testutil.NewRequest(http.MethodGet, "/forbidden"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = testutil.Serve(h.Unauthorized, testutil.NewRequest(http.MethodGet, "/unauthorized"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = testutil.Serve(h.NotFound, testutil.NewRequest(http.MethodGet, "/nope"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
