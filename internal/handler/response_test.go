package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/medchain/medchain-api/pkg/errors"
)

func respond(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	RespondError(c, err)
	return w
}

func TestRespondErrorMapsAppErrors(t *testing.T) {
	w := respond(apperrors.NotFound("record", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "record not found")

	w = respond(apperrors.Forbidden("consent does not belong to caller"))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRespondErrorTreatsOthersAsInternal(t *testing.T) {
	w := respond(errors.New("store unavailable"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "store unavailable")
}
