package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"site-admin-backend/internal/apperr"
)

func TestRemote_ClassifiesSentinels(t *testing.T) {
	notFound := apperr.Remote("GetSite", fmt.Errorf("site x: %w", apperr.ErrNotFound))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(notFound))
	assert.Equal(t, http.StatusNotFound, apperr.HTTPStatus(notFound))
	assert.ErrorIs(t, notFound, apperr.ErrNotFound)

	forbidden := apperr.Remote("Authorize", apperr.ErrForbidden)
	assert.Equal(t, http.StatusForbidden, apperr.HTTPStatus(forbidden))

	remote := apperr.Remote("ListSites", errors.New("connection reset"))
	assert.Equal(t, apperr.KindRemote, apperr.KindOf(remote))
	assert.Equal(t, http.StatusBadGateway, apperr.HTTPStatus(remote))
	assert.Equal(t, "ListSites: connection reset", remote.Error())
}

func TestRemote_KeepsExistingKind(t *testing.T) {
	inner := apperr.Validationf("DeleteImage", "file id is required")
	assert.Same(t, inner, apperr.Remote("DeleteSite", inner))
	assert.Nil(t, apperr.Remote("x", nil))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, apperr.HTTPStatus(nil))
	assert.Equal(t, http.StatusBadRequest, apperr.HTTPStatus(apperr.Validation("op", errors.New("bad"))))
	assert.Equal(t, http.StatusInternalServerError, apperr.HTTPStatus(apperr.Internal("op", errors.New("panic"))))
	assert.Equal(t, http.StatusInternalServerError, apperr.HTTPStatus(errors.New("unclassified")))
}
