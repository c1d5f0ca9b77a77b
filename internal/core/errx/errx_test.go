package errx

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorMessage(t *testing.T) {
	e := New(nil, http.StatusBadRequest, "complaint is required")
	assert.Equal(t, "complaint is required", e.Error())

	wrapped := New(errors.New("dial tcp: refused"), http.StatusBadGateway, RetrievalErrorMessage)
	assert.Equal(t, "research retrieval failed: dial tcp: refused", wrapped.Error())
}

func TestAppErrorUnwrapChain(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	e := WrapRetrieval(cause)

	assert.True(t, errors.Is(e, cause))

	var appErr *AppError
	require.True(t, errors.As(e, &appErr))
	assert.Equal(t, http.StatusBadGateway, appErr.Status)
}

func TestWrappersPassNilThrough(t *testing.T) {
	assert.Nil(t, WrapRetrieval(nil))
	assert.Nil(t, WrapComposition(nil))
	assert.Nil(t, WrapEvaluation(nil))
}

func TestErrEmptyComplaint(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, ErrEmptyComplaint.Status)
	assert.Equal(t, "complaint is required", ErrEmptyComplaint.Message)
}
