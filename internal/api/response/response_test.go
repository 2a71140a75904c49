package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"jobtrack/internal/api/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	response.JSON(w, map[string]string{"name": "test"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "test", body["name"])
}

func TestCreated(t *testing.T) {
	w := httptest.NewRecorder()
	response.Created(w, map[string]string{"id": "abc"})

	assert.Equal(t, http.StatusCreated, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "abc", body["id"])
}

func TestNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	response.NoContent(w)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

func TestNewPage_FirstOfMany(t *testing.T) {
	p := response.NewPage([]string{"a"}, 45, 1, 20)

	assert.Equal(t, 45, p.Count)
	assert.Nil(t, p.Previous)
	require.NotNil(t, p.Next)
	assert.Equal(t, 2, *p.Next)
}

func TestNewPage_Middle(t *testing.T) {
	p := response.NewPage([]string{"a"}, 45, 2, 20)

	require.NotNil(t, p.Previous)
	assert.Equal(t, 1, *p.Previous)
	require.NotNil(t, p.Next)
	assert.Equal(t, 3, *p.Next)
}

func TestNewPage_Last(t *testing.T) {
	p := response.NewPage([]string{"a"}, 45, 3, 20)

	require.NotNil(t, p.Previous)
	assert.Equal(t, 2, *p.Previous)
	assert.Nil(t, p.Next)
}

func TestNewPage_SinglePage(t *testing.T) {
	p := response.NewPage([]string{"a"}, 5, 1, 20)

	assert.Nil(t, p.Previous)
	assert.Nil(t, p.Next)
}

func TestNewPage_SerializesNullsAndResults(t *testing.T) {
	w := httptest.NewRecorder()
	response.JSON(w, response.NewPage([]int{1, 2}, 2, 1, 20))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(2), body["count"])
	assert.Nil(t, body["next"])
	assert.Nil(t, body["previous"])
	assert.Len(t, body["results"], 2)
}

func TestError(t *testing.T) {
	w := httptest.NewRecorder()
	response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid params", map[string][]string{
		"name": {"name is required"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	errObj := body["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_ERROR", errObj["code"])
	assert.Equal(t, "Invalid params", errObj["message"])
	assert.NotNil(t, errObj["details"])
}

func TestError_NoDetails(t *testing.T) {
	w := httptest.NewRecorder()
	response.Error(w, http.StatusNotFound, "JOB_NOT_FOUND", "Not found", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	errObj := body["error"].(map[string]any)
	assert.Equal(t, "JOB_NOT_FOUND", errObj["code"])
	_, hasDetails := errObj["details"]
	assert.False(t, hasDetails)
}
