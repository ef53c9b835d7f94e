package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dom/cyprine-heroes/internal/domain"
)

// AssertStatusCode verifies the HTTP response status code
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	assert.Equal(t, expected, resp.StatusCode, "unexpected status code")
}

// AssertJSONResponse decodes JSON response into v and verifies success
func AssertJSONResponse(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	err = json.Unmarshal(body, v)
	require.NoError(t, err, "failed to unmarshal response: %s", string(body))
}

// AssertErrorResponse verifies the status and the JSON detail message
func AssertErrorResponse(t *testing.T, resp *http.Response, expectedStatus int, expectedDetail string) {
	t.Helper()

	assert.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code")

	var body struct {
		Detail string `json:"detail"`
	}
	AssertJSONResponse(t, resp, &body)
	assert.Contains(t, body.Detail, expectedDetail, "error detail mismatch")
}

// AssertSameHero compares the user-editable fields of two heroes.
func AssertSameHero(t *testing.T, expected, actual domain.Hero) {
	t.Helper()
	assert.Equal(t, expected.Firstname, actual.Firstname, "firstname")
	assert.Equal(t, expected.Lastname, actual.Lastname, "lastname")
	assert.Equal(t, expected.Nickname, actual.Nickname, "nickname")
	assert.Equal(t, expected.Description, actual.Description, "description")
	assert.Equal(t, len(expected.Skills), len(actual.Skills), "skills")
	for name, rating := range expected.Skills {
		assert.Equal(t, rating, actual.Skills[name], "skill %s", name)
	}
}

// HeroIDs lists the ids of heroes in order.
func HeroIDs(heroes []domain.Hero) []string {
	ids := make([]string, len(heroes))
	for i, h := range heroes {
		ids[i] = h.ID
	}
	return ids
}
