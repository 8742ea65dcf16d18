package app_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterhq/roster-backend/internal/app"
	"github.com/rosterhq/roster-backend/internal/common/config"
	"github.com/rosterhq/roster-backend/internal/common/logger"
)

type userJSON struct {
	ID           int64   `json:"id"`
	Username     string  `json:"username"`
	Birthday     *string `json:"birthday"`
	CreationDate string  `json:"creationDate"`
	Status       string  `json:"status"`
}

func startApp(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()

	log, err := logger.New("", "test", "ERROR")
	require.NoError(t, err)

	a, err := app.New(config.Config{
		HTTPPort:        "0",
		RequestTimeout:  5 * time.Second,
		SessionLifetime: time.Hour,
	}, log)
	require.NoError(t, err)

	ts := httptest.NewServer(a.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(a.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return ts, client
}

func postUser(t *testing.T, client *http.Client, baseURL, username, password string) userJSON {
	t.Helper()

	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	require.NoError(t, err)

	resp, err := client.Post(baseURL+"/users", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created userJSON
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	return created
}

func login(t *testing.T, client *http.Client, baseURL, username, password string) *http.Response {
	t.Helper()

	resp, err := client.PostForm(baseURL+"/perform_login", url.Values{
		"username": {username},
		"password": {password},
	})
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

func getJSON(t *testing.T, client *http.Client, url string, out any) int {
	t.Helper()

	resp, err := client.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestRegisterLoginListFlow(t *testing.T) {
	ts, client := startApp(t)

	first := postUser(t, client, ts.URL, "first", "123")
	second := postUser(t, client, ts.URL, "second", "139")

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, "OFFLINE", first.Status)
	assert.Equal(t, "OFFLINE", second.Status)

	resp := login(t, client, ts.URL, "first", "123")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login_success", resp.Header.Get("Location"))

	var users []userJSON
	status := getJSON(t, client, ts.URL+"/users", &users)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, users, 2)
	assert.Equal(t, "first", users[0].Username)
	assert.Equal(t, "ONLINE", users[0].Status)
	assert.Equal(t, "second", users[1].Username)
	assert.Equal(t, "OFFLINE", users[1].Status)
}

func TestUnauthenticatedRequestsAreRejected(t *testing.T) {
	ts, client := startApp(t)

	postUser(t, client, ts.URL, "first", "123")

	for _, path := range []string{"/users", "/users/1", "/current_user"} {
		resp, err := client.Get(ts.URL + path)
		require.NoError(t, err)

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		assert.JSONEq(t, `{"error":"Unauthorized"}`, string(body), path)
	}

	req, err := http.NewRequest(http.MethodPut, ts.URL+"/users/1", bytes.NewReader([]byte(`{"username":"x"}`)))
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginWithBadCredentials(t *testing.T) {
	ts, client := startApp(t)

	postUser(t, client, ts.URL, "first", "123")

	resp := login(t, client, ts.URL, "first", "wrong")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login_error", resp.Header.Get("Location"))

	errResp, err := client.Get(ts.URL + "/login_error")
	require.NoError(t, err)
	body, err := io.ReadAll(errResp.Body)
	errResp.Body.Close()
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"The credentials are incorrect"}`, string(body))

	// No session was bound, so the list stays protected.
	status := getJSON(t, client, ts.URL+"/users", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCurrentUser(t *testing.T) {
	ts, client := startApp(t)

	created := postUser(t, client, ts.URL, "first", "123")
	login(t, client, ts.URL, "first", "123")

	var current struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	status := getJSON(t, client, ts.URL+"/current_user", &current)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, created.ID, current.ID)
	assert.Equal(t, "first", current.Name)
}

func TestGetUnknownUser(t *testing.T) {
	ts, client := startApp(t)

	postUser(t, client, ts.URL, "first", "123")
	login(t, client, ts.URL, "first", "123")

	resp, err := client.Get(ts.URL + "/users/42")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"User with userId 42 was not found"}`, string(body))
}

func TestUpdateProfile(t *testing.T) {
	ts, client := startApp(t)

	created := postUser(t, client, ts.URL, "first", "123")
	other := postUser(t, client, ts.URL, "second", "139")
	login(t, client, ts.URL, "first", "123")

	put := func(id int64, payload string) *http.Response {
		req, err := http.NewRequest(http.MethodPut,
			fmt.Sprintf("%s/users/%d", ts.URL, id),
			bytes.NewReader([]byte(payload)))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		require.NoError(t, err)
		return resp
	}

	// Own profile.
	resp := put(created.ID, `{"username":"renamed","birthday":"1990-06-01T00:00:00Z"}`)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	var user userJSON
	status := getJSON(t, client, fmt.Sprintf("%s/users/%d", ts.URL, created.ID), &user)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "renamed", user.Username)
	require.NotNil(t, user.Birthday)
	assert.Equal(t, "1990-06-01T00:00:00Z", *user.Birthday)

	// Someone else's profile.
	resp = put(other.ID, `{"username":"hijack"}`)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.JSONEq(t, `{"error":"We can only update our own profile"}`, string(body))

	// Unknown id answers 404 before the ownership check.
	resp = put(42, `{"username":"nobody"}`)
	body, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"User with userId 42 was not found"}`, string(body))
}

func TestLogout(t *testing.T) {
	ts, client := startApp(t)

	created := postUser(t, client, ts.URL, "first", "123")
	login(t, client, ts.URL, "first", "123")

	resp, err := client.Post(ts.URL+"/perform_logout", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Session gone: protected routes reject again.
	status := getJSON(t, client, ts.URL+"/users", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	// Back in to observe the stored status.
	login(t, client, ts.URL, "first", "123")

	var user userJSON
	status = getJSON(t, client, fmt.Sprintf("%s/users/%d", ts.URL, created.ID), &user)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ONLINE", user.Status)
}

func TestLogoutSetsUserOffline(t *testing.T) {
	ts, client := startApp(t)

	created := postUser(t, client, ts.URL, "first", "123")
	postUser(t, client, ts.URL, "watcher", "pw")

	login(t, client, ts.URL, "first", "123")

	resp, err := client.Get(ts.URL + "/perform_logout")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// A second client observes the OFFLINE transition.
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	watcher := &http.Client{Jar: jar, CheckRedirect: func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	login(t, watcher, ts.URL, "watcher", "pw")

	var user userJSON
	status := getJSON(t, watcher, fmt.Sprintf("%s/users/%d", ts.URL, created.ID), &user)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OFFLINE", user.Status)
}

func TestDuplicateUsernameOnRegistration(t *testing.T) {
	ts, client := startApp(t)

	postUser(t, client, ts.URL, "first", "123")

	body, err := json.Marshal(map[string]string{"username": "first", "password": "other"})
	require.NoError(t, err)

	resp, err := client.Post(ts.URL+"/users", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.JSONEq(t,
		`{"error":"The username provided is not unique. Therefore, the user could not be created!"}`,
		string(respBody))
}

func TestHealth(t *testing.T) {
	ts, client := startApp(t)

	var out map[string]string
	status := getJSON(t, client, ts.URL+"/health", &out)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", out["status"])
}
