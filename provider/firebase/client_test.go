package firebase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goliatone/go-authscreen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	Path string
	Key  string
	Body map[string]any
}

func newTestServer(t *testing.T, handler func(method string, body map[string]any) (int, any)) (*Client, *[]recordedCall) {
	t.Helper()

	calls := &[]recordedCall{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		method := r.URL.Path[len("/v1/"):]
		*calls = append(*calls, recordedCall{
			Path: method,
			Key:  r.URL.Query().Get("key"),
			Body: body,
		})

		status, payload := handler(method, body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(payload)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		APIKey:    "test-key",
		ProjectID: "demo-project",
		Endpoint:  srv.URL + "/v1/",
	})
	require.NoError(t, err)

	return client, calls
}

func apiError(message string) map[string]any {
	return map[string]any{
		"error": map[string]any{
			"code":    400,
			"message": message,
		},
	}
}

func TestNewClient_RequiresKeyAndProject(t *testing.T) {
	_, err := NewClient(Config{ProjectID: "p"})
	assert.Error(t, err)

	_, err = NewClient(Config{APIKey: "k"})
	assert.Error(t, err)
}

func TestClient_Verify(t *testing.T) {
	client, calls := newTestServer(t, func(method string, body map[string]any) (int, any) {
		return http.StatusOK, map[string]any{
			"localId":     "uid-1",
			"email":       body["email"],
			"displayName": "Jane",
			"idToken":     "id-token",
		}
	})

	account, err := client.Verify(context.Background(), "jane@example.com", "secret1")
	require.NoError(t, err)

	assert.Equal(t, "uid-1", account.UID)
	assert.Equal(t, "jane@example.com", account.Email)
	assert.Equal(t, "Jane", account.DisplayName)
	assert.Equal(t, "id-token", account.Token)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, methodSignIn, call.Path)
	assert.Equal(t, "test-key", call.Key)
	assert.Equal(t, "jane@example.com", call.Body["email"])
	assert.Equal(t, "secret1", call.Body["password"])
	assert.Equal(t, true, call.Body["returnSecureToken"])
}

func TestClient_Verify_InvalidCredential(t *testing.T) {
	client, _ := newTestServer(t, func(string, map[string]any) (int, any) {
		return http.StatusBadRequest, apiError("INVALID_LOGIN_CREDENTIALS")
	})

	account, err := client.Verify(context.Background(), "jane@example.com", "wrong")
	require.Error(t, err)
	assert.Nil(t, account)
	assert.Equal(t, "Firebase: Error (auth/invalid-credential).", err.Error())

	var fbErr *Error
	require.ErrorAs(t, err, &fbErr)
	assert.Equal(t, http.StatusBadRequest, fbErr.Status)
}

func TestClient_CreateAccount_WeakPassword(t *testing.T) {
	client, _ := newTestServer(t, func(string, map[string]any) (int, any) {
		return http.StatusBadRequest, apiError("WEAK_PASSWORD : Password should be at least 6 characters")
	})

	_, err := client.CreateAccount(context.Background(), "jane@example.com", "abc")
	require.Error(t, err)
	assert.Equal(t, "Firebase: Password should be at least 6 characters (auth/weak-password).", err.Error())
}

func TestClient_CreateAccount_EmailExists(t *testing.T) {
	client, calls := newTestServer(t, func(string, map[string]any) (int, any) {
		return http.StatusBadRequest, apiError("EMAIL_EXISTS")
	})

	_, err := client.CreateAccount(context.Background(), "jane@example.com", "secret1")
	require.Error(t, err)
	assert.Equal(t, "Firebase: Error (auth/email-already-in-use).", err.Error())
	assert.Equal(t, methodSignUp, (*calls)[0].Path)
}

func TestClient_SetDisplayName(t *testing.T) {
	client, calls := newTestServer(t, func(string, map[string]any) (int, any) {
		return http.StatusOK, map[string]any{
			"localId":     "uid-1",
			"displayName": "Jane Doe",
			"idToken":     "refreshed-token",
		}
	})

	account := &authscreen.Account{UID: "uid-1", Email: "jane@example.com", Token: "id-token"}
	require.NoError(t, client.SetDisplayName(context.Background(), account, "Jane Doe"))

	assert.Equal(t, "Jane Doe", account.DisplayName)
	assert.Equal(t, "refreshed-token", account.Token)

	call := (*calls)[0]
	assert.Equal(t, methodUpdate, call.Path)
	assert.Equal(t, "id-token", call.Body["idToken"])
	assert.Equal(t, "Jane Doe", call.Body["displayName"])
}

func TestClient_SetDisplayName_RequiresToken(t *testing.T) {
	client, calls := newTestServer(t, func(string, map[string]any) (int, any) {
		return http.StatusOK, map[string]any{}
	})

	err := client.SetDisplayName(context.Background(), &authscreen.Account{UID: "uid-1"}, "Jane")
	require.Error(t, err)
	assert.Equal(t, "Firebase: Error (auth/invalid-user-token).", err.Error())
	assert.Empty(t, *calls)
}

func TestClient_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	client, err := NewClient(Config{APIKey: "k", ProjectID: "p", Endpoint: endpoint})
	require.NoError(t, err)

	_, err = client.Verify(context.Background(), "jane@example.com", "secret1")
	require.Error(t, err)
	assert.Equal(t, "Firebase: Error (auth/network-request-failed).", err.Error())
}

func TestClient_UnexpectedErrorBody(t *testing.T) {
	client, _ := newTestServer(t, func(string, map[string]any) (int, any) {
		return http.StatusInternalServerError, map[string]any{"oops": true}
	})

	_, err := client.Verify(context.Background(), "jane@example.com", "secret1")
	require.Error(t, err)
	assert.Equal(t, "Firebase: Error (auth/internal-error).", err.Error())
}

func TestNewServerError(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"EMAIL_NOT_FOUND", "Firebase: Error (auth/user-not-found)."},
		{"INVALID_PASSWORD", "Firebase: Error (auth/wrong-password)."},
		{"USER_DISABLED", "Firebase: Error (auth/user-disabled)."},
		{"TOO_MANY_ATTEMPTS_TRY_LATER : Access to this account has been temporarily disabled", "Firebase: Access to this account has been temporarily disabled (auth/too-many-requests)."},
		{"SOMETHING_NEW", "Firebase: Error (auth/something-new)."},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, newServerError(http.StatusBadRequest, tt.message).Error())
		})
	}
}
