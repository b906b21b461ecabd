package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/akofa/fixit/models"
)

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)

	body := map[string]interface{}{
		"username": "newcomer",
		"password": "secret123",
		"confirm":  "secret123",
	}
	w, resp := doRequest(t, r, http.MethodPost, "/api/v1/auth/register", "", body)
	require.Equal(t, http.StatusOK, w.Code)

	var reg struct {
		Token string `json:"token"`
		User  struct {
			Username      string `json:"username"`
			CurrentStreak int    `json:"current_streak"`
			StackScore    int    `json:"stack_score"`
		} `json:"user"`
	}
	decodeData(t, resp, &reg)
	require.NotEmpty(t, reg.Token)
	require.Equal(t, "newcomer", reg.User.Username)
	require.Zero(t, reg.User.CurrentStreak)

	// The stored password is hashed, never plaintext.
	var user models.User
	require.NoError(t, db.Where("username = ?", "newcomer").First(&user).Error)
	require.NotEqual(t, "secret123", user.PasswordHash)
	require.NotEmpty(t, user.PasswordHash)

	w, resp = doRequest(t, r, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"username": "newcomer",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, resp, &reg)
	require.NotEmpty(t, reg.Token)

	// The fresh token works against a protected endpoint.
	w, _ = doRequest(t, r, http.MethodGet, "/api/v1/auth/me", reg.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	createUser(t, db, "taken")

	body := map[string]interface{}{"username": "taken", "password": "secret123"}
	w, resp := doRequest(t, r, http.MethodPost, "/api/v1/auth/register", "", body)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, 40901, resp.Code)
}

func TestRegisterRejectsBadUsername(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)

	for _, name := range []string{"x", "has space", "tab\tchar"} {
		body := map[string]interface{}{"username": name, "password": "secret123"}
		w, _ := doRequest(t, r, http.MethodPost, "/api/v1/auth/register", "", body)
		require.Equal(t, http.StatusBadRequest, w.Code, "username %q must be rejected", name)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	createUser(t, db, "cautious")

	w, resp := doRequest(t, r, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"username": "cautious",
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, 40106, resp.Code)
}

func TestPublicUserProfile(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	user, _ := createUser(t, db, "visible")
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"current_streak": 5,
		"stack_score":    612,
	}).Error)

	w, resp := doRequest(t, r, http.MethodGet, fmt.Sprintf("/api/v1/users/%d", user.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var data map[string]interface{}
	decodeData(t, resp, &data)
	require.Equal(t, "visible", data["username"])
	require.EqualValues(t, 5, data["current_streak"])
	require.EqualValues(t, 612, data["stack_score"])
	require.NotContains(t, data, "email", "public profile must not leak email")
	require.NotContains(t, data, "password_hash")
}

func TestUpdateProfileSanitizesBio(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	user, token := createUser(t, db, "writer")

	body := map[string]interface{}{"bio": `hi <img src=x onerror=alert(1)> there`}
	w, _ := doRequest(t, r, http.MethodPatch, "/api/v1/auth/profile", token, body)
	require.Equal(t, http.StatusOK, w.Code)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	require.NotContains(t, reloaded.Bio, "onerror")
	require.Contains(t, reloaded.Bio, "hi")
}

func TestMeRequiresToken(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)

	w, _ := doRequest(t, r, http.MethodGet, "/api/v1/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doRequest(t, r, http.MethodGet, "/api/v1/auth/me", "not-a-jwt", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
