package testinfra

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"

	"signoff/authority"
	"signoff/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// ExecuteRequest runs the request against the engine and drains the response.
func ExecuteRequest(req *http.Request, engine *gin.Engine) (int, string, *http.Response) {
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)
	resp := recorder.Result()
	bodyBytes, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		panic(err)
	}
	return resp.StatusCode, string(bodyBytes), resp
}

// BuildSession builds the session of an authenticated actor holding the given role.
func BuildSession(uid types.ID, role authority.Role) *session.Session {
	return &session.Session{
		Token:    "test_token",
		Identity: session.Identity{ID: uid, Name: "user " + uid.String()},
		Role:     role,
		Perms:    authority.PermissionsOf(role),
		Context:  context.Background(),
	}
}
