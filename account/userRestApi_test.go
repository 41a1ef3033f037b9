package account_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"signoff/account"
	"signoff/authority"
	"signoff/bizerror"
	"signoff/session"
	"signoff/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/patrickmn/go-cache"
)

var _ = Describe("UserRestApi", func() {
	var (
		router *gin.Engine
	)
	BeforeEach(func() {
		router = gin.Default()
		router.Use(bizerror.ErrorHandling())
		account.RegisterUsersHandler(router)
	})

	Describe("SimpleAuthFilter", func() {
		var (
			router *gin.Engine
		)
		BeforeEach(func() {
			router = gin.Default()
			router.Use(bizerror.ErrorHandling())
			router.GET("/me", session.SimpleAuthFilter(), func(c *gin.Context) {
				c.JSON(http.StatusOK, session.ExtractSessionFromGinContext(c))
			})
		})
		It("should success when token is valid", func() {
			token := uuid.New().String()
			session.TokenCache.Set(token, &session.Session{Token: token,
				Identity: session.Identity{Name: "vic", ID: 1},
				Role:     authority.RoleViewer, Perms: authority.PermissionsOf(authority.RoleViewer)},
				cache.DefaultExpiration)

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			req.AddCookie(&http.Cookie{Name: session.KeySecToken, Value: token})
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusOK))
			Expect(body).To(MatchJSON(`{"identity":{"id":"1","name":"vic", "nickname":""}, "token":"` + token +
				`", "role":"viewer", "perms":["content.view","comments.view"]}`))
		})

		It("should failed when token is missing", func() {
			token := uuid.New().String()
			session.TokenCache.Set(token, &session.Session{Token: token, Identity: session.Identity{Name: "vic", ID: 1}}, cache.DefaultExpiration)

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusUnauthorized))
			Expect(body).To(MatchJSON(`{"code":"common.unauthenticated","message":"unauthenticated", "data": null}`))
		})

		It("should failed when token not match", func() {
			token := uuid.New().String()
			session.TokenCache.Set(token, &session.Session{Token: token, Identity: session.Identity{Name: "vic", ID: 1}}, cache.DefaultExpiration)

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			req.AddCookie(&http.Cookie{Name: session.KeySecToken, Value: "bad token"})
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusUnauthorized))
			Expect(body).To(MatchJSON(`{"code":"common.unauthenticated","message":"unauthenticated", "data": null}`))
		})
	})

	Describe("HandleQueryUsers", func() {
		It("should return 200 when query successful", func() {
			account.QueryUsersFunc = func(s *session.Session) ([]account.UserInfo, error) {
				return []account.UserInfo{{ID: 123, Name: "test", Role: authority.RoleEditor}}, nil
			}

			req := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusOK))
			Expect(body).To(MatchJSON(`[{"id":"123","name":"test","nickname":"","role":"editor"}]`))
		})

		It("should return 403 when the view permission is missing", func() {
			account.QueryUsersFunc = func(s *session.Session) ([]account.UserInfo, error) {
				return nil, &bizerror.ErrMissingPermission{Action: "users.query",
					Required: []string{"users.view"}, Mode: "all"}
			}

			req := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusForbidden))
			Expect(body).To(MatchJSON(`{"code":"security.forbidden","message":"access forbidden",
				"data":{"action":"users.query","required":["users.view"],"mode":"all"}}`))
		})
	})

	Describe("HandleCreateUser", func() {
		It("should return 201 when create successful", func() {
			var payload *account.UserCreation
			account.CreateUserFunc = func(creation *account.UserCreation, s *session.Session) (*account.UserInfo, error) {
				payload = creation
				return &account.UserInfo{ID: 123, Name: creation.Name, Nickname: creation.Nickname, Role: creation.Role}, nil
			}

			req := httptest.NewRequest(http.MethodPost, "/v1/users", bytes.NewReader([]byte(
				`{"name":"nora","secret":"123456","nickname":"Nora","role":"editor"}`)))
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusCreated))
			Expect(body).To(MatchJSON(`{"id":"123","name":"nora","nickname":"Nora","role":"editor"}`))
			Expect(*payload).To(Equal(account.UserCreation{Name: "nora", Secret: "123456",
				Nickname: "Nora", Role: authority.RoleEditor}))
		})

		It("should return 400 when validation failed", func() {
			var payload *account.UserCreation
			account.CreateUserFunc = func(creation *account.UserCreation, s *session.Session) (*account.UserInfo, error) {
				payload = creation
				return nil, nil
			}

			req := httptest.NewRequest(http.MethodPost, "/v1/users", bytes.NewReader([]byte(
				`{"name":"nora","secret":"123","role":"editor"}`)))
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusBadRequest))
			Expect(body).To(MatchJSON(`{
				"code":"common.bad_param",
				"message":"Key: 'UserCreation.Secret' Error:Field validation for 'Secret' failed on the 'gte' tag",
				"data":null}`))
			Expect(payload).To(BeNil())
		})

		It("should return 409 when name already exists", func() {
			account.CreateUserFunc = func(creation *account.UserCreation, s *session.Session) (*account.UserInfo, error) {
				return nil, bizerror.ErrUserNameExisted
			}

			req := httptest.NewRequest(http.MethodPost, "/v1/users", bytes.NewReader([]byte(
				`{"name":"nora","secret":"123456","role":"editor"}`)))
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusConflict))
			Expect(body).To(MatchJSON(`{"code":"account.name_existed","message":"user name already exists","data":null}`))
		})
	})

	Describe("HandleUpdateUserRole", func() {
		It("should return 200 when update successful", func() {
			var updatedId types.ID
			var payload *account.RoleUpdating
			account.UpdateUserRoleFunc = func(uid types.ID, updating *account.RoleUpdating, s *session.Session) error {
				updatedId = uid
				payload = updating
				return nil
			}

			req := httptest.NewRequest(http.MethodPut, "/v1/users/123/role", bytes.NewReader([]byte(
				`{"role":"consultant"}`)))
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusOK))
			Expect(body).To(BeZero())
			Expect(updatedId).To(Equal(types.ID(123)))
			Expect(*payload).To(Equal(account.RoleUpdating{Role: authority.RoleConsultant}))
		})

		It("should return 400 when id is invalid", func() {
			req := httptest.NewRequest(http.MethodPut, "/v1/users/bad/role", bytes.NewReader([]byte(
				`{"role":"consultant"}`)))
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusBadRequest))
			Expect(body).To(MatchJSON(`{"code":"common.bad_param","message":"invalid id 'bad'","data":null}`))
		})

		It("should return 400 when role is unknown", func() {
			account.UpdateUserRoleFunc = func(uid types.ID, updating *account.RoleUpdating, s *session.Session) error {
				return bizerror.ErrInvalidRole
			}

			req := httptest.NewRequest(http.MethodPut, "/v1/users/123/role", bytes.NewReader([]byte(
				`{"role":"superuser"}`)))
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusBadRequest))
			Expect(body).To(MatchJSON(`{"code":"security.invalid_role","message":"invalid role","data":null}`))
		})
	})

	Describe("HandleUpdateBasicAuth", func() {
		It("should return 200 when update successful", func() {
			var payload *account.BasicAuthUpdating
			account.UpdateBasicAuthSecretFunc = func(u *account.BasicAuthUpdating, s *session.Session) error {
				payload = u
				return nil
			}

			req := httptest.NewRequest(http.MethodPut, "/v1/session-users/basic-auths", bytes.NewReader([]byte(
				`{"originalSecret":"123456","newSecret":"654321"}`)))
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusOK))
			Expect(body).To(BeZero())

			Expect(*payload).To(Equal(account.BasicAuthUpdating{OriginalSecret: "123456", NewSecret: "654321"}))
		})

		It("should return 400 when validation failed", func() {
			var payload *account.BasicAuthUpdating
			account.UpdateBasicAuthSecretFunc = func(u *account.BasicAuthUpdating, s *session.Session) error {
				payload = u
				return nil
			}

			req := httptest.NewRequest(http.MethodPut, "/v1/session-users/basic-auths", bytes.NewReader([]byte(
				`{"originalSecret":"123","newSecret":"321"}`)))
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusBadRequest))
			Expect(body).To(MatchJSON(`{
				"code":"common.bad_param",
				"message":"Key: 'BasicAuthUpdating.NewSecret' Error:Field validation for 'NewSecret' failed on the 'gte' tag",
				"data":null}`))
			Expect(payload).To(BeNil())
		})
	})
})
