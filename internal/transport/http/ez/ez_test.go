package ez

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-gin-rbac-posts/internal/core/auth"
	"go-gin-rbac-posts/internal/domain"
	"go-gin-rbac-posts/internal/rbac"
	mdw "go-gin-rbac-posts/internal/transport/http/middleware"
	resp "go-gin-rbac-posts/internal/transport/http/response"
)

type signupReq struct {
	Name    string `json:"name" binding:"required,min=2"`
	Phone   string `json:"phone" binding:"required,egphone"`
	Pass    string `json:"password" binding:"required"`
	Confirm string `json:"password_confirmation" binding:"required,eqfield=Pass"`
}

type result struct {
	Status int
	Env    struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
}

func call(t *testing.T, r *gin.Engine, method, path, body string) result {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	var out result
	out.Status = w.Code
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out.Env), w.Body.String())
	return out
}

// withIdentity 模拟认证中间件，grants 为该主体拥有的权限
func withIdentity(grants ...rbac.Permission) gin.HandlerFunc {
	perms := make([]domain.Permission, 0, len(grants))
	for _, p := range grants {
		perms = append(perms, domain.Permission{Name: p.String()})
	}
	u := &domain.User{Account: domain.Account{ID: 1}, Roles: []domain.Role{{Name: "Tester", Permissions: perms}}}
	return func(c *gin.Context) {
		c.Set(mdw.KeyIdentity, rbac.NewIdentity(domain.KindAdmin, &auth.Claims{UID: "1"}, u))
	}
}

func TestRegisterBindsAndValidates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	e := New(r.Group(""))
	Register(e, Action[signupReq, gin.H]{
		Method:  "post",
		Path:    "/signup",
		Binder:  BindJSON,
		Status:  http.StatusCreated,
		Message: "created",
		Handler: func(_ *gin.Context, _ *rbac.Identity, in *signupReq) (gin.H, error) {
			return gin.H{"name": in.Name}, nil
		},
	})

	res := call(t, r, http.MethodPost, "/signup", `{"name":"Al","phone":"01012345678","password":"x","password_confirmation":"x"}`)
	assert.Equal(t, http.StatusCreated, res.Status)
	assert.Equal(t, resp.CodeOK, res.Env.Code)
	assert.JSONEq(t, `{"name":"Al"}`, string(res.Env.Data))

	res = call(t, r, http.MethodPost, "/signup", `{"name":"A","phone":"01312345678","password_confirmation":"y"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, res.Status)
	assert.Equal(t, resp.CodeFail, res.Env.Code)
	assert.Equal(t, resp.MsgValidation, res.Env.Message)
	var fields map[string][]string
	require.NoError(t, json.Unmarshal(res.Env.Data, &fields))
	assert.Equal(t, map[string][]string{
		"name":                  {"The name field must be at least 2 characters."},
		"phone":                 {"The phone field format is invalid."},
		"password":              {"The password field is required."},
		"password_confirmation": {"The password field confirmation does not match."},
	}, fields)

	res = call(t, r, http.MethodPost, "/signup", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, res.Status)
}

func TestRegisterChecksPermissions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ran := false
	mount := func(mw ...gin.HandlerFunc) *gin.Engine {
		r := gin.New()
		Register(New(r.Group("", mw...)), Action[struct{}, any]{
			Method:      http.MethodGet,
			Path:        "/posts",
			Permissions: []rbac.Permission{rbac.ViewPosts, rbac.AddPost},
			Handler: func(*gin.Context, *rbac.Identity, *struct{}) (any, error) {
				ran = true
				return nil, nil
			},
		})
		return r
	}

	res := call(t, mount(), http.MethodGet, "/posts", "")
	assert.Equal(t, http.StatusUnauthorized, res.Status)

	res = call(t, mount(withIdentity(rbac.EditPost)), http.MethodGet, "/posts", "")
	assert.Equal(t, http.StatusForbidden, res.Status)
	assert.Equal(t, resp.MsgForbidden, res.Env.Message)
	assert.False(t, ran)

	res = call(t, mount(withIdentity(rbac.AddPost)), http.MethodGet, "/posts", "")
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "null", string(res.Env.Data))
	assert.True(t, ran)
}

func TestRegisterPanicsOnUnknownPermission(t *testing.T) {
	r := gin.New()
	assert.Panics(t, func() {
		Register(New(r.Group("")), Action[struct{}, any]{
			Method:      http.MethodGet,
			Path:        "/x",
			Permissions: []rbac.Permission{"Fly"},
			Handler:     func(*gin.Context, *rbac.Identity, *struct{}) (any, error) { return nil, nil },
		})
	})
}

func TestWriteError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	verr := domain.NewValidationError()
	verr.Add("title.en", "The title has already been taken.")
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{verr, http.StatusUnprocessableEntity, resp.MsgValidation},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, resp.MsgUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden, resp.MsgForbidden},
		{domain.ErrNotFound, http.StatusNotFound, resp.MsgNotFound},
		{errors.New("boom"), http.StatusInternalServerError, resp.Failed("boom")},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		WriteError(c, tc.err)
		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		assert.Contains(t, w.Body.String(), `"message":"`+tc.msg+`"`)
	}
}

func TestParamID(t *testing.T) {
	for raw, want := range map[string]uint{"12": 12, "0": 0, "-1": 0, "abc": 0} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Params = gin.Params{{Key: "id", Value: raw}}
		id, err := ParamID(c, "id")
		if want == 0 {
			assert.ErrorIs(t, err, domain.ErrNotFound, raw)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}
}
