package tests

import (
	"net/http"
	"testing"

	"sekolahku/core/user"
)

func Test_userLogin(t *testing.T) {
	wantAuthFailed := marchallObj(t, httpErr{Error: "authentication failed"})

	tests := []httpTest{
		{name: "student ok", body: []byte(`{"username":"siswa123","password":"siswa123","role":"student"}`), wantCode: http.StatusOK},
		{name: "parent ok", body: []byte(`{"username":"orangtua123","password":"orangtua123","role":"parent"}`), wantCode: http.StatusOK},
		{name: "teacher ok", body: []byte(`{"username":"guru123","password":"guru123","role":"teacher"}`), wantCode: http.StatusOK},
		{name: "admin ok", body: []byte(`{"username":"admin123","password":"admin123","role":"admin"}`), wantCode: http.StatusOK},
		{name: "login by email", body: []byte(`{"username":"admin@sekolahku.id","password":"admin123","role":"admin"}`), wantCode: http.StatusOK},
		{name: "unknown account", body: []byte(`{"username":"nobody","password":"nope","role":"admin"}`), wantCode: http.StatusBadRequest, wantData: wantAuthFailed},
		{name: "wrong password", body: []byte(`{"username":"siswa123","password":"nope","role":"student"}`), wantCode: http.StatusBadRequest, wantData: wantAuthFailed},
		{name: "role mismatch", body: []byte(`{"username":"siswa123","password":"siswa123","role":"admin"}`), wantCode: http.StatusBadRequest, wantData: wantAuthFailed},
		{name: "unknown role rejected", body: []byte(`{"username":"siswa123","password":"siswa123","role":"principal"}`), wantCode: http.StatusBadRequest},
		{name: "missing fields", body: []byte(`{"username":"siswa123"}`), wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)

			checkCodeAndData(t, tt, rec)
			if tt.wantCode == http.StatusOK {
				var resp struct {
					Token string `json:"token"`
				}
				unmarchallAs(t, rec, &resp)
				if resp.Token == "" {
					t.Error("login succeeded without a token")
				}
			}
		})
	}
}

func Test_userRefreshToken(t *testing.T) {
	admin := getUser(t, "admin123")

	t.Run("ok", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", getToken(t, admin))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, want 200; body: %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			Token string `json:"token"`
		}
		unmarchallAs(t, rec, &resp)
		if resp.Token == "" {
			t.Error("refresh succeeded without a token")
		}
	})

	t.Run("no token", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}
		req, rec := newRequest(http.MethodPost, "/v1/users/token-refresh")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func Test_userQuery(t *testing.T) {
	adminToken := getToken(t, getUser(t, "admin123"))
	parentToken := getToken(t, getUser(t, "orangtua123"))

	t.Run("admins only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users", parentToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})}, rec)
	})

	t.Run("all", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users", adminToken)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d; body: %s", rec.Code, rec.Body.String())
		}
		var users []user.User
		unmarchallAs(t, rec, &users)
		if len(users) < 4 {
			t.Errorf("got %d users, want at least the 4 seeded accounts", len(users))
		}
	})

	t.Run("filtered", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users?role=parent", adminToken)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d; body: %s", rec.Code, rec.Body.String())
		}
		var users []user.User
		unmarchallAs(t, rec, &users)
		if len(users) != 1 || users[0].Username != "orangtua123" {
			t.Errorf("got %v, want [orangtua123]", users)
		}
	})

	t.Run("ordered", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users?ordering=-username", adminToken)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d; body: %s", rec.Code, rec.Body.String())
		}
		var users []user.User
		unmarchallAs(t, rec, &users)
		for i := 1; i < len(users); i++ {
			if users[i-1].Username < users[i].Username {
				t.Fatalf("users not in descending username order: %v", users)
			}
		}
	})
}

func Test_userRetrieveUpdate(t *testing.T) {
	admin := getUser(t, "admin123")
	parent := getUser(t, "orangtua123")
	adminToken := getToken(t, admin)
	parentToken := getToken(t, parent)

	t.Run("own account", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users/"+parent.ID, parentToken)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d; body: %s", rec.Code, rec.Body.String())
		}
		var usr user.User
		unmarchallAs(t, rec, &usr)
		if usr.ID != parent.ID {
			t.Errorf("got %s, want %s", usr.ID, parent.ID)
		}
	})

	t.Run("someone else's account is invisible", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users/"+admin.ID, parentToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})}, rec)
	})

	t.Run("admin sees anyone", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users/"+parent.ID, adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("code = %d; body: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("non-admin cannot escalate", func(t *testing.T) {
		body := []byte(`{"role":"admin"}`)
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+parent.ID, parentToken, body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})}, rec)
	})

	t.Run("own name change", func(t *testing.T) {
		body := []byte(`{"name":"Budi Santoso, S.E."}`)
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+parent.ID, parentToken, body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d; body: %s", rec.Code, rec.Body.String())
		}
		var usr user.User
		unmarchallAs(t, rec, &usr)
		if usr.Name != "Budi Santoso, S.E." {
			t.Errorf("name = %s, want Budi Santoso, S.E.", usr.Name)
		}
	})
}

func Test_userRegister(t *testing.T) {
	adminToken := getToken(t, getUser(t, "admin123"))
	teacherToken := getToken(t, getUser(t, "guru123"))

	t.Run("admins only", func(t *testing.T) {
		body := []byte(`{"name":"X","username":"newguy1","email":"x@test.id","role":"teacher","password":"S3kolah!Baru","password_confirm":"S3kolah!Baru"}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", teacherToken, body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})}, rec)
	})

	t.Run("ok", func(t *testing.T) {
		body := []byte(`{"name":"Rina Kartika, S.Pd","username":"guru456","email":"guru2@sekolahku.id","role":"teacher","password":"S3kolah!Baru","password_confirm":"S3kolah!Baru"}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", adminToken, body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %d; body: %s", rec.Code, rec.Body.String())
		}
		var usr user.User
		unmarchallAs(t, rec, &usr)
		if usr.ID == "" || usr.Role != user.RoleTeacher {
			t.Errorf("unexpected user: %+v", usr)
		}
	})

	t.Run("duplicate username", func(t *testing.T) {
		body := []byte(`{"name":"Clone","username":"guru456","email":"clone@sekolahku.id","role":"teacher","password":"S3kolah!Baru","password_confirm":"S3kolah!Baru"}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", adminToken, body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %d, want 400; body: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("password mismatch", func(t *testing.T) {
		body := []byte(`{"name":"X","username":"newguy2","email":"x2@test.id","role":"teacher","password":"secret1","password_confirm":"different"}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", adminToken, body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %d, want 400; body: %s", rec.Code, rec.Body.String())
		}
	})
}

func Test_userRoles(t *testing.T) {
	tt := httpTest{
		wantCode: http.StatusOK,
		wantData: marchallObj(t, user.AllRoles),
	}
	req, rec := newAuthRequest(http.MethodGet, "/v1/users/roles", getToken(t, getUser(t, "admin123")))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)
}
