package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	models "github.com/phillip/lifedrop-go/models"
)

const usersNS = "lifedrop.users"

func TestRegister(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	newcomer := &models.User{Email: "new@example.com"}
	body := map[string]string{"name": "Nila", "blood_group": "B+", "district": "Sylhet", "upazila": "Beanibazar"}

	mt.Run("creates an active donor", func(mt *mtest.T) {
		cfg := newTestConfig(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		w := serve(http.MethodPost, "/users", Register(cfg), newcomer, "/users", body)
		require.Equal(mt, http.StatusCreated, w.Code, w.Body.String())

		var got models.User
		decode(mt.T, w, &got)
		assert.Equal(mt, "new@example.com", got.Email)
		assert.Equal(mt, models.RoleDonor, got.Role)
		assert.Equal(mt, models.StatusActive, got.Status)
	})

	mt.Run("duplicate email", func(mt *mtest.T) {
		cfg := newTestConfig(mt)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key error"}))

		w := serve(http.MethodPost, "/users", Register(cfg), newcomer, "/users", body)
		assert.Equal(mt, http.StatusConflict, w.Code)
	})

	mt.Run("failed insert discards the uploaded avatar", func(mt *mtest.T) {
		cfg := newTestConfig(mt)
		images := &fakeImages{}
		cfg.Images = images
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key error"}))

		w := serveMultipart(mt.T, "/users", Register(cfg), newcomer, body, "avatar")
		require.Equal(mt, http.StatusConflict, w.Code, w.Body.String())
		assert.Equal(mt, []string{"avatars"}, images.uploads)
		assert.Equal(mt, []string{"https://res.cloudinary.com/demo/image/upload/v1/avatars/img.png"}, images.deleted)
	})

	mt.Run("invalid blood group", func(mt *mtest.T) {
		cfg := newTestConfig(mt)
		bad := map[string]string{"name": "Nila", "blood_group": "K", "district": "Sylhet", "upazila": "Beanibazar"}

		w := serve(http.MethodPost, "/users", Register(cfg), newcomer, "/users", bad)
		assert.Equal(mt, http.StatusBadRequest, w.Code)
	})
}

func TestUpdateUserRole(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	route := "/users/:email/role"

	mt.Run("admin promotes a donor", func(mt *mtest.T) {
		cfg := newTestConfig(mt)
		mt.AddMockResponses(updated(1))

		w := serve(http.MethodPatch, route, UpdateUserRole(cfg), ada, "/users/asha@example.com/role",
			map[string]string{"role": models.RoleVolunteer})
		require.Equal(mt, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(mt, w.Body.String(), `"role":"volunteer"`)
	})

	mt.Run("admins cannot change themselves", func(mt *mtest.T) {
		cfg := newTestConfig(mt)
		w := serve(http.MethodPatch, route, UpdateUserRole(cfg), ada, "/users/ada@example.com/role",
			map[string]string{"role": models.RoleDonor})
		assert.Equal(mt, http.StatusBadRequest, w.Code)
	})

	mt.Run("unknown role", func(mt *mtest.T) {
		cfg := newTestConfig(mt)
		w := serve(http.MethodPatch, route, UpdateUserRole(cfg), ada, "/users/asha@example.com/role",
			map[string]string{"role": "owner"})
		assert.Equal(mt, http.StatusBadRequest, w.Code)
	})

	mt.Run("unknown user", func(mt *mtest.T) {
		cfg := newTestConfig(mt)
		mt.AddMockResponses(updated(0))

		w := serve(http.MethodPatch, route, UpdateUserRole(cfg), ada, "/users/ghost@example.com/role",
			map[string]string{"role": models.RoleAdmin})
		assert.Equal(mt, http.StatusNotFound, w.Code)
	})
}

func TestUpdateUserStatusBlocks(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("block", func(mt *mtest.T) {
		cfg := newTestConfig(mt)
		mt.AddMockResponses(updated(1))

		w := serve(http.MethodPatch, "/users/:email/status", UpdateUserStatus(cfg), ada, "/users/rafi@example.com/status",
			map[string]string{"status": models.StatusBlocked})
		require.Equal(mt, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(mt, w.Body.String(), `"status":"blocked"`)
	})
}

func TestSearchDonors(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("unescaped plus sign", func(mt *mtest.T) {
		cfg := newTestConfig(mt)
		mt.AddMockResponses(
			countResponse(usersNS, 1),
			mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch, toDoc(mt.T, asha)),
		)

		w := serve(http.MethodGet, "/search-donors", SearchDonors(cfg), nil, "/search-donors?blood_group=O+&district=Dhaka", nil)
		require.Equal(mt, http.StatusOK, w.Code, w.Body.String())

		var page models.Page[models.User]
		decode(mt.T, w, &page)
		require.Len(mt, page.Items, 1)
		assert.Equal(mt, asha.Email, page.Items[0].Email)
	})

	mt.Run("invalid group", func(mt *mtest.T) {
		cfg := newTestConfig(mt)
		w := serve(http.MethodGet, "/search-donors", SearchDonors(cfg), nil, "/search-donors?blood_group=Q", nil)
		assert.Equal(mt, http.StatusBadRequest, w.Code)
	})
}

func TestDeleteUser(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	route := "/users/:email"

	mt.Run("admin removes a user", func(mt *mtest.T) {
		cfg := newTestConfig(mt)
		mt.AddMockResponses(updated(1))

		w := serve(http.MethodDelete, route, DeleteUser(cfg), ada, "/users/rafi@example.com", nil)
		assert.Equal(mt, http.StatusOK, w.Code, w.Body.String())
	})

	mt.Run("missing user", func(mt *mtest.T) {
		cfg := newTestConfig(mt)
		mt.AddMockResponses(updated(0))

		w := serve(http.MethodDelete, route, DeleteUser(cfg), ada, "/users/ghost@example.com", nil)
		assert.Equal(mt, http.StatusNotFound, w.Code)
	})

	mt.Run("not yourself", func(mt *mtest.T) {
		cfg := newTestConfig(mt)
		w := serve(http.MethodDelete, route, DeleteUser(cfg), ada, "/users/ada@example.com", nil)
		assert.Equal(mt, http.StatusBadRequest, w.Code)
	})
}
