package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	models "github.com/phillip/lifedrop-go/models"
)

const volunteersNS = "lifedrop.volunteer_applications"

func TestApplyVolunteer(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	body := map[string]string{"phone": "+8801700000000", "motivation": "I drive an ambulance."}

	mt.Run("submits an application", func(mt *mtest.T) {
		cfg := newTestConfig(mt)
		mt.AddMockResponses(countResponse(volunteersNS, 0), mtest.CreateSuccessResponse())

		w := serve(http.MethodPost, "/volunteer-applications", ApplyVolunteer(cfg), asha, "/volunteer-applications", body)
		require.Equal(mt, http.StatusCreated, w.Code, w.Body.String())

		var got models.VolunteerApplication
		decode(mt.T, w, &got)
		assert.Equal(mt, models.ApplicationPending, got.Status)
		assert.Equal(mt, asha.Email, got.Email)
		assert.Equal(mt, "O+", got.BloodGroup)
	})

	mt.Run("one pending application at a time", func(mt *mtest.T) {
		cfg := newTestConfig(mt)
		mt.AddMockResponses(countResponse(volunteersNS, 1))

		w := serve(http.MethodPost, "/volunteer-applications", ApplyVolunteer(cfg), asha, "/volunteer-applications", body)
		assert.Equal(mt, http.StatusConflict, w.Code)
	})

	mt.Run("concurrent submission hits the pending index", func(mt *mtest.T) {
		cfg := newTestConfig(mt)
		mt.AddMockResponses(
			countResponse(volunteersNS, 0),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key error"}),
		)

		w := serve(http.MethodPost, "/volunteer-applications", ApplyVolunteer(cfg), asha, "/volunteer-applications", body)
		assert.Equal(mt, http.StatusConflict, w.Code, w.Body.String())
	})
}

func TestReviewVolunteerApplication(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	route := "/volunteer-applications/:id/status"

	application := func() models.VolunteerApplication {
		now := time.Now().Truncate(time.Millisecond)
		return models.VolunteerApplication{
			ID:        primitive.NewObjectID(),
			Email:     asha.Email,
			Name:      asha.Name,
			Status:    models.ApplicationPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	mt.Run("accepting promotes and informs the applicant", func(mt *mtest.T) {
		cfg := newTestConfig(mt)
		mailer := &fakeMailer{}
		cfg.Mailer = mailer
		app := application()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, volunteersNS, mtest.FirstBatch, toDoc(mt.T, app)),
			updated(1),
			updated(1),
			mtest.CreateSuccessResponse(),
		)

		w := serve(http.MethodPatch, route, ReviewVolunteerApplication(cfg), ada,
			"/volunteer-applications/"+app.ID.Hex()+"/status", map[string]string{"status": models.ApplicationAccepted})
		require.Equal(mt, http.StatusOK, w.Code, w.Body.String())
		require.Len(mt, mailer.sent, 1)
		assert.Equal(mt, asha.Email, mailer.sent[0].to)
		assert.Contains(mt, mailer.sent[0].subject, "accepted")
	})

	mt.Run("failed promotion leaves the application pending", func(mt *mtest.T) {
		cfg := newTestConfig(mt)
		app := application()
		path := "/volunteer-applications/" + app.ID.Hex() + "/status"
		accept := map[string]string{"status": models.ApplicationAccepted}
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, volunteersNS, mtest.FirstBatch, toDoc(mt.T, app)),
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Name: "BadValue", Message: "users unavailable"}),
		)

		w := serve(http.MethodPatch, route, ReviewVolunteerApplication(cfg), ada, path, accept)
		require.Equal(mt, http.StatusInternalServerError, w.Code, w.Body.String())
		for _, evt := range mt.GetAllStartedEvents() {
			if evt.CommandName == "update" {
				assert.Equal(mt, "users", evt.Command.Lookup("update").StringValue())
			}
		}

		mt.ClearEvents()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, volunteersNS, mtest.FirstBatch, toDoc(mt.T, app)),
			updated(1),
			updated(1),
			mtest.CreateSuccessResponse(),
		)
		w = serve(http.MethodPatch, route, ReviewVolunteerApplication(cfg), ada, path, accept)
		assert.Equal(mt, http.StatusOK, w.Code, w.Body.String())
	})

	mt.Run("lost race reverts the promotion", func(mt *mtest.T) {
		cfg := newTestConfig(mt)
		app := application()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, volunteersNS, mtest.FirstBatch, toDoc(mt.T, app)),
			updated(1),
			updated(0),
			updated(1),
		)

		w := serve(http.MethodPatch, route, ReviewVolunteerApplication(cfg), ada,
			"/volunteer-applications/"+app.ID.Hex()+"/status", map[string]string{"status": models.ApplicationAccepted})
		require.Equal(mt, http.StatusConflict, w.Code, w.Body.String())

		var updates []string
		for _, evt := range mt.GetAllStartedEvents() {
			if evt.CommandName == "update" {
				updates = append(updates, evt.Command.Lookup("update").StringValue())
			}
		}
		assert.Equal(mt, []string{"users", "volunteer_applications", "users"}, updates)
	})

	mt.Run("reviewed application is not touched", func(mt *mtest.T) {
		cfg := newTestConfig(mt)
		app := application()
		app.Status = models.ApplicationRejected
		mt.AddMockResponses(mtest.CreateCursorResponse(0, volunteersNS, mtest.FirstBatch, toDoc(mt.T, app)))

		w := serve(http.MethodPatch, route, ReviewVolunteerApplication(cfg), ada,
			"/volunteer-applications/"+app.ID.Hex()+"/status", map[string]string{"status": models.ApplicationAccepted})
		assert.Equal(mt, http.StatusConflict, w.Code)
	})

	mt.Run("already reviewed", func(mt *mtest.T) {
		cfg := newTestConfig(mt)
		app := application()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, volunteersNS, mtest.FirstBatch, toDoc(mt.T, app)),
			updated(0),
		)

		w := serve(http.MethodPatch, route, ReviewVolunteerApplication(cfg), ada,
			"/volunteer-applications/"+app.ID.Hex()+"/status", map[string]string{"status": models.ApplicationRejected})
		assert.Equal(mt, http.StatusConflict, w.Code)
	})

	mt.Run("only accepted or rejected", func(mt *mtest.T) {
		cfg := newTestConfig(mt)
		w := serve(http.MethodPatch, route, ReviewVolunteerApplication(cfg), ada,
			"/volunteer-applications/"+primitive.NewObjectID().Hex()+"/status", map[string]string{"status": "pending"})
		assert.Equal(mt, http.StatusBadRequest, w.Code)
	})
}

func TestListVolunteerApplications(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	route := "/volunteer-applications"

	mt.Run("pages pending applications", func(mt *mtest.T) {
		cfg := newTestConfig(mt)
		now := time.Now().Truncate(time.Millisecond)
		app := models.VolunteerApplication{
			ID: primitive.NewObjectID(), Email: asha.Email, Name: asha.Name,
			Status: models.ApplicationPending, CreatedAt: now, UpdatedAt: now,
		}
		mt.AddMockResponses(
			countResponse(volunteersNS, 1),
			mtest.CreateCursorResponse(0, volunteersNS, mtest.FirstBatch, toDoc(mt.T, app)),
		)

		w := serve(http.MethodGet, route, ListVolunteerApplications(cfg), ada, route+"?status=pending", nil)
		require.Equal(mt, http.StatusOK, w.Code, w.Body.String())

		var page models.Page[models.VolunteerApplication]
		decode(mt.T, w, &page)
		assert.Equal(mt, int64(1), page.Total)
		require.Len(mt, page.Items, 1)
		assert.Equal(mt, asha.Email, page.Items[0].Email)
	})

	mt.Run("unknown status", func(mt *mtest.T) {
		cfg := newTestConfig(mt)
		w := serve(http.MethodGet, route, ListVolunteerApplications(cfg), ada, route+"?status=maybe", nil)
		assert.Equal(mt, http.StatusBadRequest, w.Code)
	})
}
