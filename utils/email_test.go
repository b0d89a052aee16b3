package utils

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeptoMailerSend(t *testing.T) {
	var got emailRequest
	var raw string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Zoho-enczapikey k", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		raw = string(body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	m := &ZeptoMailer{APIURL: srv.URL, APIKey: "Zoho-enczapikey k", From: "noreply@lifedrop.app", Logger: logger}

	require.NoError(t, m.Send(context.Background(), "asha@example.com", "Hello", "<p>hi</p>"))
	assert.Equal(t, "noreply@lifedrop.app", got.From.Address)
	require.Len(t, got.To, 1)
	assert.Equal(t, "asha@example.com", got.To[0].Email.Address)
	assert.Empty(t, got.To[0].Email.Name)
	assert.NotContains(t, raw, `"name"`)
	assert.Equal(t, "<p>hi</p>", got.HtmlBody)
}

func TestZeptoMailerSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	m := &ZeptoMailer{APIURL: srv.URL, APIKey: "bad", From: "noreply@lifedrop.app"}
	assert.Error(t, m.Send(context.Background(), "asha@example.com", "Hello", "<p>hi</p>"))
}

func TestZeptoMailerRequiresConfig(t *testing.T) {
	m := &ZeptoMailer{}
	assert.Error(t, m.Send(context.Background(), "asha@example.com", "Hello", ""))
}
