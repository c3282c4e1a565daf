// Copyright (c) 2026 Taskhive. All rights reserved.
// Author: indraneel.kondapalli.dev@gmail.com

package discord_test

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indraneelk/taskhive/internal/discord"
	"github.com/indraneelk/taskhive/internal/platform/constants"
)

// signedRequest builds a webhook request with a valid Ed25519 signature.
func signedRequest(t *testing.T, private ed25519.PrivateKey, body string) *http.Request {
	t.Helper()

	timestamp := "1756500000"
	signature := ed25519.Sign(private, []byte(timestamp+body))

	request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	request.Header.Set(constants.HeaderInteractionTimestamp, timestamp)
	request.Header.Set(constants.HeaderInteractionSignature, hex.EncodeToString(signature))

	return request
}

/*
TestReceive_PingPong verifies a signed PING is answered with PONG.
*/
func TestReceive_PingPong(t *testing.T) {
	public, private, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	handler := discord.NewHandler(public)
	recorder := httptest.NewRecorder()

	handler.Routes().ServeHTTP(recorder, signedRequest(t, private, `{"type":1}`))

	require.Equal(t, http.StatusOK, recorder.Code)

	var response struct {
		Type int `json:"type"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Type)
}

/*
TestReceive_RejectsBadSignatures verifies missing and tampered signatures
are both answered with 401.
*/
func TestReceive_RejectsBadSignatures(t *testing.T) {
	public, private, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	handler := discord.NewHandler(public)

	t.Run("missing_headers", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"type":1}`))

		handler.Routes().ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("tampered_body", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := signedRequest(t, private, `{"type":1}`)
		request.Body = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"type":2}`)).Body

		handler.Routes().ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("wrong_key", func(t *testing.T) {
		_, otherPrivate, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)

		recorder := httptest.NewRecorder()
		handler.Routes().ServeHTTP(recorder, signedRequest(t, otherPrivate, `{"type":1}`))

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}

/*
TestReceive_AcknowledgesCommands verifies application commands get an
ephemeral acknowledgement.
*/
func TestReceive_AcknowledgesCommands(t *testing.T) {
	public, private, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	handler := discord.NewHandler(public)
	recorder := httptest.NewRecorder()

	handler.Routes().ServeHTTP(recorder, signedRequest(t, private, `{"type":2,"data":{"name":"link"}}`))

	require.Equal(t, http.StatusOK, recorder.Code)

	var response struct {
		Type int `json:"type"`
		Data struct {
			Flags int `json:"flags"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, 4, response.Type)
	assert.Equal(t, 1<<6, response.Data.Flags)
}
