// Copyright (c) 2026 Taskhive. All rights reserved.
// Author: indraneel.kondapalli.dev@gmail.com

/*
Package discord implements the Discord interactions webhook.

Discord pushes application commands and lifecycle pings to this endpoint
and requires every response to come from a request whose Ed25519 signature
verified against the application's public key. Unsigned or tampered
requests must be answered with 401, including during Discord's automated
endpoint verification.
*/
package discord

import (
	"crypto/ed25519"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/indraneelk/taskhive/internal/platform/apperr"
	"github.com/indraneelk/taskhive/internal/platform/constants"
	"github.com/indraneelk/taskhive/internal/platform/respond"
	"github.com/indraneelk/taskhive/internal/platform/sec"
)

// # Wire Types

// Interaction types from the Discord gateway protocol.
const (
	interactionPing               = 1
	interactionApplicationCommand = 2
)

// Interaction callback types.
const (
	callbackPong                 = 1
	callbackChannelMessageSource = 4
)

// Message flag marking a response visible only to the invoking user.
const flagEphemeral = 1 << 6

type interactionRequest struct {
	Type int `json:"type"`
	Data struct {
		Name string `json:"name"`
	} `json:"data"`
}

type interactionResponse struct {
	Type int                      `json:"type"`
	Data *interactionResponseData `json:"data,omitempty"`
}

type interactionResponseData struct {
	Content string `json:"content"`
	Flags   int    `json:"flags,omitempty"`
}

// # Handler

// Handler implements the interactions HTTP endpoint.
type Handler struct {
	publicKey ed25519.PublicKey
}

// NewHandler constructs a new [Handler] for the given application public key.
func NewHandler(publicKey ed25519.PublicKey) *Handler {
	return &Handler{publicKey: publicKey}
}

// Routes returns a [chi.Router] configured with the webhook route.
//
// # Endpoints
//   - POST / : Discord interactions callback.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.receive)

	return router
}

/*
Receive answers a signed Discord interaction.

POST /api/v1/discord/interactions

Description: Verifies the Ed25519 signature over timestamp plus raw body,
answers PING with PONG, and points command invocations at the linking flow.

Response:
  - 200: interactionResponse
  - 401: ErrUnauthorized: Signature missing or invalid
*/
func (handler *Handler) receive(writer http.ResponseWriter, request *http.Request) {
	signature := request.Header.Get(constants.HeaderInteractionSignature)
	timestamp := request.Header.Get(constants.HeaderInteractionTimestamp)

	body, err := io.ReadAll(request.Body)
	if err != nil {
		respond.Error(writer, request, apperr.Internal(err))
		return
	}

	if signature == "" || timestamp == "" || !sec.VerifyInteraction(handler.publicKey, timestamp, body, signature) {
		respond.Error(writer, request, apperr.Unauthorized("Interaction signature verification failed"))
		return
	}

	var interaction interactionRequest
	if err := json.Unmarshal(body, &interaction); err != nil {
		respond.Error(writer, request, apperr.Unprocessable("Malformed interaction payload"))
		return
	}

	switch interaction.Type {
	case interactionPing:
		respond.JSON(writer, http.StatusOK, interactionResponse{Type: callbackPong})

	case interactionApplicationCommand:
		// Commands run through the bot's own backend calls; the webhook only
		// acknowledges so the user gets immediate feedback.
		respond.JSON(writer, http.StatusOK, interactionResponse{
			Type: callbackChannelMessageSource,
			Data: &interactionResponseData{
				Content: "Taskhive is on it. Check back in a moment.",
				Flags:   flagEphemeral,
			},
		})

	default:
		respond.Error(writer, request, apperr.Unprocessable("Unsupported interaction type"))
	}
}
