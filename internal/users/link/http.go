// Copyright (c) 2026 Taskhive. All rights reserved.
// Author: indraneel.kondapalli.dev@gmail.com

package link

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/indraneelk/taskhive/internal/authz"
	"github.com/indraneelk/taskhive/internal/platform/apperr"
	"github.com/indraneelk/taskhive/internal/platform/constants"
	requestutil "github.com/indraneelk/taskhive/internal/platform/request"
	"github.com/indraneelk/taskhive/internal/platform/respond"
	"github.com/indraneelk/taskhive/internal/platform/sec"
	"github.com/indraneelk/taskhive/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the link code HTTP endpoints.
type Handler struct {
	linkService *Service
	botSecret   string
	clock       authz.Clock
}

// NewHandler constructs a new [Handler]. A nil clock defaults to the system clock.
func NewHandler(service *Service, botSecret string, clock authz.Clock) *Handler {
	if clock == nil {
		clock = authz.SystemClock()
	}
	return &Handler{linkService: service, botSecret: botSecret, clock: clock}
}

// Routes returns a [chi.Router] with the user-facing link code routes.
// Mount behind an authentication guard.
//
// # Endpoints
//   - POST /         : Issue a fresh link code.
//   - GET  /current  : Status of the latest code.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.issue)
	router.Get("/current", handler.status)

	return router
}

// BotRoutes returns a [chi.Router] with the bot-facing redemption route.
// Requests here carry the signed Discord header triple instead of a user
// credential, because redemption is what creates the link in the first place.
//
// # Endpoints
//   - POST /redeem : Consume a code on behalf of a Discord account.
func (handler *Handler) BotRoutes() chi.Router {
	router := chi.NewRouter()

	router.Post("/redeem", handler.redeem)

	return router
}

// # Request Payloads

type redeemRequest struct {
	Code string `json:"code"`
}

/*
Issue generates a new link code for the authenticated actor.

POST /api/v1/link-codes

Description: Replaces any pending code. The raw code appears only in this
response; afterwards the server knows just its hash.

Response:
  - 201: Issued: Raw code and expiry
  - 401: ErrUnauthorized: Anonymous request
*/
func (handler *Handler) issue(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	issued, err := handler.linkService.Issue(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, issued)
}

/*
Status reports the lifecycle state of the actor's latest link code.

GET /api/v1/link-codes/current

Response:
  - 200: StatusView: pending, used, or expired
  - 404: ErrNotFound: The actor never issued a code
*/
func (handler *Handler) status(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	view, err := handler.linkService.Status(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, view)
}

/*
Redeem consumes a link code on behalf of a Discord account.

POST /api/v1/bot/link-codes/redeem

Description: The bot signs the request with the shared secret over the
snowflake and timestamp headers. The signature is verified directly here
rather than through the resolver, since the caller's snowflake is by
definition not linked yet.

Request:
  - Headers: X-Discord-User-Id, X-Discord-Timestamp, X-Discord-Signature
  - Body: redeemRequest (Code)

Response:
  - 200: User: The linked account
  - 401: ErrUnauthorized: Signature or timestamp rejected
  - 404: ErrNotFound: Unknown code
  - 409: ErrConflict: Code already used, or account already linked
  - 422: ErrUnprocessable: Code expired before redemption
*/
func (handler *Handler) redeem(writer http.ResponseWriter, request *http.Request) {
	discordUserID, err := handler.verifySignedHeaders(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input redeemRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldCode, input.Code)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.linkService.Redeem(request.Context(), input.Code, discordUserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// verifySignedHeaders checks the bot's HMAC triple and returns the snowflake.
func (handler *Handler) verifySignedHeaders(request *http.Request) (string, error) {
	discordUserID := request.Header.Get(constants.HeaderDiscordUserID)
	timestamp := request.Header.Get(constants.HeaderDiscordTimestamp)
	signature := request.Header.Get(constants.HeaderDiscordSignature)

	if discordUserID == "" || timestamp == "" || signature == "" {
		return "", apperr.Unauthorized("Missing Discord signature headers")
	}

	if !sec.VerifyHMAC(discordUserID+"|"+timestamp, signature, handler.botSecret) {
		return "", apperr.Unauthorized("Discord signature verification failed")
	}

	timestampMillis, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return "", apperr.Unauthorized("Discord timestamp must be decimal milliseconds")
	}

	skew := handler.clock.Now().Sub(time.UnixMilli(timestampMillis))
	if skew < 0 {
		skew = -skew
	}
	if skew > authz.DefaultReplayWindow {
		return "", apperr.Unauthorized("Discord timestamp outside the replay window")
	}

	return discordUserID, nil
}
