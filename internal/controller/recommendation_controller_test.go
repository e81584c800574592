package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"yorkie-bakery-be/internal/dto"
	"yorkie-bakery-be/internal/pkg/serverutils"
	"yorkie-bakery-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeRecommendationService struct {
	turnErr    error
	lastUserId *string
	lastTurn   *dto.ChatTurnRequest
	lastImage  []byte
}

func (f *fakeRecommendationService) HandleTurn(ctx context.Context, userId *string, request *dto.ChatTurnRequest) (*dto.ChatTurnResponse, error) {
	f.lastUserId = userId
	f.lastTurn = request
	if f.turnErr != nil {
		return nil, f.turnErr
	}
	return &dto.ChatTurnResponse{SessionId: "s1", Agent: "ChatAgent", Reply: "hi", Items: []dto.RankedItemResponse{}}, nil
}

func (f *fakeRecommendationService) RetrieveAndRank(ctx context.Context, request *dto.RetrieveRequest) (*dto.RetrieveResponse, error) {
	return &dto.RetrieveResponse{Items: []dto.RankedItemResponse{{Id: "a", Title: "Croissant"}}}, nil
}

func (f *fakeRecommendationService) MatchImage(ctx context.Context, image []byte, topK int) (*dto.VisionMatchResponse, error) {
	f.lastImage = image
	return &dto.VisionMatchResponse{VisionDescription: "a bun"}, nil
}

func (f *fakeRecommendationService) GetRecentMessages(ctx context.Context, sessionId string, limit int) []*dto.ChatMessageResponse {
	return []*dto.ChatMessageResponse{{Role: "user", Content: sessionId}}
}

func newTestApp(svc service.IRecommendationService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	NewRecommendationController(svc, testSecret).RegisterRoutes(app.Group("/api"))
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body, token string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out
}

func signedToken(t *testing.T, userId string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userId,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func TestChatAnonymous(t *testing.T) {
	svc := &fakeRecommendationService{}
	app := newTestApp(svc)

	code, body := doJSON(t, app, "POST", "/api/ai/v1/chat", `{"message":"hello","top_k":3}`, "")

	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Nil(t, svc.lastUserId)
	assert.Equal(t, 3, svc.lastTurn.TopK)
}

func TestChatAttachesUserFromToken(t *testing.T) {
	svc := &fakeRecommendationService{}
	app := newTestApp(svc)

	code, _ := doJSON(t, app, "POST", "/api/ai/v1/chat", `{"message":"hello"}`, signedToken(t, "user-1"))

	assert.Equal(t, fiber.StatusOK, code)
	require.NotNil(t, svc.lastUserId)
	assert.Equal(t, "user-1", *svc.lastUserId)
}

func TestChatRejectsBadToken(t *testing.T) {
	app := newTestApp(&fakeRecommendationService{})

	code, body := doJSON(t, app, "POST", "/api/ai/v1/chat", `{"message":"hello"}`, "not-a-jwt")

	assert.Equal(t, fiber.StatusUnauthorized, code)
	assert.Equal(t, false, body["success"])
}

func TestChatValidation(t *testing.T) {
	app := newTestApp(&fakeRecommendationService{})

	code, _ := doJSON(t, app, "POST", "/api/ai/v1/chat", `{"message":""}`, "")
	assert.Equal(t, fiber.StatusUnprocessableEntity, code)

	code, _ = doJSON(t, app, "POST", "/api/ai/v1/chat", `{"message":"x","filters":{"price_max":-1}}`, "")
	assert.Equal(t, fiber.StatusUnprocessableEntity, code)

	code, _ = doJSON(t, app, "POST", "/api/ai/v1/chat", `{not json`, "")
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestChatCompletionFailureMapsToBadGateway(t *testing.T) {
	svc := &fakeRecommendationService{turnErr: fmt.Errorf("%w: boom", service.ErrCompletionFailed)}
	app := newTestApp(svc)

	code, body := doJSON(t, app, "POST", "/api/ai/v1/chat", `{"message":"hello"}`, "")

	assert.Equal(t, fiber.StatusBadGateway, code)
	assert.NotContains(t, body["message"], "boom")
}

func TestRetrieve(t *testing.T) {
	app := newTestApp(&fakeRecommendationService{})

	code, body := doJSON(t, app, "POST", "/api/ai/v1/retrieve", `{"query":"croissant"}`, "")

	assert.Equal(t, fiber.StatusOK, code)
	items := body["data"].(map[string]interface{})["items"].([]interface{})
	assert.Len(t, items, 1)
}

func TestGetMessages(t *testing.T) {
	app := newTestApp(&fakeRecommendationService{})

	code, body := doJSON(t, app, "GET", "/api/ai/v1/sessions/abc/messages", "", "")

	assert.Equal(t, fiber.StatusOK, code)
	msgs := body["data"].([]interface{})
	assert.Equal(t, "abc", msgs[0].(map[string]interface{})["content"])
}

func TestVisionUpload(t *testing.T) {
	svc := &fakeRecommendationService{}
	app := newTestApp(svc)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "bun.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\nfake"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/api/ai/v1/vision", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\nfake"), svc.lastImage)
}

func TestVisionRequiresFile(t *testing.T) {
	app := newTestApp(&fakeRecommendationService{})

	code, _ := doJSON(t, app, "POST", "/api/ai/v1/vision", `{}`, "")
	assert.Equal(t, fiber.StatusBadRequest, code)
}
