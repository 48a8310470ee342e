package httpapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/structkit/patchguard/internal/testmodels"
)

type PatchAPITestSuite struct {
	suite.Suite
	app   *fiber.App
	store *MemoryStore[testmodels.Building]
	id    uuid.UUID
}

func (s *PatchAPITestSuite) SetupTest() {
	s.app = fiber.New()
	s.store = NewMemoryStore[testmodels.Building]()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	Register(s.app, "/buildings", s.store, logger)

	s.id = uuid.New()
	s.store.Put(s.id, &testmodels.Building{ID: s.id, Material: "Wood", Floors: 3})
}

func (s *PatchAPITestSuite) makeRequest(method, url, body string) *http.Response {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, url, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := s.app.Test(req)
	s.Require().NoError(err)
	return resp
}

func (s *PatchAPITestSuite) decodePatchResult(resp *http.Response) (resource map[string]any, applied, dropped []any) {
	var envelope Response
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&envelope))

	data, ok := envelope.Data.(map[string]any)
	s.Require().True(ok, "unexpected data type %T", envelope.Data)

	resource, _ = data["resource"].(map[string]any)
	applied, _ = data["applied"].([]any)
	dropped, _ = data["dropped"].([]any)
	return resource, applied, dropped
}

func (s *PatchAPITestSuite) TestPatchDropsProtectedField() {
	otherID := uuid.New()
	body := `[
		{"op": "replace", "path": "/material", "value": "Steel"},
		{"op": "replace", "path": "/id", "value": "` + otherID.String() + `"}
	]`

	resp := s.makeRequest("PATCH", "/buildings/"+s.id.String(), body)
	defer resp.Body.Close() //nolint:errcheck
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)

	resource, applied, dropped := s.decodePatchResult(resp)
	s.Equal(s.id.String(), resource["id"], "protected id must not change")
	s.Equal("Steel", resource["material"])
	s.Len(applied, 1)
	s.Len(dropped, 1)

	stored, ok := s.store.Get(s.id)
	s.Require().True(ok)
	s.Equal(s.id, stored.ID)
	s.Equal("Steel", stored.Material)
}

func (s *PatchAPITestSuite) TestPatchWithoutConflict() {
	resp := s.makeRequest("PATCH", "/buildings/"+s.id.String(),
		`[{"op": "replace", "path": "/floors", "value": 5}]`)
	defer resp.Body.Close() //nolint:errcheck
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)

	resource, applied, dropped := s.decodePatchResult(resp)
	s.Equal(float64(5), resource["floors"])
	s.Len(applied, 1)
	s.Empty(dropped)
}

func (s *PatchAPITestSuite) TestPatchVariants() {
	testCases := []struct {
		desc       string
		url        string
		body       string
		wantStatus int
	}{
		{
			desc:       "unknown field",
			url:        "/buildings/" + s.id.String(),
			body:       `[{"op": "replace", "path": "/color", "value": "Red"}]`,
			wantStatus: fiber.StatusUnprocessableEntity,
		},
		{
			desc:       "type mismatch",
			url:        "/buildings/" + s.id.String(),
			body:       `[{"op": "replace", "path": "/floors", "value": "five"}]`,
			wantStatus: fiber.StatusUnprocessableEntity,
		},
		{
			desc:       "failed test operation",
			url:        "/buildings/" + s.id.String(),
			body:       `[{"op": "test", "path": "/material", "value": "Steel"}]`,
			wantStatus: fiber.StatusConflict,
		},
		{
			desc:       "unsupported operation",
			url:        "/buildings/" + s.id.String(),
			body:       `[{"op": "move", "path": "/material"}]`,
			wantStatus: fiber.StatusBadRequest,
		},
		{
			desc:       "malformed document",
			url:        "/buildings/" + s.id.String(),
			body:       `{not json`,
			wantStatus: fiber.StatusBadRequest,
		},
		{
			desc:       "invalid resource id",
			url:        "/buildings/not-a-uuid",
			body:       `[]`,
			wantStatus: fiber.StatusBadRequest,
		},
		{
			desc:       "resource not found",
			url:        "/buildings/" + uuid.New().String(),
			body:       `[]`,
			wantStatus: fiber.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.desc, func() {
			resp := s.makeRequest("PATCH", tc.url, tc.body)
			defer resp.Body.Close() //nolint:errcheck
			s.Equal(tc.wantStatus, resp.StatusCode)
		})
	}
}

func (s *PatchAPITestSuite) TestRejectedPatchLeavesStoreUntouched() {
	body := `[
		{"op": "replace", "path": "/material", "value": "Steel"},
		{"op": "replace", "path": "/missing", "value": 1}
	]`

	resp := s.makeRequest("PATCH", "/buildings/"+s.id.String(), body)
	defer resp.Body.Close() //nolint:errcheck
	s.Require().Equal(fiber.StatusUnprocessableEntity, resp.StatusCode)

	stored, ok := s.store.Get(s.id)
	s.Require().True(ok)
	s.Equal("Wood", stored.Material, "partial apply must not reach the store")
}

func (s *PatchAPITestSuite) TestGet() {
	resp := s.makeRequest("GET", "/buildings/"+s.id.String(), "")
	defer resp.Body.Close() //nolint:errcheck
	s.Equal(fiber.StatusOK, resp.StatusCode)

	resp = s.makeRequest("GET", "/buildings/"+uuid.New().String(), "")
	defer resp.Body.Close() //nolint:errcheck
	s.Equal(fiber.StatusNotFound, resp.StatusCode)
}

func TestPatchAPITestSuite(t *testing.T) {
	suite.Run(t, new(PatchAPITestSuite))
}

type room struct {
	ID       uuid.UUID `json:"id" guard:"protected"`
	Capacity int       `json:"capacity" validate:"gte=0"`
}

func TestPatchHandler_ValidationFailure(t *testing.T) {
	app := fiber.New()
	store := NewMemoryStore[room]()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	Register(app, "/rooms", store, logger)

	id := uuid.New()
	store.Put(id, &room{ID: id, Capacity: 10})

	req := httptest.NewRequest("PATCH", "/rooms/"+id.String(),
		strings.NewReader(`[{"op": "replace", "path": "/capacity", "value": -1}]`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", resp.StatusCode, fiber.StatusUnprocessableEntity)
	}

	stored, _ := store.Get(id)
	if stored.Capacity != 10 {
		t.Errorf("Capacity = %d, want unchanged 10", stored.Capacity)
	}
}
