package board

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refboard/refboard/internal/auth"
	"github.com/refboard/refboard/internal/config"
	"github.com/refboard/refboard/internal/document"
	"github.com/refboard/refboard/internal/geom"
	"github.com/refboard/refboard/internal/store"
)

type fakeStore struct {
	boards    map[string]store.Board
	members   map[string]map[string]store.BoardRole // boardID -> userID -> role
	snapshots map[string][]store.BoardSnapshot
	users     map[string]store.User // email -> user
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		boards:    map[string]store.Board{},
		members:   map[string]map[string]store.BoardRole{},
		snapshots: map[string][]store.BoardSnapshot{},
		users:     map[string]store.User{},
	}
}

func (f *fakeStore) CreateBoard(_ context.Context, arg store.CreateBoardParams) (store.Board, error) {
	b := store.Board{ID: arg.ID, Name: arg.Name, OwnerID: arg.OwnerID, Paradigm: arg.Paradigm}
	f.boards[b.ID] = b
	return b, nil
}

func (f *fakeStore) GetBoard(_ context.Context, id string) (store.Board, error) {
	b, ok := f.boards[id]
	if !ok {
		return store.Board{}, pgx.ErrNoRows
	}
	return b, nil
}

func (f *fakeStore) ListBoardsForUser(_ context.Context, userID string) ([]store.Board, error) {
	var out []store.Board
	for id, m := range f.members {
		if _, ok := m[userID]; ok {
			out = append(out, f.boards[id])
		}
	}
	return out, nil
}

func (f *fakeStore) TouchBoard(_ context.Context, arg store.TouchBoardParams) error {
	b := f.boards[arg.ID]
	b.Name = arg.Name
	b.Paradigm = arg.Paradigm
	f.boards[arg.ID] = b
	return nil
}

func (f *fakeStore) DeleteBoard(_ context.Context, id string) error {
	delete(f.boards, id)
	delete(f.members, id)
	delete(f.snapshots, id)
	return nil
}

func (f *fakeStore) AddBoardMember(_ context.Context, arg store.AddBoardMemberParams) error {
	if f.members[arg.BoardID] == nil {
		f.members[arg.BoardID] = map[string]store.BoardRole{}
	}
	f.members[arg.BoardID][arg.UserID] = arg.Role
	return nil
}

func (f *fakeStore) GetBoardMember(_ context.Context, arg store.GetBoardMemberParams) (store.BoardMember, error) {
	role, ok := f.members[arg.BoardID][arg.UserID]
	if !ok {
		return store.BoardMember{}, pgx.ErrNoRows
	}
	return store.BoardMember{BoardID: arg.BoardID, UserID: arg.UserID, Role: role}, nil
}

func (f *fakeStore) ListBoardMembers(_ context.Context, boardID string) ([]store.ListBoardMembersRow, error) {
	var out []store.ListBoardMembersRow
	for userID, role := range f.members[boardID] {
		out = append(out, store.ListBoardMembersRow{UserID: userID, Role: role})
	}
	return out, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (store.User, error) {
	u, ok := f.users[email]
	if !ok {
		return store.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (f *fakeStore) CreateSnapshot(_ context.Context, arg store.CreateSnapshotParams) (store.BoardSnapshot, error) {
	s := store.BoardSnapshot{ID: arg.ID, BoardID: arg.BoardID, Version: arg.Version, Document: arg.Document}
	f.snapshots[arg.BoardID] = append(f.snapshots[arg.BoardID], s)
	return s, nil
}

func (f *fakeStore) GetLatestSnapshot(_ context.Context, boardID string) (store.BoardSnapshot, error) {
	snaps := f.snapshots[boardID]
	if len(snaps) == 0 {
		return store.BoardSnapshot{}, pgx.ErrNoRows
	}
	return snaps[len(snaps)-1], nil
}

func newTestService() (*Service, *fakeStore) {
	fs := newFakeStore()
	return NewService(fs, config.DefaultSpatial()), fs
}

func TestCreateSeedsSnapshot(t *testing.T) {
	s, fs := newTestService()
	ctx := context.Background()

	b, err := s.Create(ctx, "Moodboard", "user_1", "")
	require.NoError(t, err)
	assert.Equal(t, document.ParadigmCanvas, b.Paradigm)

	require.Len(t, fs.snapshots[b.ID], 1)
	assert.Equal(t, int32(1), fs.snapshots[b.ID][0].Version)

	doc, err := s.LoadBoard(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Moodboard", doc.Name)
	assert.Empty(t, doc.References)

	_, err = s.Create(ctx, "Bad", "user_1", "timeline")
	assert.ErrorIs(t, err, ErrInvalidParadigm)
}

func TestMembership(t *testing.T) {
	s, fs := newTestService()
	ctx := context.Background()
	fs.users["bo@example.com"] = store.User{ID: "user_2", Email: "bo@example.com"}

	b, err := s.Create(ctx, "Moodboard", "user_1", document.ParadigmOrbital)
	require.NoError(t, err)

	_, err = s.Get(ctx, b.ID, "user_2")
	assert.ErrorIs(t, err, ErrNotMember)

	assert.ErrorIs(t, s.InviteByEmail(ctx, b.ID, "user_2", "bo@example.com"), ErrForbidden)
	assert.ErrorIs(t, s.InviteByEmail(ctx, b.ID, "user_1", "nobody@example.com"), ErrUserNotFound)
	require.NoError(t, s.InviteByEmail(ctx, b.ID, "user_1", "bo@example.com"))

	got, err := s.Get(ctx, b.ID, "user_2")
	require.NoError(t, err)
	assert.Equal(t, "user_1", got.OwnerID)

	assert.ErrorIs(t, s.Delete(ctx, b.ID, "user_2"), ErrForbidden)
	require.NoError(t, s.Delete(ctx, b.ID, "user_1"))
	assert.ErrorIs(t, s.Delete(ctx, b.ID, "user_1"), ErrNotFound)
}

func TestSaveBoardAppendsVersion(t *testing.T) {
	s, fs := newTestService()
	ctx := context.Background()

	b, err := s.Create(ctx, "Moodboard", "user_1", "")
	require.NoError(t, err)

	doc, err := s.LoadBoard(ctx, b.ID)
	require.NoError(t, err)
	doc.Name = "Renamed"
	doc.Paradigm = document.ParadigmOrbital
	require.NoError(t, s.SaveBoard(ctx, b.ID, doc))

	snaps := fs.snapshots[b.ID]
	require.Len(t, snaps, 2)
	assert.Equal(t, int32(2), snaps[1].Version)
	assert.Equal(t, "Renamed", fs.boards[b.ID].Name)
	assert.Equal(t, "orbital", fs.boards[b.ID].Paradigm)
}

func seedBoard(t *testing.T, s *Service) string {
	t.Helper()
	ctx := context.Background()

	b, err := s.Create(ctx, "Moodboard", "user_1", "")
	require.NoError(t, err)

	doc, err := s.LoadBoard(ctx, b.ID)
	require.NoError(t, err)
	doc.References = []document.Reference{
		{ID: "a", Canvas: &geom.Point{X: 0, Y: 0}, Orbital: &geom.Polar{Angle: 0, Distance: 0.1}},
		{ID: "b", Orbital: &geom.Polar{Angle: 180, Distance: 0.9}},
	}
	require.NoError(t, s.SaveBoard(ctx, b.ID, doc))
	return b.ID
}

func TestLayout(t *testing.T) {
	s, _ := newTestService()
	boardID := seedBoard(t, s)

	layout, err := s.Layout(context.Background(), boardID, "user_1", document.ParadigmOrbital, 800, 600)
	require.NoError(t, err)

	assert.Equal(t, document.ParadigmOrbital, layout.Paradigm)
	assert.Equal(t, 400.0, layout.Viewport.OffsetX)
	require.Len(t, layout.Nodes, 2)
	assert.Equal(t, 90, layout.Nodes[0].Strength)
	assert.Equal(t, 10, layout.Nodes[1].Strength)
	assert.Equal(t, "a", layout.Ranking[0].ID)

	_, err = s.Layout(context.Background(), boardID, "user_1", document.ParadigmGraph, 800, 600)
	assert.ErrorIs(t, err, ErrInvalidParadigm)
}

func newTestRouter(s *Service, userID string) *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	})
	NewHandler(s).Routes(api)
	return r
}

func TestLayoutHandler(t *testing.T) {
	s, _ := newTestService()
	boardID := seedBoard(t, s)
	r := newTestRouter(s, "user_1")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/boards/"+boardID+"/layout?paradigm=canvas&width=1000&height=500", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var layout Layout
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&layout))
	assert.Equal(t, document.ParadigmCanvas, layout.Paradigm)
	require.Len(t, layout.Nodes, 2)
	require.NotNil(t, layout.Nodes[0].World)
	assert.Equal(t, geom.Point{X: 0, Y: 0}, *layout.Nodes[0].World)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/boards/"+boardID+"/layout?width=-1", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerErrors(t *testing.T) {
	s, _ := newTestService()
	boardID := seedBoard(t, s)
	r := newTestRouter(s, "user_2")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/boards/"+boardID, nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"not a board member"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/boards", strings.NewReader(`{"name":""}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/boards", strings.NewReader(`{"name":"Mine"}`)))
	assert.Equal(t, http.StatusCreated, rec.Code)
}
