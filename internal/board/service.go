package board

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/refboard/refboard/internal/config"
	"github.com/refboard/refboard/internal/document"
	"github.com/refboard/refboard/internal/engine"
	"github.com/refboard/refboard/internal/influence"
	"github.com/refboard/refboard/internal/store"
	"github.com/refboard/refboard/internal/typeid"
	"github.com/refboard/refboard/internal/viewport"
)

var (
	ErrNotFound        = errors.New("board not found")
	ErrForbidden       = errors.New("forbidden")
	ErrNotMember       = errors.New("not a board member")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidParadigm = errors.New("invalid paradigm")
)

// Queries is the part of the store the board service uses.
type Queries interface {
	CreateBoard(ctx context.Context, arg store.CreateBoardParams) (store.Board, error)
	GetBoard(ctx context.Context, id string) (store.Board, error)
	ListBoardsForUser(ctx context.Context, userID string) ([]store.Board, error)
	TouchBoard(ctx context.Context, arg store.TouchBoardParams) error
	DeleteBoard(ctx context.Context, id string) error
	AddBoardMember(ctx context.Context, arg store.AddBoardMemberParams) error
	GetBoardMember(ctx context.Context, arg store.GetBoardMemberParams) (store.BoardMember, error)
	ListBoardMembers(ctx context.Context, boardID string) ([]store.ListBoardMembersRow, error)
	GetUserByEmail(ctx context.Context, email string) (store.User, error)
	CreateSnapshot(ctx context.Context, arg store.CreateSnapshotParams) (store.BoardSnapshot, error)
	GetLatestSnapshot(ctx context.Context, boardID string) (store.BoardSnapshot, error)
}

type Service struct {
	queries Queries
	spatial config.Spatial
}

func NewService(queries Queries, spatial config.Spatial) *Service {
	return &Service{queries: queries, spatial: spatial}
}

type Board struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	OwnerID   string            `json:"ownerId"`
	Paradigm  document.Paradigm `json:"paradigm"`
	CreatedAt string            `json:"createdAt"`
	UpdatedAt string            `json:"updatedAt"`
}

type Member struct {
	UserID      string `json:"userId"`
	Role        string `json:"role"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

func (s *Service) Create(ctx context.Context, name, ownerID string, paradigm document.Paradigm) (*Board, error) {
	if paradigm == "" {
		paradigm = document.ParadigmCanvas
	}
	if !paradigm.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidParadigm, paradigm)
	}

	boardID := typeid.NewBoardID()
	dbBoard, err := s.queries.CreateBoard(ctx, store.CreateBoardParams{
		ID:       boardID,
		Name:     name,
		OwnerID:  ownerID,
		Paradigm: string(paradigm),
	})
	if err != nil {
		return nil, fmt.Errorf("create board: %w", err)
	}

	err = s.queries.AddBoardMember(ctx, store.AddBoardMemberParams{
		BoardID: boardID,
		UserID:  ownerID,
		Role:    store.BoardRoleOwner,
	})
	if err != nil {
		return nil, fmt.Errorf("add owner as member: %w", err)
	}

	// Seed empty document snapshot
	empty := document.NewEmptyBoard(boardID, name)
	empty.Paradigm = paradigm
	empty.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	empty.UpdatedAt = empty.CreatedAt
	if err := s.writeSnapshot(ctx, boardID, 1, empty); err != nil {
		return nil, fmt.Errorf("create initial snapshot: %w", err)
	}

	return toBoard(dbBoard), nil
}

func (s *Service) Get(ctx context.Context, boardID, userID string) (*Board, error) {
	if err := s.CheckMember(ctx, boardID, userID); err != nil {
		return nil, err
	}

	dbBoard, err := s.queries.GetBoard(ctx, boardID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get board: %w", err)
	}

	return toBoard(dbBoard), nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Board, error) {
	dbBoards, err := s.queries.ListBoardsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}

	boards := make([]Board, len(dbBoards))
	for i, b := range dbBoards {
		boards[i] = *toBoard(b)
	}
	return boards, nil
}

func (s *Service) Delete(ctx context.Context, boardID, userID string) error {
	if err := s.requireOwner(ctx, boardID, userID); err != nil {
		return err
	}
	if err := s.queries.DeleteBoard(ctx, boardID); err != nil {
		return fmt.Errorf("delete board: %w", err)
	}
	return nil
}

func (s *Service) InviteByEmail(ctx context.Context, boardID, ownerID, inviteeEmail string) error {
	if err := s.requireOwner(ctx, boardID, ownerID); err != nil {
		return err
	}

	invitee, err := s.queries.GetUserByEmail(ctx, inviteeEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	err = s.queries.AddBoardMember(ctx, store.AddBoardMemberParams{
		BoardID: boardID,
		UserID:  invitee.ID,
		Role:    store.BoardRoleEditor,
	})
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

func (s *Service) ListMembers(ctx context.Context, boardID, userID string) ([]Member, error) {
	if err := s.CheckMember(ctx, boardID, userID); err != nil {
		return nil, err
	}

	rows, err := s.queries.ListBoardMembers(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	members := make([]Member, len(rows))
	for i, m := range rows {
		members[i] = Member{
			UserID:      m.UserID,
			Role:        string(m.Role),
			DisplayName: m.DisplayName,
			Email:       m.Email,
		}
	}
	return members, nil
}

func (s *Service) GetLatestSnapshot(ctx context.Context, boardID, userID string) (json.RawMessage, error) {
	if err := s.CheckMember(ctx, boardID, userID); err != nil {
		return nil, err
	}

	snap, err := s.latest(ctx, boardID)
	if err != nil {
		return nil, err
	}
	return snap.Document, nil
}

// LoadBoard decodes the latest snapshot of a board. It does no membership
// check; the collaboration hub calls it after the websocket handshake has
// done one.
func (s *Service) LoadBoard(ctx context.Context, boardID string) (*document.Board, error) {
	snap, err := s.latest(ctx, boardID)
	if err != nil {
		return nil, err
	}

	var b document.Board
	if err := json.Unmarshal(snap.Document, &b); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &b, nil
}

// SaveBoard stores b as the next snapshot version and mirrors its name and
// paradigm onto the board row.
func (s *Service) SaveBoard(ctx context.Context, boardID string, b *document.Board) error {
	next := int32(1)
	current, err := s.queries.GetLatestSnapshot(ctx, boardID)
	switch {
	case err == nil:
		next = current.Version + 1
	case !errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("get snapshot: %w", err)
	}

	if err := s.writeSnapshot(ctx, boardID, next, b); err != nil {
		return err
	}

	err = s.queries.TouchBoard(ctx, store.TouchBoardParams{
		ID:       boardID,
		Name:     b.Name,
		Paradigm: string(b.Paradigm),
	})
	if err != nil {
		return fmt.Errorf("touch board: %w", err)
	}
	return nil
}

// Layout is the resolved node placement of a board in one spatial
// paradigm, for a container of the given size.
type Layout struct {
	Paradigm document.Paradigm  `json:"paradigm"`
	Viewport viewport.Transform `json:"viewport"`
	Nodes    []engine.NodeView  `json:"nodes"`
	Ranking  []influence.Ranked `json:"ranking"`
	Minimap  engine.Minimap     `json:"minimap"`
}

// Layout resolves every reference's position with the stored positions and
// the default layout, exactly as the editor would show it.
func (s *Service) Layout(ctx context.Context, boardID, userID string, paradigm document.Paradigm, width, height float64) (*Layout, error) {
	if err := s.CheckMember(ctx, boardID, userID); err != nil {
		return nil, err
	}
	b, err := s.LoadBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}

	e := engine.NewEngine(s.spatial)
	e.Resize(width, height)
	e.SetBoard(b)
	if paradigm != "" {
		if err := e.SetParadigm(paradigm); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidParadigm, paradigm)
		}
	}

	nodes := e.Nodes()
	if nodes == nil {
		nodes = []engine.NodeView{}
	}
	return &Layout{
		Paradigm: e.Paradigm(),
		Viewport: e.Viewport(),
		Nodes:    nodes,
		Ranking:  e.Ranking(),
		Minimap:  e.MinimapState(),
	}, nil
}

// CheckMember returns ErrNotMember unless userID belongs to the board.
func (s *Service) CheckMember(ctx context.Context, boardID, userID string) error {
	_, err := s.queries.GetBoardMember(ctx, store.GetBoardMemberParams{
		BoardID: boardID,
		UserID:  userID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotMember
		}
		return fmt.Errorf("check membership: %w", err)
	}
	return nil
}

func (s *Service) requireOwner(ctx context.Context, boardID, userID string) error {
	dbBoard, err := s.queries.GetBoard(ctx, boardID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("get board: %w", err)
	}
	if dbBoard.OwnerID != userID {
		return ErrForbidden
	}
	return nil
}

func (s *Service) latest(ctx context.Context, boardID string) (store.BoardSnapshot, error) {
	snap, err := s.queries.GetLatestSnapshot(ctx, boardID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.BoardSnapshot{}, ErrNotFound
		}
		return store.BoardSnapshot{}, fmt.Errorf("get snapshot: %w", err)
	}
	return snap, nil
}

func (s *Service) writeSnapshot(ctx context.Context, boardID string, version int32, b *document.Board) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal board: %w", err)
	}

	_, err = s.queries.CreateSnapshot(ctx, store.CreateSnapshotParams{
		ID:       typeid.NewSnapshotID(),
		BoardID:  boardID,
		Version:  version,
		Document: data,
	})
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	return nil
}

func toBoard(b store.Board) *Board {
	return &Board{
		ID:        b.ID,
		Name:      b.Name,
		OwnerID:   b.OwnerID,
		Paradigm:  document.Paradigm(b.Paradigm),
		CreatedAt: b.CreatedAt.Time.Format(time.RFC3339),
		UpdatedAt: b.UpdatedAt.Time.Format(time.RFC3339),
	}
}
