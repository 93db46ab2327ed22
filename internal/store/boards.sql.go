package store

import (
	"context"
)

const boardColumns = `id, name, owner_id, paradigm, created_at, updated_at`

func scanBoard(row interface{ Scan(...any) error }) (Board, error) {
	var i Board
	err := row.Scan(&i.ID, &i.Name, &i.OwnerID, &i.Paradigm, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const createBoard = `
INSERT INTO boards (id, name, owner_id, paradigm)
VALUES ($1, $2, $3, $4)
RETURNING ` + boardColumns

type CreateBoardParams struct {
	ID       string
	Name     string
	OwnerID  string
	Paradigm string
}

func (q *Queries) CreateBoard(ctx context.Context, arg CreateBoardParams) (Board, error) {
	return scanBoard(q.db.QueryRow(ctx, createBoard, arg.ID, arg.Name, arg.OwnerID, arg.Paradigm))
}

const getBoard = `SELECT ` + boardColumns + ` FROM boards WHERE id = $1`

func (q *Queries) GetBoard(ctx context.Context, id string) (Board, error) {
	return scanBoard(q.db.QueryRow(ctx, getBoard, id))
}

const listBoardsForUser = `
SELECT b.id, b.name, b.owner_id, b.paradigm, b.created_at, b.updated_at
FROM boards b
JOIN board_members m ON m.board_id = b.id
WHERE m.user_id = $1
ORDER BY b.updated_at DESC
`

func (q *Queries) ListBoardsForUser(ctx context.Context, userID string) ([]Board, error) {
	rows, err := q.db.Query(ctx, listBoardsForUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Board
	for rows.Next() {
		i, err := scanBoard(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const touchBoard = `
UPDATE boards SET name = $2, paradigm = $3, updated_at = now()
WHERE id = $1
`

type TouchBoardParams struct {
	ID       string
	Name     string
	Paradigm string
}

// TouchBoard mirrors the name and paradigm of a saved snapshot onto the
// board row.
func (q *Queries) TouchBoard(ctx context.Context, arg TouchBoardParams) error {
	_, err := q.db.Exec(ctx, touchBoard, arg.ID, arg.Name, arg.Paradigm)
	return err
}

const deleteBoard = `DELETE FROM boards WHERE id = $1`

func (q *Queries) DeleteBoard(ctx context.Context, id string) error {
	_, err := q.db.Exec(ctx, deleteBoard, id)
	return err
}

const addBoardMember = `
INSERT INTO board_members (board_id, user_id, role)
VALUES ($1, $2, $3)
ON CONFLICT (board_id, user_id) DO NOTHING
`

type AddBoardMemberParams struct {
	BoardID string
	UserID  string
	Role    BoardRole
}

func (q *Queries) AddBoardMember(ctx context.Context, arg AddBoardMemberParams) error {
	_, err := q.db.Exec(ctx, addBoardMember, arg.BoardID, arg.UserID, arg.Role)
	return err
}

const getBoardMember = `
SELECT board_id, user_id, role, created_at FROM board_members
WHERE board_id = $1 AND user_id = $2
`

type GetBoardMemberParams struct {
	BoardID string
	UserID  string
}

func (q *Queries) GetBoardMember(ctx context.Context, arg GetBoardMemberParams) (BoardMember, error) {
	row := q.db.QueryRow(ctx, getBoardMember, arg.BoardID, arg.UserID)
	var i BoardMember
	err := row.Scan(&i.BoardID, &i.UserID, &i.Role, &i.CreatedAt)
	return i, err
}

const listBoardMembers = `
SELECT m.user_id, m.role, u.display_name, u.email
FROM board_members m
JOIN users u ON u.id = m.user_id
WHERE m.board_id = $1
ORDER BY m.created_at
`

type ListBoardMembersRow struct {
	UserID      string
	Role        BoardRole
	DisplayName string
	Email       string
}

func (q *Queries) ListBoardMembers(ctx context.Context, boardID string) ([]ListBoardMembersRow, error) {
	rows, err := q.db.Query(ctx, listBoardMembers, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ListBoardMembersRow
	for rows.Next() {
		var i ListBoardMembersRow
		if err := rows.Scan(&i.UserID, &i.Role, &i.DisplayName, &i.Email); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
