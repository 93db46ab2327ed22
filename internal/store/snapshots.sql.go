package store

import (
	"context"
)

const createSnapshot = `
INSERT INTO board_snapshots (id, board_id, version, document)
VALUES ($1, $2, $3, $4)
RETURNING id, board_id, version, document, created_at
`

type CreateSnapshotParams struct {
	ID       string
	BoardID  string
	Version  int32
	Document []byte
}

func (q *Queries) CreateSnapshot(ctx context.Context, arg CreateSnapshotParams) (BoardSnapshot, error) {
	row := q.db.QueryRow(ctx, createSnapshot, arg.ID, arg.BoardID, arg.Version, arg.Document)
	var i BoardSnapshot
	err := row.Scan(&i.ID, &i.BoardID, &i.Version, &i.Document, &i.CreatedAt)
	return i, err
}

const getLatestSnapshot = `
SELECT id, board_id, version, document, created_at FROM board_snapshots
WHERE board_id = $1
ORDER BY version DESC
LIMIT 1
`

func (q *Queries) GetLatestSnapshot(ctx context.Context, boardID string) (BoardSnapshot, error) {
	row := q.db.QueryRow(ctx, getLatestSnapshot, boardID)
	var i BoardSnapshot
	err := row.Scan(&i.ID, &i.BoardID, &i.Version, &i.Document, &i.CreatedAt)
	return i, err
}
