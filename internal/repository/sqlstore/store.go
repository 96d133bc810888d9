package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/studyrpg/internal/db"
	"github.com/vytor/studyrpg/internal/logger"
	"github.com/vytor/studyrpg/internal/repository"
)

type scanner interface {
	Scan(dest ...any) error
}

type store struct {
	db *db.DB
	q  db.Querier
	sb squirrel.StatementBuilderType
	tx bool
}

// New creates a repository.Store backed by database.
func New(database *db.DB) repository.Store {
	return &store{db: database, q: database, sb: database.Builder()}
}

func (s *store) Users() repository.UserRepository         { return &userRepository{s} }
func (s *store) Topics() repository.TopicRepository       { return &topicRepository{s} }
func (s *store) Documents() repository.DocumentRepository { return &documentRepository{s} }
func (s *store) Questions() repository.QuestionRepository { return &questionRepository{s} }
func (s *store) Responses() repository.ResponseRepository { return &responseRepository{s} }
func (s *store) Battles() repository.BattleRepository     { return &battleRepository{s} }
func (s *store) Quests() repository.QuestRepository       { return &questRepository{s} }

func (s *store) WithTx(ctx context.Context, fn func(repository.Store) error) error {
	if s.tx {
		return fn(s)
	}
	return s.db.Tx(ctx, func(tx *sql.Tx) error {
		return fn(&store{db: s.db, q: tx, sb: s.sb, tx: true})
	})
}

// insert runs an INSERT ... RETURNING id.
func (s *store) insert(ctx context.Context, b squirrel.InsertBuilder) (int64, error) {
	query, args, err := b.Suffix("RETURNING id").ToSql()
	if err != nil {
		return 0, err
	}
	var id int64
	if err := s.q.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *store) exec(ctx context.Context, b squirrel.Sqlizer) (int64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}
	res, err := s.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *store) queryRow(ctx context.Context, b squirrel.SelectBuilder) (*sql.Row, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	return s.q.QueryRowContext(ctx, query, args...), nil
}

func (s *store) query(ctx context.Context, b squirrel.SelectBuilder) (*sql.Rows, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	return s.q.QueryContext(ctx, query, args...)
}

// getOne scans a single row, mapping sql.ErrNoRows to (false, nil).
func (s *store) getOne(ctx context.Context, log *logger.Logger, b squirrel.SelectBuilder, scan func(scanner) error) (bool, error) {
	row, err := s.queryRow(ctx, b)
	if err != nil {
		log.Error("failed to build query: %v", err)
		return false, err
	}
	if err := scan(row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		log.Error("failed to scan row: %v", err)
		return false, err
	}
	return true, nil
}

// errNoRowsAffected is returned by updates that matched nothing.
var errNoRowsAffected = errors.New("no rows affected")

func expectOne(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return errNoRowsAffected
	}
	return nil
}
