package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/zecobranca/cobranca-bot/internal/model"
)

type sqliteStore struct {
	db *sqlx.DB
}

// NewSqliteStore opens an in-memory sqlite database for conversation state.
// Shared cache keeps a single database across connections; state still dies
// with the process.
func NewSqliteStore() (*sqliteStore, error) {
	db, err := sqlx.Connect("sqlite3", "file:conversations.db?mode=memory&cache=shared")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// sqlite serializes writers anyway; a single connection avoids
	// SQLITE_BUSY under concurrent webhook deliveries.
	db.SetMaxOpenConns(1)

	store := &sqliteStore{db}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *sqliteStore) init() error {
	_, err := s.db.Exec(`create table if not exists conversation_state (
		user_id text not null primary key,
		step    tinyint not null default 0
	)`)
	if err != nil {
		return fmt.Errorf("creating conversation_state table: %w", err)
	}
	return nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func (s *sqliteStore) Load(userID string) (*model.ConversationState, error) {
	state := &model.ConversationState{}
	err := s.db.Get(state, `select user_id, step from conversation_state where user_id = ?`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrorConversationNotFound
		}
		return nil, fmt.Errorf("loading conversation state: %w", err)
	}
	return state, nil
}

// Save upserts the state, last write wins.
func (s *sqliteStore) Save(state *model.ConversationState) (*model.ConversationState, error) {
	_, err := s.db.NamedExec(`insert into conversation_state (user_id, step)
		values (:user_id, :step)
		on conflict(user_id) do update set step = excluded.step`, state)
	if err != nil {
		return nil, fmt.Errorf("saving conversation state: %w", err)
	}
	return state, nil
}
