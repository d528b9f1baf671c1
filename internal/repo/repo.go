package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"habline/internal/domain"
)

type Repo struct {
	DB *sql.DB
}

var ErrNotFound = errors.New("not found")

// SectionQuest holds the quest cache keys.
const SectionQuest = "Quest"

const (
	keyQuestKey   = "quest_key"
	keyQuestType  = "quest_type"
	keyQuestMax   = "quest_max"
	keyQuestTitle = "quest_title"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Get returns a single cached value.
func (r Repo) Get(ctx context.Context, section, key string) (string, error) {
	var v string
	err := r.DB.QueryRowContext(ctx, `SELECT value FROM cache WHERE section=? AND key=?`, section, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return v, err
}

// Section returns every key/value of a section.
func (r Repo) Section(ctx context.Context, section string) (map[string]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT key,value FROM cache WHERE section=?`, section)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

// Set upserts a single value.
func (r Repo) Set(ctx context.Context, section, key, value string) error {
	return set(ctx, r.DB, section, key, value)
}

func set(ctx context.Context, ex execer, section, key, value string) error {
	_, err := ex.ExecContext(ctx, `INSERT INTO cache(section,key,value) VALUES (?,?,?)
ON CONFLICT(section,key) DO UPDATE SET value=excluded.value`, section, key, value)
	return err
}

// QuestCache reads the cached quest, filling defaults for missing keys.
func (r Repo) QuestCache(ctx context.Context) (domain.QuestCache, error) {
	values, err := r.Section(ctx, SectionQuest)
	if err != nil {
		return domain.QuestCache{}, fmt.Errorf("read quest cache: %w", err)
	}
	c := domain.QuestCache{
		Key:   values[keyQuestKey],
		Type:  domain.QuestType(values[keyQuestType]),
		Max:   domain.UnknownQuestMax,
		Title: values[keyQuestTitle],
	}
	if raw, ok := values[keyQuestMax]; ok && raw != "" {
		target, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.QuestCache{}, fmt.Errorf("quest cache %s=%q: %w", keyQuestMax, raw, err)
		}
		c.Max = target
	}
	return c, nil
}

// SaveQuestCache rewrites the quest section in one transaction and returns
// the record as read back from the store.
func (r Repo) SaveQuestCache(ctx context.Context, c domain.QuestCache) (domain.QuestCache, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.QuestCache{}, err
	}
	defer tx.Rollback()
	values := [][2]string{
		{keyQuestKey, c.Key},
		{keyQuestType, string(c.Type)},
		{keyQuestMax, c.MaxString()},
		{keyQuestTitle, c.Title},
	}
	for _, kv := range values {
		if err := set(ctx, tx, SectionQuest, kv[0], kv[1]); err != nil {
			return domain.QuestCache{}, fmt.Errorf("write quest cache %s: %w", kv[0], err)
		}
	}
	if err := tx.Commit(); err != nil {
		return domain.QuestCache{}, err
	}
	return r.QuestCache(ctx)
}
