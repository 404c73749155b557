package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	logPkg "avril/pkg/log"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

const (
	queryGetBlob = `
		SELECT blob_value
		FROM kv_store
		WHERE store_key = :store_key
	`

	queryUpsertBlob = `
		INSERT INTO kv_store (store_key, blob_value, updated_at)
		VALUES (:store_key, :blob_value, :updated_at)
		ON CONFLICT (store_key) DO UPDATE SET
			blob_value = excluded.blob_value,
			updated_at = excluded.updated_at
	`

	queryDeleteBlob = `
		DELETE FROM kv_store
		WHERE store_key = :store_key
	`
)

type sqlStorage struct {
	db  *sqlx.DB
	log *logrus.Logger
}

// NewSQL stores blobs in the kv_store table. The same queries run on sqlite
// and postgres; placeholders are rebound per driver.
func NewSQL(db *sqlx.DB, log *logrus.Logger) IStorage {
	return &sqlStorage{db: db, log: log}
}

func (s *sqlStorage) Get(ctx context.Context, key string) ([]byte, error) {
	query, args, err := sqlx.Named(queryGetBlob, map[string]interface{}{
		"store_key": key,
	})
	if err != nil {
		logPkg.FromContext(s.log, ctx).WithFields(logrus.Fields{
			"key":   key,
			"error": err.Error(),
		}).Error("Get named query preparation err")
		return nil, err
	}
	query = s.db.Rebind(query)

	var value string
	if err := s.db.QueryRowxContext(ctx, query, args...).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		logPkg.FromContext(s.log, ctx).WithFields(logrus.Fields{
			"key":   key,
			"error": err.Error(),
		}).Error("Get execution err")
		return nil, err
	}

	return []byte(value), nil
}

func (s *sqlStorage) Set(ctx context.Context, key string, value []byte) error {
	query, args, err := sqlx.Named(queryUpsertBlob, map[string]interface{}{
		"store_key":  key,
		"blob_value": string(value),
		"updated_at": time.Now().UnixMilli(),
	})
	if err != nil {
		logPkg.FromContext(s.log, ctx).WithFields(logrus.Fields{
			"key":   key,
			"error": err.Error(),
		}).Error("Set named query preparation err")
		return err
	}
	query = s.db.Rebind(query)

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		logPkg.FromContext(s.log, ctx).WithFields(logrus.Fields{
			"key":   key,
			"error": err.Error(),
		}).Error("Set execution err")
		return err
	}

	return nil
}

func (s *sqlStorage) Delete(ctx context.Context, key string) error {
	query, args, err := sqlx.Named(queryDeleteBlob, map[string]interface{}{
		"store_key": key,
	})
	if err != nil {
		return err
	}
	query = s.db.Rebind(query)

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		logPkg.FromContext(s.log, ctx).WithFields(logrus.Fields{
			"key":   key,
			"error": err.Error(),
		}).Error("Delete execution err")
		return err
	}

	return nil
}
