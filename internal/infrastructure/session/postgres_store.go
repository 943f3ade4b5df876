package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"chatpress/internal/domain/conversation"
	"chatpress/internal/infrastructure/database/entities"
)

// uniqueViolationCode is the postgres SQLSTATE for a unique-constraint
// violation.
const uniqueViolationCode = "23505"

// PostgresStore persists sessions in PostgreSQL. Retention is enforced
// lazily: expired rows read as absent and are removed on access.
type PostgresStore struct {
	db  *gorm.DB
	ttl time.Duration
	log zerolog.Logger
	now func() time.Time
}

// NewPostgresStore wraps an existing GORM connection.
func NewPostgresStore(db *gorm.DB, ttl time.Duration, log zerolog.Logger) *PostgresStore {
	return &PostgresStore{
		db:  db,
		ttl: ttl,
		log: log.With().Str("component", "postgres-session-store").Logger(),
		now: time.Now,
	}
}

var _ conversation.SessionStore = (*PostgresStore)(nil)

func (p *PostgresStore) Get(ctx context.Context, userID string) (*conversation.State, error) {
	var record entities.SessionRecord
	err := p.db.WithContext(ctx).Where("user_id = ?", userID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if p.now().After(record.ExpiresAt) {
		if err := p.Delete(ctx, userID); err != nil {
			p.log.Warn().Err(err).Str("user_id", userID).Msg("purge expired session failed")
		}
		return nil, nil
	}
	return recordToState(record)
}

func (p *PostgresStore) Set(ctx context.Context, userID string, state *conversation.State) error {
	data, err := json.Marshal(state.Data)
	if err != nil {
		return fmt.Errorf("encode session data: %w", err)
	}
	expiresAt := p.now().Add(p.ttl)

	if state.Version == 0 {
		record := entities.SessionRecord{
			UserID:    userID,
			Step:      state.Step.String(),
			Data:      data,
			Version:   1,
			ExpiresAt: expiresAt,
			CreatedAt: state.CreatedAt,
		}
		err := p.db.WithContext(ctx).Create(&record).Error
		if isDuplicateKey(err) {
			// A concurrent first write already claimed the row.
			return conversation.ErrVersionConflict
		}
		if err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		return nil
	}

	res := p.db.WithContext(ctx).
		Model(&entities.SessionRecord{}).
		Where("user_id = ? AND version = ?", userID, state.Version).
		Updates(map[string]any{
			"step":       state.Step.String(),
			"data":       data,
			"version":    state.Version + 1,
			"expires_at": expiresAt,
		})
	if res.Error != nil {
		return fmt.Errorf("update session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return conversation.ErrVersionConflict
	}
	return nil
}

func (p *PostgresStore) ResetToIdle(ctx context.Context, userID string) error {
	fresh := conversation.NewState(p.now())
	data, err := json.Marshal(fresh.Data)
	if err != nil {
		return fmt.Errorf("encode session data: %w", err)
	}
	record := entities.SessionRecord{
		UserID:    userID,
		Step:      fresh.Step.String(),
		Data:      data,
		Version:   1,
		ExpiresAt: p.now().Add(p.ttl),
		CreatedAt: fresh.CreatedAt,
	}
	err = p.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"step":       record.Step,
				"data":       data,
				"version":    gorm.Expr("conversation_sessions.version + 1"),
				"expires_at": record.ExpiresAt,
			}),
		}).
		Create(&record).Error
	if err != nil {
		return fmt.Errorf("reset session: %w", err)
	}
	return nil
}

func (p *PostgresStore) Delete(ctx context.Context, userID string) error {
	err := p.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&entities.SessionRecord{}).Error
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (p *PostgresStore) Stats(ctx context.Context) (conversation.StoreStats, error) {
	var active int64
	err := p.db.WithContext(ctx).
		Model(&entities.SessionRecord{}).
		Where("expires_at > ?", p.now()).
		Count(&active).Error
	if err != nil {
		return conversation.StoreStats{}, fmt.Errorf("count sessions: %w", err)
	}
	return conversation.StoreStats{ActiveSessions: active}, nil
}

// isDuplicateKey reports whether err is a unique-constraint violation, either
// as gorm's translated sentinel or as the raw postgres driver error.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

func recordToState(record entities.SessionRecord) (*conversation.State, error) {
	var data conversation.PostData
	if len(record.Data) > 0 {
		if err := json.Unmarshal(record.Data, &data); err != nil {
			return nil, fmt.Errorf("decode session data: %w", err)
		}
	}
	return &conversation.State{
		Step:      conversation.Step(record.Step),
		Data:      data,
		Version:   record.Version,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}, nil
}
