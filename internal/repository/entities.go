package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/equiplend/invoice-pipeline/constants"
	"github.com/equiplend/invoice-pipeline/internal/common"
	"github.com/equiplend/invoice-pipeline/internal/entity"
)

// EntityStore is the narrow persistence surface the resolver consumes.
// Lookups return (nil, nil) when no entity matches.
type EntityStore interface {
	FindByExternalID(ctx context.Context, kind constants.EntityKind, externalID string) (*entity.EntityRef, error)
	FindByEmail(ctx context.Context, kind constants.EntityKind, email string) (*entity.EntityRef, error)
	FindByName(ctx context.Context, kind constants.EntityKind, name string) (*entity.EntityRef, error)
	Create(ctx context.Context, kind constants.EntityKind, fields entity.NewEntity) (*entity.EntityRef, error)
}

type gormEntityStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewEntityStore(db *gorm.DB, logger *slog.Logger) EntityStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &gormEntityStore{db: db, logger: logger}
}

func (s *gormEntityStore) FindByExternalID(ctx context.Context, kind constants.EntityKind, externalID string) (*entity.EntityRef, error) {
	return s.findOne(ctx, "kind = ? AND external_id = ?", string(kind), externalID)
}

func (s *gormEntityStore) FindByEmail(ctx context.Context, kind constants.EntityKind, email string) (*entity.EntityRef, error) {
	return s.findOne(ctx, "kind = ? AND LOWER(email) = LOWER(?)", string(kind), email)
}

func (s *gormEntityStore) FindByName(ctx context.Context, kind constants.EntityKind, name string) (*entity.EntityRef, error) {
	return s.findOne(ctx, "kind = ? AND LOWER(name) = LOWER(?)", string(kind), name)
}

func (s *gormEntityStore) findOne(ctx context.Context, query string, args ...any) (*entity.EntityRef, error) {
	var rec EntityRecord
	err := s.db.WithContext(ctx).Where(query, args...).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("entity lookup failed", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}
	return &entity.EntityRef{
		Kind:       constants.EntityKind(rec.Kind),
		ID:         rec.ID,
		ExternalID: rec.ExternalID,
	}, nil
}

func (s *gormEntityStore) Create(ctx context.Context, kind constants.EntityKind, fields entity.NewEntity) (*entity.EntityRef, error) {
	rec := EntityRecord{
		ID:         uuid.New(),
		Kind:       string(kind),
		ExternalID: fields.ExternalID,
		Name:       fields.Name,
		Email:      fields.Email,
		Department: fields.Department,
		Phone:      fields.Phone,
		Address:    fields.Address,
		Level:      fields.Level,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		s.logger.Error("entity create failed", "kind", kind, "external_id", fields.ExternalID, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}
	s.logger.Info("created entity", "kind", kind, "external_id", rec.ExternalID, "name", rec.Name)
	return &entity.EntityRef{
		Kind:       kind,
		ID:         rec.ID,
		ExternalID: rec.ExternalID,
	}, nil
}
