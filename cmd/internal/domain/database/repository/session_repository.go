package repository

import (
	"agenda/cmd/internal/domain/entity"
	"errors"

	"gorm.io/gorm"
)

// DefaultSessionRepository keeps sessions in the relational store.
type DefaultSessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *DefaultSessionRepository {
	return &DefaultSessionRepository{db: db}
}

func (s *DefaultSessionRepository) Create(session *entity.Session) error {
	return s.db.Create(session).Error
}

func (s *DefaultSessionRepository) FindByID(id string) (*entity.Session, error) {
	var session entity.Session
	err := s.db.Where("id = ?", id).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &session, err
}

func (s *DefaultSessionRepository) SetFlashes(id string, flashes []string) error {
	session := &entity.Session{ID: id, Flashes: flashes}
	return s.db.Model(session).Select("Flashes").Updates(session).Error
}

func (s *DefaultSessionRepository) Delete(id string) error {
	return s.db.Where("id = ?", id).Delete(&entity.Session{}).Error
}

func (s *DefaultSessionRepository) DeleteByUserID(userID int) error {
	return s.db.Where("user_id = ?", userID).Delete(&entity.Session{}).Error
}
