package repository

import (
	"agenda/cmd/internal/domain/entity"
	"errors"

	"gorm.io/gorm"
)

type DefaultAppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *DefaultAppointmentRepository {
	return &DefaultAppointmentRepository{db: db}
}

func (a *DefaultAppointmentRepository) FindByID(id int) (*entity.Appointment, error) {
	var appt entity.Appointment
	err := a.db.First(&appt, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &appt, err
}

func (a *DefaultAppointmentRepository) FindByUserID(userID int) ([]*entity.Appointment, error) {
	var appts []*entity.Appointment
	err := a.db.Where("user_id = ?", userID).
		Order("scheduled_at asc").
		Find(&appts).Error
	return appts, err
}

// FindFromByUserID returns the user's appointments scheduled at or after from.
func (a *DefaultAppointmentRepository) FindFromByUserID(userID int, from int64) ([]*entity.Appointment, error) {
	var appts []*entity.Appointment
	err := a.db.Where("user_id = ?", userID).
		Where("scheduled_at >= ?", from).
		Order("scheduled_at asc").
		Find(&appts).Error
	return appts, err
}

// FindBetweenByUserID returns the user's appointments in [from, to).
func (a *DefaultAppointmentRepository) FindBetweenByUserID(userID int, from, to int64) ([]*entity.Appointment, error) {
	if from >= to {
		return nil, errors.New("start time must be before end time")
	}

	var appts []*entity.Appointment
	err := a.db.Where("user_id = ?", userID).
		Where("scheduled_at >= ?", from).
		Where("scheduled_at < ?", to).
		Order("scheduled_at asc").
		Find(&appts).Error
	return appts, err
}

// FindWithinByUserID returns the user's appointments in [from, to].
func (a *DefaultAppointmentRepository) FindWithinByUserID(userID int, from, to int64) ([]*entity.Appointment, error) {
	if from > to {
		return nil, errors.New("start time must not be after end time")
	}

	var appts []*entity.Appointment
	err := a.db.Where("user_id = ?", userID).
		Where("scheduled_at BETWEEN ? AND ?", from, to).
		Order("scheduled_at asc").
		Find(&appts).Error
	return appts, err
}

func (a *DefaultAppointmentRepository) CountByUserID(userID int) (int64, error) {
	var count int64
	err := a.db.Model(&entity.Appointment{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (a *DefaultAppointmentRepository) Save(appointment *entity.Appointment) error {
	return a.db.Omit("Owner").Save(appointment).Error
}

func (a *DefaultAppointmentRepository) Delete(appointment *entity.Appointment) error {
	return a.db.Delete(appointment).Error
}

func (a *DefaultAppointmentRepository) DeleteByUserID(userID int) error {
	return a.db.Where("user_id = ?", userID).Delete(&entity.Appointment{}).Error
}
