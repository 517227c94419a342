package database

import (
	"time"

	"github.com/clickmapper/clickmapper/internal/models"

	"github.com/pkg/errors"
)

// Repository handles all database operations for the launch journal
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// CreateLaunch inserts a new launch event into the database
func (r *Repository) CreateLaunch(event *models.LaunchEvent) error {
	result := r.db.Create(event)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert launch event")
	}
	return nil
}

// GetLaunchesBySession retrieves the launches of one session in order
func (r *Repository) GetLaunchesBySession(sessionID string) ([]*models.LaunchEvent, error) {
	var events []*models.LaunchEvent
	result := r.db.Where("session_id = ?", sessionID).Order("timestamp ASC, id ASC").Find(&events)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query launch events")
	}
	return events, nil
}

// GetLaunchesSince retrieves all launch events since a given time
// Simple query that returns raw events - the reporter does the aggregation
func (r *Repository) GetLaunchesSince(since time.Time) ([]*models.LaunchEvent, error) {
	var events []*models.LaunchEvent
	result := r.db.Where("timestamp >= ?", since).Order("timestamp ASC, id ASC").Find(&events)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query launch events")
	}
	return events, nil
}

// CreateErrorLog inserts a new error log into the database
func (r *Repository) CreateErrorLog(errorLog *models.ErrorLog) error {
	result := r.db.Create(errorLog)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert error log")
	}
	return nil
}

// CountErrorsSince counts fatal session errors since a given time
func (r *Repository) CountErrorsSince(since time.Time) (int64, error) {
	var count int64
	result := r.db.Model(&models.ErrorLog{}).Where("timestamp >= ?", since).Count(&count)
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to count error logs")
	}
	return count, nil
}

// Clear removes all journal rows
func (r *Repository) Clear() error {
	if result := r.db.Exec("DELETE FROM launch_events"); result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear launch events")
	}
	if result := r.db.Exec("DELETE FROM error_logs"); result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear error logs")
	}
	return nil
}
