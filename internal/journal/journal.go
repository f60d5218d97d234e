package journal

import (
	"time"

	"go.uber.org/zap"

	"github.com/awsl-project/hostlink/internal/lifecycle"
	"github.com/awsl-project/hostlink/internal/manifest"
)

// Entry is one recorded transition.
type Entry struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	CreatedAt  time.Time `gorm:"index"`
	InstanceID string    `gorm:"size:64;index"`
	Transition string    `gorm:"size:16"`
	FromState  string    `gorm:"size:16"`
	ToState    string    `gorm:"size:16"`
	Generation uint64
	LaunchMode string `gorm:"size:16"`
	Error      string `gorm:"type:text"`
}

// TableName pins the table name across dialects.
func (Entry) TableName() string {
	return "lifecycle_journal"
}

// Journal records transitions of one process instance.
type Journal struct {
	db         *DB
	instanceID string
	mode       manifest.LaunchMode
	logger     *zap.Logger
}

// New creates a journal writing entries tagged with instanceID and mode.
func New(db *DB, instanceID string, mode manifest.LaunchMode, log *zap.Logger) *Journal {
	if log == nil {
		log = zap.NewNop()
	}
	return &Journal{db: db, instanceID: instanceID, mode: mode, logger: log}
}

// ObserveTransition implements lifecycle.Observer. Write failures are logged
// and never reach the state machine.
func (j *Journal) ObserveTransition(t lifecycle.Transition) {
	e := Entry{
		CreatedAt:  t.At,
		InstanceID: j.instanceID,
		Transition: string(t.Kind),
		FromState:  string(t.From),
		ToState:    string(t.To),
		Generation: t.Generation,
		LaunchMode: string(j.mode),
	}
	if t.Err != nil {
		e.Error = t.Err.Error()
	}
	if err := j.db.gorm.Create(&e).Error; err != nil {
		j.logger.Warn("Failed to record transition", zap.String("transition", e.Transition), zap.Error(err))
	}
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []Entry
	err := j.db.gorm.Order("id DESC").Limit(limit).Find(&entries).Error
	return entries, err
}

// CountByInstance returns how many transitions instanceID recorded.
func (j *Journal) CountByInstance(instanceID string) (int64, error) {
	var n int64
	err := j.db.gorm.Model(&Entry{}).Where("instance_id = ?", instanceID).Count(&n).Error
	return n, err
}
