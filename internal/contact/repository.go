package contact

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Repository persists contact submissions.
type Repository interface {
	Save(ctx context.Context, submission *Submission) error
}

// GormRepository stores submissions through gorm.
type GormRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

var _ Repository = (*GormRepository)(nil)

// NewGormRepository constructs a gorm-backed repository.
func NewGormRepository(db *gorm.DB, logger *logrus.Logger) (*GormRepository, error) {
	if db == nil {
		return nil, eris.New("gorm DB is required")
	}
	return &GormRepository{db: db, logger: logger}, nil
}

// Save inserts the submission.
func (r *GormRepository) Save(ctx context.Context, submission *Submission) error {
	if submission == nil {
		return eris.New("submission is nil")
	}
	if err := r.db.WithContext(ctx).Create(submission).Error; err != nil {
		logError(r.logger, submission.ID, err, "saving contact submission")
		return eris.Wrapf(err, "saving contact submission: %s", submission.ID)
	}
	return nil
}

// Migrate applies the contact schema using gorm's AutoMigrate.
func Migrate(ctx context.Context, db *gorm.DB, logger *logrus.Logger) error {
	if db == nil {
		return eris.New("gorm DB is required")
	}

	logFields := logrus.Fields{"component": "contact.migrate"}
	if logger != nil {
		logger.WithFields(logFields).Info("applying contact schema")
	}

	if err := db.WithContext(ctx).AutoMigrate(&Submission{}); err != nil {
		if logger != nil {
			logger.WithFields(logFields).WithField("error", err.Error()).Error("contact schema migration failed")
		}
		return eris.Wrap(err, "auto migrating contact schema")
	}
	return nil
}

const insertSubmissionSQL = `INSERT INTO ` + TableName + `
	(id, name, email, message, user_agent, ip_address, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

// PostgresRepository writes submissions straight into the hosted Postgres
// database over a database/sql pool.
type PostgresRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

var _ Repository = (*PostgresRepository)(nil)

// NewPostgresRepository constructs a repository on an open *sql.DB.
func NewPostgresRepository(db *sql.DB, logger *logrus.Logger) (*PostgresRepository, error) {
	if db == nil {
		return nil, eris.New("sql DB is required")
	}
	return &PostgresRepository{db: db, logger: logger}, nil
}

// Save inserts the submission.
func (r *PostgresRepository) Save(ctx context.Context, submission *Submission) error {
	if submission == nil {
		return eris.New("submission is nil")
	}

	_, err := r.db.ExecContext(ctx, insertSubmissionSQL,
		submission.ID,
		submission.Name,
		submission.Email,
		submission.Message,
		nullable(submission.UserAgent),
		nullable(submission.IPAddress),
		submission.CreatedAt.UTC(),
	)
	if err != nil {
		logError(r.logger, submission.ID, err, "inserting contact submission")
		return eris.Wrapf(err, "inserting contact submission: %s", submission.ID)
	}
	return nil
}

func nullable(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

func logError(logger *logrus.Logger, id string, err error, message string) {
	if logger == nil {
		return
	}
	logger.WithFields(logrus.Fields{
		"component":     "contact",
		"submission_id": id,
		"error":         err.Error(),
	}).Error(message)
}
