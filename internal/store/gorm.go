package store

import (
	"context"
	"time"

	"github.com/google/logger"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"lotto/internal/models"
)

// operatorID is the primary key of the operator singleton row.
const operatorID = 1

type playerRecord struct {
	ID            int64  `gorm:"primaryKey;autoIncrement:false"`
	Name          string `gorm:"uniqueIndex;size:128;not null"`
	Balance       int64  `gorm:"not null"`
	TotalWinnings int64  `gorm:"not null;default:0"`
	Tickets       datatypes.JSONType[[]models.Ticket]
	UpdatedAt     time.Time
}

func (playerRecord) TableName() string { return "players" }

type operatorRecord struct {
	ID               uint  `gorm:"primaryKey;autoIncrement:false"`
	Balance          int64 `gorm:"not null"`
	SubmittedTickets datatypes.JSONType[[]models.Ticket]
	UpdatedAt        time.Time
}

func (operatorRecord) TableName() string { return "operators" }

func toPlayerRecord(p models.Player) playerRecord {
	tickets := p.Tickets
	if tickets == nil {
		tickets = []models.Ticket{}
	}
	return playerRecord{
		ID:            p.ID,
		Name:          p.Name,
		Balance:       p.Balance,
		TotalWinnings: p.TotalWinnings,
		Tickets:       datatypes.NewJSONType(tickets),
	}
}

func (r playerRecord) player() models.Player {
	tickets := r.Tickets.Data()
	if tickets == nil {
		tickets = []models.Ticket{}
	}
	return models.Player{
		ID:            r.ID,
		Name:          r.Name,
		Balance:       r.Balance,
		TotalWinnings: r.TotalWinnings,
		Tickets:       tickets,
	}
}

// GormStore persists to PostgreSQL through gorm.
type GormStore struct {
	db *gorm.DB
}

// OpenGorm connects to the PostgreSQL database at dsn and optionally migrates
// the schema.
func OpenGorm(dsn string, autoMigrate bool) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, errors.Wrap(err, "connect to database")
	}
	logger.Info("Connected to database")

	if autoMigrate {
		logger.Info("Starting auto-migration...")
		if err := db.AutoMigrate(&playerRecord{}, &operatorRecord{}); err != nil {
			return nil, errors.Wrap(err, "auto-migrate")
		}
		logger.Info("Auto migration completed")
	}
	return NewGormStore(db), nil
}

// NewGormStore wraps an open gorm handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Close releases the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translate(err error, format string, args ...interface{}) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errors.Wrapf(ErrNotFound, format, args...)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errors.Wrapf(ErrDuplicate, format, args...)
	}
	return errors.Wrapf(err, format, args...)
}

func (s *GormStore) FindPlayerByName(ctx context.Context, name string) (models.Player, error) {
	var rec playerRecord
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&rec).Error; err != nil {
		return models.Player{}, translate(err, "find player %q", name)
	}
	return rec.player(), nil
}

func (s *GormStore) GetPlayer(ctx context.Context, id int64) (models.Player, error) {
	var rec playerRecord
	if err := s.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return models.Player{}, translate(err, "get player %d", id)
	}
	return rec.player(), nil
}

func (s *GormStore) CreatePlayer(ctx context.Context, p models.Player) error {
	rec := toPlayerRecord(p)
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return translate(err, "create player %d", p.ID)
	}
	return nil
}

func (s *GormStore) SavePlayer(ctx context.Context, p models.Player) error {
	rec := toPlayerRecord(p)
	if err := s.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return translate(err, "save player %d", p.ID)
	}
	return nil
}

func (s *GormStore) ListPlayers(ctx context.Context) ([]models.Player, error) {
	var recs []playerRecord
	if err := s.db.WithContext(ctx).Order("name").Find(&recs).Error; err != nil {
		return nil, translate(err, "list players")
	}
	out := make([]models.Player, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.player())
	}
	return out, nil
}

func (s *GormStore) GetOperator(ctx context.Context) (models.Operator, error) {
	var rec operatorRecord
	err := s.db.WithContext(ctx).First(&rec, operatorID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Operator{SubmittedTickets: []models.Ticket{}}, nil
	}
	if err != nil {
		return models.Operator{}, translate(err, "get operator")
	}
	tickets := rec.SubmittedTickets.Data()
	if tickets == nil {
		tickets = []models.Ticket{}
	}
	return models.Operator{Balance: rec.Balance, SubmittedTickets: tickets}, nil
}

func (s *GormStore) SaveOperator(ctx context.Context, op models.Operator) error {
	tickets := op.SubmittedTickets
	if tickets == nil {
		tickets = []models.Ticket{}
	}
	rec := operatorRecord{
		ID:               operatorID,
		Balance:          op.Balance,
		SubmittedTickets: datatypes.NewJSONType(tickets),
	}
	if err := s.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return translate(err, "save operator")
	}
	return nil
}
