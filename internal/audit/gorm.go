package audit

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/dmrogers-hpc/dseq/pkg/config"
	"github.com/dmrogers-hpc/dseq/pkg/telemetry"
)

// collectiveRow is the GORM model backing the audit table.
type collectiveRow struct {
	ID        uint `gorm:"primarykey"`
	Op        string
	Rank      int
	Procs     int
	Elements  int
	DurationNs int64
	CreatedAt time.Time
}

func (collectiveRow) TableName() string { return "collective_calls" }

// GormRecorder persists Records through GORM, with the dialector
// chosen by config.AuditConfig.Type (postgres, mysql, or sqlite).
type GormRecorder struct {
	db *gorm.DB
}

// NewGormDB opens a GORM connection for the configured audit backend,
// mirroring the teacher's dialector-selection factory.
func NewGormDB(cfg *config.AuditConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Type {
	case "postgres", "postgresql":
		dsn := fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database,
		)
		dialector = postgres.Open(dsn)
	case "mysql":
		dsn := fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?parseTime=true&loc=Local",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
		)
		dialector = mysql.Open(dsn)
	case "sqlite", "":
		path := cfg.Database
		if path == "" {
			path = "dseq_audit.db"
		}
		dialector = sqlite.Open(path)
	default:
		return nil, fmt.Errorf("unsupported audit database type: %s", cfg.Type)
	}

	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	if telemetry.Enabled() {
		if err := db.Use(tracing.NewPlugin()); err != nil {
			return nil, fmt.Errorf("failed to enable audit telemetry: %w", err)
		}
	}

	if cfg.Type == "postgres" || cfg.Type == "postgresql" || cfg.Type == "mysql" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		maxConns := cfg.MaxConns
		if maxConns <= 0 {
			maxConns = 10
		}
		sqlDB.SetMaxOpenConns(maxConns)
		sqlDB.SetMaxIdleConns(maxConns / 2)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := db.AutoMigrate(&collectiveRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate audit schema: %w", err)
	}

	return db, nil
}

// NewGormRecorder wraps an already-open GORM connection.
func NewGormRecorder(db *gorm.DB) *GormRecorder {
	return &GormRecorder{db: db}
}

// Record inserts one row per call.
func (r *GormRecorder) Record(ctx context.Context, rec Record) error {
	row := &collectiveRow{
		Op:         rec.Op,
		Rank:       rec.Rank,
		Procs:      rec.Procs,
		Elements:   rec.Elements,
		DurationNs: rec.Duration.Nanoseconds(),
		CreatedAt:  rec.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to record collective call: %w", err)
	}
	return nil
}
