package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/SAP-F-2025/tutoring-service/internal/repositories"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVRecord is one row of the kv_store table.
type KVRecord struct {
	Key       string         `gorm:"primaryKey;type:varchar(512)"`
	Value     datatypes.JSON `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time
}

func (KVRecord) TableName() string {
	return "kv_store"
}

type KVPostgreSQL struct {
	db *gorm.DB
}

// NewKVPostgreSQL migrates the kv_store table and returns a store over it.
func NewKVPostgreSQL(db *gorm.DB) (*KVPostgreSQL, error) {
	if err := db.AutoMigrate(&KVRecord{}); err != nil {
		return nil, err
	}
	return &KVPostgreSQL{db: db}, nil
}

func (k *KVPostgreSQL) Get(ctx context.Context, key string) ([]byte, error) {
	var record KVRecord
	if err := k.db.WithContext(ctx).Where("key = ?", key).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrKeyNotFound
		}
		return nil, err
	}
	return record.Value, nil
}

func (k *KVPostgreSQL) Set(ctx context.Context, key string, value []byte) error {
	record := KVRecord{Key: key, Value: datatypes.JSON(value), UpdatedAt: time.Now()}
	return k.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&record).Error
}

func (k *KVPostgreSQL) Delete(ctx context.Context, key string) error {
	return k.db.WithContext(ctx).Where("key = ?", key).Delete(&KVRecord{}).Error
}

func (k *KVPostgreSQL) GetByPrefix(ctx context.Context, prefix string) ([]repositories.KVEntry, error) {
	var records []KVRecord
	if err := k.db.WithContext(ctx).
		Where("key LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%").
		Order("key ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}

	entries := make([]repositories.KVEntry, len(records))
	for i, record := range records {
		entries[i] = repositories.KVEntry{Key: record.Key, Value: record.Value}
	}
	return entries, nil
}

func (k *KVPostgreSQL) Ping(ctx context.Context) error {
	sqlDB, err := k.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (k *KVPostgreSQL) Close() error {
	sqlDB, err := k.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
