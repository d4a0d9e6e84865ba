// Package documentctrl keeps a registry of ingested documents in Postgres.
package documentctrl

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ragchat/src/core/rag"
)

type Document struct {
	ID          int64  `gorm:"primaryKey"`
	Filename    string `gorm:"uniqueIndex;not null"`
	ContentType string `gorm:"not null"`
	ChunkCount  int    `gorm:"not null"`
	IngestedAt  time.Time
}

func (Document) TableName() string {
	return "documents"
}

type DocumentService struct {
	db *gorm.DB
}

func NewDocumentService(db *gorm.DB) (*DocumentService, error) {
	if err := db.AutoMigrate(&Document{}); err != nil {
		return nil, err
	}
	return &DocumentService{db: db}, nil
}

// Save records a document, replacing any previous row for the same filename
// so a re-ingested document keeps a single registry entry.
func (s *DocumentService) Save(ctx context.Context, doc rag.RegisteredDocument) error {
	row := Document{
		ID:          doc.ID,
		Filename:    doc.Filename,
		ContentType: doc.ContentType,
		ChunkCount:  doc.ChunkCount,
		IngestedAt:  doc.IngestedAt,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "filename"}},
		DoUpdates: clause.AssignmentColumns([]string{"content_type", "chunk_count", "ingested_at"}),
	}).Create(&row).Error
	if err != nil {
		return &rag.StoreError{Op: "save document", Err: err}
	}
	return nil
}

func (s *DocumentService) List(ctx context.Context) ([]rag.RegisteredDocument, error) {
	var rows []Document
	if err := s.db.WithContext(ctx).Order("filename asc").Find(&rows).Error; err != nil {
		return nil, &rag.StoreError{Op: "list documents", Err: err}
	}
	docs := make([]rag.RegisteredDocument, len(rows))
	for i, row := range rows {
		docs[i] = rag.RegisteredDocument{
			ID:          row.ID,
			Filename:    row.Filename,
			ContentType: row.ContentType,
			ChunkCount:  row.ChunkCount,
			IngestedAt:  row.IngestedAt,
		}
	}
	return docs, nil
}
