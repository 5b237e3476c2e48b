// Package reconcile keeps an audit trail of fulfillment saga runs in
// PostgreSQL. The saga's two writes are independent and can diverge; the
// audit log makes divergences visible to operators without attempting any
// automatic repair.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// SagaAudit is one recorded saga run: which of the two steps succeeded.
type SagaAudit struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	SagaID     string    `gorm:"index" json:"sagaId"`
	RequestID  string    `gorm:"index" json:"requestId"`
	DonorID    string    `json:"donorId"`
	DonationID string    `json:"donationId,omitempty"`
	FulfillOK  bool      `json:"fulfillOk"`
	RecordOK   bool      `json:"recordOk"`
	Detail     string    `json:"detail,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// AuditLog persists saga audit rows.
type AuditLog struct {
	db *gorm.DB
}

// NewAuditLog migrates the audit table and returns the log.
func NewAuditLog(db *gorm.DB) (*AuditLog, error) {
	if err := db.AutoMigrate(&SagaAudit{}); err != nil {
		return nil, fmt.Errorf("migrate saga audit table: %w", err)
	}
	return &AuditLog{db: db}, nil
}

// Append records one saga run.
func (l *AuditLog) Append(ctx context.Context, row *SagaAudit) error {
	if err := l.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("append saga audit: %w", err)
	}
	return nil
}

// Divergences lists saga runs where exactly one of the two steps succeeded:
// a request marked fulfilled with no donation written, or the reverse.
func (l *AuditLog) Divergences(ctx context.Context) ([]SagaAudit, error) {
	var rows []SagaAudit
	err := l.db.WithContext(ctx).
		Where("fulfill_ok <> record_ok").
		Order("created_at desc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list saga divergences: %w", err)
	}
	return rows, nil
}
