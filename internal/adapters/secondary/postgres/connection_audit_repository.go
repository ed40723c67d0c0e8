package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/waxhands/workshop-backend/internal/core/domain"
	apperrors "github.com/waxhands/workshop-backend/internal/core/errors"
	"github.com/waxhands/workshop-backend/internal/core/ports"
)

// ConnectionAuditRepository persists the connection audit trail. One row per
// websocket session; the disconnect columns stay NULL while the session is
// open.
type ConnectionAuditRepository struct {
	pool *pgxpool.Pool
}

var _ ports.ConnectionAuditRecorder = (*ConnectionAuditRepository)(nil)

// NewConnectionAuditRepository creates a new connection audit repository.
func NewConnectionAuditRepository(pool *pgxpool.Pool) *ConnectionAuditRepository {
	return &ConnectionAuditRepository{pool: pool}
}

// RecordConnect inserts the audit row for a freshly registered connection.
func (r *ConnectionAuditRepository) RecordConnect(ctx context.Context, audit *domain.ConnectionAudit) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO connection_audit (connection_id, user_id, role, remote_addr, connected_at)
		VALUES ($1, $2, $3, $4, $5)`,
		audit.ConnectionID,
		nullIfEmpty(audit.UserID),
		string(audit.Role),
		audit.RemoteAddr,
		audit.ConnectedAt,
	)
	return err
}

// RecordDisconnect stamps the disconnect time and reason on the session row.
// Recording a disconnect twice keeps the first stamp.
func (r *ConnectionAuditRepository) RecordDisconnect(ctx context.Context, connectionID uuid.UUID, reason domain.DisconnectReason, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE connection_audit
		SET disconnected_at = $2, disconnect_reason = $3
		WHERE connection_id = $1 AND disconnected_at IS NULL`,
		connectionID,
		at,
		string(reason),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// GetByConnectionID fetches one session's audit row.
func (r *ConnectionAuditRepository) GetByConnectionID(ctx context.Context, connectionID uuid.UUID) (*domain.ConnectionAudit, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT connection_id, user_id, role, remote_addr, connected_at, disconnected_at, disconnect_reason
		FROM connection_audit
		WHERE connection_id = $1`,
		connectionID,
	)

	var audit domain.ConnectionAudit
	var userID *string
	var role string
	var reason *string
	err := row.Scan(
		&audit.ConnectionID,
		&userID,
		&role,
		&audit.RemoteAddr,
		&audit.ConnectedAt,
		&audit.DisconnectedAt,
		&reason,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	if userID != nil {
		audit.UserID = *userID
	}
	audit.Role = domain.Role(role)
	if reason != nil {
		r := domain.DisconnectReason(*reason)
		audit.DisconnectReason = &r
	}
	return &audit, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
