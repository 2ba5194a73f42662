package sqlite

import (
	"context"
	"time"

	"github.com/stallfront/stallfront/internal/shop/domain"
)

type sessionsRepo struct {
	q querier
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO sessions (id, token_hash, identity_id, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.TokenHash, s.IdentityID, s.ExpiresAt.UTC(), s.CreatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *sessionsRepo) GetSessionByTokenHash(ctx context.Context, hash string) (domain.Session, error) {
	var s domain.Session
	err := r.q.QueryRowContext(ctx, `
		SELECT id, token_hash, identity_id, expires_at, created_at
		FROM sessions
		WHERE token_hash = ? AND expires_at > ?`,
		hash, time.Now().UTC(),
	).Scan(&s.ID, &s.TokenHash, &s.IdentityID, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	return s, nil
}

func (r *sessionsRepo) DeleteSessionByTokenHash(ctx context.Context, hash string) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM sessions WHERE token_hash = ?`, hash)
	return err
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= ?`, time.Now().UTC())
	return err
}
