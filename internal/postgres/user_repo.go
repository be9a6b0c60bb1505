package postgres

import (
	"context"
	"time"

	"github.com/cwrk-planet/relay-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Get(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRow(ctx, `
		SELECT id, username, display_name, avatar_url, blocked, online, last_seen
		FROM users WHERE id=$1
	`, id).Scan(&u.ID, &u.Username, &u.DisplayName, &u.AvatarURL, &u.Blocked, &u.Online, &u.LastSeen)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetWithFriends loads a user together with the ids of mutually linked friends.
func (r *UserRepository) GetWithFriends(ctx context.Context, id string) (*domain.User, error) {
	u, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT CASE WHEN user_a=$1 THEN user_b ELSE user_a END
		FROM friendships
		WHERE user_a=$1 OR user_b=$1
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var fid string
		if err := rows.Scan(&fid); err != nil {
			return nil, err
		}
		u.Friends = append(u.Friends, fid)
	}
	return u, rows.Err()
}

func (r *UserRepository) SetOnlineStatus(ctx context.Context, id string, online bool, lastSeen time.Time) error {
	cmd, err := r.db.Exec(ctx,
		`UPDATE users SET online=$2, last_seen=$3 WHERE id=$1`,
		id, online, lastSeen)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
