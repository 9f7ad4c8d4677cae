package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mbolis/survey-api/model"
)

func InsertUser(ctx context.Context, db Querier, u *model.User) error {
	err := db.QueryRowContext(ctx, `
		INSERT INTO user (username, password_hash, is_admin) VALUES (?, ?, ?)
		RETURNING id`,
		u.Username,
		u.PasswordHash,
		u.IsAdmin,
	).Scan(&u.ID)
	if err != nil {
		return fmt.Errorf("insert user %q: %w", u.Username, err)
	}
	return nil
}

func GetUserByName(ctx context.Context, db Querier, username string) (*model.User, error) {
	u := &model.User{}
	err := db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, is_admin
		FROM user
		WHERE username = ?`,
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsAdmin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", username, err)
	}
	return u, nil
}

func UserExists(ctx context.Context, db Querier, id int64) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT count(*) FROM user WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check user %d: %w", id, err)
	}
	return n > 0, nil
}

func DeleteUser(ctx context.Context, db Querier, id int64) error {
	return deleteByID(ctx, db, "user", id)
}

func StoreToken(ctx context.Context, db Querier, username, tokenID, refreshTokenID string, expiration time.Time) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO token (username, token_id, refresh_token_id, expiration)
		VALUES (?, ?, ?, ?)`,
		username,
		tokenID,
		refreshTokenID,
		expiration,
	)
	if err != nil {
		return fmt.Errorf("store token for %q: %w", username, err)
	}
	return nil
}

// ConsumeToken deletes the token pair and returns its expiration.
// Each refresh token can be used only once.
func ConsumeToken(ctx context.Context, db Querier, username, tokenID, refreshTokenID string) (expiration time.Time, err error) {
	var rowID int64
	err = db.QueryRowContext(ctx, `
		SELECT rowid, expiration
		FROM token
		WHERE username = ?
			AND token_id = ?
			AND refresh_token_id = ?`,
		username,
		tokenID,
		refreshTokenID,
	).Scan(&rowID, &expiration)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("consume token for %q: %w", username, err)
	}

	// a concurrent refresh may have consumed it in the meantime
	res, err := db.ExecContext(ctx, `DELETE FROM token WHERE rowid = ?`, rowID)
	if err != nil {
		return time.Time{}, fmt.Errorf("consume token for %q: %w", username, err)
	}
	if err := verifyAffected(res); err != nil {
		return time.Time{}, err
	}
	return expiration, nil
}
