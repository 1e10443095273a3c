// Package postgres persists user accounts, favorites and ratings. Recipes
// themselves live in memory; only user-generated state needs durability.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const uniqueViolation = "23505"

// User is a stored account record.
type User struct {
	ID             int
	Email          string
	HashedPassword string
	FullName       string
	CreatedAt      time.Time
}

// RatingAggregate is the rating summary for one recipe.
type RatingAggregate struct {
	Average float64
	Count   int
}

// Store wraps the Postgres connection pool.
type Store struct {
	db *sql.DB
}

// New opens the connection pool and verifies connectivity.
func New(ctx context.Context, cfg *config.DatabaseConfig) (*Store, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	common.LogInfo("postgres connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Name),
	)
	return &Store{db: db}, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports connectivity, used by the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Bootstrap creates the schema and indexes if they do not exist yet.
func (s *Store) Bootstrap(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			hashed_password TEXT NOT NULL,
			full_name TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS favorites (
			id SERIAL PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			recipe_id INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (user_id, recipe_id)
		)`,
		`CREATE TABLE IF NOT EXISTS ratings (
			id SERIAL PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			recipe_id INTEGER NOT NULL,
			rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (user_id, recipe_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users (email)`,
		`CREATE INDEX IF NOT EXISTS idx_favorites_user_id ON favorites (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_favorites_recipe_id ON favorites (recipe_id)`,
		`CREATE INDEX IF NOT EXISTS idx_ratings_user_id ON ratings (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_ratings_recipe_id ON ratings (recipe_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
	}
	return nil
}

// CreateUser inserts an account and returns the stored record.
// ErrUserExists on a duplicate email.
func (s *Store) CreateUser(ctx context.Context, email, hashedPassword, fullName string) (*User, error) {
	u := &User{Email: email, HashedPassword: hashedPassword, FullName: fullName}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users (email, hashed_password, full_name)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		email, hashedPassword, fullName,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, common.ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// UserByEmail fetches an account by email, ErrUserNotFound when absent.
func (s *Store) UserByEmail(ctx context.Context, email string) (*User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, email, hashed_password, full_name, created_at
		 FROM users WHERE email = $1`, email))
}

// UserByID fetches an account by ID, ErrUserNotFound when absent.
func (s *Store) UserByID(ctx context.Context, id int) (*User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, email, hashed_password, full_name, created_at
		 FROM users WHERE id = $1`, id))
}

func (s *Store) scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.HashedPassword, &u.FullName, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, common.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// DeleteUser removes the account; favorites and ratings go with it via
// ON DELETE CASCADE.
func (s *Store) DeleteUser(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrUserNotFound
	}
	return nil
}

// AddFavorite records a favorite; duplicates are a no-op.
func (s *Store) AddFavorite(ctx context.Context, userID, recipeID int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO favorites (user_id, recipe_id) VALUES ($1, $2)
		 ON CONFLICT (user_id, recipe_id) DO NOTHING`,
		userID, recipeID)
	if err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

// RemoveFavorite deletes a favorite; reports whether one was present.
func (s *Store) RemoveFavorite(ctx context.Context, userID, recipeID int) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND recipe_id = $2`,
		userID, recipeID)
	if err != nil {
		return false, fmt.Errorf("remove favorite: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove favorite: %w", err)
	}
	return n > 0, nil
}

// IsFavorited reports whether a user has favorited a recipe.
func (s *Store) IsFavorited(ctx context.Context, userID, recipeID int) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM favorites WHERE user_id = $1 AND recipe_id = $2)`,
		userID, recipeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}
	return exists, nil
}

// FavoriteRecipeIDs returns the user's favorited recipe IDs, newest first.
func (s *Store) FavoriteRecipeIDs(ctx context.Context, userID int) ([]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT recipe_id FROM favorites WHERE user_id = $1 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpsertRating inserts or replaces a user's rating for a recipe.
func (s *Store) UpsertRating(ctx context.Context, userID, recipeID, rating int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ratings (user_id, recipe_id, rating) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, recipe_id) DO UPDATE SET rating = EXCLUDED.rating`,
		userID, recipeID, rating)
	if err != nil {
		return fmt.Errorf("upsert rating: %w", err)
	}
	return nil
}

// UserRating returns a user's rating for a recipe, 0 when unrated.
func (s *Store) UserRating(ctx context.Context, userID, recipeID int) (int, error) {
	var rating int
	err := s.db.QueryRowContext(ctx,
		`SELECT rating FROM ratings WHERE user_id = $1 AND recipe_id = $2`,
		userID, recipeID).Scan(&rating)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get rating: %w", err)
	}
	return rating, nil
}

// RecipeRatingAggregate recomputes the rating summary for one recipe.
func (s *Store) RecipeRatingAggregate(ctx context.Context, recipeID int) (RatingAggregate, error) {
	var agg RatingAggregate
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(AVG(rating), 0), COUNT(*) FROM ratings WHERE recipe_id = $1`,
		recipeID).Scan(&agg.Average, &agg.Count)
	if err != nil {
		return RatingAggregate{}, fmt.Errorf("aggregate ratings: %w", err)
	}
	return agg, nil
}

// RatingAggregates loads the rating summaries for all rated recipes, used to
// hydrate the in-memory corpus at startup.
func (s *Store) RatingAggregates(ctx context.Context) (map[int]RatingAggregate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT recipe_id, AVG(rating), COUNT(*) FROM ratings GROUP BY recipe_id`)
	if err != nil {
		return nil, fmt.Errorf("load rating aggregates: %w", err)
	}
	defer rows.Close()

	aggs := make(map[int]RatingAggregate)
	for rows.Next() {
		var id int
		var agg RatingAggregate
		if err := rows.Scan(&id, &agg.Average, &agg.Count); err != nil {
			return nil, fmt.Errorf("scan rating aggregate: %w", err)
		}
		aggs[id] = agg
	}
	return aggs, rows.Err()
}
