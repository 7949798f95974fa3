package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema lists the DDL statements executed by Migrate, in dependency
// order.  Every statement is idempotent.  The unique key on tickets is
// what guarantees a seat is sold at most once per performance; the
// reservation service relies on it instead of checking availability
// before inserting.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS actors (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		first_name VARCHAR(255) NOT NULL,
		last_name VARCHAR(255) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS genres (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		UNIQUE KEY uq_genres_name (name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS plays (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		KEY idx_plays_title (title)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS play_actors (
		play_id BIGINT UNSIGNED NOT NULL,
		actor_id BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (play_id, actor_id),
		CONSTRAINT fk_play_actors_play FOREIGN KEY (play_id) REFERENCES plays (id) ON DELETE CASCADE,
		CONSTRAINT fk_play_actors_actor FOREIGN KEY (actor_id) REFERENCES actors (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS play_genres (
		play_id BIGINT UNSIGNED NOT NULL,
		genre_id BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (play_id, genre_id),
		CONSTRAINT fk_play_genres_play FOREIGN KEY (play_id) REFERENCES plays (id) ON DELETE CASCADE,
		CONSTRAINT fk_play_genres_genre FOREIGN KEY (genre_id) REFERENCES genres (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS theater_halls (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		seat_rows INT NOT NULL,
		seats_in_row INT NOT NULL,
		UNIQUE KEY uq_theater_halls_name (name),
		CONSTRAINT chk_theater_halls_rows CHECK (seat_rows > 0),
		CONSTRAINT chk_theater_halls_seats CHECK (seats_in_row > 0)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS performances (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		play_id BIGINT UNSIGNED NOT NULL,
		theater_hall_id BIGINT UNSIGNED NOT NULL,
		show_time DATETIME NOT NULL,
		KEY idx_performances_show_time (show_time),
		CONSTRAINT fk_performances_play FOREIGN KEY (play_id) REFERENCES plays (id) ON DELETE CASCADE,
		CONSTRAINT fk_performances_hall FOREIGN KEY (theater_hall_id) REFERENCES theater_halls (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		created_at DATETIME(6) NOT NULL,
		KEY idx_reservations_user_created (user_id, created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS tickets (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		row_num INT NOT NULL,
		seat_num INT NOT NULL,
		performance_id BIGINT UNSIGNED NOT NULL,
		reservation_id BIGINT UNSIGNED NOT NULL,
		UNIQUE KEY uq_tickets_seat (performance_id, row_num, seat_num),
		KEY idx_tickets_reservation (reservation_id),
		CONSTRAINT fk_tickets_performance FOREIGN KEY (performance_id) REFERENCES performances (id) ON DELETE CASCADE,
		CONSTRAINT fk_tickets_reservation FOREIGN KEY (reservation_id) REFERENCES reservations (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing tables.  It stops at the first failing
// statement and reports its position.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i+1, err)
		}
	}
	return nil
}
