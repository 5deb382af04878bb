package app

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is the DDL applied at startup. Statements are idempotent so
// restarts are safe without a migration tool.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	phone         TEXT,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS user_roles (
	id      TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users (id),
	role    TEXT NOT NULL,
	UNIQUE (user_id, role)
);

CREATE TABLE IF NOT EXISTS driver_profiles (
	user_id             TEXT PRIMARY KEY REFERENCES users (id),
	license_number      TEXT NOT NULL,
	car_number          TEXT NOT NULL,
	car_type            TEXT NOT NULL,
	car_color           TEXT NOT NULL,
	verification_status TEXT NOT NULL DEFAULT 'PENDING'
);

CREATE TABLE IF NOT EXISTS donor_profiles (
	user_id TEXT PRIMARY KEY REFERENCES users (id)
);

CREATE TABLE IF NOT EXISTS passenger_profiles (
	user_id TEXT PRIMARY KEY REFERENCES users (id)
);

CREATE TABLE IF NOT EXISTS rides (
	id              TEXT PRIMARY KEY,
	driver_id       TEXT NOT NULL REFERENCES users (id),
	origin_lat      DOUBLE PRECISION NOT NULL,
	origin_lng      DOUBLE PRECISION NOT NULL,
	destination_lat DOUBLE PRECISION NOT NULL,
	destination_lng DOUBLE PRECISION NOT NULL,
	requested_time  TIMESTAMPTZ NOT NULL,
	capacity        INTEGER NOT NULL CHECK (capacity >= 0),
	fare            DOUBLE PRECISION NOT NULL DEFAULT 0,
	status          TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS passenger_requests (
	ride_id      TEXT NOT NULL REFERENCES rides (id),
	passenger_id TEXT NOT NULL REFERENCES users (id),
	status       TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (ride_id, passenger_id)
);

CREATE TABLE IF NOT EXISTS chats (
	id      TEXT PRIMARY KEY,
	ride_id TEXT NOT NULL UNIQUE REFERENCES rides (id)
);

CREATE TABLE IF NOT EXISTS messages (
	id        TEXT PRIMARY KEY,
	chat_id   TEXT NOT NULL REFERENCES chats (id),
	author_id TEXT NOT NULL REFERENCES users (id),
	content   TEXT NOT NULL,
	sent_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS notifications (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES users (id),
	message    TEXT NOT NULL,
	read       BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS donations (
	id             TEXT PRIMARY KEY,
	donor_id       TEXT NOT NULL REFERENCES users (id),
	recipient_id   TEXT NOT NULL REFERENCES users (id),
	amount         DOUBLE PRECISION NOT NULL,
	payment_method TEXT NOT NULL,
	description    TEXT,
	transaction_id TEXT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS feedback (
	id         TEXT PRIMARY KEY,
	author_id  TEXT NOT NULL REFERENCES users (id),
	ride_id    TEXT NOT NULL REFERENCES rides (id),
	issue_type TEXT NOT NULL,
	comments   TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_rides_driver ON rides (driver_id);
CREATE INDEX IF NOT EXISTS idx_requests_passenger ON passenger_requests (passenger_id);
CREATE INDEX IF NOT EXISTS idx_messages_chat ON messages (chat_id);
CREATE INDEX IF NOT EXISTS idx_messages_author ON messages (author_id);
CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications (user_id);
CREATE INDEX IF NOT EXISTS idx_donations_recipient ON donations (recipient_id);
CREATE INDEX IF NOT EXISTS idx_feedback_ride ON feedback (ride_id);
`

// Migrate applies the schema to the database.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
