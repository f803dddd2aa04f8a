package postgres

const schema = `
CREATE TABLE IF NOT EXISTS flip7_rounds (
	id           BIGINT      PRIMARY KEY,
	game_id      TEXT        NOT NULL DEFAULT '',
	round_number INT         NOT NULL DEFAULT 0,
	played_at    TIMESTAMPTZ NOT NULL,
	num_players  INT         NOT NULL,
	players      JSONB       NOT NULL
);
CREATE INDEX IF NOT EXISTS flip7_rounds_game_id_idx ON flip7_rounds (game_id, id);

CREATE TABLE IF NOT EXISTS flip7_games (
	id         TEXT        PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL,
	data       JSONB       NOT NULL
);
`

const (
	insertRoundQ = `
	INSERT INTO flip7_rounds (id, game_id, round_number, played_at, num_players, players)
	VALUES ((SELECT COALESCE(MAX(id), 0) + 1 FROM flip7_rounds), $1, $2, $3, $4, $5)
	RETURNING id`

	selectRoundColumns = `SELECT id, game_id, round_number, played_at, num_players, players FROM flip7_rounds`

	upsertGameQ = `
	INSERT INTO flip7_games (id, created_at, data)
	VALUES ($1, $2, $3)
	ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data`
)
