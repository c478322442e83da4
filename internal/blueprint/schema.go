package blueprint

// PostgresSchema creates the header and point tables if they are missing.
// point_count doubles as the next free seq of a blueprint.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS blueprints (
    author      VARCHAR(255) NOT NULL,
    name        VARCHAR(255) NOT NULL,
    point_count INTEGER NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (author, name)
);

CREATE TABLE IF NOT EXISTS points (
    author         VARCHAR(255) NOT NULL,
    blueprint_name VARCHAR(255) NOT NULL,
    seq            INTEGER NOT NULL,
    x              INTEGER NOT NULL,
    y              INTEGER NOT NULL,
    PRIMARY KEY (author, blueprint_name, seq),
    FOREIGN KEY (author, blueprint_name) REFERENCES blueprints (author, name) ON DELETE CASCADE
);
`

// SQLiteSchema is the SQLite rendition of PostgresSchema.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS blueprints (
    author      TEXT NOT NULL,
    name        TEXT NOT NULL,
    point_count INTEGER NOT NULL DEFAULT 0,
    created_at  TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (author, name)
);

CREATE TABLE IF NOT EXISTS points (
    author         TEXT NOT NULL,
    blueprint_name TEXT NOT NULL,
    seq            INTEGER NOT NULL,
    x              INTEGER NOT NULL,
    y              INTEGER NOT NULL,
    PRIMARY KEY (author, blueprint_name, seq),
    FOREIGN KEY (author, blueprint_name) REFERENCES blueprints (author, name) ON DELETE CASCADE
);
`
