package store

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS vehicle_records (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    partition_key TEXT NOT NULL,
    sort_key      INTEGER NOT NULL,
    program       TEXT NOT NULL DEFAULT '',
    subscriber    TEXT NOT NULL DEFAULT '',
    vin           TEXT NOT NULL DEFAULT '',
    status        TEXT NOT NULL DEFAULT '',
    message       TEXT NOT NULL DEFAULT '',
    data          TEXT NOT NULL DEFAULT '{}',
    created_at    TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_vehicle_records_key ON vehicle_records(partition_key, sort_key);

CREATE TABLE IF NOT EXISTS vehicle_supplements (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    partition_key TEXT NOT NULL,
    sort_key      INTEGER NOT NULL,
    program       TEXT NOT NULL DEFAULT '',
    subscriber    TEXT NOT NULL DEFAULT '',
    data          TEXT NOT NULL DEFAULT '{}',
    created_at    TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);
CREATE INDEX IF NOT EXISTS idx_vehicle_supplements_key ON vehicle_supplements(partition_key, sort_key);

CREATE TABLE IF NOT EXISTS outbox (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    topic       TEXT NOT NULL,
    payload     BLOB NOT NULL,
    msg_type    TEXT NOT NULL DEFAULT '',
    retries     INTEGER NOT NULL DEFAULT 0,
    created_at  TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    sent_at     TEXT
);
CREATE INDEX IF NOT EXISTS idx_outbox_pending ON outbox(sent_at);

CREATE TABLE IF NOT EXISTS operators (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);
`
