package store

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS vehicle_records (
    id            BIGSERIAL PRIMARY KEY,
    partition_key TEXT NOT NULL,
    sort_key      BIGINT NOT NULL,
    program       TEXT NOT NULL DEFAULT '',
    subscriber    TEXT NOT NULL DEFAULT '',
    vin           TEXT NOT NULL DEFAULT '',
    status        TEXT NOT NULL DEFAULT '',
    message       TEXT NOT NULL DEFAULT '',
    data          JSONB NOT NULL DEFAULT '{}',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_vehicle_records_key ON vehicle_records(partition_key, sort_key);

CREATE TABLE IF NOT EXISTS vehicle_supplements (
    id            BIGSERIAL PRIMARY KEY,
    partition_key TEXT NOT NULL,
    sort_key      BIGINT NOT NULL,
    program       TEXT NOT NULL DEFAULT '',
    subscriber    TEXT NOT NULL DEFAULT '',
    data          JSONB NOT NULL DEFAULT '{}',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_vehicle_supplements_key ON vehicle_supplements(partition_key, sort_key);

CREATE TABLE IF NOT EXISTS outbox (
    id          BIGSERIAL PRIMARY KEY,
    topic       TEXT NOT NULL,
    payload     BYTEA NOT NULL,
    msg_type    TEXT NOT NULL DEFAULT '',
    retries     INTEGER NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    sent_at     TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_outbox_pending ON outbox(sent_at) WHERE sent_at IS NULL;

CREATE TABLE IF NOT EXISTS operators (
    id            BIGSERIAL PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
