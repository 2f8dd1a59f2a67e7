package store

import (
	"time"
)

// Operator is a console account allowed to inspect audit records.
type Operator struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

func (db *DB) CreateOperator(username, passwordHash string) error {
	_, err := db.Exec(db.Q(`INSERT INTO operators (username, password_hash) VALUES (?, ?)`), username, passwordHash)
	return err
}

func (db *DB) GetOperator(username string) (*Operator, error) {
	var u Operator
	var createdAt any
	err := db.QueryRow(db.Q(`SELECT id, username, password_hash, created_at FROM operators WHERE username=?`), username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &createdAt)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = parseTime(createdAt)
	return &u, nil
}

func (db *DB) OperatorExists() (bool, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM operators`).Scan(&count)
	return count > 0, err
}

// SetOperatorPassword replaces the operator's password hash, creating the
// operator when it does not exist yet.
func (db *DB) SetOperatorPassword(username, passwordHash string) error {
	res, err := db.Exec(db.Q(`UPDATE operators SET password_hash=? WHERE username=?`), passwordHash, username)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return db.CreateOperator(username, passwordHash)
	}
	return nil
}
