package models

import (
	"database/sql"
	"time"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"

	"github.com/Zer0phucks/pubhub-connect/internal/storage"
)

// Connection is the durable record of a project's link to one social
// platform. Rows are never deleted; disconnecting clears the token
// references and flips the connected flag so history survives.
//
// Raw token references are storage-only and never serialized to clients.
type Connection struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProjectID uuid.UUID `json:"project_id" db:"project_id"`
	Platform  Platform  `json:"platform" db:"platform"`

	Connected   bool   `json:"connected" db:"connected"`
	Username    string `json:"username" db:"username"`
	DisplayName string `json:"display_name" db:"display_name"`
	Followers   int64  `json:"followers" db:"followers"`
	AutoPost    bool   `json:"auto_post" db:"auto_post"`

	AccessTokenRef  storage.NullString `json:"-" db:"access_token_ref"`
	RefreshTokenRef storage.NullString `json:"-" db:"refresh_token_ref"`

	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty" db:"token_expires_at"`
	LastRefreshAt  *time.Time `json:"last_refresh_at,omitempty" db:"last_refresh_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

func (Connection) TableName() string {
	tableName := "connections"
	return tableName
}

// NewConnection creates a disconnected connection row for a project/platform
// pair.
func NewConnection(projectID uuid.UUID, platform Platform) *Connection {
	return &Connection{
		ID:        uuid.Must(uuid.NewV4()),
		ProjectID: projectID,
		Platform:  platform,
	}
}

// Validate enforces the token/connected invariant: a connected row must hold
// an access token reference and a disconnected row must hold none.
func (c *Connection) Validate() error {
	if c.Connected && c.AccessTokenRef == "" {
		return errors.New("connected connection is missing its access token reference")
	}
	if !c.Connected && (c.AccessTokenRef != "" || c.RefreshTokenRef != "") {
		return errors.New("disconnected connection still holds token references")
	}
	return nil
}

// FindConnection returns the connection row for a project/platform pair.
func FindConnection(tx *storage.Connection, projectID uuid.UUID, platform Platform) (*Connection, error) {
	obj := &Connection{}
	if err := tx.Q().Where("project_id = ? and platform = ?", projectID, platform).First(obj); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return nil, ConnectionNotFoundError{}
		}
		return nil, errors.Wrap(err, "error finding connection")
	}

	return obj, nil
}

// findConnectionForUpdate locks the row for the remainder of the enclosing
// transaction so racing callbacks serialize on it.
func findConnectionForUpdate(tx *storage.Connection, projectID uuid.UUID, platform Platform) (*Connection, error) {
	obj := &Connection{}
	err := tx.RawQuery(
		"SELECT * FROM "+obj.TableName()+" WHERE project_id = ? AND platform = ? LIMIT 1 FOR UPDATE",
		projectID, platform,
	).First(obj)
	if err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return nil, ConnectionNotFoundError{}
		}
		return nil, errors.Wrap(err, "error locking connection")
	}

	return obj, nil
}

// FindConnectionsByProjectID returns every connection row owned by a project.
func FindConnectionsByProjectID(tx *storage.Connection, projectID uuid.UUID) ([]*Connection, error) {
	conns := []*Connection{}
	if err := tx.Q().Where("project_id = ?", projectID).Order("platform asc").All(&conns); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return conns, nil
		}
		return nil, errors.Wrap(err, "error finding connections")
	}
	return conns, nil
}

// ConnectionUpdate carries the fields a completed authorization writes into
// the project's connection row.
type ConnectionUpdate struct {
	Username        string
	DisplayName     string
	Followers       int64
	AccessTokenRef  string
	RefreshTokenRef string
	TokenExpiresAt  *time.Time
	CompletedAt     time.Time
}

// UpsertConnected records a successful authorization. Exactly one row exists
// per (project, platform); reconnecting updates it in place. When two
// completions race, the later CompletedAt wins and the earlier write is
// superseded silently.
func UpsertConnected(tx *storage.Connection, projectID uuid.UUID, platform Platform, update ConnectionUpdate) (*Connection, error) {
	var conn *Connection
	err := tx.Transaction(func(rtx *storage.Connection) error {
		existing, terr := findConnectionForUpdate(rtx, projectID, platform)
		if terr != nil {
			if !IsNotFoundError(terr) {
				return terr
			}
			existing = NewConnection(projectID, platform)
			if terr := rtx.Create(existing); terr != nil {
				return errors.Wrap(terr, "error creating connection")
			}
			// re-read under lock so pop's timestamps are populated
			if existing, terr = findConnectionForUpdate(rtx, projectID, platform); terr != nil {
				return terr
			}
		}

		if existing.LastRefreshAt != nil && existing.LastRefreshAt.After(update.CompletedAt) {
			// a fresher completion already landed; this writer lost the race
			conn = existing
			return nil
		}

		existing.Connected = true
		existing.Username = update.Username
		existing.DisplayName = update.DisplayName
		if update.Followers > 0 {
			existing.Followers = update.Followers
		}
		existing.AccessTokenRef = storage.NullString(update.AccessTokenRef)
		existing.RefreshTokenRef = storage.NullString(update.RefreshTokenRef)
		existing.TokenExpiresAt = update.TokenExpiresAt
		completedAt := update.CompletedAt
		existing.LastRefreshAt = &completedAt

		if terr := existing.Validate(); terr != nil {
			return terr
		}
		if terr := rtx.Update(existing); terr != nil {
			return errors.Wrap(terr, "error updating connection")
		}

		conn = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Disconnect clears the token references and flips the connected flag.
// Idempotent: disconnecting a platform that was never connected returns a
// cleared row without error, and the row is never deleted.
func Disconnect(tx *storage.Connection, projectID uuid.UUID, platform Platform) (*Connection, error) {
	var conn *Connection
	err := tx.Transaction(func(rtx *storage.Connection) error {
		existing, terr := findConnectionForUpdate(rtx, projectID, platform)
		if terr != nil {
			if IsNotFoundError(terr) {
				// never connected; nothing to revoke
				conn = NewConnection(projectID, platform)
				return nil
			}
			return terr
		}

		if !existing.Connected && existing.AccessTokenRef == "" {
			conn = existing
			return nil
		}

		existing.Connected = false
		existing.AccessTokenRef = ""
		existing.RefreshTokenRef = ""
		existing.TokenExpiresAt = nil

		if terr := existing.Validate(); terr != nil {
			return terr
		}
		if terr := rtx.Update(existing); terr != nil {
			return errors.Wrap(terr, "error disconnecting connection")
		}

		conn = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// SetAutoPost toggles automatic posting for a connected platform.
func SetAutoPost(tx *storage.Connection, projectID uuid.UUID, platform Platform, enabled bool) (*Connection, error) {
	var conn *Connection
	err := tx.Transaction(func(rtx *storage.Connection) error {
		existing, terr := findConnectionForUpdate(rtx, projectID, platform)
		if terr != nil {
			return terr
		}

		existing.AutoPost = enabled
		if terr := rtx.UpdateOnly(existing, "auto_post"); terr != nil {
			return errors.Wrap(terr, "error updating auto_post")
		}

		conn = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// TruncateAll deletes all data from the database. Not intended for use
// outside of tests.
func TruncateAll(conn *storage.Connection) error {
	return conn.RawQuery("DELETE FROM " + Connection{}.TableName()).Exec()
}
