package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"zhamesh/internal/domain"
	"zhamesh/internal/repository"
)

var _ repository.Repository = (*Repository)(nil)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db    *sql.DB
	runID string
}

// New creates a new SQLite repository
func New(dbPath string) (*Repository, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		dsn = dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer; also keeps an in-memory database on a single connection
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db, runID: uuid.NewString()}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS observations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		packet INTEGER NOT NULL,
		retrieve_ts TEXT NOT NULL,
		neighbor_address TEXT NOT NULL,
		neighbor_known INTEGER NOT NULL DEFAULT 0,
		neighbor_lqi INTEGER NOT NULL,
		neighbor_rssi INTEGER NOT NULL,
		neighbor_delta_last_seen REAL NOT NULL,
		neighbor_last_seen_ts TEXT NOT NULL,
		neighbor_device_type TEXT NOT NULL,
		neighbor_available TEXT NOT NULL,
		neighbor_depth INTEGER NOT NULL,
		neighbor_relationship TEXT NOT NULL,
		peer_nwk TEXT,
		peer_lqi INTEGER NOT NULL,
		peer_rssi INTEGER NOT NULL,
		peer_available TEXT NOT NULL,
		peer_address TEXT NOT NULL,
		peer_device_type TEXT NOT NULL,
		peer_is_neighbor INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS device_names (
		address TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS offline_flags (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		packet INTEGER NOT NULL,
		retrieve_ts TEXT NOT NULL,
		address TEXT NOT NULL,
		device_type TEXT NOT NULL,
		last_seen_ts TEXT NOT NULL,
		delta_last_seen REAL NOT NULL,
		is_neighbor INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_observations_neighbor ON observations(neighbor_address);
	CREATE INDEX IF NOT EXISTS idx_observations_peer ON observations(peer_address);
	CREATE INDEX IF NOT EXISTS idx_offline_address ON offline_flags(address);
	`

	_, err := r.db.Exec(schema)
	return err
}

// RunID identifies rows written by this process
func (r *Repository) RunID() string {
	return r.runID
}

// WritePass stores one pass in a single transaction. Names are recorded
// only for devices the registry actually knew.
func (r *Repository) WritePass(ctx context.Context, pass *domain.Pass) error {
	if len(pass.Observations) == 0 && len(pass.Offline) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	obsStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO observations (
			run_id, packet, retrieve_ts,
			neighbor_address, neighbor_known, neighbor_lqi, neighbor_rssi,
			neighbor_delta_last_seen, neighbor_last_seen_ts, neighbor_device_type,
			neighbor_available, neighbor_depth, neighbor_relationship,
			peer_nwk, peer_lqi, peer_rssi, peer_available, peer_address,
			peer_device_type, peer_is_neighbor
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare observation insert: %w", err)
	}
	defer obsStmt.Close()

	nameStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO device_names (address, name, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(address) DO UPDATE SET name = excluded.name, updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare name upsert: %w", err)
	}
	defer nameStmt.Close()

	capturedAt := formatTime(pass.CapturedAt)

	for _, o := range pass.Observations {
		_, err := obsStmt.ExecContext(ctx,
			r.runID, o.Sequence, formatTime(o.CapturedAt),
			o.NeighborAddress, boolToInt(o.NeighborKnown), o.NeighborLQI, o.NeighborRSSI,
			o.ElapsedMinutes, formatTime(o.NeighborLastSeen), string(o.NeighborRole),
			string(o.NeighborAvailable), o.NeighborDepth, o.Relationship,
			stringToNull(o.PeerNetworkAddress), o.PeerLQI, o.PeerRSSI, string(o.PeerAvailable), o.PeerAddress,
			string(o.PeerRole), boolToInt(o.PeerIsNeighbor),
		)
		if err != nil {
			return fmt.Errorf("failed to insert observation %s>%s: %w", o.PeerAddress, o.NeighborAddress, err)
		}

		if o.NeighborKnown && o.NeighborName != "" {
			if _, err := nameStmt.ExecContext(ctx, o.NeighborAddress, o.NeighborName, capturedAt); err != nil {
				return fmt.Errorf("failed to upsert name for %s: %w", o.NeighborAddress, err)
			}
		}
	}

	for _, f := range pass.Offline {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO offline_flags (
				run_id, packet, retrieve_ts, address, device_type,
				last_seen_ts, delta_last_seen, is_neighbor
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, r.runID, f.Sequence, formatTime(f.CapturedAt), f.Address, string(f.Role),
			formatTime(f.LastSeen), f.ElapsedMinutes, boolToInt(f.IsNeighbor))
		if err != nil {
			return fmt.Errorf("failed to insert offline flag for %s: %w", f.Address, err)
		}

		if f.Name != "" {
			if _, err := nameStmt.ExecContext(ctx, f.Address, f.Name, capturedAt); err != nil {
				return fmt.Errorf("failed to upsert name for %s: %w", f.Address, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit pass %d: %w", pass.Sequence, err)
	}
	return nil
}

// ListObservations returns observations newest first, with names joined
// from device_names
func (r *Repository) ListObservations(ctx context.Context, filter repository.ObservationFilter) ([]domain.Observation, error) {
	query := `
		SELECT o.packet, o.retrieve_ts,
			o.neighbor_address, nn.name, o.neighbor_known, o.neighbor_lqi, o.neighbor_rssi,
			o.neighbor_delta_last_seen, o.neighbor_last_seen_ts, o.neighbor_device_type,
			o.neighbor_available, o.neighbor_depth, o.neighbor_relationship,
			o.peer_nwk, o.peer_lqi, o.peer_rssi, o.peer_available, o.peer_address, pn.name,
			o.peer_device_type, o.peer_is_neighbor
		FROM observations o
		LEFT JOIN device_names nn ON nn.address = o.neighbor_address
		LEFT JOIN device_names pn ON pn.address = o.peer_address
	`
	var args []interface{}
	if filter.Address != "" {
		query += " WHERE o.neighbor_address = ? OR o.peer_address = ?"
		args = append(args, filter.Address, filter.Address)
	}
	query += " ORDER BY o.id DESC LIMIT ?"
	args = append(args, limitOrDefault(filter.Limit))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	defer rows.Close()

	observations := make([]domain.Observation, 0)
	for rows.Next() {
		var (
			o                               domain.Observation
			capturedAt, lastSeen            string
			neighborName, peerName, peerNwk sql.NullString
			neighborRole, neighborAvail     string
			peerAvail, peerRole             string
			neighborKnown, peerIsNeighbor   int
		)

		if err := rows.Scan(&o.Sequence, &capturedAt,
			&o.NeighborAddress, &neighborName, &neighborKnown, &o.NeighborLQI, &o.NeighborRSSI,
			&o.ElapsedMinutes, &lastSeen, &neighborRole,
			&neighborAvail, &o.NeighborDepth, &o.Relationship,
			&peerNwk, &o.PeerLQI, &o.PeerRSSI, &peerAvail, &o.PeerAddress, &peerName,
			&peerRole, &peerIsNeighbor,
		); err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}

		if o.CapturedAt, err = parseTime(capturedAt); err != nil {
			return nil, err
		}
		if o.NeighborLastSeen, err = parseTime(lastSeen); err != nil {
			return nil, err
		}

		o.NeighborKnown = neighborKnown != 0
		if o.NeighborKnown {
			o.NeighborName = nullToString(neighborName)
		}
		o.NeighborRole = domain.DeviceRole(neighborRole)
		o.NeighborAvailable = domain.Availability(neighborAvail)
		o.PeerNetworkAddress = nullToString(peerNwk)
		o.PeerAvailable = domain.Availability(peerAvail)
		o.PeerName = nullToString(peerName)
		o.PeerRole = domain.DeviceRole(peerRole)
		o.PeerIsNeighbor = peerIsNeighbor != 0

		observations = append(observations, o)
	}

	return observations, rows.Err()
}

// ListOffline returns offline flags newest first
func (r *Repository) ListOffline(ctx context.Context, limit int) ([]domain.OfflineFlag, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT f.packet, f.retrieve_ts, f.address, n.name, f.device_type,
			f.last_seen_ts, f.delta_last_seen, f.is_neighbor
		FROM offline_flags f
		LEFT JOIN device_names n ON n.address = f.address
		ORDER BY f.id DESC LIMIT ?
	`, limitOrDefault(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query offline flags: %w", err)
	}
	defer rows.Close()

	flags := make([]domain.OfflineFlag, 0)
	for rows.Next() {
		var (
			f                    domain.OfflineFlag
			capturedAt, lastSeen string
			name                 sql.NullString
			role                 string
			isNeighbor           int
		)

		if err := rows.Scan(&f.Sequence, &capturedAt, &f.Address, &name, &role,
			&lastSeen, &f.ElapsedMinutes, &isNeighbor); err != nil {
			return nil, fmt.Errorf("failed to scan offline flag: %w", err)
		}

		if f.CapturedAt, err = parseTime(capturedAt); err != nil {
			return nil, err
		}
		if f.LastSeen, err = parseTime(lastSeen); err != nil {
			return nil, err
		}
		f.Name = nullToString(name)
		f.Role = domain.DeviceRole(role)
		f.IsNeighbor = isNeighbor != 0

		flags = append(flags, f)
	}

	return flags, rows.Err()
}

// DeviceNames returns every recorded address → name mapping
func (r *Repository) DeviceNames(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT address, name FROM device_names`)
	if err != nil {
		return nil, fmt.Errorf("failed to query device names: %w", err)
	}
	defer rows.Close()

	names := make(map[string]string)
	for rows.Next() {
		var address, name string
		if err := rows.Scan(&address, &name); err != nil {
			return nil, fmt.Errorf("failed to scan device name: %w", err)
		}
		names[address] = name
	}
	return names, rows.Err()
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return repository.DefaultLimit
	}
	return limit
}
