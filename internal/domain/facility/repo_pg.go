package facility

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nephro/dialysis/internal/platform/apperr"
	"github.com/nephro/dialysis/internal/platform/db"
)

var constraints = db.Constraints{
	"room_name_key":             "name",
	"station_room_fk":           "room",
	"station_label_key":         "label",
	"facility_config_singleton": "id",
}

type facilityRepoPG struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) Repository {
	return &facilityRepoPG{pool: pool}
}

func (r *facilityRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

// -- Rooms --

func (r *facilityRepoPG) CreateRoom(ctx context.Context, room *Room) error {
	room.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `INSERT INTO room (id, name) VALUES ($1, $2)`, room.ID, room.Name)
	return db.TranslateError("room", "create", err, constraints)
}

func (r *facilityRepoPG) GetRoom(ctx context.Context, id uuid.UUID) (*Room, error) {
	var room Room
	err := r.conn(ctx).QueryRow(ctx, `SELECT id, name FROM room WHERE id = $1`, id).Scan(&room.ID, &room.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("room", id)
	}
	if err != nil {
		return nil, db.TranslateError("room", "get", err, constraints)
	}
	return &room, nil
}

func (r *facilityRepoPG) GetRoomByName(ctx context.Context, name string) (*Room, error) {
	var room Room
	err := r.conn(ctx).QueryRow(ctx, `SELECT id, name FROM room WHERE name = $1`, name).Scan(&room.ID, &room.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &apperr.NotFoundError{Entity: "room", ID: name}
	}
	if err != nil {
		return nil, db.TranslateError("room", "get by name", err, constraints)
	}
	return &room, nil
}

func (r *facilityRepoPG) ListRooms(ctx context.Context) ([]*Room, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT id, name FROM room ORDER BY name`)
	if err != nil {
		return nil, db.TranslateError("room", "list", err, constraints)
	}
	defer rows.Close()

	var out []*Room
	for rows.Next() {
		var room Room
		if err := rows.Scan(&room.ID, &room.Name); err != nil {
			return nil, db.TranslateError("room", "list", err, constraints)
		}
		out = append(out, &room)
	}
	return out, db.TranslateError("room", "list", rows.Err(), constraints)
}

// -- Stations --

const stationCols = `id, room_id, label, special, station_type`

func scanStation(row pgx.Row) (*Station, error) {
	var s Station
	if err := row.Scan(&s.ID, &s.RoomID, &s.Label, &s.Special, &s.StationType); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *facilityRepoPG) CreateStation(ctx context.Context, s *Station) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO station (`+stationCols+`) VALUES ($1,$2,$3,$4,$5)`,
		s.ID, s.RoomID, s.Label, s.Special, s.StationType)
	return db.TranslateError("station", "create", err, constraints)
}

func (r *facilityRepoPG) GetStation(ctx context.Context, id uuid.UUID) (*Station, error) {
	s, err := scanStation(r.conn(ctx).QueryRow(ctx, `SELECT `+stationCols+` FROM station WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("station", id)
	}
	if err != nil {
		return nil, db.TranslateError("station", "get", err, constraints)
	}
	return s, nil
}

func (r *facilityRepoPG) GetStationByLabel(ctx context.Context, roomID uuid.UUID, label string) (*Station, error) {
	s, err := scanStation(r.conn(ctx).QueryRow(ctx,
		`SELECT `+stationCols+` FROM station WHERE room_id = $1 AND label = $2`, roomID, label))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &apperr.NotFoundError{Entity: "station", ID: label}
	}
	if err != nil {
		return nil, db.TranslateError("station", "get by label", err, constraints)
	}
	return s, nil
}

func (r *facilityRepoPG) ListStations(ctx context.Context, roomID uuid.UUID) ([]*Station, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+stationCols+` FROM station
		WHERE $1 = '00000000-0000-0000-0000-000000000000'::uuid OR room_id = $1
		ORDER BY room_id, label`, roomID)
	if err != nil {
		return nil, db.TranslateError("station", "list", err, constraints)
	}
	defer rows.Close()

	var out []*Station
	for rows.Next() {
		s, err := scanStation(rows)
		if err != nil {
			return nil, db.TranslateError("station", "list", err, constraints)
		}
		out = append(out, s)
	}
	return out, db.TranslateError("station", "list", rows.Err(), constraints)
}

// -- Config --

func (r *facilityRepoPG) InsertConfigIfAbsent(ctx context.Context, c *Config) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO facility_config (id, admin_name, admin_email, admin_phone, scale_access_code, updated_at)
		VALUES (1, $1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`,
		c.AdminName, c.AdminEmail, c.AdminPhone, c.ScaleAccessCode, c.UpdatedAt)
	return db.TranslateError("facility config", "ensure", err, constraints)
}

func (r *facilityRepoPG) GetConfig(ctx context.Context) (*Config, error) {
	var c Config
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT admin_name, admin_email, admin_phone, scale_access_code, updated_at
		FROM facility_config WHERE id = 1`).
		Scan(&c.AdminName, &c.AdminEmail, &c.AdminPhone, &c.ScaleAccessCode, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("facility config", nil)
	}
	if err != nil {
		return nil, db.TranslateError("facility config", "get", err, constraints)
	}
	return &c, nil
}

func (r *facilityRepoPG) UpdateConfig(ctx context.Context, c *Config) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE facility_config SET admin_name=$1, admin_email=$2, admin_phone=$3, scale_access_code=$4, updated_at=$5
		WHERE id = 1`,
		c.AdminName, c.AdminEmail, c.AdminPhone, c.ScaleAccessCode, c.UpdatedAt)
	if err != nil {
		return db.TranslateError("facility config", "update", err, constraints)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("facility config", nil)
	}
	return nil
}
