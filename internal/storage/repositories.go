package storage

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record conflict")
)

// DB represents a database connection interface.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// VehicleFilter narrows vehicle listings.
type VehicleFilter struct {
	Query        string // substring match on manufacturer or model
	Manufacturer string // exact match, case-insensitive
	Limit        int
}

// VehicleRepository handles vehicle lookups.
type VehicleRepository struct {
	db DB
}

// NewVehicleRepository creates a new vehicle repository.
func NewVehicleRepository(db DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

const vehicleColumns = `id, manufacturer, model, year, price, engine_info,
		transmission, fuel_type, mpg, body_type, created_at`

func scanVehicle(scanner interface{ Scan(...interface{}) error }) (*Vehicle, error) {
	v := &Vehicle{}
	err := scanner.Scan(
		&v.ID, &v.Manufacturer, &v.Model, &v.Year, &v.Price, &v.EngineInfo,
		&v.Transmission, &v.FuelType, &v.MPG, &v.BodyType, &v.CreatedAt,
	)
	return v, err
}

// GetByID retrieves a vehicle by ID.
func (r *VehicleRepository) GetByID(ctx context.Context, id int64) (*Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM cars WHERE id = $1`
	v, err := scanVehicle(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// List retrieves vehicles matching the filter, ordered by manufacturer and
// model.
func (r *VehicleRepository) List(ctx context.Context, filter VehicleFilter) ([]*Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM cars`
	var conds []string
	var args []interface{}

	if filter.Query != "" {
		args = append(args, "%"+strings.ToLower(filter.Query)+"%")
		conds = append(conds, `(LOWER(manufacturer) LIKE $1 OR LOWER(model) LIKE $1)`)
	}
	if filter.Manufacturer != "" {
		args = append(args, strings.ToLower(filter.Manufacturer))
		if len(args) == 1 {
			conds = append(conds, `LOWER(manufacturer) = $1`)
		} else {
			conds = append(conds, `LOWER(manufacturer) = $2`)
		}
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY manufacturer, model"
	if filter.Limit > 0 {
		query += " LIMIT " + strconv.Itoa(filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []*Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

// Sample retrieves up to limit vehicles for prompt inventory context.
func (r *VehicleRepository) Sample(ctx context.Context, limit int) ([]*Vehicle, error) {
	return r.List(ctx, VehicleFilter{Limit: limit})
}

// ListManufacturers retrieves the distinct manufacturers in the inventory.
func (r *VehicleRepository) ListManufacturers(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT manufacturer FROM cars ORDER BY manufacturer`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Create inserts a vehicle and assigns its generated ID.
func (r *VehicleRepository) Create(ctx context.Context, v *Vehicle) error {
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO cars (manufacturer, model, year, price, engine_info,
			transmission, fuel_type, mpg, body_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	result, err := r.db.ExecContext(ctx, query,
		v.Manufacturer, v.Model, v.Year, v.Price, v.EngineInfo,
		v.Transmission, v.FuelType, v.MPG, v.BodyType, v.CreatedAt,
	)
	if err != nil {
		return err
	}
	if id, err := result.LastInsertId(); err == nil && id > 0 {
		v.ID = id
	}
	return nil
}

// Count returns the number of vehicles in the inventory.
func (r *VehicleRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cars`).Scan(&n)
	return n, err
}

// ReviewRepository handles review persistence.
type ReviewRepository struct {
	db DB
}

// NewReviewRepository creates a new review repository.
func NewReviewRepository(db DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create persists a review. Pros and cons are stored newline-joined.
func (r *ReviewRepository) Create(ctx context.Context, review *Review) error {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	if review.ReviewDate.IsZero() {
		review.ReviewDate = time.Now()
	}

	query := `
		INSERT INTO reviews (id, car_id, review_title, review_text, rating,
			author, pros, cons, review_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		review.ID.String(), review.VehicleID, review.Title, review.Text, review.Rating,
		review.Author, strings.Join(review.Pros, "\n"), strings.Join(review.Cons, "\n"),
		review.ReviewDate,
	)
	return err
}

// ListByVehicle retrieves reviews for a vehicle, newest first.
func (r *ReviewRepository) ListByVehicle(ctx context.Context, vehicleID int64) ([]*Review, error) {
	query := `
		SELECT id, car_id, review_title, review_text, rating, author, pros, cons, review_date
		FROM reviews
		WHERE car_id = $1
		ORDER BY review_date DESC
	`
	rows, err := r.db.QueryContext(ctx, query, vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

func scanReview(scanner interface{ Scan(...interface{}) error }) (*Review, error) {
	review := &Review{}
	var id, pros, cons string
	err := scanner.Scan(
		&id, &review.VehicleID, &review.Title, &review.Text, &review.Rating,
		&review.Author, &pros, &cons, &review.ReviewDate,
	)
	if err != nil {
		return nil, err
	}
	review.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	review.Pros = splitLines(pros)
	review.Cons = splitLines(cons)
	return review, nil
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// Repositories bundles all repositories together.
type Repositories struct {
	Vehicles *VehicleRepository
	Reviews  *ReviewRepository
}

// NewRepositories creates all repositories with the given database connection.
func NewRepositories(db DB) *Repositories {
	return &Repositories{
		Vehicles: NewVehicleRepository(db),
		Reviews:  NewReviewRepository(db),
	}
}
