package repository

import (
	"context"
	"errors"

	"github.com/Chikothe3rd/campuseats/internal/models"
	"github.com/Chikothe3rd/campuseats/internal/repository/postgres"
	"github.com/jackc/pgx/v5"
)

const (
	insertVendorQuery = `
						INSERT INTO vendors (id, user_id, name, is_active, preparation_time)
						VALUES ($1, $2, $3, $4, $5)
						RETURNING created_at
`
	selectVendorByUserIDQuery = `
						SELECT id, user_id, name, is_active, preparation_time, created_at FROM vendors
						WHERE user_id = $1
`
	selectVendorByIDQuery = `
						SELECT id, user_id, name, is_active, preparation_time, created_at FROM vendors
						WHERE id = $1
`
)

// VendorRepository implements VendorRepository interface
type VendorRepository struct {
	db *postgres.DB
}

// NewVendorRepository creates new VendorRepository instance
func NewVendorRepository(db *postgres.DB) *VendorRepository {
	return &VendorRepository{db: db}
}

// CreateVendor inserts new vendor to database
func (vr *VendorRepository) CreateVendor(ctx context.Context, vendor *models.Vendor) (*models.Vendor, error) {
	err := vr.db.QueryRow(ctx, insertVendorQuery,
		vendor.ID, vendor.UserID, vendor.Name, vendor.IsActive, vendor.PreparationTime).Scan(&vendor.CreatedAt)
	if err != nil {
		if errCode := vr.db.ErrorCode(err); errCode == pgErrUniqueViolationCode {
			return nil, models.ErrConflictData
		}
		return nil, err
	}

	return vendor, nil
}

// GetVendorByUserID returns the vendor record owned by user
func (vr *VendorRepository) GetVendorByUserID(ctx context.Context, userID string) (*models.Vendor, error) {
	vendor := models.Vendor{}
	err := vr.db.QueryRow(ctx, selectVendorByUserIDQuery, userID).
		Scan(&vendor.ID, &vendor.UserID, &vendor.Name, &vendor.IsActive, &vendor.PreparationTime, &vendor.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	return &vendor, nil
}

// GetVendorByID returns vendor by id
func (vr *VendorRepository) GetVendorByID(ctx context.Context, id string) (*models.Vendor, error) {
	vendor := models.Vendor{}
	err := vr.db.QueryRow(ctx, selectVendorByIDQuery, id).
		Scan(&vendor.ID, &vendor.UserID, &vendor.Name, &vendor.IsActive, &vendor.PreparationTime, &vendor.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	return &vendor, nil
}
