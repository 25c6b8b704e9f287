package repository

import (
	"context"
	"database/sql"

	"hospital-pos/internal/models"
)

type CatalogRepository struct {
	db *sql.DB
}

func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// GetService returns one catalog item, or nil when it does not exist.
func (r *CatalogRepository) GetService(ctx context.Context, id string) (*models.Service, error) {
	query := `
		SELECT id, name, category, price, is_active, created_at, updated_at
		FROM services WHERE id = $1
	`

	svc := &models.Service{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&svc.ID,
		&svc.Name,
		&svc.Category,
		&svc.Price,
		&svc.IsActive,
		&svc.CreatedAt,
		&svc.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return svc, nil
}

func (r *CatalogRepository) ListServices(ctx context.Context) ([]models.Service, error) {
	query := `
		SELECT id, name, category, price, is_active, created_at, updated_at
		FROM services
		ORDER BY category, name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []models.Service
	for rows.Next() {
		var svc models.Service
		err := rows.Scan(&svc.ID, &svc.Name, &svc.Category, &svc.Price, &svc.IsActive, &svc.CreatedAt, &svc.UpdatedAt)
		if err != nil {
			return nil, err
		}
		services = append(services, svc)
	}

	return services, rows.Err()
}

func (r *CatalogRepository) CreateService(ctx context.Context, svc *models.Service) error {
	query := `
		INSERT INTO services (id, name, category, price, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		svc.ID,
		svc.Name,
		svc.Category,
		svc.Price,
		svc.IsActive,
		svc.CreatedAt,
		svc.UpdatedAt,
	)
	return err
}

// UpdateService rewrites a catalog item. Zero rows affected means the item
// does not exist.
func (r *CatalogRepository) UpdateService(ctx context.Context, svc *models.Service) (int64, error) {
	query := `
		UPDATE services
		SET name = $1, category = $2, price = $3, is_active = $4, updated_at = NOW()
		WHERE id = $5
	`

	res, err := r.db.ExecContext(ctx, query, svc.Name, svc.Category, svc.Price, svc.IsActive, svc.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
