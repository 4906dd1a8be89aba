package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shopkeep/internal/audit"
)

// PostgresStore persists products in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed product store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const productColumns = `id, name, COALESCE(image_url, ''), price, stock, status, available_at`

func (s *PostgresStore) List(ctx context.Context) ([]Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products ORDER BY name ASC`, productColumns)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor
	return collectProducts(rows)
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status Status) ([]Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE status = $1 ORDER BY name ASC`, productColumns)
	rows, err := s.db.QueryContext(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("list products by status: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor
	return collectProducts(rows)
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)
	p, err := scanProduct(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find product by id: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) Create(ctx context.Context, p *Product) error {
	if p == nil {
		return fmt.Errorf("product is required")
	}
	query := `
		INSERT INTO products (name, image_url, price, stock, status, available_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		p.Name,
		p.ImageURL,
		p.Price,
		p.Stock,
		string(p.Status),
		p.AvailableAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, p *Product) error {
	if p == nil {
		return fmt.Errorf("product is required")
	}
	query := `
		UPDATE products
		SET name = $2, image_url = NULLIF($3, ''), price = $4, stock = $5,
		    status = $6, available_at = $7
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		p.ID,
		p.Name,
		p.ImageURL,
		p.Price,
		p.Stock,
		string(p.Status),
		p.AvailableAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update product rows: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product rows: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

// Truncate removes every product. Administrative bulk wipe only.
func (s *PostgresStore) Truncate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM products"); err != nil {
		return fmt.Errorf("truncate products: %w", err)
	}
	return nil
}

// FindRefs resolves display references for the given product ids. Missing ids
// are simply absent from the result.
func (s *PostgresStore) FindRefs(ctx context.Context, ids []int64) (map[int64]audit.ProductRef, error) {
	if len(ids) == 0 {
		return map[int64]audit.ProductRef{}, nil
	}
	query := `
		SELECT id, name, price, status
		FROM products
		WHERE id = ANY($1)
	`
	rows, err := s.db.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("find product refs: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	refs := make(map[int64]audit.ProductRef, len(ids))
	for rows.Next() {
		var ref audit.ProductRef
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.Price, &ref.Status); err != nil {
			return nil, fmt.Errorf("scan product ref: %w", err)
		}
		refs[ref.ID] = ref
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product refs: %w", err)
	}
	return refs, nil
}

type productRow interface {
	Scan(dest ...any) error
}

func scanProduct(row productRow) (*Product, error) {
	var p Product
	var status string
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.ImageURL,
		&p.Price,
		&p.Stock,
		&status,
		&p.AvailableAt,
	); err != nil {
		return nil, err
	}
	p.Status = Status(status)
	return &p, nil
}

func collectProducts(rows *sql.Rows) ([]Product, error) {
	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}
