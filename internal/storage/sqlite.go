// internal/storage/sqlite.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"aquaform/internal/models"
)

var ErrNotFound = errors.New("formulation not found")

// timeLayout has fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps writers serialised and :memory: databases shared.
	db.SetMaxOpenConns(1)

	storage := &SQLiteStorage{db: db}
	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS formulations (
        id TEXT PRIMARY KEY,
        name TEXT NOT NULL,
        species_id TEXT NOT NULL,
        total_cost REAL NOT NULL,
        notes TEXT NOT NULL,
        last_modified TEXT NOT NULL
    );

    CREATE TABLE IF NOT EXISTS formulation_ingredients (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        formulation_id TEXT NOT NULL,
        ingredient_id TEXT NOT NULL,
        name TEXT NOT NULL,
        category TEXT NOT NULL,
        protein REAL NOT NULL,
        lipids REAL NOT NULL,
        fiber REAL NOT NULL,
        ash REAL NOT NULL,
        moisture REAL NOT NULL,
        carbohydrates REAL NOT NULL,
        cost_per_kg REAL NOT NULL,
        weight REAL NOT NULL,
        FOREIGN KEY (formulation_id) REFERENCES formulations(id) ON DELETE CASCADE
    );

    CREATE INDEX IF NOT EXISTS idx_formulations_species ON formulations(species_id);
    CREATE INDEX IF NOT EXISTS idx_formulations_modified ON formulations(last_modified);
    CREATE INDEX IF NOT EXISTS idx_ingredients_formulation ON formulation_ingredients(formulation_id);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// SaveFormulation inserts f or replaces an existing row with the same id,
// ingredient rows included.
func (s *SQLiteStorage) SaveFormulation(ctx context.Context, f *models.Formulation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	formulationQuery := `
        INSERT INTO formulations (id, name, species_id, total_cost, notes, last_modified)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            name = excluded.name,
            species_id = excluded.species_id,
            total_cost = excluded.total_cost,
            notes = excluded.notes,
            last_modified = excluded.last_modified
    `
	_, err = tx.ExecContext(ctx, formulationQuery,
		f.ID, f.Name, f.SpeciesID, f.TotalCost, f.Notes,
		f.LastModified.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to insert formulation: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM formulation_ingredients WHERE formulation_id = ?`, f.ID); err != nil {
		return fmt.Errorf("failed to clear ingredients: %w", err)
	}

	ingredientQuery := `
        INSERT INTO formulation_ingredients (formulation_id, ingredient_id, name, category,
            protein, lipids, fiber, ash, moisture, carbohydrates, cost_per_kg, weight)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	for _, ing := range f.Ingredients {
		n := ing.Nutrients
		_, err = tx.ExecContext(ctx, ingredientQuery,
			f.ID, ing.ID, ing.Name, string(ing.Category),
			n.Protein, n.Lipids, n.Fiber, n.Ash, n.Moisture, n.Carbohydrates,
			ing.CostPerKg, ing.Weight)
		if err != nil {
			return fmt.Errorf("failed to insert ingredient: %w", err)
		}
	}

	return tx.Commit()
}

// GetFormulations lists formulations newest first, optionally for one species.
func (s *SQLiteStorage) GetFormulations(ctx context.Context, speciesID string, limit int) ([]*models.Formulation, error) {
	query := `
        SELECT id, name, species_id, total_cost, notes, last_modified
        FROM formulations
        WHERE 1=1
    `
	args := []interface{}{}

	if speciesID != "" {
		query += " AND species_id = ?"
		args = append(args, speciesID)
	}

	query += " ORDER BY last_modified DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query formulations: %w", err)
	}

	var list []*models.Formulation
	for rows.Next() {
		f, err := scanFormulation(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		list = append(list, f)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate formulations: %w", err)
	}
	// Close before loading children: the pool holds a single connection.
	rows.Close()

	for _, f := range list {
		if err := s.loadIngredients(ctx, f); err != nil {
			return nil, fmt.Errorf("failed to load ingredients for formulation %s: %w", f.ID, err)
		}
	}

	return list, nil
}

func (s *SQLiteStorage) GetFormulation(ctx context.Context, id string) (*models.Formulation, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, name, species_id, total_cost, notes, last_modified
        FROM formulations
        WHERE id = ?
    `, id)
	f, err := scanFormulation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadIngredients(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to load ingredients for formulation %s: %w", f.ID, err)
	}
	return f, nil
}

func (s *SQLiteStorage) DeleteFormulation(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM formulation_ingredients WHERE formulation_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete ingredients: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM formulations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete formulation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanFormulation(row scanner) (*models.Formulation, error) {
	f := &models.Formulation{}
	var modifiedStr string
	if err := row.Scan(&f.ID, &f.Name, &f.SpeciesID, &f.TotalCost, &f.Notes, &modifiedStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan formulation: %w", err)
	}
	var err error
	if f.LastModified, err = time.Parse(timeLayout, modifiedStr); err != nil {
		return nil, fmt.Errorf("failed to parse last_modified: %w", err)
	}
	return f, nil
}

func (s *SQLiteStorage) loadIngredients(ctx context.Context, f *models.Formulation) error {
	query := `
        SELECT ingredient_id, name, category, protein, lipids, fiber, ash, moisture,
            carbohydrates, cost_per_kg, weight
        FROM formulation_ingredients
        WHERE formulation_id = ?
        ORDER BY id
    `

	rows, err := s.db.QueryContext(ctx, query, f.ID)
	if err != nil {
		return fmt.Errorf("failed to query ingredients: %w", err)
	}
	defer rows.Close()

	var ingredients []models.SelectedIngredient
	for rows.Next() {
		var ing models.SelectedIngredient
		var categoryStr string
		n := &ing.Nutrients

		err := rows.Scan(
			&ing.ID, &ing.Name, &categoryStr,
			&n.Protein, &n.Lipids, &n.Fiber, &n.Ash, &n.Moisture, &n.Carbohydrates,
			&ing.CostPerKg, &ing.Weight)
		if err != nil {
			return fmt.Errorf("failed to scan ingredient: %w", err)
		}

		ing.Category = models.Category(categoryStr)
		ingredients = append(ingredients, ing)
	}

	f.Ingredients = ingredients
	return rows.Err()
}
