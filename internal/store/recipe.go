package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dukerupert/ladle/internal/model"
)

type RecipeStore struct {
	db *sql.DB
}

func NewRecipeStore(db *sql.DB) *RecipeStore {
	return &RecipeStore{db: db}
}

// RecipeParams carries the caller-supplied recipe fields. Ingredient,
// instruction, meal-type, and tag lists are stored as JSON text columns.
type RecipeParams struct {
	Title        string
	PhotoURL     string
	Ingredients  []model.Ingredient
	Instructions []string
	PrepMinutes  *int
	CookMinutes  *int
	Servings     int
	MealTypes    []string
	Tags         []string
	SourceURL    string
}

func marshalList(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal list: %w", err)
	}
	return string(data), nil
}

func (p RecipeParams) encode() (ingredients, instructions, mealTypes, tags string, err error) {
	if p.Ingredients == nil {
		p.Ingredients = []model.Ingredient{}
	}
	if p.Instructions == nil {
		p.Instructions = []string{}
	}
	if p.MealTypes == nil {
		p.MealTypes = []string{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if ingredients, err = marshalList(p.Ingredients); err != nil {
		return
	}
	if instructions, err = marshalList(p.Instructions); err != nil {
		return
	}
	if mealTypes, err = marshalList(p.MealTypes); err != nil {
		return
	}
	tags, err = marshalList(p.Tags)
	return
}

func scanRecipe(scanner interface{ Scan(...any) error }) (*model.Recipe, error) {
	var r model.Recipe
	var ingredients, instructions, mealTypes, tags string
	var prep, cook sql.NullInt64
	var trashedAt sql.NullTime

	err := scanner.Scan(
		&r.ID, &r.FamilyID, &r.Title, &r.PhotoURL,
		&ingredients, &instructions, &prep, &cook, &r.Servings,
		&mealTypes, &tags, &r.SourceURL, &trashedAt,
		&r.CreatedBy, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(ingredients), &r.Ingredients); err != nil {
		return nil, fmt.Errorf("decode ingredients: %w", err)
	}
	if err := json.Unmarshal([]byte(instructions), &r.Instructions); err != nil {
		return nil, fmt.Errorf("decode instructions: %w", err)
	}
	if err := json.Unmarshal([]byte(mealTypes), &r.MealTypes); err != nil {
		return nil, fmt.Errorf("decode meal types: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &r.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}

	if prep.Valid {
		v := int(prep.Int64)
		r.PrepMinutes = &v
	}
	if cook.Valid {
		v := int(cook.Int64)
		r.CookMinutes = &v
	}
	if trashedAt.Valid {
		r.TrashedAt = &trashedAt.Time
	}
	return &r, nil
}

const recipeCols = `id, family_id, title, photo_url, ingredients, instructions,
	prep_minutes, cook_minutes, servings, meal_types, tags, source_url, trashed_at,
	created_by, created_at, updated_at`

func (s *RecipeStore) Create(familyID, createdBy int64, p RecipeParams) (*model.Recipe, error) {
	ingredients, instructions, mealTypes, tags, err := p.encode()
	if err != nil {
		return nil, err
	}

	result, err := s.db.Exec(
		`INSERT INTO recipes (family_id, title, photo_url, ingredients, instructions,
		 prep_minutes, cook_minutes, servings, meal_types, tags, source_url, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		familyID, p.Title, p.PhotoURL, ingredients, instructions,
		nullableInt(p.PrepMinutes), nullableInt(p.CookMinutes), p.Servings,
		mealTypes, tags, p.SourceURL, createdBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert recipe: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func nullableInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func (s *RecipeStore) GetByID(id int64) (*model.Recipe, error) {
	row := s.db.QueryRow(`SELECT `+recipeCols+` FROM recipes WHERE id = ?`, id)
	r, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	return r, nil
}

// ListByFamily returns the family's recipes. trashed selects the trash
// bin instead of the live set.
func (s *RecipeStore) ListByFamily(familyID int64, trashed bool) ([]model.Recipe, error) {
	cond := `trashed_at IS NULL`
	if trashed {
		cond = `trashed_at IS NOT NULL`
	}
	rows, err := s.db.Query(
		`SELECT `+recipeCols+` FROM recipes WHERE family_id = ? AND `+cond+` ORDER BY title ASC`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	var recipes []model.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		recipes = append(recipes, *r)
	}
	return recipes, rows.Err()
}

func (s *RecipeStore) Update(id int64, p RecipeParams) (*model.Recipe, error) {
	ingredients, instructions, mealTypes, tags, err := p.encode()
	if err != nil {
		return nil, err
	}

	_, err = s.db.Exec(
		`UPDATE recipes SET title = ?, photo_url = ?, ingredients = ?, instructions = ?,
		 prep_minutes = ?, cook_minutes = ?, servings = ?, meal_types = ?, tags = ?,
		 source_url = ?, updated_at = datetime('now')
		 WHERE id = ?`,
		p.Title, p.PhotoURL, ingredients, instructions,
		nullableInt(p.PrepMinutes), nullableInt(p.CookMinutes), p.Servings,
		mealTypes, tags, p.SourceURL, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update recipe: %w", err)
	}
	return s.GetByID(id)
}

func (s *RecipeStore) Trash(id int64) error {
	_, err := s.db.Exec(
		`UPDATE recipes SET trashed_at = datetime('now'), updated_at = datetime('now') WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("trash recipe: %w", err)
	}
	return nil
}

func (s *RecipeStore) Restore(id int64) error {
	_, err := s.db.Exec(
		`UPDATE recipes SET trashed_at = NULL, updated_at = datetime('now') WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("restore recipe: %w", err)
	}
	return nil
}

// Purge permanently removes a recipe.
func (s *RecipeStore) Purge(id int64) error {
	_, err := s.db.Exec(`DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("purge recipe: %w", err)
	}
	return nil
}

func (s *RecipeStore) Favorite(profileID, recipeID int64) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO favorites (profile_id, recipe_id) VALUES (?, ?)`,
		profileID, recipeID,
	)
	if err != nil {
		return fmt.Errorf("favorite recipe: %w", err)
	}
	return nil
}

func (s *RecipeStore) Unfavorite(profileID, recipeID int64) error {
	_, err := s.db.Exec(
		`DELETE FROM favorites WHERE profile_id = ? AND recipe_id = ?`,
		profileID, recipeID,
	)
	if err != nil {
		return fmt.Errorf("unfavorite recipe: %w", err)
	}
	return nil
}

func (s *RecipeStore) ListFavoriteIDs(profileID int64) ([]int64, error) {
	rows, err := s.db.Query(
		`SELECT recipe_id FROM favorites WHERE profile_id = ? ORDER BY created_at ASC`,
		profileID,
	)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetRating upserts a profile's up/down rating for a recipe.
func (s *RecipeStore) SetRating(profileID, recipeID int64, rating string) error {
	_, err := s.db.Exec(
		`INSERT INTO ratings (profile_id, recipe_id, rating) VALUES (?, ?, ?)
		 ON CONFLICT(profile_id, recipe_id) DO UPDATE SET rating = excluded.rating`,
		profileID, recipeID, rating,
	)
	if err != nil {
		return fmt.Errorf("set rating: %w", err)
	}
	return nil
}

func (s *RecipeStore) ClearRating(profileID, recipeID int64) error {
	_, err := s.db.Exec(
		`DELETE FROM ratings WHERE profile_id = ? AND recipe_id = ?`,
		profileID, recipeID,
	)
	if err != nil {
		return fmt.Errorf("clear rating: %w", err)
	}
	return nil
}

// RatingCounts returns the up and down vote totals for a recipe.
func (s *RecipeStore) RatingCounts(recipeID int64) (up, down int, err error) {
	err = s.db.QueryRow(
		`SELECT
		   COUNT(CASE WHEN rating = 'up' THEN 1 END),
		   COUNT(CASE WHEN rating = 'down' THEN 1 END)
		 FROM ratings WHERE recipe_id = ?`,
		recipeID,
	).Scan(&up, &down)
	if err != nil {
		return 0, 0, fmt.Errorf("rating counts: %w", err)
	}
	return up, down, nil
}
