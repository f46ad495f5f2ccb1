package model

import "time"

// MaxCategoryNameLength bounds a category name in characters.
const MaxCategoryNameLength = 100

// Category groups menu items.
type Category struct {
	ID   int64  `json:"id" db:"id" yaml:"id"`
	Name string `json:"name" db:"name" yaml:"name"`
}

// MenuItem is one orderable entry of the menu. Price is in minor currency units.
type MenuItem struct {
	ID          string    `json:"id" db:"id" yaml:"id"`
	CategoryID  int64     `json:"categoryId" db:"category_id" yaml:"categoryId"`
	Name        string    `json:"name" db:"name" yaml:"name"`
	Description string    `json:"description" db:"description" yaml:"description"`
	Price       int64     `json:"price" db:"price" yaml:"price"`
	ImageRef    string    `json:"imageRef" db:"image_ref" yaml:"imageRef"`
	Rating      float64   `json:"rating" db:"rating" yaml:"rating"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at" yaml:"-"`
}

// Catalog is a full menu snapshot used for seeding.
type Catalog struct {
	Categories []Category `yaml:"categories"`
	Items      []MenuItem `yaml:"items"`
}
