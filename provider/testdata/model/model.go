// Package model is loaded by the source provider tests.
package model

import "time"

// User is an account holder.
//
// Deprecated: use Admin.
type User struct {
	// ID is the primary key.
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Email     string             `json:"email,omitempty"`
	Age       *int               `json:"age"`
	CreatedAt time.Time          `json:"created_at"`
	Avatar    []byte             `json:"avatar,omitempty"`
	Status    Status             `json:"status"`
	Tags      []string           `json:"tags"`
	Scores    map[Status]float64 `json:"scores"`
	Timeout   time.Duration      `json:"timeout"`
	Grid      [3]int             `json:"grid"`
	Extra     any                `json:"extra,omitempty"`
	NoTag     bool
	Ignored   string `json:"-"`
	secret    string
}

// Status is the account state.
type Status string

const (
	// StatusActive is a live account.
	StatusActive Status = "active"
	StatusBanned Status = "banned"
)

// Priority orders work.
type Priority int

const (
	Low Priority = iota
	Medium
	High
)

// Base carries identity.
//
//tsmodel:abstract
type Base struct {
	ID string `json:"id"`
}

// Audited records changes.
type Audited struct {
	UpdatedBy string `json:"updatedBy"`
}

// Admin manages users.
type Admin struct {
	Base
	*Audited
	Level Priority `json:"level"`
	Label string   `json:"label,omitzero"`
}

// Page is one page of results.
type Page[T any] struct {
	Items []T     `json:"items"`
	Next  *string `json:"next,omitempty"`
}

// UserPage is a page of users.
type UserPage struct {
	Page[User]
	Total int `json:"total"`
}

// Shape is anything drawable.
//
//tsmodel:discriminator kind Circle Square=sq
type Shape interface {
	Area() float64
}

// Circle is round.
type Circle struct {
	Radius float64 `json:"radius"`
}

func (c Circle) Area() float64 { return 3.14159 * c.Radius * c.Radius }

// Square has four equal sides.
//
//tsmodel:tag square
type Square struct {
	Side float64 `json:"side"`
}

func (s Square) Area() float64 { return s.Side * s.Side }

// Drawing holds shapes.
type Drawing struct {
	Shapes []Shape `json:"shapes"`
}

// Handler is notified of changes.
type Handler func(name string, count int) error

// Hooks has function and channel members.
type Hooks struct {
	OnChange Handler     `json:"onChange"`
	Pipe     chan int    `json:"pipe"`
	Callback func() bool `json:"callback"`
}

// Color marshals itself as text.
type Color struct{ R, G, B uint8 }

func (c Color) MarshalText() ([]byte, error) { return []byte("#000000"), nil }

// Theme uses a text-marshaled type.
type Theme struct {
	Primary Color `json:"primary"`
	Named   Named `json:"named"`
}

// Named is a defined string without constants.
type Named string
