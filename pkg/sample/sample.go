// Package sample is the canonical "simple input" used to validate the
// prism indexing pipeline. It is the Go rendition of the Python fixture in
// internal/parse/testdata: four arithmetic helpers, a Person record, and a
// batch greeting transformation. The behavior here is pinned; parser and
// chunker tests rely on it staying trivial.
package sample

import (
	"errors"
	"fmt"
)

// ErrDivideByZero is returned by Divide when the divisor is zero.
var ErrDivideByZero = errors.New("Cannot divide by zero")

// Add returns the sum of a and b.
func Add(a, b int) int {
	return a + b
}

// Subtract returns a minus b.
func Subtract(a, b int) int {
	return a - b
}

// Multiply returns the product of a and b.
func Multiply(a, b int) int {
	return a * b
}

// Divide returns a divided by b. Dividing by zero is the only failure
// condition in the whole package.
func Divide(a, b float64) (float64, error) {
	if b == 0 {
		return 0, ErrDivideByZero
	}
	return a / b, nil
}

// Person is a simple person record. Email is optional; the zero value
// means absent.
type Person struct {
	Name  string `json:"name"`
	Age   int    `json:"age"`
	Email string `json:"email,omitempty"`
}

// Greet returns the person's greeting message.
func (p Person) Greet() string {
	return fmt.Sprintf("Hello, my name is %s and I'm %d years old.", p.Name, p.Age)
}

// ProcessPeople returns the greeting for each person, preserving input
// order. An empty input yields an empty output.
func ProcessPeople(people []Person) []string {
	greetings := make([]string, 0, len(people))
	for _, person := range people {
		greetings = append(greetings, person.Greet())
	}
	return greetings
}
