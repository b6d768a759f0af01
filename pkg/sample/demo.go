package sample

import (
	"fmt"
	"io"
)

// Demo writes the fixture's demonstration transcript to w: one addition,
// one greeting for a manually constructed record, and one greeting per
// record in a two-element list. cmd/sample wires this to stdout.
func Demo(w io.Writer) {
	result := Add(10, 20)
	fmt.Fprintf(w, "10 + 20 = %d\n", result)

	person := Person{Name: "Alice", Age: 30, Email: "alice@example.com"}
	fmt.Fprintln(w, person.Greet())

	people := []Person{
		{Name: "Bob", Age: 25},
		{Name: "Charlie", Age: 35},
	}
	for _, greeting := range ProcessPeople(people) {
		fmt.Fprintln(w, greeting)
	}
}
