package generate

import (
	"fmt"
	"math/rand"
	"strings"
)

var (
	firstNames = []string{"John", "Jane", "Alice", "Bob", "Charlie", "Diana", "Eve", "Frank", "Grace", "Henry", "Irene", "Jakub", "Kasia", "Leon", "Marta"}
	lastNames  = []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Rodriguez", "Martinez", "Nowak", "Kowalski"}
	domains    = []string{"example.com", "test.com", "demo.com", "mail.com"}
	words      = []string{
		"the", "quick", "brown", "fox", "jumps", "over", "lazy", "dog", "data", "table",
		"schema", "value", "random", "record", "careful", "planning", "database", "design",
		"query", "index", "mock", "sample", "text", "generated", "testing", "purpose",
	}
)

// faker produces human-looking strings for the extended generation kinds.
type faker struct {
	rand    *rand.Rand
	counter int
}

func (f *faker) name() string {
	return firstNames[f.rand.Intn(len(firstNames))] + " " + lastNames[f.rand.Intn(len(lastNames))]
}

func (f *faker) email() string {
	f.counter++
	first := strings.ToLower(firstNames[f.rand.Intn(len(firstNames))])
	last := strings.ToLower(lastNames[f.rand.Intn(len(lastNames))])
	return fmt.Sprintf("%s.%s%d@%s", first, last, f.counter, domains[f.rand.Intn(len(domains))])
}

func (f *faker) phone() string {
	return fmt.Sprintf("+1-%03d-%03d-%04d", f.rand.Intn(1000), f.rand.Intn(1000), f.rand.Intn(10000))
}

func (f *faker) sentence() string {
	n := 4 + f.rand.Intn(9)
	parts := make([]string, n)
	for i := range parts {
		parts[i] = words[f.rand.Intn(len(words))]
	}
	s := strings.Join(parts, " ")
	return strings.ToUpper(s[:1]) + s[1:] + "."
}

const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

func (f *faker) letters(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[f.rand.Intn(len(letters))]
	}
	return string(b)
}
