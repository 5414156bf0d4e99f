package game

import (
	"fmt"
	"math/rand"
)

const (
	// NumbersPerTicket is how many numbers a ticket and a draw hold.
	NumbersPerTicket = 5
	// MaxNumber is the highest number that can appear on a ticket.
	MaxNumber = 39
)

// Generate returns count pairwise-distinct integers drawn uniformly from
// [1, max], in draw order. Collisions are rejected and redrawn.
func Generate(rng *rand.Rand, count, max int) ([]int, error) {
	if count < 0 || max < 1 || count > max {
		return nil, fmt.Errorf("cannot draw %d distinct numbers from [1,%d]", count, max)
	}

	numbers := make([]int, 0, count)
	seen := make(map[int]bool, count)
	for len(numbers) < count {
		n := rng.Intn(max) + 1
		if seen[n] {
			continue
		}
		seen[n] = true
		numbers = append(numbers, n)
	}
	return numbers, nil
}

// ValidNumbers reports whether numbers is a well-formed ticket or draw.
func ValidNumbers(numbers []int) bool {
	if len(numbers) != NumbersPerTicket {
		return false
	}
	seen := make(map[int]bool, len(numbers))
	for _, n := range numbers {
		if n < 1 || n > MaxNumber || seen[n] {
			return false
		}
		seen[n] = true
	}
	return true
}

// CountHits returns how many of the ticket numbers were drawn.
func CountHits(ticket, drawn []int) int {
	in := make(map[int]bool, len(drawn))
	for _, n := range drawn {
		in[n] = true
	}
	hits := 0
	for _, n := range ticket {
		if in[n] {
			hits++
		}
	}
	return hits
}
