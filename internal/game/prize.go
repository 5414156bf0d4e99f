package game

// Amounts in coins.
const (
	TicketPrice  int64 = 500
	StartBalance int64 = 10000
)

// SkimPercent is the share of each prize the operator keeps as profit.
const SkimPercent int64 = 10

const (
	singleHit = 1
	jackpot   = 5
)

var prizeTable = map[int]int64{
	2: 100,
	3: 500,
	4: 1000,
	5: 5000,
}

// ResultBuckets lists the hit counts tallied in a RoundResult.
var ResultBuckets = []int{0, 2, 3, 4, 5}

// Prize returns what a ticket with the given number of hits pays, and the part
// of it the operator keeps as profit.
func Prize(hits int) (prize, skim int64) {
	prize = prizeTable[hits]
	return prize, prize * SkimPercent / 100
}

// IsJackpot reports whether a result contains at least one five-hit ticket.
func IsJackpot(buckets map[int]int) bool {
	return buckets[jackpot] > 0
}
