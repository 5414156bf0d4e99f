package models

// Ticket is a single set of numbers bought by a player.
// IDs are unique within one player's ticket list only.
type Ticket struct {
	ID             int   `json:"id"`
	Numbers        []int `json:"numbers"`
	IsPlayerTicket bool  `json:"isPlayerTicket"`
}

// Player is a named account holding coins and the tickets it has bought.
// An empty Name means no identity has been bound to the session yet.
type Player struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Balance       int64    `json:"balance"`
	TotalWinnings int64    `json:"totalWinnings"`
	Tickets       []Ticket `json:"tickets"`
}

// Operator is the house account. There is exactly one per economy.
type Operator struct {
	Balance          int64    `json:"balance"`
	SubmittedTickets []Ticket `json:"submittedTickets"`
}

// RoundResult summarizes one completed draw.
// Buckets is keyed by hit count and always holds 0, 2, 3, 4 and 5.
// Tickets with a single hit are counted in SingleHits, not in Buckets.
type RoundResult struct {
	DrawnNumbers   []int       `json:"drawnNumbers"`
	Buckets        map[int]int `json:"buckets"`
	SingleHits     int         `json:"singleHits"`
	TotalPrize     int64       `json:"totalPrize"`
	OperatorProfit int64       `json:"operatorProfit"`
}

// Clone returns a copy of t that shares no memory with it.
func (t Ticket) Clone() Ticket {
	t.Numbers = append([]int(nil), t.Numbers...)
	return t
}

// CloneTickets deep-copies a ticket list. A nil list stays nil.
func CloneTickets(tickets []Ticket) []Ticket {
	if tickets == nil {
		return nil
	}
	out := make([]Ticket, len(tickets))
	for i, t := range tickets {
		out[i] = t.Clone()
	}
	return out
}

// Clone returns a deep copy of p.
func (p Player) Clone() Player {
	p.Tickets = CloneTickets(p.Tickets)
	return p
}

// Clone returns a deep copy of o.
func (o Operator) Clone() Operator {
	o.SubmittedTickets = CloneTickets(o.SubmittedTickets)
	return o
}

// Clone returns a deep copy of r.
func (r RoundResult) Clone() RoundResult {
	r.DrawnNumbers = append([]int(nil), r.DrawnNumbers...)
	buckets := make(map[int]int, len(r.Buckets))
	for k, v := range r.Buckets {
		buckets[k] = v
	}
	r.Buckets = buckets
	return r
}
