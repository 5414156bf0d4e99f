package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	purchasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lotto_purchases_total",
			Help: "Ticket purchase attempts by result",
		},
		[]string{"result"},
	)

	ticketsSold = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lotto_tickets_sold_total",
		Help: "Tickets minted by successful purchases",
	})

	drawsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lotto_draws_total",
			Help: "Draw attempts by result",
		},
		[]string{"result"},
	)

	ticketHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lotto_ticket_hits_total",
			Help: "Scored tickets by hit count",
		},
		[]string{"hits"},
	)

	prizesPaid = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lotto_prizes_paid_total",
		Help: "Coins paid out as prizes",
	})

	drawDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lotto_draw_duration_ms",
		Help:    "Draw processing duration in milliseconds",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	})
)

// RecordPurchase counts a purchase attempt. result is "success" or a
// rejection code.
func RecordPurchase(result string, tickets int) {
	purchasesTotal.WithLabelValues(result).Inc()
	if result == "success" && tickets > 0 {
		ticketsSold.Add(float64(tickets))
	}
}

// RecordDraw counts a draw attempt and, on success, its score.
// buckets maps hit count to ticket count.
func RecordDraw(result string, buckets map[int]int, singleHits int, totalPrize int64, started time.Time) {
	drawsTotal.WithLabelValues(result).Inc()
	drawDuration.Observe(float64(time.Since(started).Microseconds()) / 1000)
	if result != "success" {
		return
	}
	for hits, n := range buckets {
		if n > 0 {
			ticketHits.WithLabelValues(strconv.Itoa(hits)).Add(float64(n))
		}
	}
	if singleHits > 0 {
		ticketHits.WithLabelValues("1").Add(float64(singleHits))
	}
	prizesPaid.Add(float64(totalPrize))
}
