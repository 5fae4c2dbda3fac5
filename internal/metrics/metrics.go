package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookmarksCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marks_bookmarks_created_total",
		Help: "Bookmark rows successfully inserted.",
	})

	BookmarksDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marks_bookmarks_deleted_total",
		Help: "Bookmark rows successfully deleted.",
	})

	FeedEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marks_feed_events_total",
		Help: "Change-feed events published, by event type.",
	}, []string{"type"})

	FeedEventsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marks_feed_events_dropped_total",
		Help: "Feed events dropped because a subscriber queue was full.",
	})

	FeedSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "marks_feed_subscribers",
		Help: "Currently attached feed subscribers.",
	})

	FeedConnectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marks_feed_connections_total",
		Help: "WebSocket feed connections accepted.",
	})
)
