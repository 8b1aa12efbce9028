package services

import "github.com/prometheus/client_golang/prometheus"

var (
	uploadsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scientify_uploads_total",
			Help: "Total number of successfully ingested publications",
		},
		[]string{"metadata_source"},
	)
	conversionsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scientify_conversions_total",
			Help: "Document conversions by method and outcome",
		},
		[]string{"method", "outcome"},
	)
	conversionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scientify_conversion_duration_seconds",
			Help:    "Duration of document conversions",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"extension"},
	)
	searchCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scientify_search_requests_total",
			Help: "Publication list requests by mode",
		},
		[]string{"mode"},
	)
	archivedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scientify_archived_documents_total",
			Help: "Total number of documents mirrored to the S3 archive",
		},
	)
)

func init() {
	prometheus.MustRegister(uploadsCounter, conversionsCounter, conversionDuration, searchCounter, archivedCounter)
}
