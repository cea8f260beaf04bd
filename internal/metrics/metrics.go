// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// 認証サービスと面接クエリサービスから利用する。
type MetricsCollector interface {
	RecordSigninOutcome(success bool)
	RecordSignupOutcome(created bool)
	RecordSessionResolution(outcome string)
	RecordQueryFailure(operation string)
	RecordQueryLatency(operation string, d time.Duration)
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	signinOutcome     *prometheus.CounterVec
	signupOutcome     *prometheus.CounterVec
	sessionResolution *prometheus.CounterVec
	queryFail         *prometheus.CounterVec
	queryLatency      *prometheus.HistogramVec
	httpStatus        *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signinOutcome: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "prepman_signin_total",
			Help: "サインイン試行の結果別合計数",
		}, []string{"result"}),
		signupOutcome: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "prepman_signup_total",
			Help: "サインアップの結果別合計数",
		}, []string{"result"}),
		sessionResolution: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "prepman_session_resolution_total",
			Help: "セッション解決の結果別合計数",
		}, []string{"outcome"}),
		queryFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "prepman_interview_query_fail_total",
			Help: "面接クエリ失敗の操作別合計数",
		}, []string{"operation"}),
		queryLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "prepman_interview_query_latency_seconds",
			Help:    "面接クエリのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "prepman_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.signinOutcome,
		c.signupOutcome,
		c.sessionResolution,
		c.queryFail,
		c.queryLatency,
		c.httpStatus,
	)

	return c
}

// RecordSigninOutcome はサインイン試行の結果を記録する。
func (c *Collector) RecordSigninOutcome(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	c.signinOutcome.WithLabelValues(result).Inc()
}

// RecordSignupOutcome はサインアップの結果を記録する。
func (c *Collector) RecordSignupOutcome(created bool) {
	result := "already_exists"
	if created {
		result = "created"
	}
	c.signupOutcome.WithLabelValues(result).Inc()
}

// RecordSessionResolution はセッション解決の結果を記録する。
func (c *Collector) RecordSessionResolution(outcome string) {
	c.sessionResolution.WithLabelValues(outcome).Inc()
}

// RecordQueryFailure は面接クエリの失敗を記録する。
func (c *Collector) RecordQueryFailure(operation string) {
	c.queryFail.WithLabelValues(operation).Inc()
}

// RecordQueryLatency は面接クエリのレイテンシを記録する。
func (c *Collector) RecordQueryLatency(operation string, d time.Duration) {
	c.queryLatency.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
