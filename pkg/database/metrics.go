package database

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// poolSample is one observation of a connection pool.
type poolSample struct {
	total, idle, acquired float64
	waits, timeouts       float64
}

// PoolStatsCollector exports connection pool statistics for one store.
type PoolStatsCollector struct {
	store  string
	sample func() poolSample

	totalConns    *prometheus.Desc
	idleConns     *prometheus.Desc
	acquiredConns *prometheus.Desc
	waits         *prometheus.Desc
	timeouts      *prometheus.Desc
}

func newPoolStatsCollector(store string, sample func() poolSample) *PoolStatsCollector {
	labels := []string{"store"}
	return &PoolStatsCollector{
		store:  store,
		sample: sample,
		totalConns: prometheus.NewDesc("db_pool_total_connections",
			"Total number of connections in the pool", labels, nil),
		idleConns: prometheus.NewDesc("db_pool_idle_connections",
			"Number of idle connections", labels, nil),
		acquiredConns: prometheus.NewDesc("db_pool_acquired_connections",
			"Number of connections currently in use", labels, nil),
		waits: prometheus.NewDesc("db_pool_waits_total",
			"Number of acquires that had to wait for a connection", labels, nil),
		timeouts: prometheus.NewDesc("db_pool_timeouts_total",
			"Number of acquires that were canceled or timed out", labels, nil),
	}
}

// NewPostgresPoolCollector reports pgxpool statistics under store="postgres".
func NewPostgresPoolCollector(pool *pgxpool.Pool) *PoolStatsCollector {
	return newPoolStatsCollector("postgres", func() poolSample {
		s := pool.Stat()
		return poolSample{
			total:    float64(s.TotalConns()),
			idle:     float64(s.IdleConns()),
			acquired: float64(s.AcquiredConns()),
			waits:    float64(s.EmptyAcquireCount()),
			timeouts: float64(s.CanceledAcquireCount()),
		}
	})
}

// NewRedisPoolCollector reports go-redis pool statistics under store="redis".
func NewRedisPoolCollector(client redis.UniversalClient) *PoolStatsCollector {
	return newPoolStatsCollector("redis", func() poolSample {
		s := client.PoolStats()
		return poolSample{
			total:    float64(s.TotalConns),
			idle:     float64(s.IdleConns),
			acquired: float64(s.TotalConns - s.IdleConns),
			waits:    float64(s.Misses),
			timeouts: float64(s.Timeouts),
		}
	})
}

// Describe implements prometheus.Collector.
func (c *PoolStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalConns
	ch <- c.idleConns
	ch <- c.acquiredConns
	ch <- c.waits
	ch <- c.timeouts
}

// Collect implements prometheus.Collector.
func (c *PoolStatsCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.sample()
	ch <- prometheus.MustNewConstMetric(c.totalConns, prometheus.GaugeValue, s.total, c.store)
	ch <- prometheus.MustNewConstMetric(c.idleConns, prometheus.GaugeValue, s.idle, c.store)
	ch <- prometheus.MustNewConstMetric(c.acquiredConns, prometheus.GaugeValue, s.acquired, c.store)
	ch <- prometheus.MustNewConstMetric(c.waits, prometheus.CounterValue, s.waits, c.store)
	ch <- prometheus.MustNewConstMetric(c.timeouts, prometheus.CounterValue, s.timeouts, c.store)
}
