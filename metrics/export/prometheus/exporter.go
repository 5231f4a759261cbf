package prometheus

import (
	"net/http"

	goAuthClient "github.com/MrEthical07/goAuthClient"
	"github.com/MrEthical07/goAuthClient/metrics/export/internaldefs"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsSource is the read side of a session manager. *goAuthClient.Manager
// satisfies it.
type MetricsSource interface {
	MetricsSnapshot() goAuthClient.MetricsSnapshot
	AuditDropped() uint64
	NotificationsDropped() uint64
}

type counterDesc struct {
	id   goAuthClient.MetricID
	desc *promclient.Desc
}

type histogramDesc struct {
	id   goAuthClient.MetricID
	desc *promclient.Desc
}

// Collector is a [promclient.Collector] that reads a fresh snapshot on every
// scrape.
type Collector struct {
	source     MetricsSource
	counters   []counterDesc
	histograms []histogramDesc

	auditDropped         *promclient.Desc
	notificationsDropped *promclient.Desc
}

var _ promclient.Collector = (*Collector)(nil)

// NewCollector returns a collector for source. Register it with any
// registry, or mount [Collector.Handler] for a private one.
func NewCollector(source MetricsSource) *Collector {
	c := &Collector{
		source:               source,
		counters:             make([]counterDesc, 0, len(internaldefs.CounterDefs)),
		histograms:           make([]histogramDesc, 0, len(internaldefs.HistogramDefs)),
		auditDropped:         promclient.NewDesc(internaldefs.AuditDroppedName, internaldefs.AuditDroppedHelp, nil, nil),
		notificationsDropped: promclient.NewDesc(internaldefs.NotificationsDroppedName, internaldefs.NotificationsDroppedHelp, nil, nil),
	}
	for _, def := range internaldefs.CounterDefs {
		c.counters = append(c.counters, counterDesc{id: def.ID, desc: promclient.NewDesc(def.Name, def.Help, nil, nil)})
	}
	for _, def := range internaldefs.HistogramDefs {
		c.histograms = append(c.histograms, histogramDesc{id: def.ID, desc: promclient.NewDesc(def.Name, def.Help, nil, nil)})
	}
	return c
}

// Describe implements [promclient.Collector].
func (c *Collector) Describe(ch chan<- *promclient.Desc) {
	for _, cd := range c.counters {
		ch <- cd.desc
	}
	for _, hd := range c.histograms {
		ch <- hd.desc
	}
	ch <- c.auditDropped
	ch <- c.notificationsDropped
}

// Collect implements [promclient.Collector]. A disabled metrics set yields
// only the drop counters.
func (c *Collector) Collect(ch chan<- promclient.Metric) {
	if c.source == nil {
		return
	}
	snap := c.source.MetricsSnapshot()

	if len(snap.Counters) > 0 {
		for _, cd := range c.counters {
			ch <- promclient.MustNewConstMetric(cd.desc, promclient.CounterValue, float64(snap.Counters[cd.id]))
		}
	}
	for _, hd := range c.histograms {
		raw, ok := snap.Histograms[hd.id]
		if !ok {
			continue
		}
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(raw))
		buckets := make(map[float64]uint64, len(internaldefs.HistogramBounds))
		for i, bound := range internaldefs.HistogramBounds {
			buckets[bound] = cumulative[i]
		}
		// Bucket counts carry no sum.
		ch <- promclient.MustNewConstHistogram(hd.desc, cumulative[len(cumulative)-1], 0, buckets)
	}

	ch <- promclient.MustNewConstMetric(c.auditDropped, promclient.CounterValue, float64(c.source.AuditDropped()))
	ch <- promclient.MustNewConstMetric(c.notificationsDropped, promclient.CounterValue, float64(c.source.NotificationsDropped()))
}

// Handler serves the collector from a private registry, leaving the global
// default registry untouched.
func (c *Collector) Handler() http.Handler {
	reg := promclient.NewRegistry()
	reg.MustRegister(c)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
