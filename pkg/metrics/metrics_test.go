package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"

	"github.com/vango-dev/reconcile/pkg/memdom"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

func metricHistogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

type widget struct{}

func (widget) Render() vdom.Node { return vdom.Span("w") }

func TestCollectorRecordsPasses(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(WithRegistry(reg))

	doc := memdom.New("body")
	e := vdom.New(doc, doc.Root(), vdom.WithObserver(c))
	ctx := context.Background()

	tree := vdom.Div(vdom.Comp(func(struct{}, vdom.Notifier) widget { return widget{} }, struct{}{}))
	if err := e.Render(ctx, tree); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if err := e.Update(ctx); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if got := testutil.ToFloat64(c.passesTotal.WithLabelValues(vdom.PassRender, "ok")); got != 1 {
		t.Errorf("render passes = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.passesTotal.WithLabelValues(vdom.PassUpdate, "ok")); got != 1 {
		t.Errorf("update passes = %v, want 1", got)
	}
	// div, span and text.
	if got := testutil.ToFloat64(c.mutationsTotal.WithLabelValues("create")); got != 3 {
		t.Errorf("create mutations = %v, want 3", got)
	}
	if got := testutil.ToFloat64(c.mounted); got != 1 {
		t.Errorf("components_mounted = %v, want 1", got)
	}
	if got := metricHistogramCount(t, c.passDuration.WithLabelValues(vdom.PassRender)); got != 1 {
		t.Errorf("render duration samples = %d, want 1", got)
	}

	if err := e.Unmount(ctx); err != nil {
		t.Fatalf("Unmount() error = %v", err)
	}
	if got := testutil.ToFloat64(c.mounted); got != 0 {
		t.Errorf("components_mounted after unmount = %v, want 0", got)
	}
	if got := testutil.ToFloat64(c.componentsTotal.WithLabelValues("destroyed")); got != 1 {
		t.Errorf("destroyed components = %v, want 1", got)
	}
}

func TestCollectorRecordsFailedPass(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(WithRegistry(reg), WithNamespace("test"))

	c.PassCompleted(vdom.PassRender, time.Millisecond, vdom.PassStats{}, errors.New("boom"))
	if got := testutil.ToFloat64(c.passesTotal.WithLabelValues(vdom.PassRender, "error")); got != 1 {
		t.Errorf("failed passes = %v, want 1", got)
	}

	if n, err := testutil.GatherAndCount(reg, "test_passes_total"); err != nil || n != 1 {
		t.Errorf("GatherAndCount(test_passes_total) = %d, %v; want 1, nil", n, err)
	}
}

func TestInstrumentCountsTargetCalls(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(WithRegistry(reg))

	doc := memdom.New("body")
	e := vdom.New(c.Instrument(doc), doc.Root())
	ctx := context.Background()

	if err := e.Render(ctx, vdom.P("a")); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got := testutil.ToFloat64(c.targetCalls.WithLabelValues("CreateText")); got != 1 {
		t.Errorf("CreateText calls = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.targetCalls.WithLabelValues("AppendChild")); got != 2 {
		t.Errorf("AppendChild calls = %v, want 2", got)
	}

	doc.FailOn(vdom.OpSetText, errors.New("boom"))
	if err := e.Render(ctx, vdom.P("b")); err == nil {
		t.Fatal("Render() error = nil, want error")
	}
	if got := testutil.ToFloat64(c.targetErrors.WithLabelValues("SetText")); got != 1 {
		t.Errorf("SetText errors = %v, want 1", got)
	}
}
