package metrics

import "testing"

type captureBackend struct {
	counts  map[string]float64
	samples map[string][]float64
	flushed int
}

func newCapture() *captureBackend {
	return &captureBackend{
		counts:  map[string]float64{},
		samples: map[string][]float64{},
	}
}

func (c *captureBackend) IncCounter(name string, delta float64, labels Labels) {
	c.counts[name+"|"+labels["step"]] += delta
}

func (c *captureBackend) ObserveHistogram(name string, value float64, labels Labels) {
	c.samples[name] = append(c.samples[name], value)
}

func (c *captureBackend) Flush() error {
	c.flushed++
	return nil
}

func TestFacadeRoutesToInstalledBackend(t *testing.T) {
	c := newCapture()
	SetBackend(c)
	defer SetBackend(nil)

	IncCounter("etl_step_total", 1, Labels{"step": "clean"})
	IncCounter("etl_step_total", 2, Labels{"step": "clean"})
	ObserveHistogram("etl_step_duration_seconds", 0.25, Labels{"step": "clean"})

	if got := c.counts["etl_step_total|clean"]; got != 3 {
		t.Fatalf("counter = %v", got)
	}
	if len(c.samples["etl_step_duration_seconds"]) != 1 {
		t.Fatalf("samples = %v", c.samples)
	}

	if err := Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if c.flushed != 1 {
		t.Fatalf("flushed = %d", c.flushed)
	}
}

func TestNopBackendIsSafe(t *testing.T) {
	SetBackend(nil)
	IncCounter("anything", 1, nil)
	ObserveHistogram("anything", 1, nil)
	if err := Flush(); err != nil {
		t.Fatalf("flush on nop: %v", err)
	}
}
