package trace

import (
	"time"

	"github.com/tempslabs/errtrack/internal/protocol"
)

// TransactionContext supplies creation parameters for a transaction.
// ParentSampled nil defaults the transaction's sampled flag to true.
type TransactionContext struct {
	Name          string
	Op            string
	TraceID       string
	ParentSpanID  string
	ParentSampled *bool
}

// Transaction is the root of a trace tree. It owns its span tree outright.
type Transaction struct {
	Span
	Name string

	measurements map[string]protocol.Measurement
	onFinish     func(*Transaction)
}

// StartTransaction begins a new transaction. A fresh trace id is generated
// unless the context carries one.
func StartTransaction(ctx TransactionContext) *Transaction {
	traceID := ctx.TraceID
	if traceID == "" {
		traceID = NewTraceID()
	}
	sampled := ctx.ParentSampled == nil || *ctx.ParentSampled

	return &Transaction{
		Span: Span{
			TraceID:      traceID,
			SpanID:       NewSpanID(),
			ParentSpanID: ctx.ParentSpanID,
			Op:           ctx.Op,
			Sampled:      sampled,
			start:        time.Now().UTC(),
		},
		Name:         ctx.Name,
		measurements: map[string]protocol.Measurement{},
	}
}

// SetMeasurement records a named performance measurement. Unit defaults
// to "ms".
func (t *Transaction) SetMeasurement(name string, value float64, unit string) {
	if unit == "" {
		unit = "ms"
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.measurements[name] = protocol.Measurement{Value: value, Unit: unit}
}

// OnFinish registers a callback invoked the first time Finish is called.
func (t *Transaction) OnFinish(fn func(*Transaction)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onFinish = fn
}

// Finish stamps the end timestamp and fires the registered finish callback.
// Idempotent: a second call is a no-op.
func (t *Transaction) Finish() {
	if !t.finish() {
		return
	}
	t.mu.Lock()
	fn := t.onFinish
	t.mu.Unlock()
	if fn != nil {
		fn(t)
	}
}

// ToEvent serializes the transaction plus its full span list into a
// transaction event: trace context block, measurements, tags as event
// tags, and data as event extra.
func (t *Transaction) ToEvent() *protocol.Event {
	t.mu.Lock()
	traceCtx := protocol.TraceContext{
		TraceID:      t.TraceID,
		SpanID:       t.SpanID,
		ParentSpanID: t.ParentSpanID,
		Op:           t.Op,
		Status:       string(t.status),
	}
	start := t.start
	end := t.end
	tags := copyTags(t.tags)
	data := copyData(t.data)
	measurements := make(map[string]protocol.Measurement, len(t.measurements))
	for k, v := range t.measurements {
		measurements[k] = v
	}
	children := make([]*Span, len(t.children))
	copy(children, t.children)
	t.mu.Unlock()

	timestamp := time.Now().UTC()
	if end != nil {
		timestamp = *end
	}

	var spans []protocol.Span
	for _, c := range children {
		spans = c.wire(spans)
	}

	return &protocol.Event{
		EventID:        protocol.NewEventID(),
		Type:           "transaction",
		Transaction:    t.Name,
		StartTimestamp: &start,
		Timestamp:      timestamp,
		Contexts:       map[string]any{"trace": traceCtx},
		Spans:          spans,
		Measurements:   measurements,
		Tags:           tags,
		Extra:          data,
	}
}
