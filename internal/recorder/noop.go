package recorder

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordBriefing(_ *BriefingRun) error      { return nil }
func (n *NoopRecorder) RecordAlertTrigger(_ *AlertTrigger) error { return nil }
func (n *NoopRecorder) RecordPriceRefresh(_ *PriceRefresh) error { return nil }
func (n *NoopRecorder) Close() error                             { return nil }
