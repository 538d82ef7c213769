// oreon/lumen · watchthelight <wtl>

package events

// ReconcileBuilder is a typed builder for reconcile events.
type ReconcileBuilder struct {
	*Builder
}

// StartReconcile creates a new reconcile event builder.
func StartReconcile(source string) *ReconcileBuilder {
	b := Start(EventTypeReconcile, "controller")
	b.Set(FieldSource, source)
	return &ReconcileBuilder{Builder: b}
}

// Target sets the computed target temperature.
func (b *ReconcileBuilder) Target(kelvin int) *ReconcileBuilder {
	b.Set(FieldTargetKelvin, kelvin)
	return b
}

// Current sets the last-applied temperature at the start of the cycle.
func (b *ReconcileBuilder) Current(kelvin int) *ReconcileBuilder {
	b.Set(FieldCurrentKelvin, kelvin)
	return b
}

// Applied sets whether the cycle actually restarted the display utility.
func (b *ReconcileBuilder) Applied(applied bool) *ReconcileBuilder {
	b.Set(FieldApplied, applied)
	return b
}

// Period sets the day/night period the decision was made for.
func (b *ReconcileBuilder) Period(period string) *ReconcileBuilder {
	b.Set(FieldPeriod, period)
	return b
}

// ApplyBuilder is a typed builder for display-apply events.
type ApplyBuilder struct {
	*Builder
}

// StartApply creates a new apply event builder.
func StartApply(utility string, kelvin int) *ApplyBuilder {
	b := Start(EventTypeApply, "display")
	b.Set(FieldUtility, utility)
	b.Set(FieldTargetKelvin, kelvin)
	return &ApplyBuilder{Builder: b}
}

// PID sets the process ID of the launched utility.
func (b *ApplyBuilder) PID(pid int) *ApplyBuilder {
	b.Set(FieldPID, pid)
	return b
}

// ModeChangeBuilder is a typed builder for mode transition events.
type ModeChangeBuilder struct {
	*Builder
}

// StartModeChange creates a new mode change event builder.
func StartModeChange(fromMode, toMode string) *ModeChangeBuilder {
	b := Start(EventTypeModeChange, "controller")
	b.Set(FieldFromMode, fromMode)
	b.Set(FieldToMode, toMode)
	return &ModeChangeBuilder{Builder: b}
}

// FilterOn sets the blue light filter flag after the transition.
func (b *ModeChangeBuilder) FilterOn(on bool) *ModeChangeBuilder {
	b.Set(FieldFilterOn, on)
	return b
}

// Reason sets the reason for the mode change.
func (b *ModeChangeBuilder) Reason(reason string) *ModeChangeBuilder {
	b.Set(FieldReason, reason)
	return b
}

// FetchBuilder is a typed builder for provider fetch events.
type FetchBuilder struct {
	*Builder
}

// StartFetch creates a new fetch event builder for the named provider.
func StartFetch(provider string) *FetchBuilder {
	b := Start(EventTypeFetch, provider)
	return &FetchBuilder{Builder: b}
}

// CacheHit sets whether the result came from the on-disk cache.
func (b *FetchBuilder) CacheHit(hit bool) *FetchBuilder {
	b.Set(FieldCacheHit, hit)
	return b
}

// IPCRequestBuilder is a typed builder for IPC request events.
type IPCRequestBuilder struct {
	*Builder
}

// StartIPCRequest creates a new IPC request event builder.
func StartIPCRequest(command, requestID string) *IPCRequestBuilder {
	b := Start(EventTypeIPCRequest, "ipc")
	b.Set(FieldCommand, command)
	b.Set(FieldRequestID, requestID)
	return &IPCRequestBuilder{Builder: b}
}

// ClientVersion sets the client protocol version.
func (b *IPCRequestBuilder) ClientVersion(version int) *IPCRequestBuilder {
	b.Set(FieldClientVersion, version)
	return b
}

// ResponseSize sets the response size in bytes.
func (b *IPCRequestBuilder) ResponseSize(bytes int) *IPCRequestBuilder {
	b.Set(FieldResponseSize, bytes)
	return b
}

// TickBuilder is a typed builder for daemon tick events.
type TickBuilder struct {
	*Builder
}

// StartTick creates a new daemon tick event builder.
func StartTick() *TickBuilder {
	b := Start(EventTypeDaemonTick, "daemon")
	return &TickBuilder{Builder: b}
}

// Backoff sets whether the next sleep uses the error backoff interval.
func (b *TickBuilder) Backoff(backoff bool) *TickBuilder {
	b.Set(FieldBackoff, backoff)
	return b
}
